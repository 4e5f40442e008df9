package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upb/chat-edge/internal/providers"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	displayName    = "OpenRouter"
)

// Config configures the OpenRouter adapter
type Config struct {
	// BaseURL overrides the public endpoint (tests, proxies)
	BaseURL string

	// HTTPClient is shared across adapters; nil means a client with no timeout
	HTTPClient *http.Client
}

// Adapter speaks the OpenAI-compatible chat completions protocol. The
// upstream response is already in envelope shape, so successful bodies are
// forwarded untouched.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdapter creates a new OpenRouter adapter
func NewAdapter(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Adapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
	}
}

// Protocol returns the wire protocol
func (a *Adapter) Protocol() providers.Protocol {
	return providers.ProtocolOpenRouter
}

// DisplayName returns the upstream name used in error envelopes
func (a *Adapter) DisplayName() string {
	return displayName
}

// ChatCompletion performs a chat completion request
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.Completion, error) {
	messages := req.Messages
	if messages == nil {
		messages = []json.RawMessage{}
	}

	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, providers.NewTransportError(displayName, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewTransportError(displayName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewTransportError(displayName, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewTransportError(displayName, fmt.Errorf("read response: %w", err))
	}

	if !providers.IsSuccess(httpResp.StatusCode) {
		return nil, providers.NewStatusError(displayName, httpResp.StatusCode, respBody)
	}

	if !json.Valid(respBody) {
		return nil, providers.NewUnmarshalError(displayName, httpResp.StatusCode, respBody)
	}

	return &providers.Completion{
		StatusCode:    httpResp.StatusCode,
		Body:          respBody,
		UpstreamBytes: len(respBody),
	}, nil
}

type chatCompletionRequest struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
}
