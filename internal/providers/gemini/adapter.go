package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/upb/chat-edge/internal/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	displayName    = "Gemini"
)

// Config configures the Gemini adapter
type Config struct {
	// BaseURL overrides the public endpoint (tests, proxies)
	BaseURL string

	// HTTPClient is shared across adapters; nil means a client with no timeout
	HTTPClient *http.Client
}

// Adapter speaks the generateContent protocol. Only the first message's
// content is forwarded; earlier turns are not part of the upstream request.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
	extractors []Extractor
}

// NewAdapter creates a new Gemini adapter
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
		extractors: DefaultExtractors,
	}
}

// Protocol returns the wire protocol
func (a *Adapter) Protocol() providers.Protocol {
	return providers.ProtocolGemini
}

// DisplayName returns the upstream name used in error envelopes
func (a *Adapter) DisplayName() string {
	return displayName
}

// ChatCompletion performs a generateContent call and normalizes the reply
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.Completion, error) {
	reqBody, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: providers.FirstContent(req.Messages)}}}},
	})
	if err != nil {
		return nil, providers.NewTransportError(displayName, fmt.Errorf("marshal request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, req.Model, url.QueryEscape(req.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewTransportError(displayName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	normalized, err := providers.NormalizedBody(ExtractContent(respBody, a.extractors))
	if err != nil {
		return nil, providers.NewTransportError(displayName, fmt.Errorf("marshal response: %w", err))
	}

	return &providers.Completion{
		StatusCode:    http.StatusOK,
		Body:          normalized,
		UpstreamBytes: len(respBody),
	}, nil
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}
