package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Protocol identifies an upstream wire format
type Protocol string

const (
	// ProtocolGemini is Google's generateContent API
	ProtocolGemini Protocol = "gemini"

	// ProtocolOpenRouter is the OpenAI-compatible chat completions API
	ProtocolOpenRouter Protocol = "openrouter"
)

// Adapter performs a single upstream chat call for one wire protocol
type Adapter interface {
	// Protocol returns the wire protocol this adapter speaks
	Protocol() Protocol

	// DisplayName is the human-readable upstream name used in error envelopes
	DisplayName() string

	// ChatCompletion issues the upstream call. A nil error means the body in
	// the returned Completion is ready to be sent to the caller.
	ChatCompletion(ctx context.Context, req *ChatRequest) (*Completion, error)
}

// ChatRequest is the protocol-neutral input to an adapter
type ChatRequest struct {
	// APIKey authenticates against the upstream
	APIKey string

	// Model is the upstream model identifier
	Model string

	// Messages are the caller's messages, kept as raw JSON objects
	Messages []json.RawMessage
}

// Completion is a successful upstream result
type Completion struct {
	// StatusCode is the status to return to the caller
	StatusCode int

	// Body is the normalized JSON response body
	Body []byte

	// UpstreamBytes is the size of the raw upstream body, for diagnostics
	UpstreamBytes int
}

// Error codes reported in ProviderError.Code
const (
	// CodeHTTPError covers transport failures and requests that could not be built
	CodeHTTPError = "HTTP_ERROR"

	// CodeUpstreamStatus is a non-2xx upstream response
	CodeUpstreamStatus = "UPSTREAM_STATUS"

	// CodeUnmarshalError is a 2xx upstream response whose body is not JSON
	CodeUnmarshalError = "UNMARSHAL_ERROR"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider is the display name of the upstream that failed
	Provider string

	// Code is one of the Code* constants
	Code string

	// Message is the error message
	Message string

	// StatusCode is the upstream HTTP status code (0 for transport errors)
	StatusCode int

	// Body is the raw upstream body, if one was read
	Body []byte

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewTransportError reports a failure to complete the HTTP exchange. The
// request URL is dropped from *url.Error causes since it may carry the key.
func NewTransportError(provider string, cause error) *ProviderError {
	var urlErr *url.Error
	if errors.As(cause, &urlErr) {
		cause = fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return &ProviderError{
		Provider: provider,
		Code:     CodeHTTPError,
		Message:  fmt.Sprintf("%s request failed", provider),
		Cause:    cause,
	}
}

// NewStatusError reports a non-2xx upstream response
func NewStatusError(provider string, statusCode int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       CodeUpstreamStatus,
		Message:    fmt.Sprintf("%s returned status %d", provider, statusCode),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewUnmarshalError reports an upstream body that is not valid JSON
func NewUnmarshalError(provider string, statusCode int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       CodeUnmarshalError,
		Message:    fmt.Sprintf("Invalid JSON from %s", provider),
		StatusCode: statusCode,
		Body:       body,
	}
}

// AsProviderError extracts a ProviderError from err. Errors that are not
// ProviderErrors are reported as transport failures of the given provider.
func AsProviderError(provider string, err error) *ProviderError {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr
	}
	return NewTransportError(provider, err)
}

// IsSuccess reports whether status is a 2xx code
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// FirstContent returns messages[0].content when it is a string, else "".
func FirstContent(messages []json.RawMessage) string {
	if len(messages) == 0 {
		return ""
	}
	var first struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(messages[0], &first); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(first.Content, &text); err != nil {
		return ""
	}
	return text
}

// Envelope is the normalized response shape every success converges to
type Envelope struct {
	Choices []Choice `json:"choices"`
}

// Choice is a single entry in Envelope.Choices
type Choice struct {
	Message Message `json:"message"`
}

// Message carries the reply text
type Message struct {
	Content string `json:"content"`
}

// NormalizedBody encodes a single-choice Envelope around content
func NormalizedBody(content string) ([]byte, error) {
	return json.Marshal(Envelope{Choices: []Choice{{Message: Message{Content: content}}}})
}
