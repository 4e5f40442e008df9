package router

import (
	"encoding/json"

	"github.com/upb/chat-edge/internal/providers"
)

// ProviderName identifies an upstream provider slot
type ProviderName string

const (
	Grok   ProviderName = "grok"
	GPT5   ProviderName = "gpt5"
	Gemini ProviderName = "gemini"
)

// ModeAuto lets the router choose the provider and fall back on failure
const ModeAuto = "auto"

// DefaultProvider is used when the request names no chatbot
const DefaultProvider = Grok

// CanonicalOrder is the fallback order for auto requests
var CanonicalOrder = []ProviderName{Grok, GPT5, Gemini}

// Known reports whether p is one of the canonical providers
func (p ProviderName) Known() bool {
	for _, c := range CanonicalOrder {
		if p == c {
			return true
		}
	}
	return false
}

// ChatRequest is the body accepted by /api/chat
type ChatRequest struct {
	Chatbot      string            `json:"chatbot"`
	Model        string            `json:"model"`
	Messages     []json.RawMessage `json:"messages"`
	ClientChosen string            `json:"clientChosen"`
}

// ProviderSpec is the static configuration of one provider slot
type ProviderSpec struct {
	// APIKey is empty when the provider is not configured
	APIKey string

	// Protocol selects the wire adapter
	Protocol providers.Protocol

	// DefaultModel is used when the request carries no model override
	DefaultModel string
}

// ProviderTable maps provider slots to their configuration
type ProviderTable map[ProviderName]ProviderSpec

// Default model identifiers
const (
	DefaultGrokModel   = "x-ai/grok-4.1-fast:free"
	DefaultGPT5Model   = "openai/gpt-4-turbo"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// NewProviderTable builds the table with the standard protocol for each
// slot. Empty models fall back to the defaults.
func NewProviderTable(grokKey, grokModel, gpt5Key, gpt5Model, geminiKey, geminiModel string) ProviderTable {
	return ProviderTable{
		Grok:   {APIKey: grokKey, Protocol: providers.ProtocolOpenRouter, DefaultModel: orDefault(grokModel, DefaultGrokModel)},
		GPT5:   {APIKey: gpt5Key, Protocol: providers.ProtocolOpenRouter, DefaultModel: orDefault(gpt5Model, DefaultGPT5Model)},
		Gemini: {APIKey: geminiKey, Protocol: providers.ProtocolGemini, DefaultModel: orDefault(geminiModel, DefaultGeminiModel)},
	}
}

// Configured reports whether name has a table entry with a non-empty key
func (t ProviderTable) Configured(name ProviderName) bool {
	spec, ok := t[name]
	return ok && spec.APIKey != ""
}

// Reply is the terminal HTTP response for one chat request
type Reply struct {
	Status int

	// Body is a complete JSON document
	Body []byte

	// AllowAnyOrigin is set on successes only
	AllowAnyOrigin bool
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
