package providers

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ProviderError
		want string
	}{
		{
			name: "message only",
			err:  NewStatusError("OpenRouter", 429, []byte(`{}`)),
			want: "OpenRouter returned status 429",
		},
		{
			name: "with cause",
			err:  NewTransportError("Gemini", errors.New("connection refused")),
			want: "Gemini request failed: connection refused",
		},
		{
			name: "unmarshal",
			err:  NewUnmarshalError("Gemini", 200, []byte("oops")),
			want: "Invalid JSON from Gemini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransportError("OpenRouter", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestNewTransportError_RedactsURL(t *testing.T) {
	cause := &url.Error{
		Op:  "Post",
		URL: "https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?key=secret-key",
		Err: errors.New("dial tcp: connection refused"),
	}

	err := NewTransportError("Gemini", cause)

	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks API key: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "Post: dial tcp: connection refused") {
		t.Errorf("Error() = %q, want operation and cause", err.Error())
	}

	if err.Code != CodeHTTPError {
		t.Errorf("Code = %s, want %s", err.Code, CodeHTTPError)
	}
}

func TestAsProviderError(t *testing.T) {
	t.Run("provider error passes through", func(t *testing.T) {
		orig := NewStatusError("OpenRouter", 500, nil)
		wrapped := errors.Join(errors.New("context"), orig)

		if got := AsProviderError("Gemini", wrapped); got != orig {
			t.Errorf("AsProviderError() = %v, want original error", got)
		}
	})

	t.Run("plain error becomes transport error", func(t *testing.T) {
		got := AsProviderError("Gemini", errors.New("EOF"))

		if got.Code != CodeHTTPError {
			t.Errorf("Code = %s, want %s", got.Code, CodeHTTPError)
		}
		if got.Provider != "Gemini" {
			t.Errorf("Provider = %s, want Gemini", got.Provider)
		}
	})
}

func TestIsSuccess(t *testing.T) {
	cases := map[int]bool{
		199: false,
		200: true,
		201: true,
		299: true,
		300: false,
		404: false,
		502: false,
	}

	for status, want := range cases {
		if got := IsSuccess(status); got != want {
			t.Errorf("IsSuccess(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestFirstContent(t *testing.T) {
	tests := []struct {
		name     string
		messages []json.RawMessage
		want     string
	}{
		{name: "nil", messages: nil, want: ""},
		{name: "string content", messages: raw(`{"role":"user","content":"hi"}`, `{"content":"later"}`), want: "hi"},
		{name: "non-string content", messages: raw(`{"content":[{"type":"text","text":"hi"}]}`), want: ""},
		{name: "missing content", messages: raw(`{"role":"user"}`), want: ""},
		{name: "not an object", messages: raw(`"hi"`), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstContent(tt.messages); got != tt.want {
				t.Errorf("FirstContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizedBody(t *testing.T) {
	body, err := NormalizedBody("hello")
	if err != nil {
		t.Fatalf("NormalizedBody() error = %v", err)
	}

	want := `{"choices":[{"message":{"content":"hello"}}]}`
	if string(body) != want {
		t.Errorf("NormalizedBody() = %s, want %s", body, want)
	}
}

func raw(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}
