package gemini

import "testing"

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "candidate text",
			raw:  `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`,
			want: "hello",
		},
		{
			name: "output fallback",
			raw:  `{"output":[{"content":"from output"}]}`,
			want: "from output",
		},
		{
			name: "candidate wins over output",
			raw:  `{"candidates":[{"content":{"parts":[{"text":"first"}]}}],"output":[{"content":"second"}]}`,
			want: "first",
		},
		{
			name: "empty candidate text falls through",
			raw:  `{"candidates":[{"content":{"parts":[{"text":""}]}}],"output":[{"content":"second"}]}`,
			want: "second",
		},
		{
			name: "no parts",
			raw:  `{"candidates":[{"content":{}}]}`,
			want: "",
		},
		{
			name: "neither path",
			raw:  `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			want: "",
		},
		{
			name: "mismatched sibling part is ignored",
			raw:  `{"candidates":[{"content":{"parts":[{"text":"hello"},{"text":5}]}},"junk"]}`,
			want: "hello",
		},
		{
			name: "mismatched sibling output is ignored",
			raw:  `{"output":[{"content":"from output"},{"content":{"nested":true}}]}`,
			want: "from output",
		},
		{
			name: "non-string text falls through",
			raw:  `{"candidates":[{"content":{"parts":[{"text":5}]}}],"output":[{"content":"second"}]}`,
			want: "second",
		},
		{
			name: "null candidates",
			raw:  `{"candidates":null}`,
			want: "",
		},
		{
			name: "type mismatch",
			raw:  `{"candidates":"nope","output":[{"content":42}]}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractContent([]byte(tt.raw), DefaultExtractors); got != tt.want {
				t.Errorf("ExtractContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractContent_CustomOrder(t *testing.T) {
	raw := []byte(`{"candidates":[{"content":{"parts":[{"text":"first"}]}}],"output":[{"content":"second"}]}`)

	got := ExtractContent(raw, []Extractor{OutputContent, CandidateText})
	if got != "second" {
		t.Errorf("ExtractContent() = %q, want %q", got, "second")
	}

	if got := ExtractContent(raw, nil); got != "" {
		t.Errorf("ExtractContent() with no extractors = %q, want empty", got)
	}
}
