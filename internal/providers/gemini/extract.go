package gemini

import "encoding/json"

// Extractor pulls the reply text out of a raw generateContent body. It
// reports false when its path is absent or empty.
type Extractor func(raw []byte) (string, bool)

// DefaultExtractors are tried in order; the first non-empty result wins.
var DefaultExtractors = []Extractor{CandidateText, OutputContent}

// ExtractContent runs extractors in order and returns the first non-empty
// text, or "" when none match.
func ExtractContent(raw []byte, extractors []Extractor) string {
	for _, extract := range extractors {
		if text, ok := extract(raw); ok {
			return text
		}
	}
	return ""
}

// CandidateText reads candidates[0].content.parts[0].text
func CandidateText(raw []byte) (string, bool) {
	return textAt(raw, field("candidates"), index0, field("content"), field("parts"), index0, field("text"))
}

// OutputContent reads output[0].content
func OutputContent(raw []byte) (string, bool) {
	return textAt(raw, field("output"), index0, field("content"))
}

// step descends one level into a JSON document. It reports false when the
// level is missing or has the wrong shape.
type step func(json.RawMessage) (json.RawMessage, bool)

func field(name string) step {
	return func(raw json.RawMessage) (json.RawMessage, bool) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		v, ok := obj[name]
		return v, ok
	}
}

// index0 decodes only the array shell, so later elements of any shape are
// ignored.
func index0(raw json.RawMessage) (json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// textAt follows path and returns the string found there. Non-string leaves
// count as absent.
func textAt(raw []byte, path ...step) (string, bool) {
	cur := json.RawMessage(raw)
	for _, next := range path {
		var ok bool
		if cur, ok = next(cur); !ok {
			return "", false
		}
	}
	var text string
	if err := json.Unmarshal(cur, &text); err != nil {
		return "", false
	}
	return text, text != ""
}
