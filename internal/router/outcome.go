package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/upb/chat-edge/internal/providers"
)

const (
	msgModelError  = "Model error"
	msgRequestErr  = "Request error"
	msgAllFailed   = "No response received or limit request."
	detailMaxRunes = 300
)

// Failure kinds, also used as attempt metric outcomes
const (
	FailureKeyMissing = "key_missing"
	FailureTransport  = "transport"
	FailureStatus     = "status"
	FailureDecode     = "decode"
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeSkip
	outcomeFatal
)

// outcome is the result of one candidate attempt
type outcome struct {
	kind    outcomeKind
	reply   Reply
	failure *Failure
}

func success(reply Reply) outcome {
	return outcome{kind: outcomeSuccess, reply: reply}
}

func skip(f *Failure) outcome {
	return outcome{kind: outcomeSkip, failure: f}
}

func fatal(f *Failure) outcome {
	return outcome{kind: outcomeFatal, reply: f.Reply(), failure: f}
}

// Failure describes why one candidate did not produce a reply
type Failure struct {
	Kind       string
	Candidate  ProviderName
	Provider   string // upstream display name, empty for key_missing
	StatusCode int
	Body       []byte
	Message    string
}

// Reply renders the failure as the response for a pinned request
func (f *Failure) Reply() Reply {
	switch f.Kind {
	case FailureKeyMissing:
		return errorReply(http.StatusBadGateway, errorEnvelope{Error: f.Message})
	case FailureStatus:
		return errorReply(f.StatusCode, errorEnvelope{
			Error:  msgModelError,
			Detail: statusDetail{Status: f.StatusCode, Body: string(f.Body)},
		})
	case FailureDecode:
		return errorReply(http.StatusBadGateway, errorEnvelope{
			Error:  fmt.Sprintf("Invalid response from %s", f.Provider),
			Detail: decodeDetail{Error: f.Message, Detail: truncate(string(f.Body), detailMaxRunes)},
		})
	default:
		return errorReply(http.StatusBadGateway, errorEnvelope{
			Error:  msgRequestErr,
			Detail: transportDetail{Error: f.Message},
		})
	}
}

func keyMissing(candidate ProviderName) *Failure {
	return &Failure{
		Kind:      FailureKeyMissing,
		Candidate: candidate,
		Message:   fmt.Sprintf("API key missing for %s", candidate),
	}
}

// classify maps an adapter error onto a Failure
func classify(candidate ProviderName, displayName string, err error) *Failure {
	provErr := providers.AsProviderError(displayName, err)
	f := &Failure{
		Candidate:  candidate,
		Provider:   provErr.Provider,
		StatusCode: provErr.StatusCode,
		Body:       provErr.Body,
		Message:    provErr.Error(),
	}
	switch provErr.Code {
	case providers.CodeUpstreamStatus:
		f.Kind = FailureStatus
	case providers.CodeUnmarshalError:
		f.Kind = FailureDecode
	default:
		f.Kind = FailureTransport
	}
	return f
}

type errorEnvelope struct {
	Error  string      `json:"error"`
	Detail interface{} `json:"detail,omitempty"`
}

type statusDetail struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type decodeDetail struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type transportDetail struct {
	Error string `json:"error"`
}

func errorReply(status int, env errorEnvelope) Reply {
	body, err := json.Marshal(env)
	if err != nil {
		// Only strings and ints are encoded; this cannot fail.
		body = []byte(`{"error":"Internal server error"}`)
		status = http.StatusInternalServerError
	}
	return Reply{Status: status, Body: body}
}

func truncate(s string, n int) string {
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}
