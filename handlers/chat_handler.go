package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/upb/chat-edge/internal/router"
	"github.com/upb/chat-edge/internal/shared"
	"github.com/upb/chat-edge/utils"
	"go.uber.org/zap"
)

// maxChatBodyBytes bounds the request body read from /api/chat
const maxChatBodyBytes = 1 << 20

var errNullBody = errors.New("request body must not be null")

// ChatRouter produces the terminal reply for a chat request
type ChatRouter interface {
	Route(ctx context.Context, req *router.ChatRequest) router.Reply
}

// ChatHandler handles /api/chat
type ChatHandler struct {
	router ChatRouter
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(r ChatRouter, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		router: r,
		logger: logger,
	}
}

// HandleChat handles POST /api/chat. Any other method is rejected with 405.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = utils.WriteMethodNotAllowed(w)
		return
	}

	req, err := decodeChatRequest(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		h.logger.Error("catch error",
			zap.String("request_id", shared.RequestID(r.Context())),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, err.Error())
		return
	}

	reply := h.router.Route(r.Context(), req)

	if reply.AllowAnyOrigin {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	if err := utils.WriteRawJSON(w, reply.Status, reply.Body); err != nil {
		h.logger.Warn("failed to write chat response",
			zap.String("request_id", shared.RequestID(r.Context())),
			zap.Error(err))
	}
}

// decodeChatRequest rejects bodies that are not JSON. Any other JSON value
// that is not an object carries no fields and yields an empty request, and a
// field of the wrong type is treated as absent.
func decodeChatRequest(body io.Reader) (*router.ChatRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var doc json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errNullBody
	}

	req := &router.ChatRequest{}
	if trimmed[0] != '{' {
		return req, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	req.Chatbot = stringField(fields, "chatbot")
	req.Model = stringField(fields, "model")
	req.ClientChosen = stringField(fields, "clientChosen")

	var messages []json.RawMessage
	if err := json.Unmarshal(fields["messages"], &messages); err == nil {
		req.Messages = messages
	}
	return req, nil
}

func stringField(fields map[string]json.RawMessage, name string) string {
	var v string
	if err := json.Unmarshal(fields[name], &v); err != nil {
		return ""
	}
	return v
}
