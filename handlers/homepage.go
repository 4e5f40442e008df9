package handlers

import (
	_ "embed"
	"net/http"

	"github.com/upb/chat-edge/utils"
)

//go:embed static/index.html
var homepage []byte

// HandleHomepage serves the static chat page for every non-API path
func HandleHomepage(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteHTML(w, http.StatusOK, homepage)
}
