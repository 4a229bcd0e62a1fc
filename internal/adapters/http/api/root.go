package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// RootHandler answers the bare greeting on /.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, messageResponse{Message: msgGreeting})
}
