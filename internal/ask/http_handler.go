package ask

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rpattn/grosscalc/internal/api"
)

// Handler exposes POST /ask.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Ask validates the question and relays it upstream. The upstream answer is
// returned verbatim inside the response envelope.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		api.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.client.Ask(r.Context(), req.Question, req.Context)
	if err != nil {
		api.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	api.WriteSuccess(w, answer)
}
