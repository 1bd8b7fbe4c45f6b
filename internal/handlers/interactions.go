package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MysticyDev/OproepBot/internal/models"
	"github.com/MysticyDev/OproepBot/internal/pipeline"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InteractionsHandler translates relay trigger events into pipeline
// invocations and pipeline acks into HTTP responses.
type InteractionsHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(p *pipeline.Pipeline, logger *zap.Logger) *InteractionsHandler {
	return &InteractionsHandler{pipeline: p, logger: logger}
}

// RegisterRoutes registers the interaction routes.
func (h *InteractionsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/interactions/menu", h.PostMenu).Methods("POST")
	r.HandleFunc("/interactions/select", h.PostSelect).Methods("POST")
	r.HandleFunc("/interactions/submit", h.PostSubmit).Methods("POST")
}

// PostMenu handles a menu request event.
func (h *InteractionsHandler) PostMenu(w http.ResponseWriter, r *http.Request) {
	var ev models.MenuRequest
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if ev.ChannelID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "channel_id is required")
		return
	}

	menu, ack := h.pipeline.HandleMenuRequest(r.Context(), ev)
	respondJSON(w, statusCode(ack), map[string]any{
		"ack":  ack,
		"menu": menu,
	})
}

// PostSelect handles an option selection event.
func (h *InteractionsHandler) PostSelect(w http.ResponseWriter, r *http.Request) {
	var ev models.SelectionEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if ev.UserID == "" || ev.OptionKey == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "user_id and option_key are required")
		return
	}

	form, ack := h.pipeline.HandleSelection(r.Context(), ev)
	body := map[string]any{"ack": ack}
	if form != nil {
		body["form"] = form
	}
	respondJSON(w, statusCode(ack), body)
}

// PostSubmit handles a form submit event.
func (h *InteractionsHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	var ev models.FormSubmitEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if ev.UserID == "" || ev.OptionKey == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "user_id and option_key are required")
		return
	}

	ack := h.pipeline.HandleFormSubmit(r.Context(), ev)
	respondJSON(w, statusCode(ack), map[string]any{"ack": ack})
}

// statusCode maps a terminal ack to an HTTP status. The body always carries
// the full ack; the status code is advisory for the relay.
func statusCode(ack models.Ack) int {
	switch ack.Status {
	case models.StatusUnauthorized:
		return http.StatusForbidden
	case models.StatusInvalid:
		return http.StatusUnprocessableEntity
	case models.StatusLimited:
		return http.StatusTooManyRequests
	case models.StatusConfiguration:
		return http.StatusInternalServerError
	case models.StatusDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
