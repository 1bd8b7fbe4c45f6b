package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/models"
	"github.com/MysticyDev/OproepBot/internal/notify"
	"github.com/MysticyDev/OproepBot/internal/opsalert"
	"github.com/MysticyDev/OproepBot/internal/pipeline"
	"github.com/MysticyDev/OproepBot/internal/ratelimit"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// newTestRouter wires a real pipeline behind the interaction routes. The
// webhook endpoint always accepts.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(webhook.Close)

	cfg := &config.CallupConfig{
		MenuTitle:         "Eenheid Oproep",
		EmbedColor:        "#5865F2",
		CooldownSeconds:   120,
		AuthorizedRoleIDs: []string{"staff"},
		Options:           []models.Option{{Key: "medic", Label: "Medische eenheid"}},
		Webhooks:          map[string]string{"medic": webhook.URL},
		PurposeLabel:      "Waarvoor",
		LocationLabel:     "Waar",
	}

	p := pipeline.New(cfg, ratelimit.NewMemoryStore(), notify.NewDispatcher(5*time.Second), opsalert.Noop{}, zap.NewNop())

	r := mux.NewRouter()
	NewInteractionsHandler(p, zap.NewNop()).RegisterRoutes(r)
	return r
}

func doPost(t *testing.T, r *mux.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope pulls the ack out of the response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (models.Ack, map[string]json.RawMessage) {
	t.Helper()

	var envelope struct {
		Success bool                       `json:"success"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v (body: %s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("envelope.success = false, body: %s", rec.Body.String())
	}

	var ack models.Ack
	if err := json.Unmarshal(envelope.Data["ack"], &ack); err != nil {
		t.Fatalf("failed to decode ack: %v", err)
	}
	return ack, envelope.Data
}

func TestPostMenu(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	rec := doPost(t, r, "/interactions/menu", `{"channel_id":"chan-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	ack, data := decodeEnvelope(t, rec)
	if ack.Status != models.StatusMenuPosted {
		t.Errorf("ack.status = %q, want %q", ack.Status, models.StatusMenuPosted)
	}

	var menu models.Menu
	if err := json.Unmarshal(data["menu"], &menu); err != nil {
		t.Fatalf("failed to decode menu: %v", err)
	}
	if len(menu.Options) != 1 || menu.Options[0].Key != "medic" {
		t.Errorf("menu.options = %v, want the single medic option", menu.Options)
	}
}

func TestPostMenu_MissingChannel(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	rec := doPost(t, r, "/interactions/menu", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostSelect(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus models.Status
		wantForm   bool
	}{
		{
			name:       "authorized member gets the form",
			body:       `{"user_id":"42","user_roles":["staff"],"option_key":"medic"}`,
			wantCode:   http.StatusOK,
			wantStatus: models.StatusFormPresented,
			wantForm:   true,
		},
		{
			name:       "unauthorized member is refused",
			body:       `{"user_id":"42","user_roles":["visitor"],"option_key":"medic"}`,
			wantCode:   http.StatusForbidden,
			wantStatus: models.StatusUnauthorized,
		},
		{
			name:       "unknown option",
			body:       `{"user_id":"42","user_roles":["staff"],"option_key":"ghost"}`,
			wantCode:   http.StatusUnprocessableEntity,
			wantStatus: models.StatusInvalid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doPost(t, r, "/interactions/select", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			ack, data := decodeEnvelope(t, rec)
			if ack.Status != tt.wantStatus {
				t.Errorf("ack.status = %q, want %q", ack.Status, tt.wantStatus)
			}
			if _, hasForm := data["form"]; hasForm != tt.wantForm {
				t.Errorf("form present = %v, want %v", hasForm, tt.wantForm)
			}
		})
	}
}

func TestPostSubmit_DispatchAndLimit(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	body := `{"user_id":"42","option_key":"medic","fields":{"purpose":"need backup","location":"Sector 5"}}`

	rec := doPost(t, r, "/interactions/submit", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first submit: status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if ack, _ := decodeEnvelope(t, rec); ack.Status != models.StatusDispatched {
		t.Fatalf("first submit: ack.status = %q, want dispatched", ack.Status)
	}

	// Immediate resubmission from the same user hits the cooldown.
	rec = doPost(t, r, "/interactions/submit", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second submit: status = %d, want 429", rec.Code)
	}
	ack, _ := decodeEnvelope(t, rec)
	if ack.Status != models.StatusLimited {
		t.Errorf("second submit: ack.status = %q, want limited", ack.Status)
	}
	if ack.RetryAfterSeconds <= 0 || ack.RetryAfterSeconds > 120 {
		t.Errorf("retry_after_seconds = %d, want within (0, 120]", ack.RetryAfterSeconds)
	}
}

func TestPostSubmit_Invalid(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	body := `{"user_id":"42","option_key":"medic","fields":{"purpose":"","location":"Sector 5"}}`

	rec := doPost(t, r, "/interactions/submit", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body: %s)", rec.Code, rec.Body.String())
	}
	if ack, _ := decodeEnvelope(t, rec); ack.Status != models.StatusInvalid {
		t.Errorf("ack.status = %q, want invalid", ack.Status)
	}
}

func TestPostSubmit_BadRequests(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"user_id":`},
		{"missing user_id", `{"option_key":"medic","fields":{}}`},
		{"missing option_key", `{"user_id":"42","fields":{}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doPost(t, r, "/interactions/submit", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
