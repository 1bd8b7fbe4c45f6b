package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MysticyDev/OproepBot/internal/models"
)

// DefaultDispatchTimeout bounds a single webhook delivery attempt.
const DefaultDispatchTimeout = 10 * time.Second

// DeliveryError reports a failed webhook delivery: either a non-2xx response
// (StatusCode set) or a transport-level failure (Err set).
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("webhook returned status %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Dispatcher performs the outbound webhook call. Exactly one attempt per
// payload; retry policy is deliberately absent, failures surface to the
// caller.
type Dispatcher struct {
	client *http.Client
}

// NewDispatcher creates a dispatcher with the given per-call timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{client: &http.Client{Timeout: timeout}}
}

// Dispatch posts the payload to its endpoint. A 2xx response is success; any
// other response or transport failure returns a DeliveryError.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *models.NotificationPayload) error {
	body, err := json.Marshal(payload.Message)
	if err != nil {
		return fmt.Errorf("failed to encode webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payload.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{StatusCode: resp.StatusCode}
	}
	return nil
}
