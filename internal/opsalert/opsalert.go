// Package opsalert publishes operator-facing incident reports. Configuration
// defects (an option without a webhook endpoint) are setup errors, not user
// errors, so in addition to the user-visible ack they are pushed onto a
// durable queue drained by ops tooling.
package opsalert

import (
	"context"
	"time"
)

// Alert kinds.
const (
	KindMissingEndpoint = "missing_webhook_endpoint"
)

// Alert is one operator-facing incident report.
type Alert struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	OptionKey string    `json:"option_key,omitempty"`
	Detail    string    `json:"detail"`
	At        time.Time `json:"at"`
}

// Publisher delivers alerts to operators. Publishing is best-effort: a failed
// publish is logged by the caller and never blocks the user-facing pipeline.
type Publisher interface {
	Publish(ctx context.Context, alert Alert) error
	Close() error
}

// Noop discards alerts. Used when no broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Alert) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }
