// Package pipeline drives one inbound trigger event (menu request, option
// selection, form submit) to exactly one terminal user-visible
// acknowledgment. The pipeline holds no state between events: the binding of
// a selection to the later form submit is the option key carried in the
// trigger itself.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MysticyDev/OproepBot/internal/auth"
	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/logger"
	"github.com/MysticyDev/OproepBot/internal/models"
	"github.com/MysticyDev/OproepBot/internal/notify"
	"github.com/MysticyDev/OproepBot/internal/opsalert"
	"github.com/MysticyDev/OproepBot/internal/ratelimit"
	"github.com/MysticyDev/OproepBot/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-visible acknowledgment messages, kept from the original deployment.
const (
	msgMenuPosted    = "Eenheid oproep is succesvol geplaatst!"
	msgUnauthorized  = "Je hebt geen toestemming om je aan te melden voor eenheid."
	msgUnknownOption = "Onbekende optie geselecteerd."
	msgDispatched    = "Je oproep voor deze eenheid is succesvol ingediend!"
	msgNotConfigured = "Fout: Webhook niet geconfigureerd voor deze optie."
	msgDeliveryError = "Er is een fout opgetreden bij het versturen van je oproep."
)

// Pipeline is the submission pipeline orchestrator.
type Pipeline struct {
	cfg        *config.CallupConfig
	store      ratelimit.Store
	formatter  *notify.Formatter
	dispatcher *notify.Dispatcher
	alerts     opsalert.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the pipeline's time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline over the loaded configuration and its collaborators.
func New(cfg *config.CallupConfig, store ratelimit.Store, dispatcher *notify.Dispatcher, alerts opsalert.Publisher, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		store:      store,
		formatter:  notify.NewFormatter(cfg),
		dispatcher: dispatcher,
		alerts:     alerts,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleMenuRequest builds the call-up menu. The menu is presented
// unconditionally; authorization applies at selection time.
func (p *Pipeline) HandleMenuRequest(_ context.Context, ev models.MenuRequest) (models.Menu, models.Ack) {
	menu := models.Menu{
		Title:       p.cfg.MenuTitle,
		Description: p.cfg.MenuDescription,
		Color:       notify.ParseColor(p.cfg.EmbedColor),
		Placeholder: p.cfg.DropdownPlaceholder,
		Options:     p.cfg.Options,
		ForRoleIDs:  p.cfg.AuthorizedRoleIDs,
	}

	p.logger.Info("menu_posted",
		zap.String("channel_id", logger.SanitizeUserID(ev.ChannelID)),
		zap.Int("option_count", len(menu.Options)),
	)

	return menu, models.Ack{Status: models.StatusMenuPosted, Message: msgMenuPosted}
}

// HandleSelection runs the authorization gate and, when allowed, returns the
// structured form bound to the selected option.
func (p *Pipeline) HandleSelection(_ context.Context, ev models.SelectionEvent) (*models.Form, models.Ack) {
	if !auth.Allowed(ev.UserRoles, p.cfg.AuthorizedRoleIDs) {
		p.logger.Info("selection_rejected_unauthorized",
			zap.String("user_id", logger.SanitizeUserID(ev.UserID)),
			zap.String("option_key", logger.SanitizeUserID(ev.OptionKey)),
		)
		return nil, models.Ack{Status: models.StatusUnauthorized, Message: msgUnauthorized}
	}

	opt, ok := p.cfg.Option(ev.OptionKey)
	if !ok {
		// Selection values are drawn from the same configuration that built
		// the menu, so this only happens after a config change mid-flight.
		p.logger.Warn("selection_for_unknown_option",
			zap.String("user_id", logger.SanitizeUserID(ev.UserID)),
			zap.String("option_key", logger.SanitizeUserID(ev.OptionKey)),
		)
		return nil, models.Ack{Status: models.StatusInvalid, Message: msgUnknownOption}
	}

	form := &models.Form{
		OptionKey: opt.Key,
		Title:     "Oproep: " + opt.Label,
		Fields: []models.FormField{
			{
				Name:        models.FieldPurpose,
				Label:       p.cfg.PurposeLabel,
				Style:       models.FieldStyleParagraph,
				Placeholder: p.cfg.PurposePlaceholder,
				Required:    true,
				MaxLength:   validation.MaxPurposeLength,
			},
			{
				Name:        models.FieldLocation,
				Label:       p.cfg.LocationLabel,
				Style:       models.FieldStyleShort,
				Placeholder: p.cfg.LocationPlaceholder,
				Required:    true,
				MaxLength:   validation.MaxLocationLength,
			},
		},
	}

	return form, models.Ack{Status: models.StatusFormPresented, Message: "Formulier geopend: " + opt.Label}
}

// HandleFormSubmit validates the form, checks the cooldown, formats the
// notification and dispatches it. Every path ends in exactly one ack.
func (p *Pipeline) HandleFormSubmit(ctx context.Context, ev models.FormSubmitEvent) models.Ack {
	sub, err := validation.ValidateSubmission(ev.UserID, ev.OptionKey, ev.Fields)
	if err != nil {
		var fieldErr *validation.FieldError
		message := "Ongeldige invoer."
		if errors.As(err, &fieldErr) {
			message = fmt.Sprintf("Ongeldige invoer in veld %q: %s.", fieldErr.Field, fieldErr.Reason)
		}
		p.logger.Debug("submission_rejected_invalid",
			zap.String("user_id", logger.SanitizeUserID(ev.UserID)),
			zap.String("option_key", logger.SanitizeUserID(ev.OptionKey)),
			zap.String("reason", logger.SanitizeError(err)),
		)
		return models.Ack{Status: models.StatusInvalid, Message: message}
	}

	outcome, err := p.store.CheckAndReserve(ctx, sub.UserID, p.now(), p.cfg.Cooldown())
	if err != nil {
		// Fail open: a store outage must not lock out legitimate call-ups.
		// The trade-off is that rate limiting is disabled for the duration
		// of the outage.
		p.logger.Error("ratelimit_store_unavailable_failing_open",
			zap.String("user_id", logger.SanitizeUserID(sub.UserID)),
			zap.Error(err),
		)
		outcome = ratelimit.Outcome{Allowed: true}
	}

	if !outcome.Allowed {
		retryAfter := outcome.RetryAfterSeconds()
		p.logger.Info("submission_rejected_limited",
			zap.String("user_id", logger.SanitizeUserID(sub.UserID)),
			zap.Int("retry_after_seconds", retryAfter),
		)
		return models.Ack{
			Status:            models.StatusLimited,
			Message:           fmt.Sprintf("Je hebt recent een oproep ingediend. Wacht nog %d seconden voordat je opnieuw indient.", retryAfter),
			RetryAfterSeconds: retryAfter,
		}
	}

	payload, err := p.formatter.Format(sub, p.now())
	if err != nil {
		var missing *notify.MissingEndpointError
		if errors.As(err, &missing) {
			p.reportMissingEndpoint(ctx, missing.OptionKey)
		} else {
			p.logger.Error("notification_format_failed", zap.Error(err))
		}
		return models.Ack{Status: models.StatusConfiguration, Message: msgNotConfigured}
	}

	if err := p.dispatcher.Dispatch(ctx, payload); err != nil {
		p.logger.Warn("webhook_delivery_failed",
			zap.String("user_id", logger.SanitizeUserID(sub.UserID)),
			zap.String("option_key", sub.OptionKey),
			zap.Error(err),
		)
		return models.Ack{Status: models.StatusDelivery, Message: msgDeliveryError}
	}

	p.logger.Info("callup_dispatched",
		zap.String("user_id", logger.SanitizeUserID(sub.UserID)),
		zap.String("option_key", sub.OptionKey),
	)
	return models.Ack{Status: models.StatusDispatched, Message: msgDispatched}
}

// reportMissingEndpoint surfaces a configuration defect to operators, not
// just the submitting user.
func (p *Pipeline) reportMissingEndpoint(ctx context.Context, optionKey string) {
	p.logger.Error("webhook_endpoint_not_configured",
		zap.String("option_key", optionKey),
	)

	alert := opsalert.Alert{
		ID:        uuid.NewString(),
		Kind:      opsalert.KindMissingEndpoint,
		OptionKey: optionKey,
		Detail:    fmt.Sprintf("option %q is in the menu but has no webhook endpoint", optionKey),
		At:        p.now(),
	}
	if err := p.alerts.Publish(ctx, alert); err != nil {
		p.logger.Warn("failed_to_publish_ops_alert", zap.Error(err))
	}
}
