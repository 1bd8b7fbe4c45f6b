// Package notify formats and delivers call-up notifications to webhook
// endpoints.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/models"
)

// DefaultEmbedColor is used whenever the configured color is absent or not a
// parseable hex value.
const DefaultEmbedColor = 0x5865F2

// MissingEndpointError reports an option key that has no configured webhook
// endpoint. It is a configuration-integrity defect, not a user error, and is
// raised before any network activity.
type MissingEndpointError struct {
	OptionKey string
}

func (e *MissingEndpointError) Error() string {
	return fmt.Sprintf("no webhook endpoint configured for option %q", e.OptionKey)
}

// Formatter turns a validated submission into a notification payload. It is
// pure: same submission, config and timestamp always produce the same payload.
type Formatter struct {
	cfg *config.CallupConfig
}

// NewFormatter creates a formatter bound to the loaded configuration.
func NewFormatter(cfg *config.CallupConfig) *Formatter {
	return &Formatter{cfg: cfg}
}

// Format builds the outbound payload for a submission. The timestamp of the
// embed is now, supplied by the caller.
func (f *Formatter) Format(sub *models.Submission, now time.Time) (*models.NotificationPayload, error) {
	endpoint := f.cfg.Webhooks[sub.OptionKey]
	if endpoint == "" {
		return nil, &MissingEndpointError{OptionKey: sub.OptionKey}
	}

	label := sub.OptionKey
	if opt, ok := f.cfg.Option(sub.OptionKey); ok {
		label = opt.Label
	}

	embed := models.Embed{
		Title: "Nieuwe Oproep: " + label,
		Description: fmt.Sprintf("**Van:**\n<@%s>\n\n**Postcode / Locatie:**\n%s\n\n**Situatie:**\n%s",
			sub.UserID, sub.Location, sub.Purpose),
		Color:     ParseColor(f.cfg.EmbedColor),
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    models.EmbedFooter{Text: "Gebruiker ID: " + sub.UserID},
	}

	msg := models.WebhookMessage{
		Content:         RoleMentions(f.cfg.NotifyRoleIDs[sub.OptionKey]),
		Username:        f.cfg.BotName,
		AvatarURL:       f.cfg.BotAvatarURL,
		Embeds:          []models.Embed{embed},
		AllowedMentions: models.AllowedMentions{Parse: []string{"roles"}},
	}

	return &models.NotificationPayload{Endpoint: endpoint, Message: msg}, nil
}

// RoleMentions renders role ids as a space-joined mention string. Empty input
// yields an empty string.
func RoleMentions(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return ""
	}
	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = "<@&" + id + ">"
	}
	return strings.Join(mentions, " ")
}

// ParseColor parses a "#rrggbb" hex color into its integer value. Malformed
// or out-of-range input falls back to DefaultEmbedColor rather than erroring.
func ParseColor(hex string) int {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if trimmed == "" || len(trimmed) > 6 {
		return DefaultEmbedColor
	}
	value, err := strconv.ParseInt(trimmed, 16, 32)
	if err != nil || value < 0 {
		return DefaultEmbedColor
	}
	return int(value)
}
