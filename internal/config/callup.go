package config

import (
	"fmt"
	"os"
	"time"

	"github.com/MysticyDev/OproepBot/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultCooldownSeconds is the cooldown window applied between accepted
// submissions from the same user.
const DefaultCooldownSeconds = 120

// Display string defaults, kept from the original deployment.
const (
	defaultMenuTitle           = "Eenheid Oproep"
	defaultMenuDescription     = "Selecteer een optie hieronder om je aan te melden voor een eenheid"
	defaultDropdownPlaceholder = "Kies een eenheid"
	defaultEmbedColor          = "#5865F2"
	defaultBotName             = "OproepBot"
	defaultPurposeLabel        = "Waarvoor je ze nodig hebt"
	defaultPurposePlaceholder  = "Beschrijf waarvoor je deze eenheid nodig hebt..."
	defaultLocationLabel       = "Waar"
	defaultLocationPlaceholder = "Geef aan waar je deze eenheid nodig hebt..."
)

// CallupConfig is the call-up menu configuration. It is loaded once at startup
// and never mutated afterwards; every component shares the same value.
type CallupConfig struct {
	MenuTitle           string              `yaml:"menu_title"`
	MenuDescription     string              `yaml:"menu_description"`
	DropdownPlaceholder string              `yaml:"dropdown_placeholder"`
	EmbedColor          string              `yaml:"embed_color"`
	BotName             string              `yaml:"bot_name"`
	BotAvatarURL        string              `yaml:"bot_avatar_url"`
	CooldownSeconds     int                 `yaml:"cooldown_seconds"`
	AuthorizedRoleIDs   []string            `yaml:"authorized_role_ids"`
	Options             []models.Option     `yaml:"options"`
	Webhooks            map[string]string   `yaml:"webhooks"`
	NotifyRoleIDs       map[string][]string `yaml:"notify_role_ids"`

	PurposeLabel        string `yaml:"purpose_label"`
	PurposePlaceholder  string `yaml:"purpose_placeholder"`
	LocationLabel       string `yaml:"location_label"`
	LocationPlaceholder string `yaml:"location_placeholder"`
}

// LoadCallup reads and validates the call-up configuration file.
func LoadCallup(path string) (*CallupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read call-up config %s: %w", path, err)
	}

	var cfg CallupConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse call-up config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid call-up config %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *CallupConfig) applyDefaults() {
	if c.MenuTitle == "" {
		c.MenuTitle = defaultMenuTitle
	}
	if c.MenuDescription == "" {
		c.MenuDescription = defaultMenuDescription
	}
	if c.DropdownPlaceholder == "" {
		c.DropdownPlaceholder = defaultDropdownPlaceholder
	}
	if c.EmbedColor == "" {
		c.EmbedColor = defaultEmbedColor
	}
	if c.BotName == "" {
		c.BotName = defaultBotName
	}
	if c.CooldownSeconds <= 0 {
		c.CooldownSeconds = DefaultCooldownSeconds
	}
	if c.PurposeLabel == "" {
		c.PurposeLabel = defaultPurposeLabel
	}
	if c.PurposePlaceholder == "" {
		c.PurposePlaceholder = defaultPurposePlaceholder
	}
	if c.LocationLabel == "" {
		c.LocationLabel = defaultLocationLabel
	}
	if c.LocationPlaceholder == "" {
		c.LocationPlaceholder = defaultLocationPlaceholder
	}
}

func (c *CallupConfig) validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("at least one menu option is required")
	}
	seen := make(map[string]struct{}, len(c.Options))
	for i, opt := range c.Options {
		if opt.Key == "" {
			return fmt.Errorf("option %d has an empty key", i)
		}
		if opt.Label == "" {
			return fmt.Errorf("option %q has an empty label", opt.Key)
		}
		if _, dup := seen[opt.Key]; dup {
			return fmt.Errorf("duplicate option key %q", opt.Key)
		}
		seen[opt.Key] = struct{}{}
	}
	return nil
}

// Warnings reports operator-fixable defects that do not prevent startup.
// A missing webhook entry only surfaces at submit time as a configuration
// error, so it is reported here too.
func (c *CallupConfig) Warnings() []string {
	var warnings []string
	for _, opt := range c.Options {
		if c.Webhooks[opt.Key] == "" {
			warnings = append(warnings, fmt.Sprintf("option %q has no webhook endpoint configured", opt.Key))
		}
	}
	for key := range c.Webhooks {
		if _, ok := c.option(key); !ok {
			warnings = append(warnings, fmt.Sprintf("webhook entry %q does not match any menu option", key))
		}
	}
	for key := range c.NotifyRoleIDs {
		if _, ok := c.option(key); !ok {
			warnings = append(warnings, fmt.Sprintf("notify_role_ids entry %q does not match any menu option", key))
		}
	}
	return warnings
}

// Option returns the menu option for key.
func (c *CallupConfig) Option(key string) (models.Option, bool) {
	return c.option(key)
}

func (c *CallupConfig) option(key string) (models.Option, bool) {
	for _, opt := range c.Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return models.Option{}, false
}

// Cooldown returns the cooldown window as a duration.
func (c *CallupConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}
