package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadCallup(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
menu_title: "Oproep"
cooldown_seconds: 60
authorized_role_ids: ["staff"]
options:
  - key: medic
    label: "Medische eenheid"
  - key: backup
    label: "Backup eenheid"
webhooks:
  medic: "https://example.com/hook"
  backup: "https://example.com/hook2"
notify_role_ids:
  medic: ["111"]
`)

	cfg, err := LoadCallup(path)
	if err != nil {
		t.Fatalf("LoadCallup returned error: %v", err)
	}

	if cfg.MenuTitle != "Oproep" {
		t.Errorf("MenuTitle = %q, want %q", cfg.MenuTitle, "Oproep")
	}
	if cfg.Cooldown() != 60*time.Second {
		t.Errorf("Cooldown() = %v, want 60s", cfg.Cooldown())
	}
	if len(cfg.Options) != 2 {
		t.Fatalf("len(Options) = %d, want 2", len(cfg.Options))
	}
	if cfg.Options[0].Key != "medic" || cfg.Options[1].Key != "backup" {
		t.Errorf("options out of order: %+v", cfg.Options)
	}

	opt, ok := cfg.Option("medic")
	if !ok || opt.Label != "Medische eenheid" {
		t.Errorf("Option(medic) = %+v, %v", opt, ok)
	}
	if _, ok := cfg.Option("nope"); ok {
		t.Error("Option(nope) should not be found")
	}

	if warnings := cfg.Warnings(); len(warnings) != 0 {
		t.Errorf("Warnings() = %v, want none", warnings)
	}
}

func TestLoadCallup_Defaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
options:
  - key: medic
    label: "Medische eenheid"
webhooks:
  medic: "https://example.com/hook"
`)

	cfg, err := LoadCallup(path)
	if err != nil {
		t.Fatalf("LoadCallup returned error: %v", err)
	}

	if cfg.CooldownSeconds != DefaultCooldownSeconds {
		t.Errorf("CooldownSeconds = %d, want default %d", cfg.CooldownSeconds, DefaultCooldownSeconds)
	}
	if cfg.MenuTitle == "" || cfg.MenuDescription == "" || cfg.DropdownPlaceholder == "" {
		t.Error("display string defaults were not applied")
	}
	if cfg.EmbedColor != "#5865F2" {
		t.Errorf("EmbedColor = %q, want default", cfg.EmbedColor)
	}
	if cfg.PurposeLabel == "" || cfg.LocationLabel == "" {
		t.Error("form label defaults were not applied")
	}
}

func TestLoadCallup_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no options",
			content: `menu_title: "x"`,
			wantErr: "at least one menu option",
		},
		{
			name: "duplicate keys",
			content: `
options:
  - key: medic
    label: "A"
  - key: medic
    label: "B"
`,
			wantErr: "duplicate option key",
		},
		{
			name: "empty key",
			content: `
options:
  - key: ""
    label: "A"
`,
			wantErr: "empty key",
		},
		{
			name: "empty label",
			content: `
options:
  - key: medic
    label: ""
`,
			wantErr: "empty label",
		},
		{
			name:    "malformed yaml",
			content: "options: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tt.content)
			_, err := LoadCallup(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCallupConfig_Warnings(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
options:
  - key: medic
    label: "Medische eenheid"
  - key: backup
    label: "Backup eenheid"
webhooks:
  medic: "https://example.com/hook"
  ghost: "https://example.com/ghost"
notify_role_ids:
  phantom: ["1"]
`)

	cfg, err := LoadCallup(path)
	if err != nil {
		t.Fatalf("LoadCallup returned error: %v", err)
	}

	warnings := cfg.Warnings()
	if len(warnings) != 3 {
		t.Fatalf("len(Warnings()) = %d, want 3: %v", len(warnings), warnings)
	}

	joined := strings.Join(warnings, "\n")
	for _, want := range []string{`"backup" has no webhook`, `webhook entry "ghost"`, `notify_role_ids entry "phantom"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}
