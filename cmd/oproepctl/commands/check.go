package commands

import (
	"fmt"
	"net/url"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/notify"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the call-up configuration",
		Long:  "Validate the call-up configuration file and report operator-fixable defects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCallup(configPath)
			if err != nil {
				return err
			}

			fmt.Printf("Loaded %d option(s), cooldown %d seconds\n", len(cfg.Options), cfg.CooldownSeconds)

			problems := cfg.Warnings()
			for key, endpoint := range cfg.Webhooks {
				if endpoint == "" {
					continue
				}
				if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
					problems = append(problems, fmt.Sprintf("webhook for %q is not a valid URL: %s", key, endpoint))
				}
			}
			if notify.ParseColor(cfg.EmbedColor) == notify.DefaultEmbedColor && cfg.EmbedColor != "#5865F2" {
				fmt.Printf("Note: embed_color %q is not parseable, the default will be used\n", cfg.EmbedColor)
			}

			if len(problems) == 0 {
				fmt.Println("✓ Configuration OK")
				return nil
			}
			for _, p := range problems {
				fmt.Printf("✗ %s\n", p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the call-up config file")
	return cmd
}
