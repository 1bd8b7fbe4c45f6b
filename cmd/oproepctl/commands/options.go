package commands

import (
	"fmt"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/spf13/cobra"
)

// NewOptionsCmd creates the options command.
func NewOptionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the configured menu options",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCallup(configPath)
			if err != nil {
				return err
			}

			for _, opt := range cfg.Options {
				endpoint := "(no webhook)"
				if cfg.Webhooks[opt.Key] != "" {
					endpoint = cfg.Webhooks[opt.Key]
				}
				fmt.Printf("%-20s %-30s %s (notify roles: %d)\n",
					opt.Key, opt.Label, endpoint, len(cfg.NotifyRoleIDs[opt.Key]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the call-up config file")
	return cmd
}
