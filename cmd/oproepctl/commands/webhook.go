package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/MysticyDev/OproepBot/internal/config"
	"github.com/MysticyDev/OproepBot/internal/models"
	"github.com/MysticyDev/OproepBot/internal/notify"
	"github.com/spf13/cobra"
)

// NewWebhookCmd creates the webhook command group.
func NewWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Webhook endpoint operations",
	}
	cmd.AddCommand(newWebhookTestCmd())
	return cmd
}

// newWebhookTestCmd sends one test notification through the real formatter
// and dispatcher so operators can verify an endpoint before going live.
func newWebhookTestCmd() *cobra.Command {
	var configPath string
	var optionKey string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to an option's webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if optionKey == "" {
				return fmt.Errorf("--key is required")
			}

			cfg, err := config.LoadCallup(configPath)
			if err != nil {
				return err
			}
			if _, ok := cfg.Option(optionKey); !ok {
				return fmt.Errorf("option %q is not in the menu", optionKey)
			}

			sub := &models.Submission{
				UserID:    "0",
				OptionKey: optionKey,
				Purpose:   "Testoproep via oproepctl",
				Location:  "n.v.t.",
			}

			formatter := notify.NewFormatter(cfg)
			payload, err := formatter.Format(sub, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("Sending test notification to %s\n", payload.Endpoint)

			ctx, cancel := context.WithTimeout(context.Background(), notify.DefaultDispatchTimeout)
			defer cancel()

			dispatcher := notify.NewDispatcher(notify.DefaultDispatchTimeout)
			if err := dispatcher.Dispatch(ctx, payload); err != nil {
				return fmt.Errorf("delivery failed: %w", err)
			}

			fmt.Println("✓ Webhook accepted the test notification")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the call-up config file")
	cmd.Flags().StringVarP(&optionKey, "key", "k", "", "Option key to test")
	return cmd
}
