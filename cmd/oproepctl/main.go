package main

import (
	"fmt"
	"os"

	"github.com/MysticyDev/OproepBot/cmd/oproepctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "oproepctl",
		Short: "Operator tool for OproepBot",
		Long:  "CLI tool for checking call-up configuration and testing webhook endpoints",
	}

	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewOptionsCmd())
	rootCmd.AddCommand(commands.NewWebhookCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
