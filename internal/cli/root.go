package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	defaults, envErr := DefaultConfig()
	if envErr != nil {
		defaults = &Config{ServerURL: "http://localhost:3000", Output: "text"}
	}
	cfg = defaults

	rootCmd := &cobra.Command{
		Use:   "kbot",
		Short: "CLI tool for the kingdom bot webhook",
		Long: `kbot talks to a running kingdom bot webhook.

It can send messages as any sender, optionally from a group, and check
the server health.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			client = NewClient(cfg.ServerURL, cfg.Timeout)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: KBOT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout (env: KBOT_TIMEOUT)")

	// Add subcommands
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		NewOutput(cfg.Output, cmd.ErrOrStderr()).PrintError(err)
		os.Exit(1)
	}
}
