// Command bot runs the request relay bot.
//
// Users send "#Request" messages to the bot. Each request is acknowledged with
// the current ETA and forwarded to the admin chat with buttons that mark it
// done or rejected.
//
// Configuration comes from the environment or a .env file in the working
// directory:
//
//   - BOT_TOKEN: Telegram bot token (required)
//   - BOT_OWNER_ID: user allowed to run owner commands and press buttons
//   - ADMIN_CHAT_ID: chat that receives new requests
//   - DEFAULT_DEADLINE_HOURS: initial SLA in hours (default 12)
//   - METRICS_ADDR: listen address for /metrics, disabled when empty
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "bot",
		Short:         "Relay #Request messages to an admin chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start long polling (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), envFile)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "request-relay-bot %s (%s)\n", version, commit)
			},
		},
	)

	return rootCmd
}
