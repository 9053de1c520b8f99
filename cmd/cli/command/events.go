package command

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ttsbridge/cmd/cli/command/client"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow host events (messages coming back from TTS)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := client.EventsURL(ipcURL)
		if err != nil {
			return fmt.Errorf("invalid --ipc: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Listening on %s (Ctrl+C to stop)\n", url)
		return client.Subscribe(ctx, url, func(ev client.Event) {
			client.PrintEvent(out, ev)
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
