package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ttsbridge/cmd/cli/command/client"
)

var saveFromStdin bool

var saveCmd = &cobra.Command{
	Use:   "save [text...]",
	Short: "Replace the shared value on the HTTP bridge",
	Long:  `Replace the shared value. Arguments are joined with spaces; use --stdin to send raw input instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if saveFromStdin {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		} else {
			if len(args) == 0 {
				return fmt.Errorf("nothing to save, pass text or --stdin")
			}
			text = strings.Join(args, " ")
		}

		if err := client.NewHTTPClient(bridgeURL).Save(text); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}
		green.Fprintf(cmd.OutOrStdout(), "saved %d bytes\n", len(text))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the shared value from the HTTP bridge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := client.NewHTTPClient(bridgeURL).Get()
		if err != nil {
			return fmt.Errorf("failed to get: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

func init() {
	saveCmd.Flags().BoolVar(&saveFromStdin, "stdin", false, "read the value from standard input")
	rootCmd.AddCommand(saveCmd, getCmd)
}
