package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ttsbridge/cmd/cli/command/client"
	"ttsbridge/internal/host"
	"ttsbridge/internal/microservices/tcp"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func ipcClient() *client.IPCClient {
	return client.NewIPCClient(ipcURL, timeout)
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one raw message to Tabletop Simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status string
		err := ipcClient().InvokeInto(host.CmdSendToTTS, map[string]string{"message": args[0]}, &status)
		if err != nil {
			return err
		}
		green.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}

var spawnCmd = &cobra.Command{
	Use:   "spawn [card...]",
	Short: "Ask Tabletop Simulator to spawn a deck",
	Long:  `Ask TTS to spawn a deck. Cards are card codes separated by spaces, e.g. "01001 *01002".`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck := strings.Join(args, " ")
		var status string
		if err := ipcClient().InvokeInto(host.CmdSpawnDeck, map[string]string{"deck": deck}, &status); err != nil {
			return err
		}
		green.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that both TTS ports are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var report tcp.ConnectionReport
		if err := ipcClient().InvokeInto(host.CmdCheckTTSConnections, nil, &report); err != nil {
			return err
		}
		printPort(cmd.OutOrStdout(), "send", report.SendOK, report.SendPort)
		printPort(cmd.OutOrStdout(), "receive", report.ReceiveOK, report.ReceivePort)
		if !report.Connected() {
			return fmt.Errorf("TTS is not fully connected")
		}
		return nil
	},
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start another inbound TTS listener on the bridge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status string
		if err := ipcClient().InvokeInto(host.CmdStartTTSListener, nil, &status); err != nil {
			return err
		}
		green.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Report whether the bridge runs in development mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var dev bool
		if err := ipcClient().InvokeInto(host.CmdIsDevMode, nil, &dev); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dev)
		return nil
	},
}

func printPort(w io.Writer, name string, ok bool, message string) {
	if ok {
		green.Fprintf(w, "%-8s %s\n", name, message)
		return
	}
	red.Fprintf(w, "%-8s %s\n", name, message)
}

func init() {
	rootCmd.AddCommand(sendCmd, spawnCmd, checkCmd, listenCmd, devCmd)
}
