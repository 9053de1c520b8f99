package command

// root.go defines the root command for ttsbridgeCLI.
// set up the global flags here.

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ttsbridge/internal/config"
)

var (
	bridgeURL string        // HTTP bridge base URL
	ipcURL    string        // host IPC base URL
	timeout   time.Duration // per-request timeout for host commands
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ttsbridgeCLI",
	Short: "ttsbridgeCLI - drive a running TTS bridge from the terminal",
	Long: `ttsbridgeCLI talks to a running bridge process. It can:
- Send raw messages and deck spawn requests to Tabletop Simulator
- Check whether both TTS ports are reachable
- Read and write the shared value of the HTTP bridge
- Follow messages coming back from TTS

Use "ttsbridgeCLI command -h" to see the flags of a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultBridge, defaultIPC := defaultURLs()

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&bridgeURL, "bridge", defaultBridge, "HTTP bridge URL")
	rootCmd.PersistentFlags().StringVar(&ipcURL, "ipc", defaultIPC, "host IPC URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for host commands")
}

// defaultURLs reads the same environment (.env included) as the bridge so
// both sides agree on ports without flags.
func defaultURLs() (string, string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return "http://127.0.0.1:8010", "http://127.0.0.1:8011"
	}
	return "http://" + cfg.Addr(cfg.HTTPPort), "http://" + cfg.Addr(cfg.IPCPort)
}
