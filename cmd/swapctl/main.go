// swapctl inspects and configures the systemd-swap daemon: swap mode and
// backend tunables, live memory/swap telemetry, and swap file fleet planning.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/logging"
	"github.com/biglinux/swapctl/internal/swapconf"
)

// Version is set at build time via ldflags.
var Version = "dev"

const envFile = "/etc/default/swapctl"

var (
	logLevelFlag   string
	logFormatFlag  string
	configPathFlag string
)

var rootCmd = &cobra.Command{
	Use:     "swapctl",
	Short:   "Configure and monitor systemd-swap",
	Version: Version,
	Long: `swapctl manages the systemd-swap daemon: pick a swap strategy (zswap,
zram, dynamic swap files), tune backend parameters, watch live memory and
swap telemetry, and apply the configuration through pkexec.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Format:    logFormatFlag,
			Level:     logLevelFlag,
			Component: "swapctl",
		})
	},
	SilenceUsage: true,
}

func init() {
	// Environment defaults, if the admin shipped any. Flags still win.
	_ = godotenv.Load(envFile)

	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", envOr("SWAPCTL_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", envOr("SWAPCTL_LOG_FORMAT", "auto"), "log format (auto, console, json)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", envOr("SWAPCTL_CONFIG", swapconf.DefaultPath), "path to the daemon configuration file")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(detectCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// formatBytes renders a byte count for humans, binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
