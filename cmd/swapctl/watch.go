package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/swapconf"
	"github.com/biglinux/swapctl/internal/swapstatus"
)

var watchIntervalFlag time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live memory and swap telemetry",
	Long: `watch polls memory and swap state on an interval and prints one line per
sample. The config file is watched too; an edit shows up as a log line so a
terminal left open notices out-of-band changes. Ctrl-C stops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go watchConfigFile(ctx, configPathFlag)

		monitor := swapstatus.NewMonitor(swapstatus.NewCollector(), watchIntervalFlag)
		out := make(chan swapstatus.Snapshot)
		go monitor.Run(ctx, out)

		for snap := range out {
			printSample(snap)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchIntervalFlag, "interval", 2*time.Second, "sampling interval")
}

func printSample(snap swapstatus.Snapshot) {
	mem := snap.Memory
	line := fmt.Sprintf("%s  mem %s/%s (%.1f%%)",
		snap.CollectedAt.Format("15:04:05"),
		formatBytes(mem.UsedBytes), formatBytes(mem.TotalBytes), mem.UsedPercent)

	if mem.SwapTotalBytes > 0 {
		line += fmt.Sprintf("  swap %s/%s [ram %s disk %s]",
			formatBytes(mem.SwapUsedBytes), formatBytes(mem.SwapTotalBytes),
			formatBytes(mem.SwapRAMBytes), formatBytes(mem.SwapDiskBytes))
	} else {
		line += "  swap none"
	}
	if ratio, ok := snap.Zram.CompressionRatio(); ok {
		line += fmt.Sprintf("  zram %.2f:1", ratio)
	}
	if ratio, ok := snap.Zswap.CompressionRatio(); ok {
		line += fmt.Sprintf("  zswap %.2f:1", ratio)
	}
	fmt.Println(line)
}

// watchConfigFile reports edits to the daemon config. The parent directory is
// watched rather than the file itself, because editors and the apply path
// replace the file instead of writing in place.
func watchConfigFile(ctx context.Context, path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug().Err(err).Msg("config watch unavailable")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("config watch unavailable")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := swapconf.Load(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config changed but could not be reloaded")
				continue
			}
			log.Info().Str("mode", string(cfg.Mode)).Str("path", path).Msg("configuration changed on disk")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Debug().Err(err).Msg("config watch error")
		}
	}
}
