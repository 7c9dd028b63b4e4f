package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biglinux/swapctl/internal/swapconf"
	"github.com/biglinux/swapctl/internal/swapstatus"
)

var statusJSONFlag bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and swap backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := swapconf.Load(configPathFlag)
		if err != nil {
			return err
		}

		collector := swapstatus.NewCollector()
		collector.MaxFiles = cfg.SwapFile.MaxCount
		snap := collector.Collect(cmd.Context())

		if statusJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Printf("Service:  %s\n", snap.Service)
		fmt.Printf("Mode:     %s (%s)\n", cfg.Mode, cfg.Mode.Label())
		ttl := cfg.MglruMinTTL.ResolveAuto(swapstatus.TotalRAM(cmd.Context()))
		fmt.Printf("MGLRU:    min_ttl_ms %s\n", ttl)
		fmt.Println()

		fmt.Printf("Zswap:    %s\n", enabledWord(snap.Zswap.Enabled))
		if snap.Zswap.Enabled {
			fmt.Printf("  compressor: %s\n", snap.Zswap.Compressor)
			fmt.Printf("  pool:       %s\n", formatBytes(snap.Zswap.PoolSizeBytes))
			fmt.Printf("  stored:     %s\n", formatBytes(snap.Zswap.StoredBytes))
			printRatio(snap.Zswap.CompressionRatio())
		}

		fmt.Printf("Zram:     %s\n", enabledWord(snap.Zram.Enabled))
		if snap.Zram.Enabled {
			fmt.Printf("  size:       %s\n", formatBytes(snap.Zram.TotalSizeBytes))
			fmt.Printf("  used:       %s\n", formatBytes(snap.Zram.UsedBytes))
			printRatio(snap.Zram.CompressionRatio())
		}

		fmt.Printf("Files:    %s (%d of max %d)\n", enabledWord(snap.SwapFile.Enabled), snap.SwapFile.FileCount, snap.SwapFile.MaxFiles)
		for _, f := range snap.SwapFile.Files {
			fmt.Printf("  %-28s %10s / %-10s %5.1f%%  prio %d\n",
				f.Path, formatBytes(f.UsedBytes), formatBytes(f.SizeBytes), f.UsagePercent(), f.Priority)
		}
		for _, p := range snap.Partitions {
			fmt.Printf("  %-28s %10s / %-10s %5.1f%%  prio %d  (%s partition)\n",
				p.Device, formatBytes(p.UsedBytes), formatBytes(p.SizeBytes), p.UsagePercent(), p.Priority, p.StorageType.Label())
		}

		fmt.Println()
		mem := snap.Memory
		fmt.Printf("Memory:   %s / %s (%.1f%%)\n", formatBytes(mem.UsedBytes), formatBytes(mem.TotalBytes), mem.UsedPercent)
		if mem.SwapTotalBytes > 0 {
			fmt.Printf("Swap:     %s / %s (RAM %s, disk %s)\n",
				formatBytes(mem.SwapUsedBytes), formatBytes(mem.SwapTotalBytes),
				formatBytes(mem.SwapRAMBytes), formatBytes(mem.SwapDiskBytes))
		} else {
			fmt.Println("Swap:     none configured")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "emit the raw snapshot as JSON")
}

func enabledWord(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func printRatio(ratio float64, ok bool) {
	if ok {
		fmt.Printf("  ratio:      %.2f:1\n", ratio)
	} else {
		fmt.Printf("  ratio:      unavailable\n")
	}
}
