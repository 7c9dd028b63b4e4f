package swapstatus

import (
	"context"

	gomem "github.com/shirou/gopsutil/v4/mem"
	"github.com/rs/zerolog/log"
)

var virtualMemory = gomem.VirtualMemoryWithContext

// collectMemory samples memory and swap usage and splits swap into its
// RAM-resident share (zswap stored pages, or the whole of zram) and the part
// actually on disk. Chart semantics: the RAM line is compressed swap, the
// disk line is real disk I/O pressure.
func (c *Collector) collectMemory(ctx context.Context, zswap ZswapStatus, zram ZramStatus) MemoryStats {
	var stats MemoryStats

	vm, err := virtualMemory(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("virtual memory probe failed")
		return stats
	}

	stats.TotalBytes = vm.Total
	stats.UsedBytes = vm.Used
	stats.AvailableBytes = vm.Available
	stats.BuffersBytes = vm.Buffers
	stats.CachedBytes = vm.Cached
	stats.UsedPercent = vm.UsedPercent

	stats.SwapTotalBytes = vm.SwapTotal
	if vm.SwapTotal > vm.SwapFree {
		stats.SwapUsedBytes = vm.SwapTotal - vm.SwapFree
	}
	// zram counts fully as RAM swap; zswap contributes its stored pages.
	stats.SwapRAMBytes = zram.UsedBytes + zswap.StoredBytes
	if stats.SwapUsedBytes > stats.SwapRAMBytes {
		stats.SwapDiskBytes = stats.SwapUsedBytes - stats.SwapRAMBytes
	}
	if stats.SwapTotalBytes > 0 {
		stats.SwapRAMPct = float64(stats.SwapRAMBytes) / float64(stats.SwapTotalBytes) * 100
		stats.SwapDiskPct = float64(stats.SwapDiskBytes) / float64(stats.SwapTotalBytes) * 100
	}
	return stats
}

// TotalRAM returns the host RAM size, 0 when unavailable. Used for the MGLRU
// auto TTL resolution.
func TotalRAM(ctx context.Context) uint64 {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return 0
	}
	return vm.Total
}
