// Package swapstatus aggregates kernel and daemon runtime state into a
// point-in-time snapshot: service run-state, zswap pool counters, zram device
// counters, and the swap file / partition inventory from /proc/swaps. Every
// read is best-effort; a backend that is absent or unreadable reports as
// disabled instead of failing the snapshot.
package swapstatus

import (
	"time"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

// ServiceState is the observed daemon run-state. The daemon owns transitions;
// this package only reads the current value.
type ServiceState string

const (
	ServiceActive   ServiceState = "active"
	ServiceInactive ServiceState = "inactive"
	ServiceFailed   ServiceState = "failed"
	ServiceUnknown  ServiceState = "unknown"
)

// ZswapStatus reports the zswap compressed cache.
type ZswapStatus struct {
	Enabled       bool   `json:"enabled"`
	Compressor    string `json:"compressor"`
	PoolSizeBytes uint64 `json:"pool_size_bytes"`
	StoredBytes   uint64 `json:"stored_bytes"`
}

// CompressionRatio returns stored/pool. ok is false when the pool is empty
// and no ratio exists.
func (z ZswapStatus) CompressionRatio() (ratio float64, ok bool) {
	if z.PoolSizeBytes == 0 {
		return 0, false
	}
	return float64(z.StoredBytes) / float64(z.PoolSizeBytes), true
}

// ZramStatus reports the zram block device.
type ZramStatus struct {
	Enabled        bool   `json:"enabled"`
	TotalSizeBytes uint64 `json:"total_size_bytes"`
	UsedBytes      uint64 `json:"used_bytes"`
	OrigBytes      uint64 `json:"orig_bytes"`
	ComprBytes     uint64 `json:"compr_bytes"`
}

// CompressionRatio returns original/compressed. ok is false when nothing has
// been compressed yet.
func (z ZramStatus) CompressionRatio() (ratio float64, ok bool) {
	if z.ComprBytes == 0 {
		return 0, false
	}
	return float64(z.OrigBytes) / float64(z.ComprBytes), true
}

// SwapFileStatus reports the managed swap file fleet.
type SwapFileStatus struct {
	Enabled   bool                   `json:"enabled"`
	FileCount int                    `json:"file_count"`
	MaxFiles  int                    `json:"max_files"`
	Files     []swapcfg.SwapFileInfo `json:"files"`
}

// MemoryStats is one sample of the live memory/swap telemetry stream. The
// swap total splits into a RAM-resident part (zswap stored pages or zram) and
// the part actually written to disk.
type MemoryStats struct {
	TotalBytes     uint64  `json:"total_bytes"`
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	BuffersBytes   uint64  `json:"buffers_bytes"`
	CachedBytes    uint64  `json:"cached_bytes"`
	UsedPercent    float64 `json:"used_percent"`

	SwapTotalBytes uint64  `json:"swap_total_bytes"`
	SwapUsedBytes  uint64  `json:"swap_used_bytes"`
	SwapRAMBytes   uint64  `json:"swap_ram_bytes"`
	SwapDiskBytes  uint64  `json:"swap_disk_bytes"`
	SwapRAMPct     float64 `json:"swap_ram_percent"`
	SwapDiskPct    float64 `json:"swap_disk_percent"`
}

// Snapshot is the unified status view consumed by the planner and the CLI.
type Snapshot struct {
	Service     ServiceState                `json:"service"`
	Zswap       ZswapStatus                 `json:"zswap"`
	Zram        ZramStatus                  `json:"zram"`
	SwapFile    SwapFileStatus              `json:"swapfile"`
	Partitions  []swapcfg.SwapPartitionInfo `json:"partitions"`
	Memory      MemoryStats                 `json:"memory"`
	CollectedAt time.Time                   `json:"collected_at"`
}

// HasAnySwapInUse reports whether any backend currently holds swapped pages.
func (s Snapshot) HasAnySwapInUse() bool {
	if s.Zram.UsedBytes > 0 || s.Zswap.PoolSizeBytes > 0 {
		return true
	}
	for _, f := range s.SwapFile.Files {
		if f.UsedBytes > 0 {
			return true
		}
	}
	for _, p := range s.Partitions {
		if p.UsedBytes > 0 {
			return true
		}
	}
	return false
}
