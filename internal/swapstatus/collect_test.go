package swapstatus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gomem "github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSystem swaps all system accessors for fakes and restores them when the
// test ends.
func fakeSystem(t *testing.T, files map[string]string, serviceOut string, serviceErr error) {
	t.Helper()
	origRead, origGlob, origRun, origVM := readFileFn, globFn, runCommand, virtualMemory
	t.Cleanup(func() {
		readFileFn, globFn, runCommand, virtualMemory = origRead, origGlob, origRun, origVM
	})

	readFileFn = func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return []byte(data), nil
		}
		return nil, os.ErrNotExist
	}
	globFn = func(pattern string) ([]string, error) {
		prefix := strings.TrimSuffix(pattern, "*")
		var matches []string
		seen := map[string]bool{}
		for name := range files {
			if strings.HasPrefix(name, prefix) {
				dir := name[:len(prefix)+strings.IndexByte(name[len(prefix):], '/')]
				if !seen[dir] {
					seen[dir] = true
					matches = append(matches, dir)
				}
			}
		}
		return matches, nil
	}
	runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
		return serviceOut, serviceErr
	}
	virtualMemory = func(ctx context.Context) (*gomem.VirtualMemoryStat, error) {
		return &gomem.VirtualMemoryStat{
			Total:       16 << 30,
			Used:        8 << 30,
			Available:   6 << 30,
			Buffers:     1 << 30,
			Cached:      2 << 30,
			UsedPercent: 50,
			SwapTotal:   4 << 30,
			SwapFree:    3 << 30,
		}, nil
	}
}

func testCollector() *Collector {
	c := NewCollector()
	c.Classifier = nil // device classification has its own tests
	c.PageSize = 4096
	return c
}

func TestCollectZswapActive(t *testing.T) {
	fakeSystem(t, map[string]string{
		"/sys/module/zswap/parameters/enabled":    "Y\n",
		"/sys/module/zswap/parameters/compressor": "zstd\n",
		"/sys/kernel/debug/zswap/pool_total_size": "104857600\n",
		"/sys/kernel/debug/zswap/stored_pages":    "51200\n",
	}, "active\n", nil)

	snap := testCollector().Collect(context.Background())

	assert.True(t, snap.Zswap.Enabled)
	assert.Equal(t, "zstd", snap.Zswap.Compressor)
	assert.Equal(t, uint64(100<<20), snap.Zswap.PoolSizeBytes)
	assert.Equal(t, uint64(51200*4096), snap.Zswap.StoredBytes)

	ratio, ok := snap.Zswap.CompressionRatio()
	require.True(t, ok)
	assert.InDelta(t, 2.0, ratio, 0.01)
}

func TestCollectZswapAbsentLeavesOthersPopulated(t *testing.T) {
	// No zswap sysfs entries at all: module compiled out.
	fakeSystem(t, map[string]string{
		"/sys/block/zram0/disksize": "2147483648\n",
		"/sys/block/zram0/mm_stat":  "1048576 262144 524288 0 524288 0 0 0\n",
		"/proc/swaps": "Filename\tType\tSize\tUsed\tPriority\n" +
			"/swapfile/swap.0 file 524284 1024 100\n",
	}, "active\n", nil)

	snap := testCollector().Collect(context.Background())

	assert.False(t, snap.Zswap.Enabled)
	assert.Zero(t, snap.Zswap.PoolSizeBytes)
	assert.Zero(t, snap.Zswap.StoredBytes)

	// Zram and the file inventory are independently populated.
	assert.True(t, snap.Zram.Enabled)
	assert.Equal(t, uint64(2<<30), snap.Zram.TotalSizeBytes)
	assert.True(t, snap.SwapFile.Enabled)
	assert.Equal(t, 1, snap.SwapFile.FileCount)
}

func TestCollectZramCounters(t *testing.T) {
	fakeSystem(t, map[string]string{
		"/sys/block/zram0/disksize": "1073741824\n",
		"/sys/block/zram0/mm_stat":  "4194304 1048576 2097152 0 0 0 0 0\n",
	}, "active\n", nil)

	snap := testCollector().Collect(context.Background())

	assert.True(t, snap.Zram.Enabled)
	assert.Equal(t, uint64(4<<20), snap.Zram.OrigBytes)
	assert.Equal(t, uint64(1<<20), snap.Zram.ComprBytes)
	assert.Equal(t, uint64(2<<20), snap.Zram.UsedBytes)

	ratio, ok := snap.Zram.CompressionRatio()
	require.True(t, ok)
	assert.InDelta(t, 4.0, ratio, 0.01)
}

func TestCompressionRatioSentinels(t *testing.T) {
	_, ok := ZswapStatus{}.CompressionRatio()
	assert.False(t, ok, "empty zswap pool must have no ratio")

	_, ok = ZramStatus{OrigBytes: 100}.CompressionRatio()
	assert.False(t, ok, "zero compressed bytes must have no ratio")

	ratio, ok := ZramStatus{OrigBytes: 300, ComprBytes: 100}.CompressionRatio()
	assert.True(t, ok)
	assert.InDelta(t, 3.0, ratio, 0.01)
}

func TestCollectSwapInventory(t *testing.T) {
	fakeSystem(t, map[string]string{
		"/proc/swaps": "Filename\tType\tSize\tUsed\tPriority\n" +
			"/dev/sda2 partition 8388604 1048576 -2\n" +
			"/dev/zram0 partition 4194300 0 32767\n" +
			"/swapfile/swap.0 file 524284 262142 100\n" +
			"/swapfile/swap.1 file 524284 0 100\n",
	}, "active\n", nil)

	snap := testCollector().Collect(context.Background())

	require.Len(t, snap.Partitions, 1, "zram devices must not be listed as partitions")
	part := snap.Partitions[0]
	assert.Equal(t, "/dev/sda2", part.Device)
	assert.Equal(t, uint64(8388604)*1024, part.SizeBytes)
	assert.Equal(t, uint64(1048576)*1024, part.UsedBytes)
	assert.Equal(t, -2, part.Priority)
	assert.True(t, part.IsActive)

	require.Equal(t, 2, snap.SwapFile.FileCount)
	assert.True(t, snap.SwapFile.Enabled)
	assert.Equal(t, "/swapfile/swap.0", snap.SwapFile.Files[0].Path)
	assert.InDelta(t, 50.0, snap.SwapFile.Files[0].UsagePercent(), 0.1)
	assert.True(t, snap.HasAnySwapInUse())
}

func TestCollectSwapInventoryUnreadable(t *testing.T) {
	fakeSystem(t, map[string]string{}, "active\n", nil)

	snap := testCollector().Collect(context.Background())
	assert.False(t, snap.SwapFile.Enabled)
	assert.Zero(t, snap.SwapFile.FileCount)
	assert.Empty(t, snap.Partitions)
}

func TestServiceStateMapping(t *testing.T) {
	tests := []struct {
		out  string
		err  error
		want ServiceState
	}{
		{"active\n", nil, ServiceActive},
		{"inactive\n", errors.New("exit status 3"), ServiceInactive},
		{"failed\n", errors.New("exit status 3"), ServiceFailed},
		{"", errors.New("systemctl not found"), ServiceUnknown},
		{"weird\n", nil, ServiceUnknown},
	}
	for _, tt := range tests {
		fakeSystem(t, map[string]string{}, tt.out, tt.err)
		snap := testCollector().Collect(context.Background())
		assert.Equal(t, tt.want, snap.Service, "output %q", tt.out)
	}
}

func TestMemorySwapSplit(t *testing.T) {
	fakeSystem(t, map[string]string{
		"/sys/module/zswap/parameters/enabled":    "Y\n",
		"/sys/module/zswap/parameters/compressor": "zstd\n",
		"/sys/kernel/debug/zswap/stored_pages":    "65536\n", // 256 MiB
		"/sys/kernel/debug/zswap/pool_total_size": "134217728\n",
	}, "active\n", nil)

	snap := testCollector().Collect(context.Background())

	// SwapTotal 4G, SwapFree 3G -> 1G used; 256M of it is zswap-resident.
	assert.Equal(t, uint64(1<<30), snap.Memory.SwapUsedBytes)
	assert.Equal(t, uint64(256<<20), snap.Memory.SwapRAMBytes)
	assert.Equal(t, uint64(768<<20), snap.Memory.SwapDiskBytes)
	assert.Equal(t, uint64(16<<30), snap.Memory.TotalBytes)
	assert.InDelta(t, 6.25, snap.Memory.SwapRAMPct, 0.01)
}

func TestMonitorDeliversSnapshots(t *testing.T) {
	fakeSystem(t, map[string]string{}, "active\n", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMonitor(testCollector(), time.Second)
	out := make(chan Snapshot, 1)
	done := make(chan struct{})
	go func() {
		m.Run(ctx, out)
		close(done)
	}()

	select {
	case snap := <-out:
		assert.Equal(t, ServiceActive, snap.Service)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on context cancellation")
	}
}

func TestGlobFakeSanity(t *testing.T) {
	// The glob fake reconstructs directories from file paths; make sure the
	// real pattern used by the collector matches it.
	files := map[string]string{"/sys/block/zram0/disksize": "1\n"}
	fakeSystem(t, files, "active\n", nil)
	matches, err := globFn("/sys/block/zram*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean("/sys/block/zram0")}, matches)
}
