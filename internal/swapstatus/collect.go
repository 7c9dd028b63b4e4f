package swapstatus

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biglinux/swapctl/internal/storage"
	"github.com/biglinux/swapctl/internal/swapcfg"
)

// System call wrappers for testing.
var (
	readFileFn = os.ReadFile
	globFn     = filepath.Glob
	runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
		out, err := exec.CommandContext(ctx, name, args...).Output()
		return string(out), err
	}
	nowFn = time.Now
)

const defaultServiceUnit = "systemd-swap.service"

// Collector reads kernel and daemon state. Roots are overridable so tests can
// point it at fixture trees.
type Collector struct {
	ProcRoot    string // default /proc
	SysRoot     string // default /sys
	DebugRoot   string // default /sys/kernel/debug
	ServiceUnit string
	PageSize    uint64
	// MaxFiles is the configured fleet ceiling, reported alongside the
	// observed file count.
	MaxFiles int

	Classifier *storage.Classifier
}

// NewCollector returns a Collector bound to the real kernel interfaces.
func NewCollector() *Collector {
	return &Collector{
		ProcRoot:    "/proc",
		SysRoot:     "/sys",
		DebugRoot:   "/sys/kernel/debug",
		ServiceUnit: defaultServiceUnit,
		PageSize:    uint64(os.Getpagesize()),
		MaxFiles:    swapcfg.DefaultLimits().SwapFileMaxCount.Default,
		Classifier:  storage.NewClassifier(),
	}
}

// Collect gathers a full snapshot. It never fails: each sub-read degrades to
// a zeroed sub-status on its own.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{
		Service:     c.serviceState(ctx),
		Zswap:       c.collectZswap(),
		Zram:        c.collectZram(),
		CollectedAt: nowFn(),
	}
	snap.SwapFile, snap.Partitions = c.collectSwapInventory()
	snap.Memory = c.collectMemory(ctx, snap.Zswap, snap.Zram)
	return snap
}

func (c *Collector) serviceState(ctx context.Context) ServiceState {
	unit := c.ServiceUnit
	if unit == "" {
		unit = defaultServiceUnit
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// is-active exits non-zero for anything but "active"; the printed state
	// is meaningful either way.
	out, err := runCommand(ctx, "systemctl", "is-active", unit)
	state := strings.TrimSpace(out)
	switch state {
	case "active", "activating", "reloading":
		return ServiceActive
	case "inactive", "deactivating":
		return ServiceInactive
	case "failed":
		return ServiceFailed
	default:
		if err != nil {
			log.Debug().Err(err).Str("unit", unit).Msg("service state probe failed")
		}
		return ServiceUnknown
	}
}

func (c *Collector) collectZswap() ZswapStatus {
	var st ZswapStatus

	data, err := readFileFn(c.SysRoot + "/module/zswap/parameters/enabled")
	if err != nil {
		// zswap compiled out or module absent.
		return st
	}
	switch strings.TrimSpace(string(data)) {
	case "Y", "y", "1":
		st.Enabled = true
	default:
		return st
	}

	if data, err := readFileFn(c.SysRoot + "/module/zswap/parameters/compressor"); err == nil {
		st.Compressor = strings.TrimSpace(string(data))
	}

	// Pool counters live in debugfs and are root-only on most systems.
	st.PoolSizeBytes = c.readUint(c.DebugRoot + "/zswap/pool_total_size")
	pageSize := c.PageSize
	if pageSize == 0 {
		pageSize = 4096
	}
	st.StoredBytes = c.readUint(c.DebugRoot+"/zswap/stored_pages") * pageSize
	return st
}

func (c *Collector) collectZram() ZramStatus {
	var st ZramStatus

	devices, err := globFn(c.SysRoot + "/block/zram*")
	if err != nil || len(devices) == 0 {
		return st
	}

	for _, dev := range devices {
		disksize := c.readUint(dev + "/disksize")
		if disksize == 0 {
			continue
		}
		st.Enabled = true
		st.TotalSizeBytes += disksize

		// mm_stat: orig_data_size compr_data_size mem_used_total mem_limit
		// max_used_total same_pages pages_compacted [huge_pages]
		data, err := readFileFn(dev + "/mm_stat")
		if err != nil {
			continue
		}
		fields := strings.Fields(string(data))
		if len(fields) >= 3 {
			st.OrigBytes += parseUint(fields[0])
			st.ComprBytes += parseUint(fields[1])
			st.UsedBytes += parseUint(fields[2])
		}
	}
	return st
}

// collectSwapInventory parses /proc/swaps into the file fleet and the
// partition list. zram devices also show up there; they are already covered
// by the zram sub-status and are skipped here.
func (c *Collector) collectSwapInventory() (SwapFileStatus, []swapcfg.SwapPartitionInfo) {
	files := SwapFileStatus{MaxFiles: c.MaxFiles}
	var partitions []swapcfg.SwapPartitionInfo

	data, err := readFileFn(c.ProcRoot + "/swaps")
	if err != nil {
		return files, nil
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if i == 0 {
			// Header: Filename Type Size Used Priority
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		name := fields[0]
		kind := fields[1]
		sizeBytes := parseUint(fields[2]) * 1024
		usedBytes := parseUint(fields[3]) * 1024
		priority, _ := strconv.Atoi(fields[4])

		if strings.HasPrefix(name, "/dev/zram") {
			continue
		}

		if kind == "file" || !strings.HasPrefix(name, "/dev/") {
			files.Enabled = true
			files.FileCount++
			files.Files = append(files.Files, swapcfg.SwapFileInfo{
				Path:      name,
				SizeBytes: sizeBytes,
				UsedBytes: usedBytes,
				IsActive:  true,
				Priority:  priority,
			})
			continue
		}

		part := swapcfg.SwapPartitionInfo{
			Device:      name,
			SizeBytes:   sizeBytes,
			UsedBytes:   usedBytes,
			IsActive:    true,
			Priority:    priority,
			StorageType: swapcfg.StorageUnknown,
		}
		if c.Classifier != nil {
			part.StorageType = c.Classifier.ClassifyDevice(name)
		}
		partitions = append(partitions, part)
	}
	return files, partitions
}

func (c *Collector) readUint(path string) uint64 {
	data, err := readFileFn(path)
	if err != nil {
		return 0
	}
	return parseUint(strings.TrimSpace(string(data)))
}

func parseUint(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
