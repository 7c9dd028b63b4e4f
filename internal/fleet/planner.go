// Package fleet decides the target shape of the dynamically sized swap file
// fleet: how many files should exist, how large each one is, and which ones
// can be retired without risking an out-of-swap condition. The planner only
// produces a plan; executing it against the filesystem belongs to the daemon.
package fleet

import (
	"fmt"
	"path"
	"sort"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

// Op is a planned action kind.
type Op string

const (
	OpKeep   Op = "keep"
	OpCreate Op = "create"
	OpRemove Op = "remove"
)

// Action is one entry of an ordered fleet plan.
type Action struct {
	Op        Op     `json:"op"`
	Path      string `json:"path"`
	Index     int    `json:"index"`
	SizeBytes uint64 `json:"size_bytes"`
	Priority  int    `json:"priority"`
	Reason    string `json:"reason"`
}

// Plan is the ordered action list plus the capacity totals it was computed
// against.
type Plan struct {
	Actions            []Action `json:"actions"`
	TotalCapacityBytes uint64   `json:"total_capacity_bytes"`
	TotalUsedBytes     uint64   `json:"total_used_bytes"`
}

// Planner computes fleet plans. Limits bounds the config values it trusts.
type Planner struct {
	Limits swapcfg.Limits
}

// NewPlanner returns a planner using the stock limits table.
func NewPlanner() *Planner {
	return &Planner{Limits: swapcfg.DefaultLimits()}
}

// FileSize returns the target size of file i (1-indexed): the chunk size
// doubles every ScalingStep files and is capped at MaxChunkSize. Early files
// stay small and numerous, later files grow so total capacity is reached with
// a bounded file count.
func (p *Planner) FileSize(i int, cfg swapcfg.SwapFileConfig) uint64 {
	if i < 1 {
		return 0
	}
	chunk := swapcfg.SizeToBytes(cfg.ChunkSize)
	maxChunk := swapcfg.SizeToBytes(cfg.MaxChunkSize)
	if chunk == 0 {
		chunk = swapcfg.SizeToBytes(swapcfg.DefaultChunkSize)
	}
	if maxChunk == 0 {
		maxChunk = swapcfg.SizeToBytes(swapcfg.DefaultMaxChunkSize)
	}

	step := p.Limits.SwapFileScalingStep.Clamp(cfg.ScalingStep)
	doublings := (i - 1) / step
	size := chunk
	for d := 0; d < doublings; d++ {
		size *= 2
		if size >= maxChunk {
			return maxChunk
		}
	}
	if size > maxChunk {
		return maxChunk
	}
	return size
}

// Plan computes the target fleet shape for the observed state. Partitions are
// never created or removed here; they only influence how many files the fleet
// wants and whether overflow files must be manufactured.
func (p *Planner) Plan(files []swapcfg.SwapFileInfo, partitions []swapcfg.SwapPartitionInfo, cfg swapcfg.SwapFileConfig, host swapcfg.StorageType) Plan {
	normalized := cfg
	normalized.MaxCount = p.Limits.SwapFileMaxCount.Clamp(cfg.MaxCount)
	normalized.ShrinkThreshold = p.Limits.SwapFileShrinkThreshold.Clamp(cfg.ShrinkThreshold)
	normalized.SafeHeadroom = p.Limits.SwapFileSafeHeadroom.Clamp(cfg.SafeHeadroom)
	normalized.PartitionThreshold = p.Limits.SwapFilePartitionThreshold.Clamp(cfg.PartitionThreshold)

	plan := Plan{}
	for _, f := range files {
		plan.TotalCapacityBytes += f.SizeBytes
		plan.TotalUsedBytes += f.UsedBytes
	}
	for _, part := range partitions {
		if !part.IsActive {
			continue
		}
		plan.TotalCapacityBytes += part.SizeBytes
		plan.TotalUsedBytes += part.UsedBytes
	}

	minCount, overflowWanted := p.fileCountFloor(partitions, normalized)
	targetCreate := p.creations(files, normalized, minCount, overflowWanted)
	removals := p.removals(files, partitions, normalized, minCount)

	priority := cfg.Priority
	if priority == -1 {
		priority = host.SwapPriority()
	}

	// Order: keeps first (stable fleet), then creations, then removals.
	// Removal of the newest file sorts first among removals.
	removedPaths := map[string]struct{}{}
	for _, idx := range removals {
		removedPaths[files[idx].Path] = struct{}{}
	}
	for i, f := range files {
		if _, gone := removedPaths[f.Path]; gone {
			continue
		}
		plan.Actions = append(plan.Actions, Action{
			Op: OpKeep, Path: f.Path, Index: i + 1,
			SizeBytes: f.SizeBytes, Priority: f.Priority,
		})
	}

	nextIndex := len(files) + 1
	for n := 0; n < targetCreate; n++ {
		idx := nextIndex + n
		plan.Actions = append(plan.Actions, Action{
			Op:        OpCreate,
			Path:      path.Join(cfg.Path, fmt.Sprintf("swap.%d", idx-1)),
			Index:     idx,
			SizeBytes: p.FileSize(idx, normalized),
			Priority:  priority,
			Reason:    createReason(minCount, overflowWanted),
		})
	}

	for _, idx := range removals {
		f := files[idx]
		plan.Actions = append(plan.Actions, Action{
			Op: OpRemove, Path: f.Path, Index: idx + 1,
			SizeBytes: f.SizeBytes, Priority: f.Priority,
			Reason: fmt.Sprintf("usage %.0f%% below shrink threshold %d%%", f.UsagePercent(), normalized.ShrinkThreshold),
		})
	}

	return plan
}

// fileCountFloor returns the minimum file count the fleet must hold and
// whether partitions nearing exhaustion demand overflow files.
func (p *Planner) fileCountFloor(partitions []swapcfg.SwapPartitionInfo, cfg swapcfg.SwapFileConfig) (int, bool) {
	minCount := cfg.MinCount

	if !cfg.UsePartitions {
		return minCount, false
	}

	activeCapacity := uint64(0)
	overflow := false
	for _, part := range partitions {
		if !part.IsActive {
			continue
		}
		activeCapacity += part.SizeBytes
		if part.UsagePercent() >= float64(cfg.PartitionThreshold) {
			overflow = true
		}
	}

	// Partitions with room left satisfy capacity on their own; the fleet may
	// shrink down to its with-partitions floor.
	if activeCapacity > 0 && !overflow {
		minCount = cfg.MinCountWithPartitions
	}
	return minCount, overflow
}

// creations returns how many files to manufacture.
func (p *Planner) creations(files []swapcfg.SwapFileInfo, cfg swapcfg.SwapFileConfig, minCount int, overflowWanted bool) int {
	current := len(files)
	want := current

	if current < minCount {
		want = minCount
	}
	// A partition at its threshold triggers one overflow file at a time;
	// churn stays bounded and the next planning pass reassesses.
	if overflowWanted && want == current {
		want = current + 1
	}
	if want > cfg.MaxCount {
		want = cfg.MaxCount
	}
	if want < current {
		return 0
	}
	return want - current
}

// removals returns indexes of files safe to retire, newest first. A removal
// only enters the plan when the fleet keeps at least SafeHeadroom percent of
// its remaining configured capacity free afterwards.
func (p *Planner) removals(files []swapcfg.SwapFileInfo, partitions []swapcfg.SwapPartitionInfo, cfg swapcfg.SwapFileConfig, minCount int) []int {
	capacity := uint64(0)
	used := uint64(0)
	for _, f := range files {
		capacity += f.SizeBytes
		used += f.UsedBytes
	}
	for _, part := range partitions {
		if !cfg.UsePartitions || !part.IsActive {
			continue
		}
		capacity += part.SizeBytes
		used += part.UsedBytes
	}

	candidates := make([]int, 0, len(files))
	for i, f := range files {
		if f.IsRemovalCandidate(cfg.ShrinkThreshold) {
			candidates = append(candidates, i)
		}
	}
	// Newest first: foundational low-index files are assumed by other tooling
	// and removing them churns the most capacity.
	sort.Sort(sort.Reverse(sort.IntSlice(candidates)))

	remaining := len(files)
	var accepted []int
	for _, idx := range candidates {
		if remaining <= minCount {
			break
		}
		f := files[idx]
		newCapacity := capacity - f.SizeBytes
		// Its pages migrate to the remaining swap space.
		newUsed := used
		if newCapacity == 0 {
			break
		}
		free := float64(newCapacity-min64(newUsed, newCapacity)) / float64(newCapacity) * 100
		if free < float64(cfg.SafeHeadroom) {
			continue
		}
		accepted = append(accepted, idx)
		capacity = newCapacity
		remaining--
	}
	return accepted
}

func createReason(minCount int, overflow bool) string {
	if overflow {
		return "partition usage at threshold, manufacturing overflow capacity"
	}
	return fmt.Sprintf("fleet below minimum count %d", minCount)
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
