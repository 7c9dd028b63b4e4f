package swapcfg

// SwapPartitionInfo describes a swap partition observed on the host.
type SwapPartitionInfo struct {
	Device      string      `json:"device"`
	UUID        string      `json:"uuid"`
	SizeBytes   uint64      `json:"size_bytes"`
	UsedBytes   uint64      `json:"used_bytes"`
	StorageType StorageType `json:"storage_type"`
	IsActive    bool        `json:"is_active"`
	Priority    int         `json:"priority"`
}

// UsagePercent returns used/size as a percentage, 0 for an empty device.
func (p SwapPartitionInfo) UsagePercent() float64 {
	if p.SizeBytes == 0 {
		return 0
	}
	return float64(p.UsedBytes) / float64(p.SizeBytes) * 100
}

// SwapFileInfo describes one swap file of the managed fleet.
type SwapFileInfo struct {
	Path      string `json:"path"`
	SizeBytes uint64 `json:"size_bytes"`
	UsedBytes uint64 `json:"used_bytes"`
	IsActive  bool   `json:"is_active"`
	Priority  int    `json:"priority"`
}

// UsagePercent returns used/size as a percentage, 0 for an empty file.
func (f SwapFileInfo) UsagePercent() float64 {
	if f.SizeBytes == 0 {
		return 0
	}
	return float64(f.UsedBytes) / float64(f.SizeBytes) * 100
}

// IsRemovalCandidate reports whether the file's usage sits strictly below the
// shrink threshold. A file exactly at the threshold stays.
func (f SwapFileInfo) IsRemovalCandidate(shrinkThreshold int) bool {
	return f.UsagePercent() < float64(shrinkThreshold)
}
