package swapcfg

// Range bounds a numeric tunable. Widget construction and config loading both
// read from the same table so the UI and the parser can never disagree.
type Range struct {
	Min     int
	Max     int
	Step    int
	Default int
}

// Clamp forces v into [Min, Max]. Loading a stale or hand-edited value must
// never fail, only normalize.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Limits is the bounds table for every tunable plus the fixed size-string
// option sets. Treat instances as immutable; components receive the table by
// value rather than reaching for package state.
type Limits struct {
	ZswapMaxPool         Range
	ZswapAcceptThreshold Range

	ZramSize               Range
	ZramMemLimit           Range
	ZramPriority           Range
	ZramWritebackThreshold Range

	SwapFileMaxCount           Range
	SwapFileScalingStep        Range
	SwapFileShrinkThreshold    Range
	SwapFileSafeHeadroom       Range
	SwapFilePartitionThreshold Range

	ChunkSizes            []string
	MaxChunkSizes         []string
	ZramWritebackSizes    []string
	ZramWritebackMaxSizes []string
}

// DefaultLimits returns the stock bounds table.
func DefaultLimits() Limits {
	return Limits{
		ZswapMaxPool:         Range{Min: 10, Max: 80, Step: 5, Default: 50},
		ZswapAcceptThreshold: Range{Min: 50, Max: 100, Step: 1, Default: 85},

		ZramSize:               Range{Min: 10, Max: 100, Step: 1, Default: 80},
		ZramMemLimit:           Range{Min: 30, Max: 90, Step: 1, Default: 70},
		ZramPriority:           Range{Min: 1, Max: 32767, Step: 1, Default: 32767},
		ZramWritebackThreshold: Range{Min: 10, Max: 90, Step: 1, Default: 50},

		SwapFileMaxCount:           Range{Min: 1, Max: 32, Step: 1, Default: 32},
		SwapFileScalingStep:        Range{Min: 1, Max: 10, Step: 1, Default: 4},
		SwapFileShrinkThreshold:    Range{Min: 10, Max: 50, Step: 1, Default: 30},
		SwapFileSafeHeadroom:       Range{Min: 20, Max: 60, Step: 1, Default: 40},
		SwapFilePartitionThreshold: Range{Min: 70, Max: 100, Step: 1, Default: 90},

		ChunkSizes:            []string{"256M", "512M", "1G", "2G", "4G", "8G"},
		MaxChunkSizes:         []string{"8G", "16G", "32G", "64G", "128G"},
		ZramWritebackSizes:    []string{"512M", "1G", "2G", "4G"},
		ZramWritebackMaxSizes: []string{"2G", "4G", "8G", "16G", "32G"},
	}
}

// Fixed defaults that are not ranges.
const (
	DefaultChunkSize            = "512M"
	DefaultMaxChunkSize         = "64G"
	DefaultZramWritebackSize    = "1G"
	DefaultZramWritebackMaxSize = "8G"
	DefaultSwapFilePath         = "/swapfile"
	DefaultZpool                = "zsmalloc"
	DefaultPartitionPriority    = 100
	DefaultMinCount             = 1
)

// normalizeSize returns s when it is a member of options, otherwise fallback.
// Size strings pass through the config verbatim, so membership is the only
// validation they get.
func normalizeSize(s string, options []string, fallback string) string {
	for _, opt := range options {
		if s == opt {
			return s
		}
	}
	return fallback
}
