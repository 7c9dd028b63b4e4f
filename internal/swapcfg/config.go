package swapcfg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ZswapConfig tunes the zswap compressed page cache.
type ZswapConfig struct {
	Compressor      Compressor `json:"compressor"`
	MaxPoolPercent  int        `json:"max_pool_percent"`
	Zpool           string     `json:"zpool"`
	ShrinkerEnabled bool       `json:"shrinker_enabled"`
	AcceptThreshold int        `json:"accept_threshold"`
}

// DefaultZswap returns the stock zswap configuration.
func DefaultZswap(limits Limits) ZswapConfig {
	return ZswapConfig{
		Compressor:      CompressorZstd,
		MaxPoolPercent:  limits.ZswapMaxPool.Default,
		Zpool:           DefaultZpool,
		ShrinkerEnabled: true,
		AcceptThreshold: limits.ZswapAcceptThreshold.Default,
	}
}

// ZramConfig tunes the zram compressed block device.
type ZramConfig struct {
	SizePercent        int        `json:"size_percent"`
	Algorithm          Compressor `json:"alg"`
	MemLimitPercent    int        `json:"mem_limit_percent"`
	Priority           int        `json:"priority"`
	WritebackEnabled   bool       `json:"writeback_enabled"`
	WritebackSize      string     `json:"writeback_size"`
	WritebackMaxSize   string     `json:"writeback_max_size"`
	WritebackThreshold int        `json:"writeback_threshold"`
}

// DefaultZram returns the stock zram configuration.
func DefaultZram(limits Limits) ZramConfig {
	return ZramConfig{
		SizePercent:        limits.ZramSize.Default,
		Algorithm:          CompressorLZ4,
		MemLimitPercent:    limits.ZramMemLimit.Default,
		Priority:           limits.ZramPriority.Default,
		WritebackEnabled:   false,
		WritebackSize:      DefaultZramWritebackSize,
		WritebackMaxSize:   DefaultZramWritebackMaxSize,
		WritebackThreshold: limits.ZramWritebackThreshold.Default,
	}
}

// SwapFileConfig tunes the dynamically sized swap file fleet.
type SwapFileConfig struct {
	Enabled      bool   `json:"enabled"`
	Path         string `json:"path"`
	ChunkSize    string `json:"chunk_size"`
	MaxChunkSize string `json:"max_chunk_size"`
	MaxCount     int    `json:"max_count"`
	MinCount     int    `json:"min_count"`
	ScalingStep  int    `json:"scaling_step"`

	ShrinkThreshold int `json:"shrink_threshold"`
	SafeHeadroom    int `json:"safe_headroom"`

	UsePartitions          bool `json:"use_partitions"`
	PartitionPriority      int  `json:"partition_priority"`
	PartitionThreshold     int  `json:"partition_threshold"`
	MinCountWithPartitions int  `json:"min_count_with_partitions"`

	DiscardPolicy DiscardPolicy `json:"discard_policy"`
	DirectIO      bool          `json:"direct_io"`
	// Priority -1 means derive from the storage type backing Path.
	Priority int `json:"priority"`
}

// DefaultSwapFile returns the stock swap file configuration.
func DefaultSwapFile(limits Limits) SwapFileConfig {
	return SwapFileConfig{
		Enabled:                true,
		Path:                   DefaultSwapFilePath,
		ChunkSize:              DefaultChunkSize,
		MaxChunkSize:           DefaultMaxChunkSize,
		MaxCount:               limits.SwapFileMaxCount.Default,
		MinCount:               DefaultMinCount,
		ScalingStep:            limits.SwapFileScalingStep.Default,
		ShrinkThreshold:        limits.SwapFileShrinkThreshold.Default,
		SafeHeadroom:           limits.SwapFileSafeHeadroom.Default,
		UsePartitions:          true,
		PartitionPriority:      DefaultPartitionPriority,
		PartitionThreshold:     limits.SwapFilePartitionThreshold.Default,
		MinCountWithPartitions: 0,
		DiscardPolicy:          DiscardAuto,
		DirectIO:               true,
		Priority:               -1,
	}
}

// SwapConfig is the aggregate configuration applied to the daemon. It lives in
// memory for the duration of an editing session and only ever touches disk in
// the daemon's own text format.
type SwapConfig struct {
	Mode        SwapMode       `json:"mode"`
	Zswap       ZswapConfig    `json:"zswap"`
	Zram        ZramConfig     `json:"zram"`
	SwapFile    SwapFileConfig `json:"swapfile"`
	MglruMinTTL MglruTTL       `json:"mglru_min_ttl"`
}

// Default returns a SwapConfig carrying every documented default.
func Default() SwapConfig {
	limits := DefaultLimits()
	return SwapConfig{
		Mode:        ModeAuto,
		Zswap:       DefaultZswap(limits),
		Zram:        DefaultZram(limits),
		SwapFile:    DefaultSwapFile(limits),
		MglruMinTTL: MglruAuto,
	}
}

// Normalize clamps every numeric field into its documented range and replaces
// unrecognized enum or size-string values with their defaults. External input
// (config files, JSON) is a trust boundary: a bad value degrades to a default,
// it never aborts a load.
func (c *SwapConfig) Normalize(limits Limits) {
	c.Mode = ParseSwapMode(string(c.Mode))
	c.MglruMinTTL = ParseMglruTTL(string(c.MglruMinTTL))

	c.Zswap.Compressor = ParseCompressor(string(c.Zswap.Compressor), CompressorZstd)
	c.Zswap.MaxPoolPercent = limits.ZswapMaxPool.Clamp(c.Zswap.MaxPoolPercent)
	c.Zswap.AcceptThreshold = limits.ZswapAcceptThreshold.Clamp(c.Zswap.AcceptThreshold)
	if strings.TrimSpace(c.Zswap.Zpool) == "" {
		c.Zswap.Zpool = DefaultZpool
	}

	c.Zram.Algorithm = ParseCompressor(string(c.Zram.Algorithm), CompressorLZ4)
	c.Zram.SizePercent = limits.ZramSize.Clamp(c.Zram.SizePercent)
	c.Zram.MemLimitPercent = limits.ZramMemLimit.Clamp(c.Zram.MemLimitPercent)
	c.Zram.Priority = limits.ZramPriority.Clamp(c.Zram.Priority)
	c.Zram.WritebackThreshold = limits.ZramWritebackThreshold.Clamp(c.Zram.WritebackThreshold)
	c.Zram.WritebackSize = normalizeSize(c.Zram.WritebackSize, limits.ZramWritebackSizes, DefaultZramWritebackSize)
	c.Zram.WritebackMaxSize = normalizeSize(c.Zram.WritebackMaxSize, limits.ZramWritebackMaxSizes, DefaultZramWritebackMaxSize)

	sf := &c.SwapFile
	if strings.TrimSpace(sf.Path) == "" {
		sf.Path = DefaultSwapFilePath
	}
	sf.ChunkSize = normalizeSize(sf.ChunkSize, limits.ChunkSizes, DefaultChunkSize)
	sf.MaxChunkSize = normalizeSize(sf.MaxChunkSize, limits.MaxChunkSizes, DefaultMaxChunkSize)
	sf.MaxCount = limits.SwapFileMaxCount.Clamp(sf.MaxCount)
	if sf.MinCount < 0 {
		sf.MinCount = 0
	}
	if sf.MinCount > sf.MaxCount {
		sf.MinCount = sf.MaxCount
	}
	sf.ScalingStep = limits.SwapFileScalingStep.Clamp(sf.ScalingStep)
	sf.ShrinkThreshold = limits.SwapFileShrinkThreshold.Clamp(sf.ShrinkThreshold)
	sf.SafeHeadroom = limits.SwapFileSafeHeadroom.Clamp(sf.SafeHeadroom)
	sf.PartitionThreshold = limits.SwapFilePartitionThreshold.Clamp(sf.PartitionThreshold)
	if sf.MinCountWithPartitions < 0 {
		sf.MinCountWithPartitions = 0
	}
	if sf.MinCountWithPartitions > sf.MaxCount {
		sf.MinCountWithPartitions = sf.MaxCount
	}
	sf.DiscardPolicy = ParseDiscardPolicy(string(sf.DiscardPolicy))
	if sf.Priority < -1 {
		sf.Priority = -1
	}
}

// UnmarshalJSON decodes into a fully defaulted config so missing keys keep
// their documented defaults, then normalizes. Unknown keys are ignored by
// encoding/json; a malformed document is the only hard error.
func (c *SwapConfig) UnmarshalJSON(data []byte) error {
	type alias SwapConfig
	tmp := alias(Default())
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("decode swap config: %w", err)
	}
	*c = SwapConfig(tmp)
	c.Normalize(DefaultLimits())
	return nil
}

// SizeToBytes converts a size string from the option sets ("512M", "2G") to
// bytes. Unrecognized strings yield 0.
func SizeToBytes(s string) uint64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	unit := s[len(s)-1]
	var mult uint64
	switch unit {
	case 'K':
		mult = 1 << 10
	case 'M':
		mult = 1 << 20
	case 'G':
		mult = 1 << 30
	case 'T':
		mult = 1 << 40
	default:
		// Bare number: bytes.
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	n, err := strconv.ParseUint(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0
	}
	return n * mult
}
