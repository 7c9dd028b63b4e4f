// Package swapconf owns the grammar of the daemon's swap.conf file: a
// line-oriented key=value format rendered from and parsed back into a
// swapcfg.SwapConfig. Parsing is deliberately permissive; the file is edited
// by humans and older tool versions, so one bad line degrades to a default
// instead of failing the load.
package swapconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

// DefaultPath is where systemd-swap reads its configuration.
const DefaultPath = "/etc/systemd/swap.conf"

const fileHeader = `# systemd-swap configuration
# Generated by swapctl. Manual edits to known keys are preserved on the next
# apply; unknown keys are ignored.
`

// Render serializes cfg into the daemon's file format. Enabled flags for each
// backend are derived from the mode so the daemon never sees a backend the
// mode excludes.
func Render(cfg swapcfg.SwapConfig) string {
	var b strings.Builder
	b.WriteString(fileHeader)

	writeKV := func(key, value string) {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteByte('\n')
	}
	writeBool := func(key string, v bool) {
		if v {
			writeKV(key, "1")
		} else {
			writeKV(key, "0")
		}
	}
	writeInt := func(key string, v int) {
		writeKV(key, strconv.Itoa(v))
	}

	b.WriteString("\n# Mode\n")
	writeKV("swap_mode", string(cfg.Mode))
	writeKV("mglru_min_ttl", string(cfg.MglruMinTTL))

	b.WriteString("\n# Zswap\n")
	writeBool("zswap_enabled", cfg.Mode.UsesZswap())
	writeKV("zswap_compressor", string(cfg.Zswap.Compressor))
	writeInt("zswap_max_pool_percent", cfg.Zswap.MaxPoolPercent)
	writeKV("zswap_zpool", cfg.Zswap.Zpool)
	writeBool("zswap_shrinker", cfg.Zswap.ShrinkerEnabled)
	writeInt("zswap_accept_threshold", cfg.Zswap.AcceptThreshold)

	b.WriteString("\n# Zram\n")
	writeBool("zram_enabled", cfg.Mode.UsesZram())
	writeInt("zram_size", cfg.Zram.SizePercent)
	writeKV("zram_alg", string(cfg.Zram.Algorithm))
	writeInt("zram_mem_limit", cfg.Zram.MemLimitPercent)
	writeInt("zram_prio", cfg.Zram.Priority)
	writeBool("zram_writeback", cfg.Zram.WritebackEnabled)
	writeKV("zram_writeback_size", cfg.Zram.WritebackSize)
	writeKV("zram_writeback_max_size", cfg.Zram.WritebackMaxSize)
	writeInt("zram_writeback_threshold", cfg.Zram.WritebackThreshold)

	b.WriteString("\n# Swap files\n")
	writeBool("swapfc_enabled", cfg.Mode.UsesSwapFiles() && cfg.SwapFile.Enabled)
	writeKV("swapfc_path", cfg.SwapFile.Path)
	writeKV("swapfc_chunk_size", cfg.SwapFile.ChunkSize)
	writeKV("swapfc_max_chunk_size", cfg.SwapFile.MaxChunkSize)
	writeInt("swapfc_max_count", cfg.SwapFile.MaxCount)
	writeInt("swapfc_min_count", cfg.SwapFile.MinCount)
	writeInt("swapfc_scaling_step", cfg.SwapFile.ScalingStep)
	writeInt("swapfc_shrink_threshold", cfg.SwapFile.ShrinkThreshold)
	writeInt("swapfc_safe_headroom", cfg.SwapFile.SafeHeadroom)
	writeBool("swapfc_use_partitions", cfg.SwapFile.UsePartitions)
	writeInt("swapfc_partition_prio", cfg.SwapFile.PartitionPriority)
	writeInt("swapfc_partition_threshold", cfg.SwapFile.PartitionThreshold)
	writeInt("swapfc_min_count_with_partitions", cfg.SwapFile.MinCountWithPartitions)
	writeKV("swapfc_discard_policy", string(cfg.SwapFile.DiscardPolicy))
	writeBool("swapfc_directio", cfg.SwapFile.DirectIO)
	writeInt("swapfc_priority", cfg.SwapFile.Priority)

	return b.String()
}

// Parse reads the daemon file format back into a config. Missing keys keep
// their defaults, unknown keys are skipped, malformed values fall back per
// field. Parse has no error path; the result is always usable.
func Parse(text string) swapcfg.SwapConfig {
	limits := swapcfg.DefaultLimits()
	cfg := swapcfg.Default()

	values := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		values[key] = value
	}

	getInt := func(key string, r swapcfg.Range) int {
		raw, ok := values[key]
		if !ok {
			return r.Default
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return r.Default
		}
		return r.Clamp(n)
	}
	getBool := func(key string, fallback bool) bool {
		raw, ok := values[key]
		if !ok {
			return fallback
		}
		switch strings.ToLower(raw) {
		case "1", "yes", "on", "true", "y":
			return true
		case "0", "no", "off", "false", "n":
			return false
		default:
			return fallback
		}
	}
	getString := func(key, fallback string) string {
		if raw, ok := values[key]; ok && raw != "" {
			return raw
		}
		return fallback
	}

	if raw, ok := values["swap_mode"]; ok {
		cfg.Mode = swapcfg.ParseSwapMode(raw)
	} else {
		cfg.Mode = modeFromEnabledFlags(values)
	}
	if raw, ok := values["mglru_min_ttl"]; ok {
		cfg.MglruMinTTL = swapcfg.ParseMglruTTL(raw)
	}

	cfg.Zswap.Compressor = swapcfg.ParseCompressor(getString("zswap_compressor", ""), swapcfg.CompressorZstd)
	cfg.Zswap.MaxPoolPercent = getInt("zswap_max_pool_percent", limits.ZswapMaxPool)
	cfg.Zswap.Zpool = getString("zswap_zpool", swapcfg.DefaultZpool)
	cfg.Zswap.ShrinkerEnabled = getBool("zswap_shrinker", true)
	cfg.Zswap.AcceptThreshold = getInt("zswap_accept_threshold", limits.ZswapAcceptThreshold)

	cfg.Zram.SizePercent = getInt("zram_size", limits.ZramSize)
	cfg.Zram.Algorithm = swapcfg.ParseCompressor(getString("zram_alg", ""), swapcfg.CompressorLZ4)
	cfg.Zram.MemLimitPercent = getInt("zram_mem_limit", limits.ZramMemLimit)
	cfg.Zram.Priority = getInt("zram_prio", limits.ZramPriority)
	cfg.Zram.WritebackEnabled = getBool("zram_writeback", false)
	cfg.Zram.WritebackSize = getString("zram_writeback_size", swapcfg.DefaultZramWritebackSize)
	cfg.Zram.WritebackMaxSize = getString("zram_writeback_max_size", swapcfg.DefaultZramWritebackMaxSize)
	cfg.Zram.WritebackThreshold = getInt("zram_writeback_threshold", limits.ZramWritebackThreshold)

	cfg.SwapFile.Enabled = getBool("swapfc_enabled", true)
	cfg.SwapFile.Path = getString("swapfc_path", swapcfg.DefaultSwapFilePath)
	cfg.SwapFile.ChunkSize = getString("swapfc_chunk_size", swapcfg.DefaultChunkSize)
	cfg.SwapFile.MaxChunkSize = getString("swapfc_max_chunk_size", swapcfg.DefaultMaxChunkSize)
	cfg.SwapFile.MaxCount = getInt("swapfc_max_count", limits.SwapFileMaxCount)
	if raw, ok := values["swapfc_min_count"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			cfg.SwapFile.MinCount = n
		}
	}
	cfg.SwapFile.ScalingStep = getInt("swapfc_scaling_step", limits.SwapFileScalingStep)
	cfg.SwapFile.ShrinkThreshold = getInt("swapfc_shrink_threshold", limits.SwapFileShrinkThreshold)
	cfg.SwapFile.SafeHeadroom = getInt("swapfc_safe_headroom", limits.SwapFileSafeHeadroom)
	cfg.SwapFile.UsePartitions = getBool("swapfc_use_partitions", true)
	if raw, ok := values["swapfc_partition_prio"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.SwapFile.PartitionPriority = n
		}
	}
	cfg.SwapFile.PartitionThreshold = getInt("swapfc_partition_threshold", limits.SwapFilePartitionThreshold)
	if raw, ok := values["swapfc_min_count_with_partitions"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			cfg.SwapFile.MinCountWithPartitions = n
		}
	}
	cfg.SwapFile.DiscardPolicy = swapcfg.ParseDiscardPolicy(getString("swapfc_discard_policy", string(swapcfg.DiscardAuto)))
	cfg.SwapFile.DirectIO = getBool("swapfc_directio", true)
	if raw, ok := values["swapfc_priority"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= -1 {
			cfg.SwapFile.Priority = n
		}
	}

	cfg.Normalize(limits)
	return cfg
}

// modeFromEnabledFlags reconstructs the mode from per-backend enabled flags
// written by daemon versions that predate the swap_mode key.
func modeFromEnabledFlags(values map[string]string) swapcfg.SwapMode {
	enabled := func(key string) bool {
		switch strings.ToLower(values[key]) {
		case "1", "yes", "on", "true", "y":
			return true
		}
		return false
	}
	zswap := enabled("zswap_enabled")
	zram := enabled("zram_enabled")
	swapfc := enabled("swapfc_enabled")

	switch {
	case zswap && zram:
		return swapcfg.ModeAuto
	case zswap:
		return swapcfg.ModeZswapSwapfile
	case zram && swapfc:
		return swapcfg.ModeZramSwapfile
	case zram:
		return swapcfg.ModeZramOnly
	case !zswap && !zram && !swapfc && len(values) > 0:
		return swapcfg.ModeDisabled
	default:
		return swapcfg.ModeAuto
	}
}

// Load reads and parses the daemon config at path. A missing file is not an
// error: the daemon would run on built-in defaults, so we report the same.
func Load(path string) (swapcfg.SwapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return swapcfg.Default(), nil
		}
		return swapcfg.Default(), fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}
