package swapconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

func TestRenderParseRoundTripDefault(t *testing.T) {
	cfg := swapcfg.Default()
	got := Parse(Render(cfg))
	assert.Equal(t, cfg, got)
}

func TestRenderParseRoundTripEdited(t *testing.T) {
	cfg := swapcfg.Default()
	cfg.Mode = swapcfg.ModeZramSwapfile
	cfg.Zswap.Compressor = swapcfg.CompressorLZ4
	cfg.Zswap.MaxPoolPercent = 30
	cfg.Zswap.ShrinkerEnabled = false
	cfg.Zram.SizePercent = 50
	cfg.Zram.Algorithm = swapcfg.CompressorZstd
	cfg.Zram.WritebackEnabled = true
	cfg.Zram.WritebackSize = "2G"
	cfg.Zram.WritebackMaxSize = "16G"
	cfg.SwapFile.ChunkSize = "1G"
	cfg.SwapFile.MaxChunkSize = "32G"
	cfg.SwapFile.MaxCount = 16
	cfg.SwapFile.ScalingStep = 2
	cfg.SwapFile.UsePartitions = false
	cfg.SwapFile.DiscardPolicy = swapcfg.DiscardOnce
	cfg.SwapFile.DirectIO = false
	cfg.SwapFile.Priority = 42
	cfg.MglruMinTTL = swapcfg.Mglru600ms

	got := Parse(Render(cfg))
	assert.Equal(t, cfg, got)
}

func TestParseEmptyYieldsDefaults(t *testing.T) {
	assert.Equal(t, swapcfg.Default(), Parse(""))
}

func TestParseMalformedFieldIsIsolated(t *testing.T) {
	text := strings.Join([]string{
		"swap_mode=zswap+swapfile",
		"zswap_compressor=snappy",  // unknown algorithm
		"zswap_max_pool_percent=x", // not a number
		"zram_size=40",
		"swapfc_discard_policy=sometimes", // unknown policy
		"swapfc_chunk_size=1G",
	}, "\n")

	cfg := Parse(text)

	// Malformed fields fall back individually.
	assert.Equal(t, swapcfg.CompressorZstd, cfg.Zswap.Compressor)
	assert.Equal(t, 50, cfg.Zswap.MaxPoolPercent)
	assert.Equal(t, swapcfg.DiscardAuto, cfg.SwapFile.DiscardPolicy)

	// Well-formed neighbours parse normally.
	assert.Equal(t, swapcfg.ModeZswapSwapfile, cfg.Mode)
	assert.Equal(t, 40, cfg.Zram.SizePercent)
	assert.Equal(t, "1G", cfg.SwapFile.ChunkSize)
}

func TestParseClampsOutOfRangeNumbers(t *testing.T) {
	cfg := Parse("zswap_max_pool_percent=95\nswapfc_shrink_threshold=99\nzram_prio=-5\n")
	assert.Equal(t, 80, cfg.Zswap.MaxPoolPercent)
	assert.Equal(t, 50, cfg.SwapFile.ShrinkThreshold)
	assert.Equal(t, 1, cfg.Zram.Priority)
}

func TestParseIgnoresUnknownKeysCommentsAndGarbage(t *testing.T) {
	text := strings.Join([]string{
		"# a comment",
		"",
		"swapfu_enabled=1",       // legacy key, unknown to us
		"this line has no equal", // garbage
		"swap_mode=zram",
		"   zram_alg = zstd  ",
		`swapfc_path="/var/lib/swap"`,
	}, "\n")

	cfg := Parse(text)
	assert.Equal(t, swapcfg.ModeZramOnly, cfg.Mode)
	assert.Equal(t, swapcfg.CompressorZstd, cfg.Zram.Algorithm)
	assert.Equal(t, "/var/lib/swap", cfg.SwapFile.Path)
}

func TestParseLegacyEnabledFlagsInferMode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want swapcfg.SwapMode
	}{
		{"zswap only", "zswap_enabled=1\nswapfc_enabled=1\n", swapcfg.ModeZswapSwapfile},
		{"zram with files", "zram_enabled=1\nswapfc_enabled=1\n", swapcfg.ModeZramSwapfile},
		{"zram alone", "zram_enabled=1\n", swapcfg.ModeZramOnly},
		{"both backends", "zswap_enabled=1\nzram_enabled=1\n", swapcfg.ModeAuto},
		{"all off", "zswap_enabled=0\nzram_enabled=0\nswapfc_enabled=0\n", swapcfg.ModeDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Mode)
		})
	}
}

func TestRenderDerivesEnabledFlagsFromMode(t *testing.T) {
	cfg := swapcfg.Default()
	cfg.Mode = swapcfg.ModeZramOnly
	text := Render(cfg)

	assert.Contains(t, text, "zswap_enabled=0\n")
	assert.Contains(t, text, "zram_enabled=1\n")
	assert.Contains(t, text, "swapfc_enabled=0\n")

	cfg.Mode = swapcfg.ModeDisabled
	text = Render(cfg)
	assert.Contains(t, text, "zswap_enabled=0\n")
	assert.Contains(t, text, "zram_enabled=0\n")
	assert.Contains(t, text, "swapfc_enabled=0\n")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.conf"))
		require.NoError(t, err)
		assert.Equal(t, swapcfg.Default(), cfg)
	})

	t.Run("existing file is parsed", func(t *testing.T) {
		path := filepath.Join(dir, "swap.conf")
		require.NoError(t, os.WriteFile(path, []byte("swap_mode=disabled\n"), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, swapcfg.ModeDisabled, cfg.Mode)
	})
}
