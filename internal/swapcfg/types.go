// Package swapcfg holds the typed configuration model for the systemd-swap
// daemon: swap modes, per-backend tunables, and the bounds table every
// externally loaded value is clamped against.
package swapcfg

// SwapMode selects which swap backends the daemon manages.
type SwapMode string

const (
	ModeAuto          SwapMode = "auto"
	ModeZswapSwapfile SwapMode = "zswap+swapfile"
	ModeZramSwapfile  SwapMode = "zram+swapfile"
	ModeZramOnly      SwapMode = "zram"
	ModeDisabled      SwapMode = "disabled"
)

// ParseSwapMode maps a config token to a SwapMode, falling back to ModeAuto
// for anything unrecognized.
func ParseSwapMode(s string) SwapMode {
	switch SwapMode(s) {
	case ModeAuto, ModeZswapSwapfile, ModeZramSwapfile, ModeZramOnly, ModeDisabled:
		return SwapMode(s)
	default:
		return ModeAuto
	}
}

// Label returns the human-readable name of the mode.
func (m SwapMode) Label() string {
	switch m {
	case ModeAuto:
		return "Auto (Recommended)"
	case ModeZswapSwapfile:
		return "Zswap + SwapFile"
	case ModeZramSwapfile:
		return "Zram + SwapFile"
	case ModeZramOnly:
		return "Zram Only"
	case ModeDisabled:
		return "Disabled"
	default:
		return string(m)
	}
}

// Description returns the one-line explanation shown next to the mode.
func (m SwapMode) Description() string {
	switch m {
	case ModeAuto:
		return "Automatically detects the best mode for your system"
	case ModeZswapSwapfile:
		return "Compressed RAM cache + dynamic swap files (best for desktop)"
	case ModeZramSwapfile:
		return "Compressed RAM block device + swap files"
	case ModeZramOnly:
		return "Only Zram, no disk swap (for systems without disk swap support)"
	case ModeDisabled:
		return "Disable swap management (stops the service)"
	default:
		return ""
	}
}

// UsesZswap reports whether the mode activates the zswap backend.
func (m SwapMode) UsesZswap() bool {
	return m == ModeAuto || m == ModeZswapSwapfile
}

// UsesZram reports whether the mode activates the zram backend.
func (m SwapMode) UsesZram() bool {
	return m == ModeAuto || m == ModeZramSwapfile || m == ModeZramOnly
}

// UsesSwapFiles reports whether the mode activates dynamic swap files.
func (m SwapMode) UsesSwapFiles() bool {
	return m == ModeAuto || m == ModeZswapSwapfile || m == ModeZramSwapfile
}

// Compressor is a kernel compression algorithm usable by zswap and zram.
type Compressor string

const (
	CompressorLZ4  Compressor = "lz4"
	CompressorZstd Compressor = "zstd"
	CompressorLZO  Compressor = "lzo"
)

// ParseCompressor maps a token to a Compressor, falling back to the supplied
// default for anything unrecognized.
func ParseCompressor(s string, fallback Compressor) Compressor {
	switch Compressor(s) {
	case CompressorLZ4, CompressorZstd, CompressorLZO:
		return Compressor(s)
	default:
		return fallback
	}
}

// Label returns the human-readable name of the compressor.
func (c Compressor) Label() string {
	switch c {
	case CompressorLZ4:
		return "LZ4 (Fastest)"
	case CompressorZstd:
		return "Zstd (Balanced)"
	case CompressorLZO:
		return "LZO (Legacy)"
	default:
		return string(c)
	}
}

// MglruTTL is an MGLRU min_ttl_ms preset. Values other than "auto" are the
// literal millisecond count written to the kernel.
type MglruTTL string

const (
	MglruAuto     MglruTTL = "auto"
	MglruDisabled MglruTTL = "0"
	Mglru100ms    MglruTTL = "100"
	Mglru300ms    MglruTTL = "300"
	Mglru600ms    MglruTTL = "600"
	Mglru1s       MglruTTL = "1000"
	Mglru3s       MglruTTL = "3000"
	Mglru5s       MglruTTL = "5000"
	Mglru10s      MglruTTL = "10000"
)

// ParseMglruTTL maps a token to an MglruTTL, falling back to MglruAuto.
func ParseMglruTTL(s string) MglruTTL {
	switch MglruTTL(s) {
	case MglruAuto, MglruDisabled, Mglru100ms, Mglru300ms, Mglru600ms,
		Mglru1s, Mglru3s, Mglru5s, Mglru10s:
		return MglruTTL(s)
	default:
		return MglruAuto
	}
}

// Label returns the human-readable name of the TTL preset.
func (t MglruTTL) Label() string {
	switch t {
	case MglruAuto:
		return "Auto (Based on RAM)"
	case MglruDisabled:
		return "Disabled"
	case Mglru100ms:
		return "100ms"
	case Mglru300ms:
		return "300ms"
	case Mglru600ms:
		return "600ms"
	case Mglru1s:
		return "1s (16GB+)"
	case Mglru3s:
		return "3s (4-8GB)"
	case Mglru5s:
		return "5s (2-4GB)"
	case Mglru10s:
		return "10s (1-2GB)"
	default:
		return string(t)
	}
}

// ResolveAuto translates the auto preset into a concrete TTL scaled inversely
// with RAM size. Non-auto values pass through unchanged.
func (t MglruTTL) ResolveAuto(totalRAMBytes uint64) MglruTTL {
	if t != MglruAuto {
		return t
	}
	const gib = 1 << 30
	switch {
	case totalRAMBytes >= 16*gib:
		return Mglru1s
	case totalRAMBytes >= 4*gib:
		return Mglru3s
	case totalRAMBytes >= 2*gib:
		return Mglru5s
	default:
		return Mglru10s
	}
}

// DiscardPolicy controls how TRIM is issued for swap space on flash storage.
type DiscardPolicy string

const (
	DiscardNone  DiscardPolicy = "none"
	DiscardOnce  DiscardPolicy = "once"
	DiscardPages DiscardPolicy = "pages"
	DiscardBoth  DiscardPolicy = "both"
	DiscardAuto  DiscardPolicy = "auto"
)

// ParseDiscardPolicy maps a token to a DiscardPolicy, falling back to
// DiscardAuto for anything unrecognized.
func ParseDiscardPolicy(s string) DiscardPolicy {
	switch DiscardPolicy(s) {
	case DiscardNone, DiscardOnce, DiscardPages, DiscardBoth, DiscardAuto:
		return DiscardPolicy(s)
	default:
		return DiscardAuto
	}
}

// Label returns the human-readable name of the policy.
func (d DiscardPolicy) Label() string {
	switch d {
	case DiscardNone:
		return "Disabled"
	case DiscardOnce:
		return "At deactivation (recommended)"
	case DiscardPages:
		return "Continuous (may impact performance)"
	case DiscardBoth:
		return "Both modes"
	case DiscardAuto:
		return "Auto-detect"
	default:
		return string(d)
	}
}

// StorageType buckets block devices for swap priority derivation.
type StorageType string

const (
	StorageNVMe    StorageType = "nvme"
	StorageSSD     StorageType = "ssd"
	StorageHDD     StorageType = "hdd"
	StorageEMMC    StorageType = "emmc"
	StorageSD      StorageType = "sd"
	StorageUnknown StorageType = "unknown"
)

// Label returns the human-readable name of the storage type.
func (s StorageType) Label() string {
	switch s {
	case StorageNVMe:
		return "NVMe SSD"
	case StorageSSD:
		return "SATA SSD"
	case StorageHDD:
		return "Hard Drive"
	case StorageEMMC:
		return "eMMC"
	case StorageSD:
		return "SD Card"
	default:
		return "Unknown"
	}
}

// SwapPriority returns the kernel swap priority assigned to swap space backed
// by this storage type. Faster media gets higher priority.
func (s StorageType) SwapPriority() int {
	switch s {
	case StorageNVMe:
		return 100
	case StorageSSD:
		return 75
	case StorageEMMC:
		return 50
	case StorageSD:
		return 25
	case StorageHDD:
		return 10
	default:
		return 0
	}
}

// VirtualizationType identifies the environment the host is running in.
type VirtualizationType string

const (
	VirtNone      VirtualizationType = "none"
	VirtKVM       VirtualizationType = "kvm"
	VirtVMware    VirtualizationType = "vmware"
	VirtOracle    VirtualizationType = "oracle"
	VirtXen       VirtualizationType = "xen"
	VirtMicrosoft VirtualizationType = "microsoft"
	VirtDocker    VirtualizationType = "docker"
	VirtLXC       VirtualizationType = "lxc"
	VirtWSL       VirtualizationType = "wsl"
	VirtOther     VirtualizationType = "other"
)

// IsContainer reports whether the environment is a container rather than a
// virtual machine or bare metal. Container hosts own the kernel, so block
// device tuning (discard, writeback) is not safe to apply from inside.
func (v VirtualizationType) IsContainer() bool {
	return v == VirtDocker || v == VirtLXC || v == VirtWSL
}
