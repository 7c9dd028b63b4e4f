// Package storage classifies block devices and the host's virtualization
// environment from read-only kernel interfaces. Every probe is best-effort:
// an unreadable path degrades to StorageUnknown/VirtNone, never an error.
package storage

import (
	"os"
	"strings"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

var (
	statFn     = os.Stat
	readFileFn = os.ReadFile
)

// Classifier inspects sysfs and procfs. The roots are overridable so tests
// can point it at fixture trees.
type Classifier struct {
	SysRoot  string // default /sys
	ProcRoot string // default /proc
}

// NewClassifier returns a Classifier bound to the real kernel interfaces.
func NewClassifier() *Classifier {
	return &Classifier{SysRoot: "/sys", ProcRoot: "/proc"}
}

// ClassifyDevice buckets a block device ("/dev/nvme0n1p2", "sda") into a
// storage type. More specific signals win: the nvme name prefix beats the
// rotational flag, the mmc device type distinguishes eMMC from SD cards, and
// only then does rotational decide SSD versus HDD.
func (c *Classifier) ClassifyDevice(device string) swapcfg.StorageType {
	name := BaseDevice(device)
	if name == "" {
		return swapcfg.StorageUnknown
	}

	switch {
	case strings.HasPrefix(name, "nvme"):
		return swapcfg.StorageNVMe
	case strings.HasPrefix(name, "mmcblk"):
		return c.classifyMMC(name)
	case strings.HasPrefix(name, "zram"), strings.HasPrefix(name, "loop"),
		strings.HasPrefix(name, "ram"), strings.HasPrefix(name, "dm-"):
		// RAM-backed or stacked devices carry no storage signal.
		return swapcfg.StorageUnknown
	}

	data, err := readFileFn(c.SysRoot + "/block/" + name + "/queue/rotational")
	if err != nil {
		return swapcfg.StorageUnknown
	}
	switch strings.TrimSpace(string(data)) {
	case "0":
		return swapcfg.StorageSSD
	case "1":
		return swapcfg.StorageHDD
	default:
		return swapcfg.StorageUnknown
	}
}

func (c *Classifier) classifyMMC(name string) swapcfg.StorageType {
	data, err := readFileFn(c.SysRoot + "/block/" + name + "/device/type")
	if err != nil {
		return swapcfg.StorageEMMC
	}
	switch strings.TrimSpace(string(data)) {
	case "SD":
		return swapcfg.StorageSD
	default:
		return swapcfg.StorageEMMC
	}
}

// ClassifyPath classifies the device backing a filesystem path by matching
// the longest mount point prefix in /proc/mounts. Used for the swap file
// directory, which is a path rather than a device.
func (c *Classifier) ClassifyPath(path string) swapcfg.StorageType {
	data, err := readFileFn(c.ProcRoot + "/mounts")
	if err != nil {
		return swapcfg.StorageUnknown
	}

	bestDevice := ""
	bestLen := -1
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		device, mount := fields[0], fields[1]
		if !strings.HasPrefix(device, "/dev/") {
			continue
		}
		if mount == "/" || strings.HasPrefix(path, mount+"/") || path == mount {
			if len(mount) > bestLen {
				bestLen = len(mount)
				bestDevice = device
			}
		}
	}
	if bestDevice == "" {
		return swapcfg.StorageUnknown
	}
	return c.ClassifyDevice(bestDevice)
}

// SwapFilePriority resolves the configured swap file priority: -1 derives it
// from the storage type backing the swap path, anything else passes through.
func SwapFilePriority(cfg swapcfg.SwapFileConfig, st swapcfg.StorageType) int {
	if cfg.Priority == -1 {
		return st.SwapPriority()
	}
	return cfg.Priority
}

// BaseDevice strips the /dev/ prefix and resolves a partition name to its
// parent block device: nvme0n1p2 -> nvme0n1, mmcblk0p1 -> mmcblk0, sda2 -> sda.
func BaseDevice(device string) string {
	name := strings.TrimPrefix(strings.TrimSpace(device), "/dev/")
	if name == "" {
		return ""
	}

	// Devices whose names end in a digit (nvme0n1, mmcblk0) separate the
	// partition number with "p".
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		if idx := strings.LastIndex(name, "p"); idx > 0 {
			if isDigits(name[idx+1:]) && len(name[idx+1:]) > 0 {
				return name[:idx]
			}
		}
		return name
	}

	// sdX / vdX / hdX style: trailing digits are the partition number.
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed == "" {
		return name
	}
	return trimmed
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
