package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

// fakeFS swaps the package file accessors for map-backed fakes and restores
// them when the test ends.
func fakeFS(t *testing.T, files map[string]string, existing ...string) {
	t.Helper()
	origRead, origStat := readFileFn, statFn
	t.Cleanup(func() {
		readFileFn, statFn = origRead, origStat
	})

	exists := map[string]bool{}
	for _, p := range existing {
		exists[p] = true
	}

	readFileFn = func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return []byte(data), nil
		}
		return nil, os.ErrNotExist
	}
	statFn = func(name string) (os.FileInfo, error) {
		if _, ok := files[name]; ok || exists[name] {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}
}

func TestBaseDevice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/dev/sda2", "sda"},
		{"/dev/sda", "sda"},
		{"sdb10", "sdb"},
		{"/dev/nvme0n1p3", "nvme0n1"},
		{"/dev/nvme0n1", "nvme0n1"},
		{"/dev/mmcblk0p1", "mmcblk0"},
		{"mmcblk1", "mmcblk1"},
		{"/dev/vda1", "vda"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BaseDevice(tt.in); got != tt.want {
			t.Errorf("BaseDevice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyDevice(t *testing.T) {
	c := &Classifier{SysRoot: "/sys", ProcRoot: "/proc"}

	tests := []struct {
		name   string
		device string
		files  map[string]string
		want   swapcfg.StorageType
	}{
		{
			name:   "nvme wins on name alone",
			device: "/dev/nvme0n1p2",
			files:  map[string]string{},
			want:   swapcfg.StorageNVMe,
		},
		{
			name:   "sata ssd via rotational flag",
			device: "/dev/sda2",
			files:  map[string]string{"/sys/block/sda/queue/rotational": "0\n"},
			want:   swapcfg.StorageSSD,
		},
		{
			name:   "spinning disk",
			device: "/dev/sdb1",
			files:  map[string]string{"/sys/block/sdb/queue/rotational": "1\n"},
			want:   swapcfg.StorageHDD,
		},
		{
			name:   "emmc",
			device: "/dev/mmcblk0p2",
			files:  map[string]string{"/sys/block/mmcblk0/device/type": "MMC\n"},
			want:   swapcfg.StorageEMMC,
		},
		{
			name:   "sd card",
			device: "/dev/mmcblk0p1",
			files:  map[string]string{"/sys/block/mmcblk0/device/type": "SD\n"},
			want:   swapcfg.StorageSD,
		},
		{
			name:   "zram carries no storage signal",
			device: "/dev/zram0",
			files:  map[string]string{},
			want:   swapcfg.StorageUnknown,
		},
		{
			name:   "unreadable sysfs degrades to unknown",
			device: "/dev/sdc1",
			files:  map[string]string{},
			want:   swapcfg.StorageUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeFS(t, tt.files)
			assert.Equal(t, tt.want, c.ClassifyDevice(tt.device))
		})
	}
}

func TestClassifyPath(t *testing.T) {
	c := &Classifier{SysRoot: "/sys", ProcRoot: "/proc"}
	mounts := "/dev/nvme0n1p2 / ext4 rw 0 0\n" +
		"/dev/sda1 /home ext4 rw 0 0\n" +
		"tmpfs /tmp tmpfs rw 0 0\n"

	fakeFS(t, map[string]string{
		"/proc/mounts":                    mounts,
		"/sys/block/sda/queue/rotational": "1\n",
	})

	assert.Equal(t, swapcfg.StorageNVMe, c.ClassifyPath("/swapfile"))
	assert.Equal(t, swapcfg.StorageHDD, c.ClassifyPath("/home/user/swap"))
	// tmpfs mounts are skipped; /tmp falls through to the root device.
	assert.Equal(t, swapcfg.StorageNVMe, c.ClassifyPath("/tmp/swap"))
}

func TestClassifyPathNoMounts(t *testing.T) {
	c := &Classifier{SysRoot: "/sys", ProcRoot: "/proc"}
	fakeFS(t, map[string]string{})
	assert.Equal(t, swapcfg.StorageUnknown, c.ClassifyPath("/swapfile"))
}

func TestSwapFilePriority(t *testing.T) {
	cfg := swapcfg.DefaultSwapFile(swapcfg.DefaultLimits())
	assert.Equal(t, 100, SwapFilePriority(cfg, swapcfg.StorageNVMe))
	assert.Equal(t, 10, SwapFilePriority(cfg, swapcfg.StorageHDD))

	cfg.Priority = 500
	assert.Equal(t, 500, SwapFilePriority(cfg, swapcfg.StorageNVMe))
}

func TestDetectVirtualization(t *testing.T) {
	c := &Classifier{SysRoot: "/sys", ProcRoot: "/proc"}

	tests := []struct {
		name     string
		files    map[string]string
		existing []string
		want     swapcfg.VirtualizationType
	}{
		{
			name:  "bare metal",
			files: map[string]string{"/proc/sys/kernel/osrelease": "6.12.1-arch1\n"},
			want:  swapcfg.VirtNone,
		},
		{
			name:  "wsl kernel tag",
			files: map[string]string{"/proc/sys/kernel/osrelease": "5.15.167.4-microsoft-standard-WSL2\n"},
			want:  swapcfg.VirtWSL,
		},
		{
			name:     "docker marker file",
			files:    map[string]string{},
			existing: []string{"/.dockerenv"},
			want:     swapcfg.VirtDocker,
		},
		{
			name:  "lxc via pid1 environ",
			files: map[string]string{"/proc/1/environ": "container=lxc\x00PATH=/usr/bin\x00"},
			want:  swapcfg.VirtLXC,
		},
		{
			name: "kvm via dmi",
			files: map[string]string{
				"/sys/class/dmi/id/sys_vendor":   "QEMU\n",
				"/sys/class/dmi/id/product_name": "Standard PC (Q35 + ICH9, 2009)\n",
			},
			want: swapcfg.VirtKVM,
		},
		{
			name:  "vmware via dmi",
			files: map[string]string{"/sys/class/dmi/id/sys_vendor": "VMware, Inc.\n"},
			want:  swapcfg.VirtVMware,
		},
		{
			name:  "virtualbox via dmi",
			files: map[string]string{"/sys/class/dmi/id/product_name": "VirtualBox\n"},
			want:  swapcfg.VirtOracle,
		},
		{
			name: "unnamed hypervisor flag",
			files: map[string]string{
				"/proc/cpuinfo": "flags\t\t: fpu vme hypervisor\n",
			},
			want: swapcfg.VirtOther,
		},
		{
			name: "container beats hypervisor",
			files: map[string]string{
				"/proc/1/cgroup":               "0::/lxc/101\n",
				"/sys/class/dmi/id/sys_vendor": "QEMU\n",
			},
			want: swapcfg.VirtLXC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeFS(t, tt.files, tt.existing...)
			assert.Equal(t, tt.want, c.DetectVirtualization())
		})
	}
}

func TestContainerSafety(t *testing.T) {
	assert.False(t, DiscardSafe(swapcfg.VirtDocker))
	assert.False(t, WritebackSafe(swapcfg.VirtLXC))
	assert.True(t, DiscardSafe(swapcfg.VirtKVM))
	assert.True(t, WritebackSafe(swapcfg.VirtNone))
}
