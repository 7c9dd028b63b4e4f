package storage

import (
	"strings"

	"github.com/biglinux/swapctl/internal/swapcfg"
)

// DetectVirtualization identifies the environment the host runs in.
// Containers are checked before hypervisors: a container on a KVM host must
// report as a container, since that is what constrains which tunables are
// safe to touch. Ambiguity resolves to VirtNone.
func (c *Classifier) DetectVirtualization() swapcfg.VirtualizationType {
	// WSL ships a Microsoft-tagged kernel.
	if data, err := readFileFn(c.ProcRoot + "/sys/kernel/osrelease"); err == nil {
		if strings.Contains(strings.ToLower(string(data)), "microsoft") {
			return swapcfg.VirtWSL
		}
	}

	if _, err := statFn("/.dockerenv"); err == nil {
		return swapcfg.VirtDocker
	}
	if _, err := statFn("/run/.containerenv"); err == nil {
		return swapcfg.VirtDocker
	}

	if data, err := readFileFn(c.ProcRoot + "/1/environ"); err == nil {
		env := strings.ToLower(string(data))
		switch {
		case strings.Contains(env, "container=lxc"):
			return swapcfg.VirtLXC
		case strings.Contains(env, "container=docker"), strings.Contains(env, "container=podman"):
			return swapcfg.VirtDocker
		}
	}
	if data, err := readFileFn(c.ProcRoot + "/1/cgroup"); err == nil {
		cg := strings.ToLower(string(data))
		switch {
		case strings.Contains(cg, "lxc"):
			return swapcfg.VirtLXC
		case strings.Contains(cg, "docker"), strings.Contains(cg, "podman"), strings.Contains(cg, "libpod"):
			return swapcfg.VirtDocker
		}
	}

	if v := c.detectHypervisorDMI(); v != "" {
		return v
	}

	// A hypervisor CPU flag without recognizable DMI strings still means
	// virtualized, just an environment we cannot name.
	if data, err := readFileFn(c.ProcRoot + "/cpuinfo"); err == nil {
		if strings.Contains(string(data), "hypervisor") {
			return swapcfg.VirtOther
		}
	}

	return swapcfg.VirtNone
}

func (c *Classifier) detectHypervisorDMI() swapcfg.VirtualizationType {
	dmi := ""
	for _, file := range []string{"sys_vendor", "product_name", "board_vendor"} {
		if data, err := readFileFn(c.SysRoot + "/class/dmi/id/" + file); err == nil {
			dmi += strings.ToLower(string(data)) + "\n"
		}
	}
	switch {
	case strings.Contains(dmi, "qemu"), strings.Contains(dmi, "kvm"):
		return swapcfg.VirtKVM
	case strings.Contains(dmi, "vmware"):
		return swapcfg.VirtVMware
	case strings.Contains(dmi, "virtualbox"), strings.Contains(dmi, "innotek"), strings.Contains(dmi, "oracle"):
		return swapcfg.VirtOracle
	case strings.Contains(dmi, "xen"):
		return swapcfg.VirtXen
	case strings.Contains(dmi, "microsoft"):
		return swapcfg.VirtMicrosoft
	default:
		return ""
	}
}

// DiscardSafe reports whether issuing TRIM for swap space is sane in the
// detected environment. Containers do not own the block layer.
func DiscardSafe(v swapcfg.VirtualizationType) bool {
	return !v.IsContainer()
}

// WritebackSafe reports whether zram writeback may be configured in the
// detected environment.
func WritebackSafe(v swapcfg.VirtualizationType) bool {
	return !v.IsContainer()
}
