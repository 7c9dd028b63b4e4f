// Package applyctl is the privilege boundary: it hands rendered configuration
// text and service commands to pkexec. Applying is a single attempt; a failed
// apply is reported once and never retried automatically, and a config that
// was written but whose service reload failed is surfaced as a distinct
// partial outcome rather than folded into success or failure.
package applyctl

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Outcome classifies an apply attempt.
type Outcome string

const (
	// Applied means the config was written and the service acted on it.
	Applied Outcome = "applied"
	// PartialApply means the config file was replaced but the service was
	// not successfully informed. The system runs old settings over a new
	// file until the user intervenes.
	PartialApply Outcome = "partial"
	// Failed means nothing changed on the system.
	Failed Outcome = "failed"
)

// Result reports one apply attempt.
type Result struct {
	Outcome Outcome
	Detail  string
}

// System call wrappers for testing.
var (
	lookPathFn   = exec.LookPath
	createTempFn = os.CreateTemp
	removeFn     = os.Remove
	runCommand   = func(ctx context.Context, name string, args ...string) (string, error) {
		out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
		return string(out), err
	}
)

const (
	defaultServiceUnit = "systemd-swap.service"
	commandTimeout     = 60 * time.Second
)

// Applier writes the daemon config through pkexec and controls the service.
type Applier struct {
	ConfigPath  string
	ServiceUnit string
}

// NewApplier returns an Applier bound to the daemon's standard paths.
func NewApplier(configPath string) *Applier {
	return &Applier{ConfigPath: configPath, ServiceUnit: defaultServiceUnit}
}

// PkexecAvailable reports whether the privilege escalation helper exists.
func PkexecAvailable() bool {
	_, err := lookPathFn("pkexec")
	return err == nil
}

// Apply replaces the daemon config file with content and, when restart is
// set, restarts the service so it takes effect. The write itself is atomic
// from our perspective: a single pkexec invocation copies the staged file
// into place and fixes its permissions.
func (a *Applier) Apply(ctx context.Context, content string, restart bool) Result {
	if !PkexecAvailable() {
		return Result{Outcome: Failed, Detail: "pkexec not found"}
	}

	tmp, err := createTempFn("", "swap-*.conf")
	if err != nil {
		return Result{Outcome: Failed, Detail: fmt.Sprintf("stage config: %v", err)}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := removeFn(tmpPath); err != nil && !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", tmpPath).Msg("staged config cleanup failed")
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return Result{Outcome: Failed, Detail: fmt.Sprintf("stage config: %v", err)}
	}
	if err := tmp.Close(); err != nil {
		return Result{Outcome: Failed, Detail: fmt.Sprintf("stage config: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	script := fmt.Sprintf("cp %q %q && chmod 644 %q", tmpPath, a.ConfigPath, a.ConfigPath)
	out, err := runCommand(ctx, "pkexec", "/bin/bash", "-c", script)
	if err != nil {
		detail := strings.TrimSpace(out)
		if detail == "" {
			detail = err.Error()
		}
		return Result{Outcome: Failed, Detail: detail}
	}

	log.Info().Str("path", a.ConfigPath).Msg("configuration written")

	if !restart {
		return Result{Outcome: Applied, Detail: "configuration written; restart the service or reboot to apply"}
	}

	if res := a.RestartService(ctx); res.Outcome != Applied {
		return Result{
			Outcome: PartialApply,
			Detail:  fmt.Sprintf("configuration written but service restart failed: %s", res.Detail),
		}
	}
	return Result{Outcome: Applied, Detail: "configuration applied and service restarted"}
}

// RestartService restarts the daemon.
func (a *Applier) RestartService(ctx context.Context) Result {
	return a.serviceCommand(ctx, fmt.Sprintf("systemctl restart %s", a.unit()))
}

// EnableService enables and starts the daemon.
func (a *Applier) EnableService(ctx context.Context) Result {
	return a.serviceCommand(ctx, fmt.Sprintf("systemctl enable %s && systemctl start %s", a.unit(), a.unit()))
}

// DisableService stops and disables the daemon, for the disabled swap mode.
func (a *Applier) DisableService(ctx context.Context) Result {
	return a.serviceCommand(ctx, fmt.Sprintf("systemctl stop %s && systemctl disable %s", a.unit(), a.unit()))
}

func (a *Applier) serviceCommand(ctx context.Context, script string) Result {
	if !PkexecAvailable() {
		return Result{Outcome: Failed, Detail: "pkexec not found"}
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := runCommand(ctx, "pkexec", "/bin/bash", "-c", script)
	if err != nil {
		detail := strings.TrimSpace(out)
		if detail == "" {
			detail = err.Error()
		}
		return Result{Outcome: Failed, Detail: detail}
	}
	return Result{Outcome: Applied}
}

func (a *Applier) unit() string {
	if a.ServiceUnit == "" {
		return defaultServiceUnit
	}
	return a.ServiceUnit
}
