package platform

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/oshokin/appbundle/internal/logger"
)

// TargetOS is the GOOS value of the packaging target.
const TargetOS = "darwin"

// Detector decides whether the platform tools are available.
type Detector interface {
	IsTarget(ctx context.Context) bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context) bool

// IsTarget calls f.
func (f DetectorFunc) IsTarget(ctx context.Context) bool {
	return f(ctx)
}

// Fixed returns a Detector with a constant answer.
func Fixed(isTarget bool) Detector {
	return DetectorFunc(func(context.Context) bool { return isTarget })
}

// HostDetector inspects the running host.
type HostDetector struct{}

// IsTarget reports whether the host runs macOS. Host information is read with
// gopsutil; runtime.GOOS is used when it is unavailable.
func (HostDetector) IsTarget(ctx context.Context) bool {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.DebugKV(ctx, "Host information unavailable, falling back to GOOS", "error", err)

		return runtime.GOOS == TargetOS
	}

	logger.DebugKV(ctx, "Detected host",
		"os", info.OS,
		"platform", info.Platform,
		"platform_version", info.PlatformVersion,
		"arch", info.KernelArch)

	return strings.EqualFold(info.OS, TargetOS)
}

// RunningProcesses returns the PIDs of other processes whose executable is name.
func RunningProcesses(name string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != name {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}
