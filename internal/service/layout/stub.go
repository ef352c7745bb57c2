package layout

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blacktop/go-macho"

	"github.com/oshokin/appbundle/internal/logger"
)

// StubKind classifies a launcher stub file.
type StubKind string

const (
	// StubMachO is a single-architecture Mach-O executable.
	StubMachO StubKind = "mach-o"
	// StubUniversal is a fat (multi-architecture) Mach-O executable.
	StubUniversal StubKind = "universal"
	// StubScript is an interpreted launcher starting with "#!".
	StubScript StubKind = "script"
	// StubUnknown is anything else.
	StubUnknown StubKind = "unknown"
)

// StubInfo describes a launcher stub.
type StubInfo struct {
	Kind StubKind
	// CPUs lists the architectures of Mach-O stubs.
	CPUs []string
}

// InspectStub identifies the format of the launcher stub at path.
func InspectStub(path string) (StubInfo, error) {
	header := make([]byte, 2)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return StubInfo{Kind: StubUnknown}, err
	}

	n, _ := f.Read(header)
	_ = f.Close()

	if n == len(header) && bytes.Equal(header, []byte("#!")) {
		return StubInfo{Kind: StubScript}, nil
	}

	if fat, fatErr := macho.OpenFat(path); fatErr == nil {
		defer fat.Close()

		cpus := make([]string, 0, len(fat.Arches))
		for _, arch := range fat.Arches {
			cpus = append(cpus, fmt.Sprint(arch.CPU))
		}

		return StubInfo{Kind: StubUniversal, CPUs: cpus}, nil
	}

	thin, err := macho.Open(path)
	if err != nil {
		return StubInfo{Kind: StubUnknown}, nil //nolint:nilerr // An unparsable stub is reported as unknown.
	}
	defer thin.Close()

	return StubInfo{Kind: StubMachO, CPUs: []string{fmt.Sprint(thin.CPU)}}, nil
}

// describeStub logs the stub format and warns when it is not recognised.
func describeStub(ctx context.Context, path string) {
	info, err := InspectStub(path)
	if err != nil {
		logger.DebugKV(ctx, "Unable to inspect launcher stub", "path", path, "error", err)
		return
	}

	if info.Kind == StubUnknown {
		logger.WarnKV(ctx, "Launcher stub is neither a Mach-O executable nor a script", "path", path)
		return
	}

	logger.DebugKV(ctx, "Launcher stub inspected", "kind", info.Kind, "cpus", info.CPUs)
}
