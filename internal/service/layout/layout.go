package layout

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/fileutil"
	"github.com/oshokin/appbundle/internal/logger"
	"github.com/oshokin/appbundle/internal/service/platform"
)

// LauncherMode is the permission of the installed launcher stub.
const LauncherMode os.FileMode = 0o755

// offTargetHint explains how to provide the stub when packaging elsewhere than macOS.
const offTargetHint = "NOTICE: you are packaging on a platform other than macOS. " +
	"Copy the JavaApplicationStub binary into your source tree and point the 'launcher_stub' setting at it.\n" +
	"On macOS the stub is typically located at " +
	"/System/Library/Frameworks/JavaVM.framework/Versions/Current/Resources/MacOS/JavaApplicationStub"

// CreateSkeleton creates every directory of the bundle tree.
func CreateSkeleton(ctx context.Context, l bundle.Layout) error {
	for _, dir := range l.Directories() {
		if err := os.MkdirAll(dir, fileutil.DirMode); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	logger.DebugKV(ctx, "Bundle skeleton created", "bundle_dir", l.BundleDir)

	return nil
}

// InstallLauncher copies the launcher stub into MacOS under its final name
// with mode 0755. isTarget only changes the error message of a missing stub.
func InstallLauncher(ctx context.Context, spec bundle.Spec, l bundle.Layout, isTarget bool) error {
	info, err := os.Stat(spec.LauncherStub)
	if err != nil {
		message := fmt.Sprintf("can't find launcher stub binary, file does not exist: %s", spec.LauncherStub)
		if !isTarget {
			message += "\n" + offTargetHint
		}

		return fmt.Errorf("%w: %s: %w", bundle.ErrMissingLauncherStub, message, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", bundle.ErrMissingLauncherStub, spec.LauncherStub)
	}

	describeStub(ctx, spec.LauncherStub)
	warnIfRunning(ctx, spec.ExecutableName())

	data, err := os.ReadFile(filepath.Clean(spec.LauncherStub))
	if err != nil {
		return fmt.Errorf("read launcher stub %s: %w", spec.LauncherStub, err)
	}

	if err = replaceExecutable(l.Launcher, data); err != nil {
		return fmt.Errorf("copy launcher stub %s to %s: %w", spec.LauncherStub, l.MacOSDir, err)
	}

	logger.InfoKV(ctx, "Launcher stub installed", "path", l.Launcher)

	return nil
}

// CopyIcon copies the configured icon into Resources. Nothing happens without an icon.
func CopyIcon(ctx context.Context, spec bundle.Spec, l bundle.Layout) error {
	if spec.IconFile == "" {
		return nil
	}

	target := filepath.Join(l.ResourcesDir, spec.IconFilename())
	if err := fileutil.CopyFile(spec.IconFile, target, fileutil.FileMode); err != nil {
		return fmt.Errorf("%w: copy icon %s to %s: %w", bundle.ErrResourceCopy, spec.IconFile, l.ResourcesDir, err)
	}

	logger.DebugKV(ctx, "Icon copied", "path", target)

	return nil
}

// replaceExecutable atomically swaps target for data and verifies the written checksum.
func replaceExecutable(target string, data []byte) error {
	// go-update renames the previous file aside, so one has to exist.
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.Create(filepath.Clean(target))
		if createErr != nil {
			return createErr
		}

		if createErr = placeholder.Close(); createErr != nil {
			return createErr
		}
	} else if err != nil {
		return err
	}

	checksum := sha512.Sum512(data)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: LauncherMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	}

	return goupdate.Apply(bytes.NewReader(data), options)
}

// warnIfRunning logs a warning when the application being rebuilt is still running.
func warnIfRunning(ctx context.Context, executable string) {
	pids, err := platform.RunningProcesses(executable)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "A process with the launcher's name is running, its launcher will be replaced",
			"executable", executable, "pids", pids)
	}
}
