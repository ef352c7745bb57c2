package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/logger"
)

// Tool names resolved through PATH.
const (
	ChmodTool    = "chmod"
	CodesignTool = "codesign"
	SecurityTool = "security"
	HdiutilTool  = "hdiutil"
)

// DefaultSetFilePath is where the developer tools install SetFile.
const DefaultSetFilePath = "/usr/bin/SetFile"

// executableMode is applied to the launcher by the permission fix.
const executableMode os.FileMode = 0o755

// Toolkit applies the per-tool failure policy on top of a Runner.
type Toolkit struct {
	runner      Runner
	setFile     string
	verbose     bool
	signTimeout time.Duration
}

// ToolkitOption configures a Toolkit.
type ToolkitOption func(*Toolkit)

// WithSetFile overrides the SetFile location.
func WithSetFile(path string) ToolkitOption {
	return func(t *Toolkit) {
		if path != "" {
			t.setFile = path
		}
	}
}

// WithVerbose enables the keychain diagnostics after a failed signature.
func WithVerbose(verbose bool) ToolkitOption {
	return func(t *Toolkit) {
		t.verbose = verbose
	}
}

// WithSignTimeout bounds the codesign invocation. Zero waits forever.
func WithSignTimeout(timeout time.Duration) ToolkitOption {
	return func(t *Toolkit) {
		t.signTimeout = timeout
	}
}

// NewToolkit creates a toolkit running commands through runner.
func NewToolkit(runner Runner, opts ...ToolkitOption) *Toolkit {
	t := &Toolkit{
		runner:  runner,
		setFile: DefaultSetFilePath,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// MakeExecutable sets mode 0755 on path. On the target platform this runs
// chmod; elsewhere the mode is applied natively.
func (t *Toolkit) MakeExecutable(ctx context.Context, path string, isTarget bool) error {
	if !isTarget {
		if err := os.Chmod(path, executableMode); err != nil {
			return fmt.Errorf("%w: chmod %s: %w", bundle.ErrToolExecution, path, err)
		}

		logger.DebugKV(ctx, "Launcher permissions set natively", "path", path)

		return nil
	}

	result := t.runner.Run(ctx, NewCommand(ChmodTool, "755", path))

	switch result.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeNonZeroExit:
		logger.WarnKV(ctx, "chmod exited unsuccessfully", "path", path,
			"exit_code", result.ExitCode, "stderr", result.StderrText())

		return nil
	default:
		return fatal(result)
	}
}

// SetBundleAttribute marks the bundle directory as a bundle with SetFile.
// A missing SetFile and a non-zero exit only produce warnings.
func (t *Toolkit) SetBundleAttribute(ctx context.Context, bundleDir string) error {
	if _, err := os.Stat(t.setFile); err != nil {
		logger.WarnKV(ctx, "Could not set 'Has Bundle' attribute: SetFile not found. "+
			"Install the developer tools to get it", "set_file", t.setFile)

		return nil
	}

	result := t.runner.Run(ctx, NewCommand(t.setFile, "-a", "B", bundleDir))

	switch result.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeNonZeroExit:
		logger.WarnKV(ctx, "SetFile exited unsuccessfully", "bundle", bundleDir,
			"exit_code", result.ExitCode, "stderr", result.StderrText())

		return nil
	default:
		return fatal(result)
	}
}

// SignArgs returns the codesign arguments for signing bundleDir.
func SignArgs(signing bundle.Signing, bundleDir string) []string {
	args := []string{"-s", signing.Identity}
	if signing.Identifier != "" {
		args = append(args, "-i", signing.Identifier)
	}

	args = append(args, "-f", "-vvvv")
	if signing.Keychain != "" {
		args = append(args, "--keychain", signing.Keychain)
	}

	return append(args, bundleDir)
}

// Sign signs bundleDir with codesign. A rejected signature and an interrupted
// or timed out wait are warnings; only a launch failure aborts.
func (t *Toolkit) Sign(ctx context.Context, signing bundle.Signing, bundleDir string) error {
	cmd := NewCommand(CodesignTool, SignArgs(signing, bundleDir)...)
	cmd.Timeout = t.signTimeout

	logger.InfoKV(ctx, "Signing bundle", "identity", signing.Identity, "bundle", bundleDir)

	result := t.runner.Run(ctx, cmd)

	switch result.Outcome {
	case OutcomeSuccess:
		logger.DebugKV(ctx, "codesign finished", "output", result.StderrText())

		return nil
	case OutcomeNonZeroExit:
		hint := "retry with --verbose to get more info"
		if t.verbose {
			hint = "verify that CFBundleExecutable and the other manifest properties are correct, " +
				"and check the availability of your certificates in the keychains"
		}

		logger.WarnKV(ctx, "Failed to sign application bundle", "exit_code", result.ExitCode,
			"stderr", result.StderrText(), "hint", hint)

		if t.verbose {
			t.signingDiagnostics(ctx)
		}

		return nil
	case OutcomeInterrupted:
		logger.WarnKV(ctx, "Signing was interrupted", "error", result.Err)

		return nil
	default:
		return fatal(result)
	}
}

// signingDiagnostics logs the keychains and the signing identities the
// current user can see. Each command is awaited on its own.
func (t *Toolkit) signingDiagnostics(ctx context.Context) {
	diagnostics := []Command{
		NewCommand(SecurityTool, "list-keychains"),
		NewCommand(SecurityTool, "find-identity", "-v", "-p", "codesigning"),
	}

	for _, cmd := range diagnostics {
		result := t.runner.Run(ctx, cmd)
		if !result.Succeeded() {
			logger.WarnKV(ctx, "Diagnostic command failed", "command", cmd.String(),
				"outcome", result.Outcome.String(), "error", result.Err)

			continue
		}

		logger.WarnKV(ctx, "Signing diagnostics", "command", cmd.String(), "output", result.StdoutText())
	}
}

// CreateDiskImage builds a disk image of srcDir at dmg. Any failure aborts.
func (t *Toolkit) CreateDiskImage(ctx context.Context, srcDir, dmg string) error {
	logger.InfoKV(ctx, "Creating disk image", "source", srcDir, "disk_image", dmg)

	return required(t.runner.Run(ctx, NewCommand(HdiutilTool, "create", "-srcfolder", srcDir, "-ov", dmg)))
}

// InternetEnable marks dmg as internet-enabled. Any failure aborts.
func (t *Toolkit) InternetEnable(ctx context.Context, dmg string) error {
	logger.InfoKV(ctx, "Enabling disk image for internet delivery", "disk_image", dmg)

	return required(t.runner.Run(ctx, NewCommand(HdiutilTool, "internet-enable", "-yes", dmg)))
}

// required turns every unsuccessful result into an error.
func required(result *Result) error {
	if result.Succeeded() {
		return nil
	}

	return fatal(result)
}

// fatal maps an unsuccessful result to the matching sentinel.
func fatal(result *Result) error {
	switch result.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeLaunchFailure:
		return fmt.Errorf("%w: %s: %w", bundle.ErrToolLaunch, result.Command.String(), result.Err)
	case OutcomeNonZeroExit:
		return fmt.Errorf("%w: %s exited with code %d: %s: %w", bundle.ErrToolExecution,
			result.Command.Name, result.ExitCode, result.StderrText(), result.Err)
	default:
		err := result.Err
		if err == nil {
			err = errInterrupted
		}

		return fmt.Errorf("%w: %s: %w", bundle.ErrToolExecution, result.Command.String(), err)
	}
}

// errInterrupted is used when an interrupted result carries no cause.
var errInterrupted = errors.New("interrupted")
