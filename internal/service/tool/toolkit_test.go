package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// fakeRunner records commands and answers with results keyed by tool name.
type fakeRunner struct {
	results  map[string]*Result
	commands []Command
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) *Result {
	f.commands = append(f.commands, cmd)

	if result, ok := f.results[filepath.Base(cmd.Name)]; ok {
		copied := *result
		copied.Command = cmd

		return &copied
	}

	return &Result{Command: cmd, Outcome: OutcomeSuccess}
}

func (f *fakeRunner) lines() []string {
	lines := make([]string, 0, len(f.commands))
	for _, cmd := range f.commands {
		lines = append(lines, cmd.String())
	}

	return lines
}

var errFake = errors.New("fake failure")

func nonZero(code int, stderr string) *Result {
	return &Result{Outcome: OutcomeNonZeroExit, ExitCode: code, Stderr: []byte(stderr), Err: errFake}
}

func launchFailure() *Result {
	return &Result{Outcome: OutcomeLaunchFailure, ExitCode: -1, Err: errFake}
}

func interrupted() *Result {
	return &Result{Outcome: OutcomeInterrupted, ExitCode: -1, Err: context.DeadlineExceeded}
}

func TestSignArgs(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"-s", "Dev ID", "-f", "-vvvv", "/out/My App.app"},
		SignArgs(bundle.Signing{Identity: "Dev ID"}, "/out/My App.app"))

	require.Equal(t,
		[]string{"-s", "Dev ID", "-i", "org.example", "-f", "-vvvv", "--keychain", "login.keychain", "/out/Demo.app"},
		SignArgs(bundle.Signing{Identity: "Dev ID", Identifier: "org.example", Keychain: "login.keychain"}, "/out/Demo.app"))
}

func TestMakeExecutableOffTarget(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Demo")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o600))

	runner := &fakeRunner{}
	require.NoError(t, NewToolkit(runner).MakeExecutable(context.Background(), path, false))
	require.Empty(t, runner.commands)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	err = NewToolkit(runner).MakeExecutable(context.Background(), filepath.Join(t.TempDir(), "missing"), false)
	require.ErrorIs(t, err, bundle.ErrToolExecution)
}

func TestMakeExecutableOnTarget(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	require.NoError(t, NewToolkit(runner).MakeExecutable(context.Background(), "/b/Demo", true))
	require.Equal(t, []string{"chmod 755 /b/Demo"}, runner.lines())

	runner = &fakeRunner{results: map[string]*Result{ChmodTool: nonZero(1, "no")}}
	require.NoError(t, NewToolkit(runner).MakeExecutable(context.Background(), "/b/Demo", true))

	runner = &fakeRunner{results: map[string]*Result{ChmodTool: launchFailure()}}
	err := NewToolkit(runner).MakeExecutable(context.Background(), "/b/Demo", true)
	require.ErrorIs(t, err, bundle.ErrToolLaunch)
}

func TestSetBundleAttribute(t *testing.T) {
	t.Parallel()

	setFile := filepath.Join(t.TempDir(), "SetFile")
	require.NoError(t, os.WriteFile(setFile, []byte("#!/bin/sh\n"), 0o600))

	runner := &fakeRunner{}
	require.NoError(t, NewToolkit(runner, WithSetFile(setFile)).SetBundleAttribute(context.Background(), "/b/Demo.app"))
	require.Equal(t, []string{setFile + " -a B /b/Demo.app"}, runner.lines())

	// Missing tool is only a warning.
	runner = &fakeRunner{}
	missing := filepath.Join(t.TempDir(), "SetFile")
	require.NoError(t, NewToolkit(runner, WithSetFile(missing)).SetBundleAttribute(context.Background(), "/b/Demo.app"))
	require.Empty(t, runner.commands)

	runner = &fakeRunner{results: map[string]*Result{"SetFile": nonZero(2, "bad")}}
	require.NoError(t, NewToolkit(runner, WithSetFile(setFile)).SetBundleAttribute(context.Background(), "/b/Demo.app"))

	runner = &fakeRunner{results: map[string]*Result{"SetFile": launchFailure()}}
	err := NewToolkit(runner, WithSetFile(setFile)).SetBundleAttribute(context.Background(), "/b/Demo.app")
	require.ErrorIs(t, err, bundle.ErrToolLaunch)
}

func TestSign(t *testing.T) {
	t.Parallel()

	signing := bundle.Signing{Identity: "Dev ID"}

	runner := &fakeRunner{}
	toolkit := NewToolkit(runner, WithSignTimeout(time.Minute))
	require.NoError(t, toolkit.Sign(context.Background(), signing, "/b/Demo.app"))
	require.Len(t, runner.commands, 1)
	require.Equal(t, time.Minute, runner.commands[0].Timeout)

	// Rejected signature without verbose: warning, no diagnostics.
	runner = &fakeRunner{results: map[string]*Result{CodesignTool: nonZero(1, "no identity found")}}
	require.NoError(t, NewToolkit(runner).Sign(context.Background(), signing, "/b/Demo.app"))
	require.Len(t, runner.commands, 1)

	// Rejected signature in verbose mode runs both diagnostics in order.
	runner = &fakeRunner{results: map[string]*Result{CodesignTool: nonZero(1, "no identity found")}}
	require.NoError(t, NewToolkit(runner, WithVerbose(true)).Sign(context.Background(), signing, "/b/Demo.app"))
	require.Equal(t, []string{
		"codesign -s Dev ID -f -vvvv /b/Demo.app",
		"security list-keychains",
		"security find-identity -v -p codesigning",
	}, runner.lines())

	runner = &fakeRunner{results: map[string]*Result{CodesignTool: interrupted()}}
	require.NoError(t, NewToolkit(runner).Sign(context.Background(), signing, "/b/Demo.app"))

	runner = &fakeRunner{results: map[string]*Result{CodesignTool: launchFailure()}}
	err := NewToolkit(runner).Sign(context.Background(), signing, "/b/Demo.app")
	require.ErrorIs(t, err, bundle.ErrToolLaunch)
	require.ErrorIs(t, err, errFake)
}

func TestDiskImage(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	toolkit := NewToolkit(runner)
	require.NoError(t, toolkit.CreateDiskImage(context.Background(), "/out/Demo", "/out/Demo.dmg"))
	require.NoError(t, toolkit.InternetEnable(context.Background(), "/out/Demo.dmg"))
	require.Equal(t, []string{
		"hdiutil create -srcfolder /out/Demo -ov /out/Demo.dmg",
		"hdiutil internet-enable -yes /out/Demo.dmg",
	}, runner.lines())

	runner = &fakeRunner{results: map[string]*Result{HdiutilTool: nonZero(1, "hdiutil: create failed")}}
	err := NewToolkit(runner).CreateDiskImage(context.Background(), "/out/Demo", "/out/Demo.dmg")
	require.ErrorIs(t, err, bundle.ErrToolExecution)
	require.Contains(t, err.Error(), "hdiutil: create failed")

	runner = &fakeRunner{results: map[string]*Result{HdiutilTool: launchFailure()}}
	err = NewToolkit(runner).InternetEnable(context.Background(), "/out/Demo.dmg")
	require.ErrorIs(t, err, bundle.ErrToolLaunch)

	runner = &fakeRunner{results: map[string]*Result{HdiutilTool: interrupted()}}
	err = NewToolkit(runner).CreateDiskImage(context.Background(), "/out/Demo", "/out/Demo.dmg")
	require.ErrorIs(t, err, bundle.ErrToolExecution)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
