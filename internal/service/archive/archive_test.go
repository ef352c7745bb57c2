package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

func buildTree(t *testing.T) (string, string) {
	t.Helper()

	buildDir := filepath.Join(t.TempDir(), "demo-1.0")
	macOS := filepath.Join(buildDir, "Demo.app", "Contents", "MacOS")
	java := filepath.Join(buildDir, "Demo.app", "Contents", "Resources", "Java")

	require.NoError(t, os.MkdirAll(macOS, 0o755))
	require.NoError(t, os.MkdirAll(java, 0o755))

	launcher := filepath.Join(macOS, "Demo")
	require.NoError(t, os.WriteFile(launcher, []byte("#!/bin/sh\necho demo\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(java, "demo.jar"), []byte("jar"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "README.txt"), []byte("readme"), 0o600))

	return buildDir, launcher
}

func readEntries(t *testing.T, target string) map[string]*zip.File {
	t.Helper()

	reader, err := zip.OpenReader(target)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = reader.Close()
	})

	entries := make(map[string]*zip.File, len(reader.File))
	for _, file := range reader.File {
		_, duplicate := entries[file.Name]
		require.False(t, duplicate, file.Name)

		entries[file.Name] = file
	}

	return entries
}

func TestCreateKeepsLauncherExecutable(t *testing.T) {
	t.Parallel()

	buildDir, launcher := buildTree(t)
	target := filepath.Join(filepath.Dir(buildDir), "demo-1.0-app.zip")

	err := Create(context.Background(), Options{Target: target, BuildDir: buildDir, Launcher: launcher})
	require.NoError(t, err)

	entries := readEntries(t, target)

	stub, ok := entries["demo-1.0/Demo.app/Contents/MacOS/Demo"]
	require.True(t, ok)
	require.Equal(t, os.FileMode(0o755), stub.Mode().Perm())
	require.Equal(t, zip.Deflate, stub.Method)

	jar, ok := entries["demo-1.0/Demo.app/Contents/Resources/Java/demo.jar"]
	require.True(t, ok)
	require.Equal(t, os.FileMode(0o644), jar.Mode().Perm())

	readme, ok := entries["demo-1.0/README.txt"]
	require.True(t, ok)

	rc, err := readme.Open()
	require.NoError(t, err)

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "readme", string(content))

	for _, dir := range []string{"demo-1.0/", "demo-1.0/Demo.app/", "demo-1.0/Demo.app/Contents/MacOS/"} {
		entry, found := entries[dir]
		require.True(t, found, dir)
		require.True(t, entry.Mode().IsDir())
		require.Equal(t, os.FileMode(0o755), entry.Mode().Perm())
	}
}

func TestCreateSkipsArchiveInsideBuildDir(t *testing.T) {
	t.Parallel()

	buildDir, launcher := buildTree(t)
	target := filepath.Join(buildDir, "self.zip")

	require.NoError(t, Create(context.Background(), Options{Target: target, BuildDir: buildDir, Launcher: launcher}))

	entries := readEntries(t, target)
	require.NotContains(t, entries, "demo-1.0/self.zip")
	require.Contains(t, entries, "demo-1.0/Demo.app/Contents/MacOS/Demo")
}

func TestCreateFailures(t *testing.T) {
	t.Parallel()

	buildDir, _ := buildTree(t)
	target := filepath.Join(t.TempDir(), "out.zip")

	err := Create(context.Background(), Options{
		Target:   target,
		BuildDir: buildDir,
		Launcher: filepath.Join(buildDir, "missing"),
	})
	require.ErrorIs(t, err, bundle.ErrArchive)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Create(ctx, Options{Target: target, BuildDir: buildDir, Launcher: filepath.Join(buildDir, "README.txt")})
	require.ErrorIs(t, err, bundle.ErrArchive)
	require.ErrorIs(t, err, context.Canceled)
}
