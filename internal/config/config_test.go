package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

func validConfig() *Config {
	return &Config{
		Bundle: BundleConfig{
			Name:      "Demo",
			MainClass: "org.example.demo.Main",
		},
		Project: ProjectConfig{
			Artifact: ArtifactConfig{
				GroupID:    "org.example",
				ArtifactID: "demo",
				Version:    "1.0",
				File:       "build/demo-1.0.jar",
			},
		},
	}
}

// TestValidate checks required fields and the bundle name check.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing name.
	cfg := validConfig()
	cfg.Bundle.Name = ""
	require.ErrorIs(t, Validate(cfg), bundle.ErrInvalidSpec)

	// Name that cannot be a file name.
	cfg = validConfig()
	cfg.Bundle.Name = "Demo/App"
	require.ErrorIs(t, Validate(cfg), bundle.ErrInvalidSpec)

	// Missing main class.
	cfg = validConfig()
	cfg.Bundle.MainClass = ""
	require.ErrorIs(t, Validate(cfg), bundle.ErrInvalidSpec)

	// Incomplete artifact.
	cfg = validConfig()
	cfg.Project.Artifact.File = ""
	require.ErrorIs(t, Validate(cfg), bundle.ErrInvalidSpec)

	// Resource set without a directory.
	cfg = validConfig()
	cfg.AdditionalResources = []ResourceConfig{{Includes: []string{"*.txt"}}}
	require.ErrorIs(t, Validate(cfg), bundle.ErrInvalidSpec)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestValidateDefaults ensures defaults follow the build directory conventions.
func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, Validate(cfg))

	require.Equal(t, "1.0", cfg.Bundle.Version)
	require.Equal(t, DefaultJVMVersion, cfg.Bundle.JVMVersion)
	require.Equal(t, DefaultLauncherStub, cfg.Bundle.LauncherStub)
	require.Equal(t, DefaultTemplate, cfg.Template)
	require.Equal(t, DefaultSetFilePath, cfg.Tools.SetFile)
	require.Equal(t, "demo-1.0", cfg.Output.FinalName)
	require.Equal(t, filepath.Join("target", "demo-1.0"), cfg.Output.BuildDirectory)
	require.Equal(t, filepath.Join("target", "demo-1.0.dmg"), cfg.Output.DiskImage)
	require.Equal(t, filepath.Join("target", "demo-1.0-app.zip"), cfg.Output.ZipFile)

	spec := cfg.Spec()
	require.True(t, spec.KeepStubName)
	require.Equal(t, "JavaApplicationStub", spec.ExecutableName())
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back with resolved paths.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)

	keep := false
	cfg := validConfig()
	cfg.Bundle.KeepStubName = &keep
	cfg.Project.Dependencies = []ArtifactConfig{
		{GroupID: "org.example", ArtifactID: "a", Version: "1.0", File: "libs/a-1.0.jar"},
	}
	cfg.AdditionalResources = []ResourceConfig{{Directory: "docs"}}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Bundle.Name, loaded.Bundle.Name)

	spec := loaded.Spec()
	require.False(t, spec.KeepStubName)
	require.Equal(t, "Demo", spec.ExecutableName())

	require.Equal(t, filepath.Join(dir, "build", "demo-1.0.jar"), loaded.PrimaryArtifact().File)
	require.Equal(t, filepath.Join(dir, "libs", "a-1.0.jar"), loaded.Dependencies()[0].File)
	require.Equal(t, filepath.Join(dir, "target", "demo-1.0"), loaded.BuildDirectory())

	resources := loaded.Resources()
	require.Len(t, resources, 1)
	require.Equal(t, filepath.Join(dir, "docs"), resources[0].Directory)
	require.True(t, resources[0].UseDefaultExcludes)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadMissing verifies a missing file is reported.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// TestExample checks that the starter configuration is valid once saved and loaded.
func TestExample(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)

	require.NoError(t, Save(path, Example()))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, dir, loaded.BaseDir())
	require.Equal(t, "myapp-1.0.0", loaded.Output.FinalName)
	require.Equal(t, filepath.Join(dir, "target", "myapp-1.0.0-app.zip"), loaded.ZipFile())
	require.Equal(t, DefaultTemplate, loaded.Template)
}
