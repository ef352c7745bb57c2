package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flytam/filenamify"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// Config is the root of the appbundle.yaml file.
type Config struct {
	// Bundle describes the application bundle.
	Bundle BundleConfig `yaml:"bundle"`
	// Codesign holds optional signing parameters.
	Codesign CodesignConfig `yaml:"codesign,omitempty"`
	// Output controls where the bundle, disk image and archive are written.
	Output OutputConfig `yaml:"output,omitempty"`
	// Project is the resolved artifact set handed over by the build host.
	Project ProjectConfig `yaml:"project"`
	// Template is the manifest template identifier, embedded first then filesystem.
	Template string `yaml:"template,omitempty"`
	// AdditionalClasspath entries are appended verbatim to the manifest classpath.
	AdditionalClasspath []string `yaml:"additional_classpath,omitempty"`
	// AdditionalResources are copied into the build directory next to the bundle.
	AdditionalResources []ResourceConfig `yaml:"additional_resources,omitempty"`
	// SortDependencies orders dependencies by coordinate instead of host order.
	SortDependencies bool `yaml:"sort_dependencies,omitempty"`
	// Tools configures the external tools.
	Tools ToolsConfig `yaml:"tools,omitempty"`

	// baseDir is the directory relative paths are resolved against.
	baseDir string
}

// BundleConfig describes the application bundle.
type BundleConfig struct {
	Name         string `yaml:"name"`
	Identifier   string `yaml:"identifier,omitempty"`
	Version      string `yaml:"version,omitempty"`
	MainClass    string `yaml:"main_class"`
	IconFile     string `yaml:"icon_file,omitempty"`
	JVMVersion   string `yaml:"jvm_version,omitempty"`
	VMOptions    string `yaml:"vm_options,omitempty"`
	LauncherStub string `yaml:"launcher_stub,omitempty"`
	// KeepStubName defaults to true when omitted.
	KeepStubName *bool `yaml:"keep_stub_name,omitempty"`
}

// CodesignConfig holds the codesign parameters.
type CodesignConfig struct {
	Keychain   string `yaml:"keychain,omitempty"`
	Identity   string `yaml:"identity,omitempty"`
	Identifier string `yaml:"identifier,omitempty"`
	// Timeout bounds the codesign invocation; zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// OutputConfig controls output locations.
type OutputConfig struct {
	// Directory is the build output root, "target" by default.
	Directory string `yaml:"directory,omitempty"`
	// FinalName defaults to <artifact_id>-<version>.
	FinalName string `yaml:"final_name,omitempty"`
	// BuildDirectory defaults to <directory>/<final_name>.
	BuildDirectory string `yaml:"build_directory,omitempty"`
	// DiskImage defaults to <directory>/<final_name>.dmg.
	DiskImage string `yaml:"disk_image,omitempty"`
	// ZipFile defaults to <directory>/<final_name>-app.zip.
	ZipFile string `yaml:"zip_file,omitempty"`
	// AttachmentsFile defaults to <directory>/<final_name>-attachments.yaml.
	AttachmentsFile string `yaml:"attachments_file,omitempty"`
	// InternetEnable marks the disk image as internet-enabled.
	InternetEnable bool `yaml:"internet_enable,omitempty"`
}

// ProjectConfig is the resolved artifact set.
type ProjectConfig struct {
	// Artifact is the primary project artifact.
	Artifact ArtifactConfig `yaml:"artifact"`
	// Dependencies are the resolved runtime dependencies.
	Dependencies []ArtifactConfig `yaml:"dependencies,omitempty"`
}

// ArtifactConfig is a single resolved artifact.
type ArtifactConfig struct {
	GroupID     string `yaml:"group_id"`
	ArtifactID  string `yaml:"artifact_id"`
	Version     string `yaml:"version"`
	BaseVersion string `yaml:"base_version,omitempty"`
	Classifier  string `yaml:"classifier,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Extension   string `yaml:"extension,omitempty"`
	File        string `yaml:"file"`
}

// ResourceConfig is an additional resource file set.
type ResourceConfig struct {
	Directory          string   `yaml:"directory"`
	Includes           []string `yaml:"includes,omitempty"`
	Excludes           []string `yaml:"excludes,omitempty"`
	UseDefaultExcludes *bool    `yaml:"use_default_excludes,omitempty"`
}

// ToolsConfig configures external tools.
type ToolsConfig struct {
	// SetFile is the path to the attribute-setting tool.
	SetFile string `yaml:"set_file,omitempty"`
}

const (
	// DefaultConfigFilename is the default configuration file name.
	DefaultConfigFilename = "appbundle.yaml"

	// DefaultTemplate is the embedded Info.plist template.
	DefaultTemplate = "Info.plist.tmpl"

	// DefaultLauncherStub is where macOS ships the Java application stub.
	DefaultLauncherStub = "/System/Library/Frameworks/JavaVM.framework/Versions/Current/Resources/MacOS/JavaApplicationStub"

	// DefaultJVMVersion is the JVMVersion written when none is configured.
	DefaultJVMVersion = "1.4+"

	// DefaultSetFilePath is where the Developer Tools install SetFile.
	DefaultSetFilePath = "/usr/bin/SetFile"

	// DefaultOutputDirectory is the build output root.
	DefaultOutputDirectory = "target"

	// DefaultFilePermissions is the permission of files written by Save.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBundleNameRequired is returned when the bundle name is missing.
	errBundleNameRequired = errors.New("bundle name must be provided")
	// errMainClassRequired is returned when the main class is missing.
	errMainClassRequired = errors.New("main class must be provided")
	// errArtifactRequired is returned when the primary artifact is incomplete.
	errArtifactRequired = errors.New("project artifact needs artifact_id, version and file")
	// errResourceDirRequired is returned when a resource set has no directory.
	errResourceDirRequired = errors.New("additional resource directory must be provided")
)

// Load reads configuration from the provided path and validates it.
// Relative paths inside the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	cfg.baseDir = filepath.Dir(absPath)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Bundle.Name == "" {
		return fmt.Errorf("%w: %w", bundle.ErrInvalidSpec, errBundleNameRequired)
	}

	// The name becomes both a directory and the launcher file name.
	sanitized, err := filenamify.FilenamifyV2(cfg.Bundle.Name)
	if err != nil || sanitized != cfg.Bundle.Name {
		return fmt.Errorf("%w: bundle name %q is not a valid file name", bundle.ErrInvalidSpec, cfg.Bundle.Name)
	}

	if cfg.Bundle.MainClass == "" {
		return fmt.Errorf("%w: %w", bundle.ErrInvalidSpec, errMainClassRequired)
	}

	artifact := cfg.Project.Artifact
	if artifact.ArtifactID == "" || artifact.Version == "" || artifact.File == "" {
		return fmt.Errorf("%w: %w", bundle.ErrInvalidSpec, errArtifactRequired)
	}

	for i, resource := range cfg.AdditionalResources {
		if resource.Directory == "" {
			return fmt.Errorf("%w: additional_resources[%d]: %w", bundle.ErrInvalidSpec, i, errResourceDirRequired)
		}
	}

	applyDefaults(cfg)

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bundle.Version == "" {
		cfg.Bundle.Version = cfg.Project.Artifact.Version
	}

	if cfg.Bundle.JVMVersion == "" {
		cfg.Bundle.JVMVersion = DefaultJVMVersion
	}

	if cfg.Bundle.LauncherStub == "" {
		cfg.Bundle.LauncherStub = DefaultLauncherStub
	}

	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}

	if cfg.Tools.SetFile == "" {
		cfg.Tools.SetFile = DefaultSetFilePath
	}

	out := &cfg.Output
	if out.Directory == "" {
		out.Directory = DefaultOutputDirectory
	}

	if out.FinalName == "" {
		out.FinalName = cfg.Project.Artifact.ArtifactID + "-" + cfg.Project.Artifact.Version
	}

	if out.BuildDirectory == "" {
		out.BuildDirectory = filepath.Join(out.Directory, out.FinalName)
	}

	if out.DiskImage == "" {
		out.DiskImage = filepath.Join(out.Directory, out.FinalName+".dmg")
	}

	if out.ZipFile == "" {
		out.ZipFile = filepath.Join(out.Directory, out.FinalName+"-app.zip")
	}

	if out.AttachmentsFile == "" {
		out.AttachmentsFile = filepath.Join(out.Directory, out.FinalName+"-attachments.yaml")
	}
}

// Example returns a starter configuration for `appbundle init`.
func Example() *Config {
	keepStubName := true

	return &Config{
		Bundle: BundleConfig{
			Name:         "MyApp",
			Identifier:   "com.example.myapp",
			MainClass:    "com.example.myapp.Main",
			JVMVersion:   DefaultJVMVersion,
			LauncherStub: DefaultLauncherStub,
			KeepStubName: &keepStubName,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDirectory,
		},
		Project: ProjectConfig{
			Artifact: ArtifactConfig{
				GroupID:    "com.example",
				ArtifactID: "myapp",
				Version:    "1.0.0",
				File:       "target/myapp-1.0.0.jar",
			},
		},
		Template: DefaultTemplate,
		Tools: ToolsConfig{
			SetFile: DefaultSetFilePath,
		},
	}
}
