package config

import (
	"path/filepath"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// ResolvePath returns path made absolute against the configuration directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	base := c.baseDir
	if base == "" {
		if wd, err := filepath.Abs("."); err == nil {
			base = wd
		}
	}

	return filepath.Join(base, path)
}

// SetBaseDir overrides the directory relative paths are resolved against.
func (c *Config) SetBaseDir(dir string) {
	c.baseDir = dir
}

// Spec builds the immutable bundle description.
func (c *Config) Spec() bundle.Spec {
	keepStubName := true
	if c.Bundle.KeepStubName != nil {
		keepStubName = *c.Bundle.KeepStubName
	}

	return bundle.Spec{
		Name:         c.Bundle.Name,
		Identifier:   c.Bundle.Identifier,
		Version:      c.Bundle.Version,
		MainClass:    c.Bundle.MainClass,
		IconFile:     c.ResolvePath(c.Bundle.IconFile),
		JVMVersion:   c.Bundle.JVMVersion,
		VMOptions:    c.Bundle.VMOptions,
		LauncherStub: c.ResolvePath(c.Bundle.LauncherStub),
		KeepStubName: keepStubName,
		Signing: bundle.Signing{
			Keychain:   c.Codesign.Keychain,
			Identity:   c.Codesign.Identity,
			Identifier: c.Codesign.Identifier,
		},
	}
}

// PrimaryArtifact returns the project's own artifact.
func (c *Config) PrimaryArtifact() bundle.Artifact {
	return c.toArtifact(c.Project.Artifact)
}

// Dependencies returns the runtime dependencies in host order.
func (c *Config) Dependencies() []bundle.Artifact {
	artifacts := make([]bundle.Artifact, 0, len(c.Project.Dependencies))
	for _, dependency := range c.Project.Dependencies {
		artifacts = append(artifacts, c.toArtifact(dependency))
	}

	return artifacts
}

// Resources returns the additional resource file sets. Default excludes are
// enabled unless explicitly turned off.
func (c *Config) Resources() []bundle.ResourceFileSet {
	sets := make([]bundle.ResourceFileSet, 0, len(c.AdditionalResources))
	for _, resource := range c.AdditionalResources {
		useDefaultExcludes := true
		if resource.UseDefaultExcludes != nil {
			useDefaultExcludes = *resource.UseDefaultExcludes
		}

		sets = append(sets, bundle.ResourceFileSet{
			Directory:          c.ResolvePath(resource.Directory),
			Includes:           resource.Includes,
			Excludes:           resource.Excludes,
			UseDefaultExcludes: useDefaultExcludes,
		})
	}

	return sets
}

// BuildDirectory returns the absolute build directory.
func (c *Config) BuildDirectory() string {
	return c.ResolvePath(c.Output.BuildDirectory)
}

// DiskImage returns the absolute disk image path.
func (c *Config) DiskImage() string {
	return c.ResolvePath(c.Output.DiskImage)
}

// ZipFile returns the absolute archive path.
func (c *Config) ZipFile() string {
	return c.ResolvePath(c.Output.ZipFile)
}

// AttachmentsFile returns the absolute attachments file path.
func (c *Config) AttachmentsFile() string {
	return c.ResolvePath(c.Output.AttachmentsFile)
}

func (c *Config) toArtifact(a ArtifactConfig) bundle.Artifact {
	return bundle.Artifact{
		Coordinate: bundle.Coordinate{
			GroupID:     a.GroupID,
			ArtifactID:  a.ArtifactID,
			Version:     a.Version,
			BaseVersion: a.BaseVersion,
			Classifier:  a.Classifier,
			Type:        a.Type,
			Extension:   a.Extension,
		},
		File: c.ResolvePath(a.File),
	}
}

// BaseDir returns the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	return c.ResolvePath(".")
}
