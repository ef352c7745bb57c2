package bundle

import (
	"fmt"
	"strings"
)

// Coordinate identifies an artifact in a Maven repository.
type Coordinate struct {
	// GroupID is the dotted group, e.g. "org.example".
	GroupID string
	// ArtifactID is the artifact name.
	ArtifactID string
	// Version is the resolved version; for timestamped snapshots this is the
	// unique version such as "1.0-20240101.120000-3".
	Version string
	// BaseVersion is the version used for the directory name. Derived from
	// Version when empty.
	BaseVersion string
	// Classifier distinguishes secondary artifacts, e.g. "sources".
	Classifier string
	// Type is the dependency type, "jar" when empty.
	Type string
	// Extension overrides the extension derived from Type.
	Extension string
}

// DefaultType is the dependency type assumed when none is given.
const DefaultType = "jar"

// Kind returns the dependency type, DefaultType when empty.
func (c Coordinate) Kind() string {
	if c.Type == "" {
		return DefaultType
	}

	return c.Type
}

// Key returns a string that is unique per distinct coordinate. An empty type
// and "jar" yield the same key.
func (c Coordinate) Key() string {
	return strings.Join([]string{c.GroupID, c.ArtifactID, c.Version, c.Classifier, c.Kind()}, ":")
}

// String renders the coordinate in the usual group:artifact:type[:classifier]:version form.
func (c Coordinate) String() string {
	kind := c.Kind()

	if c.Classifier != "" {
		return fmt.Sprintf("%s:%s:%s:%s:%s", c.GroupID, c.ArtifactID, kind, c.Classifier, c.Version)
	}

	return fmt.Sprintf("%s:%s:%s:%s", c.GroupID, c.ArtifactID, kind, c.Version)
}

// Artifact is a resolved dependency backed by a file on disk.
type Artifact struct {
	Coordinate

	// File is the resolved file of the artifact.
	File string
}

// ArtifactRef records where an artifact was copied inside the bundle.
type ArtifactRef struct {
	// Artifact is the copied artifact.
	Artifact Artifact
	// Source is the file that was copied.
	Source string
	// Destination is the path relative to the Java directory, e.g. "repo/org/x/...".
	Destination string
}

// ResourceFileSet requests extra files to be copied into the build directory.
type ResourceFileSet struct {
	// Directory is the source directory.
	Directory string
	// Includes are glob patterns of files to copy; everything when empty.
	Includes []string
	// Excludes are glob patterns of files to skip.
	Excludes []string
	// UseDefaultExcludes skips SCM and editor files.
	UseDefaultExcludes bool
}

// Attachment is an output file handed back to the build host.
type Attachment struct {
	// Classifier names the kind of output, "dmg" or "zip".
	Classifier string `yaml:"classifier"`
	// File is the absolute path of the output.
	File string `yaml:"file"`
}

const (
	// ClassifierDiskImage labels the disk image attachment.
	ClassifierDiskImage = "dmg"
	// ClassifierArchive labels the zip attachment.
	ClassifierArchive = "zip"
)
