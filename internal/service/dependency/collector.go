package dependency

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/fileutil"
	"github.com/oshokin/appbundle/internal/logger"
)

var (
	// errNoFile is returned for an artifact without a backing file.
	errNoFile = errors.New("artifact has no file")
	// errCollision is returned when two distinct artifacts share a destination.
	errCollision = errors.New("destination already used by another artifact")
)

// Option configures Collect.
type Option func(*options)

type options struct {
	sorted bool
}

// WithSortedDependencies orders dependencies by coordinate instead of host order.
func WithSortedDependencies(sorted bool) Option {
	return func(o *options) {
		o.sorted = sorted
	}
}

// Collect copies primary and then dependencies into <javaDir>/repo and returns
// the copied references in manifest order. A failing copy aborts with the
// files copied so far left in place.
func Collect(
	ctx context.Context,
	javaDir string,
	primary bundle.Artifact,
	dependencies []bundle.Artifact,
	opts ...Option,
) ([]bundle.ArtifactRef, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ordered := append([]bundle.Artifact(nil), dependencies...)
	if o.sorted {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Key() < ordered[j].Key()
		})
	}

	ordered = append([]bundle.Artifact{primary}, ordered...)

	var (
		refs = make([]bundle.ArtifactRef, 0, len(ordered))
		seen = make(map[string]string, len(ordered))
	)

	for _, artifact := range ordered {
		destination := RelativePath(artifact.Coordinate)

		if owner, ok := seen[destination]; ok {
			if owner == artifact.Key() {
				logger.DebugKV(ctx, "Skipping duplicate artifact", "artifact", artifact.String())
				continue
			}

			return refs, fmt.Errorf("%w: %s: %s: %w", bundle.ErrDependencyCopy, artifact, destination, errCollision)
		}

		if err := copyArtifact(ctx, javaDir, destination, artifact); err != nil {
			return refs, err
		}

		seen[destination] = artifact.Key()
		refs = append(refs, bundle.ArtifactRef{
			Artifact:    artifact,
			Source:      artifact.File,
			Destination: destination,
		})
	}

	logger.InfoKV(ctx, "Dependencies copied", "count", len(refs), "sorted", o.sorted)

	return refs, nil
}

// Paths returns the destinations of refs in order.
func Paths(refs []bundle.ArtifactRef) []string {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		paths = append(paths, ref.Destination)
	}

	return paths
}

func copyArtifact(ctx context.Context, javaDir, destination string, artifact bundle.Artifact) error {
	if artifact.File == "" {
		return fmt.Errorf("%w: %s: %w", bundle.ErrDependencyCopy, artifact, errNoFile)
	}

	logger.DebugKV(ctx, "Adding artifact", "artifact", artifact.String(), "file", artifact.File)

	target := filepath.Join(javaDir, filepath.FromSlash(destination))
	if err := fileutil.CopyFile(artifact.File, target, fileutil.FileMode); err != nil {
		return fmt.Errorf("%w: %s: copy %s into %s: %w", bundle.ErrDependencyCopy, artifact, artifact.File, javaDir, err)
	}

	return nil
}
