package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/fileutil"
	"github.com/oshokin/appbundle/internal/logger"
)

// Copy copies every file selected by sets into buildDir, keeping each file's
// path relative to its set's directory. A set whose directory does not exist
// is skipped. It returns the number of copied files.
func Copy(ctx context.Context, buildDir string, sets []bundle.ResourceFileSet) (int, error) {
	copied := 0

	for _, set := range sets {
		if _, err := os.Stat(set.Directory); err != nil {
			logger.InfoKV(ctx, "Additional resource directory does not exist", "directory", set.Directory)

			continue
		}

		files, err := Scan(set)
		if err != nil {
			return copied, fmt.Errorf("%w: %w", bundle.ErrResourceCopy, err)
		}

		logger.InfoKV(ctx, "Copying additional resources", "directory", set.Directory, "count", len(files))

		for _, name := range files {
			source := filepath.Join(set.Directory, filepath.FromSlash(name))
			destination := filepath.Join(buildDir, filepath.FromSlash(name))

			if err = fileutil.CopyFile(source, destination, fileutil.FileMode); err != nil {
				return copied, fmt.Errorf("%w: error copying additional resource %s: %w",
					bundle.ErrResourceCopy, source, err)
			}

			copied++
		}
	}

	return copied, nil
}
