package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// defaultIncludes selects every file of the directory.
//
//nolint:gochecknoglobals // Read-only pattern table.
var defaultIncludes = []string{"**"}

// DefaultExcludes skips files left behind by version control systems and editors.
//
//nolint:gochecknoglobals // Read-only pattern table.
var DefaultExcludes = []string{
	// Miscellaneous typical temporary files.
	"**/*~",
	"**/#*#",
	"**/.#*",
	"**/%*%",
	"**/._*",

	// CVS.
	"**/CVS",
	"**/CVS/**",
	"**/.cvsignore",

	// RCS and SCCS.
	"**/RCS",
	"**/RCS/**",
	"**/SCCS",
	"**/SCCS/**",

	// Visual SourceSafe.
	"**/vssver.scc",

	// Subversion.
	"**/.svn",
	"**/.svn/**",

	// Arch and Bazaar.
	"**/.arch-ids",
	"**/.arch-ids/**",
	"**/.bzr",
	"**/.bzr/**",

	// SurroundSCM.
	"**/.MySCMServerInfo",

	// Mac.
	"**/.DS_Store",

	// Serena Dimensions.
	"**/.metadata",
	"**/.metadata/**",

	// Mercurial.
	"**/.hg",
	"**/.hg/**",

	// Git.
	"**/.git",
	"**/.git/**",
	"**/.gitignore",
	"**/.gitattributes",

	// BitKeeper.
	"**/BitKeeper",
	"**/BitKeeper/**",
	"**/ChangeSet",
	"**/ChangeSet/**",

	// darcs.
	"**/_darcs",
	"**/_darcs/**",
	"**/.darcsrepo",
	"**/.darcsrepo/**",
	"**/-darcs-backup*",
	"**/.darcs-temp-mail",
}

// errInvalidPattern is returned for a malformed include or exclude pattern.
var errInvalidPattern = errors.New("invalid pattern")

// Scan returns the files of set.Directory selected by the set's patterns as
// slash-separated paths relative to the directory, in lexical order.
func Scan(set bundle.ResourceFileSet) ([]string, error) {
	includes, err := normalize(set.Includes)
	if err != nil {
		return nil, err
	}

	if len(includes) == 0 {
		includes = defaultIncludes
	}

	excludes, err := normalize(set.Excludes)
	if err != nil {
		return nil, err
	}

	if set.UseDefaultExcludes {
		excludes = append(excludes, DefaultExcludes...)
	}

	var files []string

	walkErr := fs.WalkDir(os.DirFS(set.Directory), ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if matchAny(includes, name) && !matchAny(excludes, name) {
			files = append(files, name)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", set.Directory, walkErr)
	}

	return files, nil
}

// normalize converts OS separators and expands a trailing "/" to "/**".
func normalize(patterns []string) ([]string, error) {
	normalized := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(filepath.ToSlash(pattern))
		if pattern == "" {
			continue
		}

		if strings.HasSuffix(pattern, "/") {
			pattern += "**"
		}

		pattern = strings.TrimPrefix(pattern, "./")

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", errInvalidPattern, pattern)
		}

		normalized = append(normalized, pattern)
	}

	return normalized, nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, name) {
			return true
		}
	}

	return false
}
