// Package fileutil holds the streaming copy helper shared by the bundle steps.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DirMode is used for every directory created inside the build directory.
	DirMode os.FileMode = 0o755
	// FileMode is used for copied regular files.
	FileMode os.FileMode = 0o644
)

// CopyFile copies src to dst with mode, creating parent directories.
// An existing dst is truncated.
func CopyFile(src, dst string, mode os.FileMode) (err error) {
	srcFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	if err = os.MkdirAll(filepath.Dir(dst), DirMode); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := dstFile.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(dstFile, srcFile)

	return err
}
