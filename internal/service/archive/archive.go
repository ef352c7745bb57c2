package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/fileutil"
	"github.com/oshokin/appbundle/internal/logger"
)

// LauncherMode is the mode stored for the launcher entry.
const LauncherMode os.FileMode = 0o755

// Options configures Create.
type Options struct {
	// Target is the zip file to write.
	Target string
	// BuildDir is archived under its own name, relative to its parent.
	BuildDir string
	// Launcher is the launcher stub inside BuildDir; it is stored with LauncherMode.
	Launcher string
	// Level is the deflate level; zero means flate.DefaultCompression.
	Level int
}

// archiver writes a single zip file.
type archiver struct {
	zw       *zip.Writer
	root     string
	target   string
	launcher string
	entries  int
}

// Create writes the zip described by opts. Directories are stored with mode
// 0755 and files with 0644, except the launcher which keeps 0755.
func Create(ctx context.Context, opts Options) error {
	if err := create(ctx, opts); err != nil {
		return fmt.Errorf("%w: %s: %w", bundle.ErrArchive, opts.Target, err)
	}

	return nil
}

func create(ctx context.Context, opts Options) (err error) {
	if err = os.MkdirAll(filepath.Dir(opts.Target), fileutil.DirMode); err != nil {
		return err
	}

	file, err := os.Create(filepath.Clean(opts.Target))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	level := opts.Level
	if level == 0 {
		level = flate.DefaultCompression
	}

	zw := zip.NewWriter(file)
	zw.RegisterCompressor(zip.Deflate, newDeflatePool(level).compressor)

	a := &archiver{
		zw:       zw,
		root:     filepath.Dir(filepath.Clean(opts.BuildDir)),
		target:   absolute(opts.Target),
		launcher: absolute(opts.Launcher),
	}

	if err = a.addTree(ctx, filepath.Clean(opts.BuildDir)); err != nil {
		_ = zw.Close()

		return err
	}

	if err = a.addFile(opts.Launcher, LauncherMode); err != nil {
		_ = zw.Close()

		return fmt.Errorf("add launcher: %w", err)
	}

	if err = zw.Close(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Archive created", "path", opts.Target, "entries", a.entries)

	return nil
}

// addTree adds dir and everything below it except the launcher and the archive itself.
func (a *archiver) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			return a.addDir(name)
		case !entry.Type().IsRegular():
			logger.DebugKV(ctx, "Skipping non-regular file", "path", name)

			return nil
		case absolute(name) == a.launcher || absolute(name) == a.target:
			return nil
		default:
			return a.addFile(name, fileutil.FileMode)
		}
	})
}

func (a *archiver) addDir(dir string) error {
	name, err := a.entryName(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}

	header := &zip.FileHeader{
		Name:     name + "/",
		Method:   zip.Store,
		Modified: info.ModTime(),
	}
	header.SetMode(fs.ModeDir | fileutil.DirMode)

	if _, err = a.zw.CreateHeader(header); err != nil {
		return err
	}

	a.entries++

	return nil
}

func (a *archiver) addFile(filename string, mode os.FileMode) error {
	name, err := a.entryName(filename)
	if err != nil {
		return err
	}

	source, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return err
	}

	defer func() {
		_ = source.Close()
	}()

	info, err := source.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate
	header.SetMode(mode)

	writer, err := a.zw.CreateHeader(header)
	if err != nil {
		return err
	}

	if _, err = io.Copy(writer, source); err != nil {
		return err
	}

	a.entries++

	return nil
}

// entryName returns the slash-separated name of filename relative to the build directory's parent.
func (a *archiver) entryName(filename string) (string, error) {
	rel, err := filepath.Rel(a.root, filename)
	if err != nil {
		return "", err
	}

	return path.Clean(filepath.ToSlash(rel)), nil
}

func absolute(name string) string {
	if name == "" {
		return ""
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return filepath.Clean(name)
	}

	return abs
}
