package manifest

import (
	"bytes"
	"context"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"howett.net/plist"

	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/logger"
)

// templatesDir is the embedded directory holding the built-in templates.
const templatesDir = "templates"

// manifestMode is the permission of the written manifest.
const manifestMode os.FileMode = 0o644

//go:embed templates/*.tmpl
var embedded embed.FS

// errTemplateNotFound is returned when neither the embedded set nor the filesystem has the template.
var errTemplateNotFound = errors.New("template not found")

// Renderer renders manifests from templates.
type Renderer struct {
	// templates is searched before the filesystem.
	templates fs.FS
	// baseDir resolves relative filesystem template paths.
	baseDir string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplates replaces the embedded template set.
func WithTemplates(fsys fs.FS) Option {
	return func(r *Renderer) {
		r.templates = fsys
	}
}

// WithBaseDir resolves relative filesystem template paths against dir.
func WithBaseDir(dir string) Option {
	return func(r *Renderer) {
		r.baseDir = dir
	}
}

// NewRenderer creates a renderer backed by the embedded templates.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}

	if sub, err := fs.Sub(embedded, templatesDir); err == nil {
		r.templates = sub
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render executes the template identified by id and returns UTF-8 text.
func (r *Renderer) Render(ctx context.Context, id string, vars *Context) ([]byte, error) {
	source, origin, err := r.lookup(id)
	if err != nil {
		return nil, fmt.Errorf("%w: could not find resource for template %s: %w", bundle.ErrTemplateRender, id, err)
	}

	logger.DebugKV(ctx, "Template resolved", "template", id, "origin", origin)

	tmpl, err := template.New(path.Base(id)).
		Funcs(funcMap()).
		Option("missingkey=error").
		Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("%w: error parsing %s: %w", bundle.ErrTemplateRender, id, err)
	}

	var buffer bytes.Buffer
	if err = tmpl.Execute(&buffer, vars.data()); err != nil {
		return nil, fmt.Errorf("%w: error merging template %s: %w", bundle.ErrTemplateRender, id, err)
	}

	return buffer.Bytes(), nil
}

// Write renders the template, detects the declared encoding and writes the
// manifest to target in that encoding. It returns the encoding used.
func (r *Renderer) Write(ctx context.Context, id string, vars *Context, target string) (string, error) {
	rendered, err := r.Render(ctx, id, vars)
	if err != nil {
		return "", err
	}

	encodingName := DetectEncoding(rendered)
	logger.DebugKV(ctx, "Detected manifest encoding", "encoding", encodingName, "template", id)

	encoded, err := Encode(rendered, encodingName)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", bundle.ErrTemplateRender, id, err)
	}

	if err = os.WriteFile(filepath.Clean(target), encoded, manifestMode); err != nil {
		return "", fmt.Errorf("%w: could not write manifest to %s: %w", bundle.ErrTemplateRender, target, err)
	}

	if executable, ok := vars.Get(KeyExecutable); ok {
		inspect(ctx, rendered, fmt.Sprint(executable))
	}

	logger.InfoKV(ctx, "Manifest written", "path", target, "encoding", encodingName)

	return encodingName, nil
}

// lookup returns the template source and where it came from.
func (r *Renderer) lookup(id string) ([]byte, string, error) {
	if r.templates != nil && fs.ValidPath(id) {
		if source, err := fs.ReadFile(r.templates, id); err == nil {
			return source, "embedded", nil
		}
	}

	filename := id
	if !filepath.IsAbs(filename) && r.baseDir != "" {
		filename = filepath.Join(r.baseDir, filename)
	}

	source, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %w", errTemplateNotFound, err)
		}

		return nil, "", err
	}

	return source, filename, nil
}

// funcMap exposes sprig's helpers plus XML escaping.
func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["xmlEscape"] = xmlEscape

	return funcs
}

func xmlEscape(value any) (string, error) {
	var buffer bytes.Buffer
	if err := xml.EscapeText(&buffer, []byte(fmt.Sprint(value))); err != nil {
		return "", err
	}

	return buffer.String(), nil
}

// plistInfo holds the manifest keys checked after rendering.
type plistInfo struct {
	Executable string `plist:"CFBundleExecutable"`
}

// inspect warns when the manifest's executable differs from the launcher name,
// which makes codesign fail. Non-plist templates are ignored.
func inspect(ctx context.Context, rendered []byte, executable string) {
	var info plistInfo
	if _, err := plist.Unmarshal(rendered, &info); err != nil {
		logger.DebugKV(ctx, "Manifest is not a readable property list", "error", err)
		return
	}

	if info.Executable != executable {
		logger.WarnKV(ctx, "CFBundleExecutable does not match the launcher file name",
			"manifest", info.Executable, "launcher", executable)
	}
}
