package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

const defaultTemplate = "Info.plist.tmpl"

func demoSpec() bundle.Spec {
	return bundle.Spec{
		Name:         "Demo",
		Identifier:   "org.example.demo",
		Version:      "1.0",
		MainClass:    "org.example.demo.Main",
		JVMVersion:   "1.6+",
		LauncherStub: "/stubs/JavaApplicationStub",
	}
}

type renderedPlist struct {
	Name       string `plist:"CFBundleName"`
	Executable string `plist:"CFBundleExecutable"`
	Icon       string `plist:"CFBundleIconFile"`
	Java       struct {
		MainClass string   `plist:"MainClass"`
		ClassPath []string `plist:"ClassPath"`
		VMOptions string   `plist:"VMOptions"`
	} `plist:"Java"`
}

// TestWriteDefaultTemplateClasspath renders the embedded template with a primary
// artifact and two dependencies in collector order.
func TestWriteDefaultTemplateClasspath(t *testing.T) {
	t.Parallel()

	paths := []string{
		"repo/org/example/Demo/1.0/Demo-1.0.jar",
		"repo/org/example/a/1.0/a-1.0.jar",
		"repo/org/example/b/2.0/b-2.0.jar",
	}
	spec := demoSpec()
	spec.KeepStubName = true

	vars := NewContext(spec, paths, nil)
	target := filepath.Join(t.TempDir(), "Info.plist")

	encoding, err := NewRenderer().Write(context.Background(), defaultTemplate, vars, target)
	require.NoError(t, err)
	require.Equal(t, "UTF-8", encoding)

	data, err := os.ReadFile(target)
	require.NoError(t, err)

	var got renderedPlist
	_, err = plist.Unmarshal(data, &got)
	require.NoError(t, err)

	require.Equal(t, "Demo", got.Name)
	require.Equal(t, "JavaApplicationStub", got.Executable)
	require.Equal(t, bundle.DefaultIconFilename, got.Icon)
	require.Equal(t, "org.example.demo.Main", got.Java.MainClass)
	require.Empty(t, got.Java.VMOptions)
	require.Equal(t, []string{
		"$JAVAROOT/repo/org/example/Demo/1.0/Demo-1.0.jar",
		"$JAVAROOT/repo/org/example/a/1.0/a-1.0.jar",
		"$JAVAROOT/repo/org/example/b/2.0/b-2.0.jar",
	}, got.Java.ClassPath)
}

// TestWriteAdditionalClasspathAndOptions appends extras after the collected paths.
func TestWriteAdditionalClasspathAndOptions(t *testing.T) {
	t.Parallel()

	spec := demoSpec()
	spec.VMOptions = "-Xmx512m -Dapple.awt.brushMetal=true"

	vars := NewContext(spec, []string{"repo/x/Demo/1.0/Demo-1.0.jar"}, []string{"/Library/Java/Extensions/ext.jar", "lib/a&b.jar"})
	target := filepath.Join(t.TempDir(), "Info.plist")

	_, err := NewRenderer().Write(context.Background(), defaultTemplate, vars, target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)

	var got renderedPlist
	_, err = plist.Unmarshal(data, &got)
	require.NoError(t, err)

	require.Equal(t, "Demo", got.Executable)
	require.Equal(t, spec.VMOptions, got.Java.VMOptions)
	require.Equal(t, []string{
		"$JAVAROOT/repo/x/Demo/1.0/Demo-1.0.jar",
		"/Library/Java/Extensions/ext.jar",
		"lib/a&b.jar",
	}, got.Java.ClassPath)
}

// TestWriteIsIdempotent renders twice and compares bytes.
func TestWriteIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vars := NewContext(demoSpec(), []string{"repo/a.jar", "repo/b.jar"}, []string{"extra.jar"})
	renderer := NewRenderer()

	first := filepath.Join(dir, "first.plist")
	second := filepath.Join(dir, "second.plist")

	_, err := renderer.Write(context.Background(), defaultTemplate, vars, first)
	require.NoError(t, err)
	_, err = renderer.Write(context.Background(), defaultTemplate, vars, second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

// TestWriteDeclaredEncoding writes the file in the encoding the template declares.
func TestWriteDeclaredEncoding(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"latin1.tmpl": {Data: []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><name>{{ .bundleName }}</name>`)},
		"plain.tmpl":  {Data: []byte(`<name>{{ .bundleName }}</name>`)},
	}
	renderer := NewRenderer(WithTemplates(templates))

	spec := demoSpec()
	spec.Name = "Démo"
	vars := NewContext(spec, nil, nil)
	dir := t.TempDir()

	latin1 := filepath.Join(dir, "latin1.plist")
	encoding, err := renderer.Write(context.Background(), "latin1.tmpl", vars, latin1)
	require.NoError(t, err)
	require.Equal(t, "ISO-8859-1", encoding)

	data, err := os.ReadFile(latin1)
	require.NoError(t, err)
	require.True(t, bytes.Contains(data, []byte{'D', 0xE9, 'm', 'o'}))

	plain := filepath.Join(dir, "plain.plist")
	encoding, err = renderer.Write(context.Background(), "plain.tmpl", vars, plain)
	require.NoError(t, err)
	require.Equal(t, DefaultEncoding, encoding)

	data, err = os.ReadFile(plain)
	require.NoError(t, err)
	require.Contains(t, string(data), "Démo")
}

// TestWriteUnrepresentableCharacter aborts instead of substituting a character
// the declared encoding cannot hold.
func TestWriteUnrepresentableCharacter(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"latin1.tmpl": {Data: []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><name>{{ .bundleName }}</name>`)},
	}

	spec := demoSpec()
	spec.Name = "Démo ✓"
	target := filepath.Join(t.TempDir(), "Info.plist")

	_, err := NewRenderer(WithTemplates(templates)).Write(context.Background(), "latin1.tmpl", NewContext(spec, nil, nil), target)
	require.ErrorIs(t, err, bundle.ErrTemplateRender)
	require.Contains(t, err.Error(), "ISO-8859-1")
	require.NoFileExists(t, target)
}

// TestRenderFilesystemTemplate resolves a template that is not embedded.
func TestRenderFilesystemTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.tmpl"), []byte(`{{ .mainClass | upper }}`), 0o600))

	out, err := NewRenderer(WithBaseDir(dir)).Render(context.Background(), "custom.tmpl", NewContext(demoSpec(), nil, nil))
	require.NoError(t, err)
	require.Equal(t, "ORG.EXAMPLE.DEMO.MAIN", string(out))
}

// TestRenderErrors covers missing templates, parse errors, unknown variables and encodings.
func TestRenderErrors(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"broken.tmpl":  {Data: []byte(`{{ .bundleName `)},
		"unknown.tmpl": {Data: []byte(`{{ .doesNotExist }}`)},
		"klingon.tmpl": {Data: []byte(`<?xml version="1.0" encoding="x-klingon"?><a/>`)},
	}
	renderer := NewRenderer(WithTemplates(templates), WithBaseDir(t.TempDir()))
	vars := NewContext(demoSpec(), nil, nil)
	target := filepath.Join(t.TempDir(), "Info.plist")

	_, err := renderer.Write(context.Background(), "missing.tmpl", vars, target)
	require.ErrorIs(t, err, bundle.ErrTemplateRender)
	require.ErrorIs(t, err, errTemplateNotFound)

	_, err = renderer.Write(context.Background(), "broken.tmpl", vars, target)
	require.ErrorIs(t, err, bundle.ErrTemplateRender)

	_, err = renderer.Write(context.Background(), "unknown.tmpl", vars, target)
	require.ErrorIs(t, err, bundle.ErrTemplateRender)

	_, err = renderer.Write(context.Background(), "klingon.tmpl", vars, target)
	require.ErrorIs(t, err, bundle.ErrTemplateRender)

	_, err = os.Stat(target)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDetectEncoding covers declarations, quotes, BOMs and fallback.
func TestDetectEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		document string
		want     string
	}{
		{document: `<?xml version="1.0" encoding="UTF-16"?><a/>`, want: "UTF-16"},
		{document: "\n  <?xml version='1.0' encoding='windows-1252'?><a/>", want: "windows-1252"},
		{document: "\xEF\xBB\xBF<?xml version=\"1.0\" encoding=\"ISO-8859-15\"?>", want: "ISO-8859-15"},
		{document: `<?xml version="1.0"?><a encoding="ISO-8859-1"/>`, want: DefaultEncoding},
		{document: `<a/>`, want: DefaultEncoding},
		{document: ``, want: DefaultEncoding},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, DetectEncoding([]byte(tc.document)), tc.document)
	}
}

// TestContextOrder ensures variables keep their insertion order.
func TestContextOrder(t *testing.T) {
	t.Parallel()

	vars := NewContext(demoSpec(), nil, nil)
	require.Equal(t, []string{
		KeyMainClass, KeyExecutable, KeyIdentifier, KeyVMOptions, KeyBundleName,
		KeyIconFile, KeyVersion, KeyJVMVersion, KeyClasspath, KeyClasspathEntries,
	}, vars.Keys())

	vars.Set(KeyMainClass, "other.Main")
	require.Equal(t, KeyMainClass, vars.Keys()[0])

	value, ok := vars.Get(KeyMainClass)
	require.True(t, ok)
	require.Equal(t, "other.Main", value)

	require.Equal(t, "<array><string>$JAVAROOT/repo/a.jar</string><string>x.jar</string></array>",
		ClasspathFragment(ClasspathEntries([]string{"repo/a.jar"}, []string{"x.jar"})))
}
