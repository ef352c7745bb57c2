package manifest

import (
	"bytes"
	"encoding/xml"

	"github.com/oshokin/appbundle/internal/domain/bundle"
)

// JavaRoot is the runtime variable the launcher expands to the Java directory.
const JavaRoot = "$JAVAROOT"

// Template variable names.
const (
	KeyMainClass        = "mainClass"
	KeyExecutable       = "cfBundleExecutable"
	KeyIdentifier       = "bundleIdentifier"
	KeyVMOptions        = "vmOptions"
	KeyBundleName       = "bundleName"
	KeyIconFile         = "iconFile"
	KeyVersion          = "version"
	KeyJVMVersion       = "jvmVersion"
	KeyClasspath        = "classpath"
	KeyClasspathEntries = "classpathEntries"
)

// Context is an insertion-ordered set of template variables.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext builds the variables for spec. paths are the collector's
// destinations (relative to the Java directory); extra entries are appended
// verbatim after them.
func NewContext(spec bundle.Spec, paths, extra []string) *Context {
	entries := ClasspathEntries(paths, extra)

	c := &Context{values: make(map[string]any, 10)}
	c.Set(KeyMainClass, spec.MainClass)
	c.Set(KeyExecutable, spec.ExecutableName())
	c.Set(KeyIdentifier, spec.Identifier)
	c.Set(KeyVMOptions, spec.VMOptions)
	c.Set(KeyBundleName, spec.Name)
	c.Set(KeyIconFile, spec.IconFilename())
	c.Set(KeyVersion, spec.Version)
	c.Set(KeyJVMVersion, spec.JVMVersion)
	c.Set(KeyClasspath, ClasspathFragment(entries))
	c.Set(KeyClasspathEntries, entries)

	return c
}

// Set stores value under key, keeping the first insertion position.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}

	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}

	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]

	return value, ok
}

// Keys returns the variable names in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// data is the value handed to the template engine.
func (c *Context) data() map[string]any {
	data := make(map[string]any, len(c.values))
	for key, value := range c.values {
		data[key] = value
	}

	return data
}

// ClasspathEntries prefixes every collector path with $JAVAROOT/ and appends extra.
func ClasspathEntries(paths, extra []string) []string {
	entries := make([]string, 0, len(paths)+len(extra))
	for _, p := range paths {
		entries = append(entries, JavaRoot+"/"+p)
	}

	return append(entries, extra...)
}

// ClasspathFragment renders entries as a plist <array> of <string> elements.
func ClasspathFragment(entries []string) string {
	var buffer bytes.Buffer

	buffer.WriteString("<array>")

	for _, entry := range entries {
		buffer.WriteString("<string>")
		_ = xml.EscapeText(&buffer, []byte(entry))
		buffer.WriteString("</string>")
	}

	buffer.WriteString("</array>")

	return buffer.String()
}
