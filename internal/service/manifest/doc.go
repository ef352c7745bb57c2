// Package manifest renders the bundle's Info.plist from a template.
//
// Templates are looked up in the embedded set first and then on the
// filesystem. Rendering happens twice over the same bytes: first as UTF-8 in
// memory so the encoding declared by the document itself can be read, then
// re-encoded into that encoding for the file on disk. A document without a
// declaration is written as UTF-8.
package manifest
