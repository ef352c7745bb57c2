// Package attachment persists the outputs of a packaging run.
//
// The FileRepository stores the attachment record as YAML on disk so that the
// invoking build system can pick up the disk image and the zip archive.
package attachment
