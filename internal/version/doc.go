// Package version exposes build metadata of appbundle.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// Full adds the toolchain and host platform, which matter when a bundle built
// off macOS is missing its disk image.
package version
