// Package resource copies additional resource file sets into the build directory.
package resource
