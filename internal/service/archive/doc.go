// Package archive zips the build output tree while keeping the launcher executable.
package archive
