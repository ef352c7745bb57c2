// Package integration holds cross-package tests of the packaging pipeline.
package integration
