// Package bundler drives the packaging pipeline: it lays out the application
// bundle, copies the launcher, dependencies and resources, writes the
// manifest, runs the platform tools and archives the result.
package bundler
