// Package config defines the appbundle YAML configuration and provides
// helpers to load, validate and save it.
//
// The configuration plays the role of the build host: it carries the bundle
// metadata, the resolved project artifact and its runtime dependencies, and
// the output locations. Defaults mirror the conventions of a Maven build
// directory (target/<artifactId>-<version>).
package config
