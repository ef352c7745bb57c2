// Package platform answers host questions for the pipeline: whether it runs
// on the packaging target (macOS) and whether a process is still running
// under a given executable name.
//
// The pipeline depends on the Detector interface so tests and non-target
// hosts can decide the platform explicitly.
package platform
