// Package bundle contains the domain types shared by the packaging pipeline.
//
// Spec describes the application bundle being produced and is passed by value
// into every component. Coordinate and Artifact describe the resolved runtime
// dependencies handed over by the build host, ResourceFileSet describes extra
// files copied next to the bundle, and Attachment names an output file handed
// back to the host. The error sentinels classify every fatal failure.
package bundle
