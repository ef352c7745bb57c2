package bundle

import "errors"

var (
	// ErrInvalidSpec is returned when the bundle configuration is incomplete or malformed.
	ErrInvalidSpec = errors.New("invalid bundle specification")
	// ErrMissingLauncherStub is returned when the configured launcher stub does not exist.
	ErrMissingLauncherStub = errors.New("launcher stub not found")
	// ErrDependencyCopy is returned when an artifact cannot be copied into the bundle.
	ErrDependencyCopy = errors.New("dependency copy failed")
	// ErrTemplateRender is returned when the manifest cannot be rendered or written.
	ErrTemplateRender = errors.New("manifest template rendering failed")
	// ErrResourceCopy is returned when the icon or an additional resource cannot be copied.
	ErrResourceCopy = errors.New("resource copy failed")
	// ErrToolLaunch is returned when an external tool could not be started.
	ErrToolLaunch = errors.New("external tool could not be started")
	// ErrToolExecution is returned when a mandatory external tool exited unsuccessfully.
	ErrToolExecution = errors.New("external tool failed")
	// ErrArchive is returned when the zip archive cannot be created.
	ErrArchive = errors.New("archive creation failed")
)
