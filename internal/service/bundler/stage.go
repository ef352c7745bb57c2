package bundler

import "fmt"

// Stage is a step of the packaging pipeline. Stages are reached in
// declaration order; the platform stages are skipped off the target platform.
type Stage int

const (
	// StageInitial is the state before anything was written.
	StageInitial Stage = iota
	// StageLayoutCreated means the directory skeleton exists.
	StageLayoutCreated
	// StageLauncherCopied means the launcher stub and the icon are installed.
	StageLauncherCopied
	// StageDependenciesCopied means every artifact is in the Java repository.
	StageDependenciesCopied
	// StageManifestWritten means Info.plist has been written.
	StageManifestWritten
	// StageResourcesCopied means the additional resources are copied.
	StageResourcesCopied
	// StagePermissionsFixed means the launcher is executable.
	StagePermissionsFixed
	// StageAttributeFlagged means the bundle attribute was applied or skipped with a warning.
	StageAttributeFlagged
	// StageSigned means codesign ran or was skipped.
	StageSigned
	// StageDiskImageCreated means the disk image exists.
	StageDiskImageCreated
	// StageNetworkEnabled means the disk image was internet-enabled.
	StageNetworkEnabled
	// StageArtifactsAttached means the produced files were recorded.
	StageArtifactsAttached
	// StageArchiveCreated is the terminal success state.
	StageArchiveCreated
	// StageAborted is the terminal failure state.
	StageAborted
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageLayoutCreated:
		return "layout created"
	case StageLauncherCopied:
		return "launcher copied"
	case StageDependenciesCopied:
		return "dependencies copied"
	case StageManifestWritten:
		return "manifest written"
	case StageResourcesCopied:
		return "resources copied"
	case StagePermissionsFixed:
		return "permissions fixed"
	case StageAttributeFlagged:
		return "attribute flagged"
	case StageSigned:
		return "signed"
	case StageDiskImageCreated:
		return "disk image created"
	case StageNetworkEnabled:
		return "network enabled"
	case StageArtifactsAttached:
		return "artifacts attached"
	case StageArchiveCreated:
		return "archive created"
	case StageAborted:
		return "aborted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}
