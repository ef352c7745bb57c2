package bundle

import "path/filepath"

const (
	// AppSuffix is appended to the bundle name to form the bundle directory.
	AppSuffix = ".app"
	// ContentsDir is the top-level directory inside the bundle.
	ContentsDir = "Contents"
	// ResourcesDir holds the icon and the Java directory.
	ResourcesDir = "Resources"
	// JavaDir is the $JAVAROOT of the bundle, relative to ResourcesDir.
	JavaDir = "Java"
	// MacOSDir holds the launcher stub.
	MacOSDir = "MacOS"
	// ManifestFilename is the name of the rendered manifest inside ContentsDir.
	ManifestFilename = "Info.plist"
	// DefaultIconFilename is referenced by the manifest when no icon is configured.
	DefaultIconFilename = "GenericJavaApp.icns"
)

// Signing holds the code-signing parameters.
type Signing struct {
	// Keychain is the keychain searched for the identity (optional).
	Keychain string
	// Identity is the signing identity; signing is disabled when empty.
	Identity string
	// Identifier is an alternate identifier passed to codesign (optional).
	Identifier string
}

// Enabled reports whether an identity has been configured.
func (s Signing) Enabled() bool {
	return s.Identity != ""
}

// Spec is the immutable description of the bundle being built.
type Spec struct {
	// Name is the bundle name shown in the dock and the application menu.
	Name string
	// Identifier is the CFBundleIdentifier.
	Identifier string
	// Version is the CFBundleVersion.
	Version string
	// MainClass is the entry point started by the launcher stub.
	MainClass string
	// IconFile is an optional path to an .icns file.
	IconFile string
	// JVMVersion is the runtime version constraint, e.g. "1.6+".
	JVMVersion string
	// VMOptions are passed to the runtime by the launcher stub.
	VMOptions string
	// LauncherStub is the path to the native launcher stub binary.
	LauncherStub string
	// KeepStubName keeps the stub's original file name instead of the bundle name.
	KeepStubName bool
	// Signing holds the code-signing parameters.
	Signing Signing
}

// BundleDirName returns "<Name>.app".
func (s Spec) BundleDirName() string {
	return s.Name + AppSuffix
}

// ExecutableName is the file name of the launcher inside MacOS and the value
// of CFBundleExecutable.
func (s Spec) ExecutableName() string {
	if s.KeepStubName {
		return filepath.Base(s.LauncherStub)
	}

	return s.Name
}

// IconFilename is the icon name referenced by the manifest.
func (s Spec) IconFilename() string {
	if s.IconFile == "" {
		return DefaultIconFilename
	}

	return filepath.Base(s.IconFile)
}

// ShouldSign reports whether signing must be attempted. Codesign requires the
// manifest's executable, the launcher file and the bundle name to match, so a
// bundle that keeps the original stub name is never signed.
func (s Spec) ShouldSign() bool {
	return s.Signing.Enabled() && !s.KeepStubName
}

// Layout resolves the fixed directory tree of a bundle under a build directory.
type Layout struct {
	// BuildDir is the top-level build directory that contains the bundle.
	BuildDir string
	// BundleDir is <BuildDir>/<Name>.app.
	BundleDir string
	// ContentsDir is <BundleDir>/Contents.
	ContentsDir string
	// ResourcesDir is <ContentsDir>/Resources.
	ResourcesDir string
	// JavaDir is <ResourcesDir>/Java.
	JavaDir string
	// MacOSDir is <ContentsDir>/MacOS.
	MacOSDir string
	// Manifest is <ContentsDir>/Info.plist.
	Manifest string
	// Launcher is the launcher file inside MacOSDir.
	Launcher string
}

// NewLayout computes the layout of spec under buildDir.
func NewLayout(buildDir string, spec Spec) Layout {
	var (
		bundleDir   = filepath.Join(buildDir, spec.BundleDirName())
		contentsDir = filepath.Join(bundleDir, ContentsDir)
		resources   = filepath.Join(contentsDir, ResourcesDir)
		macOS       = filepath.Join(contentsDir, MacOSDir)
	)

	return Layout{
		BuildDir:     buildDir,
		BundleDir:    bundleDir,
		ContentsDir:  contentsDir,
		ResourcesDir: resources,
		JavaDir:      filepath.Join(resources, JavaDir),
		MacOSDir:     macOS,
		Manifest:     filepath.Join(contentsDir, ManifestFilename),
		Launcher:     filepath.Join(macOS, spec.ExecutableName()),
	}
}

// Directories returns the directories of the skeleton in creation order.
func (l Layout) Directories() []string {
	return []string{l.BuildDir, l.BundleDir, l.ContentsDir, l.ResourcesDir, l.JavaDir, l.MacOSDir}
}
