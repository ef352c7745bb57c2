// Package layout builds the application bundle skeleton.
//
// It creates the Contents/{Resources,Resources/Java,MacOS} tree, installs the
// launcher stub with executable permissions and copies the optional icon.
// Existing directories and files are reused, so a second run overwrites the
// previous output instead of failing.
package layout
