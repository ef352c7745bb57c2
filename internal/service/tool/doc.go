// Package tool runs the external programs used while packaging a bundle
// (chmod, SetFile, codesign, security, hdiutil) and applies the policy that
// decides which of their failures abort the build.
package tool
