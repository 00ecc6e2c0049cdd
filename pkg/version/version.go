// Package version exposes the library's name and version.
package version

// Name is the library name reported to operators.
const Name = "listener-go"

// Version is the library version. Updated on release.
const Version = "0.1.0"

// UserAgent returns the conventional name/version identifier.
func UserAgent() string {
	return Name + "/" + Version
}
