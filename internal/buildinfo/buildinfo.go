// Package buildinfo holds values stamped into release binaries with
//
//	-ldflags "-X github.com/ohspite/xatag/internal/buildinfo.Version=..."
//
// They stay empty in development builds.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
