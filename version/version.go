// Package version holds the build identity the release pipeline
// injects via ldflags. The defaults mark a local development build.
package version

var (
	Version = "0.0.0-dev"
	Commit  = "0000000000000000000000000000000000000000"
	Date    = "1970-01-01T00:00:00Z"
	BuiltBy = "local"
)

// ShortCommit returns the abbreviated commit hash used in the command
// line banner.
func ShortCommit() string {
	if len(Commit) < 7 {
		return Commit
	}
	return Commit[:7]
}
