package portable

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is the Python release of the built-in distribution.
const DefaultVersion = "3.12.8"

// Distribution describes a portable Python build for one platform.
type Distribution struct {
	GOOS    string
	GOARCH  string
	Version string
	URL     string
	// Exe is the interpreter file at the root of the unpacked archive.
	Exe string
}

// python.org only publishes an embeddable zip for Windows.
var distributions = []Distribution{
	{
		GOOS:    "windows",
		GOARCH:  "amd64",
		Version: DefaultVersion,
		URL:     embedURL(DefaultVersion, "amd64"),
		Exe:     "python.exe",
	},
}

func embedURL(version, arch string) string {
	return fmt.Sprintf("https://www.python.org/ftp/python/%s/python-%s-embed-%s.zip", version, version, arch)
}

// Lookup returns the portable distribution for goos/goarch, if one exists.
func Lookup(goos, goarch string) (Distribution, bool) {
	for _, d := range distributions {
		if d.GOOS == goos && d.GOARCH == goarch {
			return d, true
		}
	}
	return Distribution{}, false
}

// WithVersion returns a copy of d pointing at another Python release of the
// same embeddable build.
func (d Distribution) WithVersion(version string) Distribution {
	version = strings.TrimPrefix(version, "v")
	if version == "" || version == d.Version {
		return d
	}
	d.URL = strings.ReplaceAll(d.URL, d.Version, version)
	d.Version = version
	return d
}

// ArchiveName returns the file name the archive is downloaded to.
func (d Distribution) ArchiveName() string {
	return "python.zip"
}

// MarkerName returns the name of the ._pth file shipped in the embeddable
// archive, e.g. "python312._pth" for 3.12.x. While present it pins the
// module search path and keeps pip from working.
func (d Distribution) MarkerName() (string, error) {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return "", fmt.Errorf("parsing distribution version %q: %w", d.Version, err)
	}
	return fmt.Sprintf("python%d%d._pth", v.Major(), v.Minor()), nil
}
