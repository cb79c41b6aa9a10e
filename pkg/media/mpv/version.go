package mpv

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// MinVersion is the oldest mpv release whose IPC reports the events and
// properties the element relies on.
const MinVersion = "v0.33.0"

var versionPattern = regexp.MustCompile(`mpv v?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.+-]*)?)`)

// ParseVersion extracts the semantic version from `mpv --version` output.
// Git builds report versions like "v0.36.0-512-gabc123", which semver
// treats as a prerelease of v0.36.0.
func ParseVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("mpv: no version in %q", firstLine(output))
	}
	v := "v" + m[1]
	if !semver.IsValid(v) {
		return "", fmt.Errorf("mpv: invalid version %q", m[1])
	}
	return v, nil
}

// CheckVersion returns an error if output reports a version older than required.
// Prereleases of required are accepted.
func CheckVersion(output, required string) error {
	v, err := ParseVersion(output)
	if err != nil {
		return err
	}
	if semver.Compare(baseVersion(v), required) < 0 {
		return fmt.Errorf("mpv %s is older than the required %s", v, required)
	}
	return nil
}

func baseVersion(v string) string {
	c := semver.Canonical(v)
	if pre := semver.Prerelease(c); pre != "" {
		c = c[:len(c)-len(pre)]
	}
	return c
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
