package semver

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// MajorRange returns the caret range expression covering every release of
// the given major version, e.g. "^20.0.0".
func MajorRange(major uint64) string {
	return fmt.Sprintf("^%d.0.0", major)
}

// ParseRange parses a range expression. In addition to the comparator syntax
// understood by blang/semver, a single caret expression such as "^1.2.3" is
// accepted and expanded to ">=1.2.3 <2.0.0" using npm's caret rules.
func ParseRange(expr string) (semver.Range, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "^") {
		return semver.ParseRange(expr)
	}

	lower, err := semver.ParseTolerant(strings.TrimPrefix(expr, "^"))
	if err != nil {
		return nil, fmt.Errorf("invalid caret range %q: %v", expr, err)
	}
	var upper semver.Version
	switch {
	case lower.Major > 0:
		upper = semver.Version{Major: lower.Major + 1}
	case lower.Minor > 0:
		upper = semver.Version{Minor: lower.Minor + 1}
	default:
		upper = semver.Version{Patch: lower.Patch + 1}
	}
	return semver.ParseRange(fmt.Sprintf(">=%s <%s", lower, upper))
}

// Satisfies reports whether version lies in the range described by expr.
// Versions are parsed tolerantly, so a leading "v" as printed by
// `node --version` is accepted.
func Satisfies(version, expr string) (bool, error) {
	v, err := semver.ParseTolerant(strings.TrimSpace(version))
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %v", version, err)
	}
	r, err := ParseRange(expr)
	if err != nil {
		return false, err
	}
	return r(v), nil
}
