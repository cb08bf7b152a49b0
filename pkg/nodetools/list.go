package nodetools

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// ParseListOutput finds the installed version of name in the tree printed by
// `npm list`. The root package line is never matched, and neither are unmet
// dependencies.
func ParseListOutput(out []byte, name string) (string, bool) {
	re := regexp.MustCompile(`\s` + regexp.QuoteMeta(name) + `@(\S+)`)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "UNMET") {
			continue
		}
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return m[1], true
	}
	return "", false
}
