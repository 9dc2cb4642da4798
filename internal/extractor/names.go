package extractor

import (
	"regexp"
	"strings"
)

// namePattern matches "<given> /<surname>/"; text after the closing slash is
// ignored.
var namePattern = regexp.MustCompile(`([^/]*)\s*/([^/]*)/`)

// SplitName splits a raw NAME value into given name and surname. Without
// surname slashes both parts are empty.
func SplitName(raw string) (given, surname string) {
	m := namePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// DisplayName joins given name and surname with a single space.
func DisplayName(given, surname string) string {
	return strings.TrimSpace(given + " " + surname)
}
