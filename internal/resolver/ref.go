package resolver

import (
	"regexp"
	"strings"
)

// refKind classifies a user-supplied reference once, at the top of each
// resolve operation.
type refKind int

const (
	nameQuery refKind = iota
	exactID
)

// Backend ids are decimal digit strings. Anything else, malformed-looking
// or not, is treated as a name so ambiguous input still gets a chance to
// match.
var idPattern = regexp.MustCompile(`^[0-9]+$`)

func classify(ref string) (string, refKind) {
	trimmed := strings.TrimSpace(ref)
	if idPattern.MatchString(trimmed) {
		return trimmed, exactID
	}
	return trimmed, nameQuery
}
