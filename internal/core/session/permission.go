package session

import "strings"

// Universal is the permission code that satisfies every check.
const Universal = "*"

// Match reports whether a held permission code grants a required one.
// A held code grants exactly itself, everything when it is the universal
// code, or any code under its prefix when wildcard-suffixed: "user.*"
// grants "user.update" but not "users.update", because the prefix must
// be followed by a dot.
func Match(held, required string) bool {
	if held == Universal {
		return true
	}
	if held == required {
		return true
	}
	if strings.HasSuffix(held, ".*") {
		prefix := strings.TrimSuffix(held, "*")
		return strings.HasPrefix(required, prefix)
	}
	return false
}

// MatchAny reports whether any held code grants the required one.
func MatchAny(held []string, required string) bool {
	for _, code := range held {
		if Match(code, required) {
			return true
		}
	}
	return false
}
