package comp

import "strings"

// UnknownPatch is stored when the game version string is absent or
// unparsable.
const UnknownPatch = "unknown"

// NormalizePatch extracts the patch bucket from a raw game version string by
// taking the first two dot-separated numeric components.
//
//	"Version 13.24.520.9150 (Dec 06 2023/13:57:32) [PUBLIC]" -> "13.24"
//	"13.24.520.9150"                                         -> "13.24"
func NormalizePatch(gameVersion string) string {
	if gameVersion == "" {
		return UnknownPatch
	}

	parts := strings.Split(gameVersion, ".")
	if len(parts) < 2 {
		return UnknownPatch
	}

	// The first segment may carry a "Version " prefix; the number is its
	// last whitespace-separated field.
	fields := strings.Fields(parts[0])
	if len(fields) == 0 {
		return UnknownPatch
	}
	major := fields[len(fields)-1]
	minor := parts[1]

	if !isDigits(major) || !isDigits(minor) {
		return UnknownPatch
	}
	return major + "." + minor
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
