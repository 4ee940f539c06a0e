// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "strings"

// forbiddenNameChars are the characters rejected as path components by at
// least one common filesystem.
const forbiddenNameChars = `<>:"/\|?*`

// SanitizeFilename maps a title to a string safe to use as a single path
// component: every forbidden character becomes one space. No truncation,
// no case folding, no whitespace deduplication.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenNameChars, r) {
			return ' '
		}
		return r
	}, name)
}
