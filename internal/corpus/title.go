// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "strings"

// FallbackTitle is used for records that carry no title line.
const FallbackTitle = "Untitled_Paper"

// titleMarker is the metadata prefix written by the corpus producer.
const titleMarker = "Title:"

// ExtractTitle scans a record line by line for the first line whose trimmed
// text begins with "Title:" (case-insensitive) and returns the remainder,
// trimmed. Records without such a line yield FallbackTitle; absence is a
// normal case, not an error.
func ExtractTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len(titleMarker) {
			continue
		}
		if strings.EqualFold(trimmed[:len(titleMarker)], titleMarker) {
			return strings.TrimSpace(trimmed[len(titleMarker):])
		}
	}
	return FallbackTitle
}
