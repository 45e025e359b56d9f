package archive

import "strings"

// ParseTags splits a comma-delimited tag string. Segments are trimmed, empty
// segments are dropped and order is preserved. The result is never nil.
func ParseTags(s string) []string {
	tags := make([]string, 0)
	if s == "" {
		return tags
	}

	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

// JoinTags is the inverse of ParseTags for already parsed tags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
