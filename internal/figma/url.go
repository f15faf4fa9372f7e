package figma

import "strings"

// NodeIDFromURL extracts the node id from a Figma share URL. The node-id
// query value uses "-" where the API expects ":".
func NodeIDFromURL(figmaURL string) string {
	_, rest, ok := strings.Cut(figmaURL, "node-id=")
	if !ok {
		return ""
	}
	id := rest
	if i := strings.IndexAny(id, "&#"); i >= 0 {
		id = id[:i]
	}
	return strings.ReplaceAll(id, "-", ":")
}

// FileKeyFromURL extracts the file key from a Figma share URL. Both the
// legacy /file/ and the current /design/ path forms are recognized.
func FileKeyFromURL(figmaURL string) string {
	if !strings.Contains(figmaURL, "/file/") && !strings.Contains(figmaURL, "/design/") {
		return ""
	}
	parts := strings.Split(figmaURL, "/")
	for i, part := range parts {
		if (part == "file" || part == "design") && i+1 < len(parts) {
			key, _, _ := strings.Cut(parts[i+1], "?")
			return key
		}
	}
	return ""
}
