package figma

import (
	"net/url"
	"strings"
)

// ParseFileKey accepts a bare file key or a file URL such as
// https://www.figma.com/design/<key>/<title> and returns the key.
func ParseFileKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "file", "design", "proto", "board":
			return parts[i+1]
		}
	}
	return raw
}
