// Package naming assigns each candidate a unique, file-safe bundle name.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/figicons/internal/selector"
)

// fallbackName is used when a node name has no usable characters.
const fallbackName = "icon"

// Icon is a candidate with its resolved bundle name.
type Icon struct {
	selector.Candidate
	ResolvedName string
}

// Resolve names candidates in order. A base name already taken gets the first
// free suffix -1, -2, ... so the same input always yields the same names.
func Resolve(candidates []selector.Candidate) []Icon {
	assigned := make(map[string]struct{}, len(candidates))
	out := make([]Icon, 0, len(candidates))

	for _, c := range candidates {
		base := BaseName(c.OriginalName)
		name := base
		for n := 1; ; n++ {
			if _, taken := assigned[name]; !taken {
				break
			}
			name = base + "-" + strconv.Itoa(n)
		}
		assigned[name] = struct{}{}
		out = append(out, Icon{Candidate: c, ResolvedName: name})
	}
	return out
}

// BaseName reduces a hierarchical node name such as "folder/icon" to its final
// segment, NFC-normalized and safe to use as a file name and JSON key.
func BaseName(original string) string {
	segments := strings.Split(original, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if name := sanitize(segments[i]); name != "" {
			return name
		}
	}
	return fallbackName
}

func sanitize(segment string) string {
	s := norm.NFC.String(strings.TrimSpace(segment))
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return '-'
		case strings.ContainsRune(`\:*?"<>|`, r):
			return '-'
		}
		return r
	}, s)
}
