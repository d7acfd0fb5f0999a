// Package selector picks the icon candidates out of a document tree.
package selector

import (
	"strings"

	"git.home.luguber.info/inful/figicons/internal/figma"
	"git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// Options filters candidates. Zero values mean unset.
type Options struct {
	PageName string
	Size     int
	Prefix   string
}

// Candidate is a document node eligible to become an icon.
type Candidate struct {
	ID           string
	OriginalName string
}

// Select returns the qualifying direct children of the selected page, in
// document order. A requested page that does not exist is an error; there is
// no fallback to the first page.
func Select(doc figma.Node, opts Options) ([]Candidate, error) {
	page, err := SelectPage(doc, opts.PageName)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, child := range page.Children {
		if Qualifies(child, opts) {
			out = append(out, Candidate{ID: child.ID, OriginalName: child.Name})
		}
	}
	return out, nil
}

// SelectPage returns the first canvas named name, or the first top-level child
// when name is empty.
func SelectPage(doc figma.Node, name string) (figma.Node, error) {
	if name == "" {
		if len(doc.Children) == 0 {
			return figma.Node{}, errors.From(errors.ErrPageNotFound).
				WithContext("reason", "document has no pages").
				Build()
		}
		return doc.Children[0], nil
	}
	for _, child := range doc.Children {
		if child.Type == figma.NodeTypeCanvas && child.Name == name {
			return child, nil
		}
	}
	return figma.Node{}, errors.From(errors.ErrPageNotFound).
		WithContext("page", name).
		WithContext("available", strings.Join(Pages(doc), ", ")).
		Build()
}

// Qualifies reports whether node is a square icon matching the size and prefix filters.
func Qualifies(node figma.Node, opts Options) bool {
	box := node.AbsoluteBoundingBox
	if box == nil || box.Width != box.Height {
		return false
	}
	if opts.Size > 0 && box.Width != float64(opts.Size) {
		return false
	}
	return opts.Prefix == "" || strings.HasPrefix(node.Name, opts.Prefix)
}

// Pages lists the names of the document's top-level pages.
func Pages(doc figma.Node) []string {
	names := make([]string, 0, len(doc.Children))
	for _, child := range doc.Children {
		if child.Type == figma.NodeTypeCanvas {
			names = append(names, child.Name)
		}
	}
	return names
}
