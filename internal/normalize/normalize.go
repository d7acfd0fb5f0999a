// Package normalize turns downloaded vector markup into theme-neutral bundle
// content.
package normalize

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/figicons/internal/fetch"
	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// CurrentColor makes a paint follow the surrounding text color.
const CurrentColor = "currentColor"

// Icon is one bundle entry.
type Icon struct {
	Name    string
	Width   *int
	Height  *int
	Content string
	// File is the scratch file name for file-format bundles.
	File string
}

// Skip records an icon dropped because its markup could not be optimized.
type Skip struct {
	Name   string
	NodeID string
	Err    error
}

// Normalizer optimizes markup and neutralizes hard-coded colors.
type Normalizer struct {
	optimizer Optimizer
	fileRefs  bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithOptimizer replaces the default minifier.
func WithOptimizer(o Optimizer) Option {
	return func(n *Normalizer) {
		if o != nil {
			n.optimizer = o
		}
	}
}

// WithFileReferences sets Icon.File from the asset's scratch copy.
func WithFileReferences(on bool) Option {
	return func(n *Normalizer) { n.fileRefs = on }
}

// NewNormalizer creates a Normalizer using the SVG minifier by default.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{optimizer: NewMinifyOptimizer()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize produces the bundle entry for asset. Dimensions are read from the
// raw markup; content is the inner markup of the optimized root with every
// concrete stroke and fill replaced by currentColor. An asset the optimizer
// rejects, or one that draws nothing, yields errors.ErrNormalizationSkip.
func (n *Normalizer) Normalize(asset fetch.Asset) (Icon, error) {
	icon := Icon{Name: asset.ResolvedName}
	if n.fileRefs && asset.Path != "" {
		icon.File = filepath.Base(asset.Path)
	}
	if raw, err := html.Parse(bytes.NewReader(asset.Raw)); err == nil {
		if root := findRoot(raw); root != nil {
			icon.Width = dimension(attr(root, "width"))
			icon.Height = dimension(attr(root, "height"))
		}
	}

	optimized, err := n.optimizer.Optimize(asset.Raw)
	if err != nil {
		return icon, skipError(asset, err)
	}
	if len(bytes.TrimSpace(optimized)) == 0 {
		return icon, skipError(asset, nil)
	}

	doc, err := html.Parse(bytes.NewReader(optimized))
	if err != nil {
		return icon, skipError(asset, err)
	}
	root := findRoot(doc)
	if root == nil || !hasElementChild(root) {
		return icon, skipError(asset, nil)
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		neutralize(c)
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return icon, skipError(asset, err)
		}
	}
	icon.Content = strings.TrimSpace(buf.String())
	return icon, nil
}

// NormalizeAll normalizes assets in order, collecting skipped ones.
func (n *Normalizer) NormalizeAll(assets []fetch.Asset) ([]Icon, []Skip) {
	icons := make([]Icon, 0, len(assets))
	var skips []Skip
	for _, a := range assets {
		icon, err := n.Normalize(a)
		if err != nil {
			skips = append(skips, Skip{Name: a.ResolvedName, NodeID: a.NodeID, Err: err})
			continue
		}
		icons = append(icons, icon)
	}
	return icons, skips
}

func skipError(asset fetch.Asset, cause error) error {
	b := ferrors.From(ferrors.ErrNormalizationSkip).
		WithContext("icon", asset.ResolvedName).
		WithContext("node_id", asset.NodeID)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b.Build()
}

// findRoot returns the first svg element in document order.
func findRoot(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findRoot(c); found != nil {
			return found
		}
	}
	return nil
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// dimension reads the leading integer of v ("24", "24px", "24.5" are all 24).
func dimension(v string) *int {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	d, err := strconv.Atoi(v[:end])
	if err != nil {
		return nil
	}
	return &d
}

// neutralize rewrites concrete paints on n and its descendants.
func neutralize(n *html.Node) {
	if n.Type == html.ElementNode {
		for i, a := range n.Attr {
			if a.Namespace != "" || (a.Key != "fill" && a.Key != "stroke") {
				continue
			}
			if isConcreteColor(a.Val) {
				n.Attr[i].Val = CurrentColor
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		neutralize(c)
	}
}

func isConcreteColor(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "none", "currentcolor", "inherit", "transparent":
		return false
	}
	return !strings.HasPrefix(v, "url(")
}
