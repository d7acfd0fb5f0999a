// Package bundle assembles normalized icons into the ordered JSON bundle and
// writes it to its destinations.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/figicons/internal/config"
	"git.home.luguber.info/inful/figicons/internal/normalize"
)

// Bundle maps icon name to icon, keeping insertion order.
type Bundle struct {
	Format config.BundleFormat
	names  []string
	icons  map[string]normalize.Icon
}

type inlineEntry struct {
	Name    string `json:"name"`
	Width   *int   `json:"width"`
	Height  *int   `json:"height"`
	Content string `json:"content"`
}

type fileEntry struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Content string `json:"content"`
}

// New returns an empty inline bundle.
func New() *Bundle {
	return &Bundle{Format: config.BundleFormatInline, icons: make(map[string]normalize.Icon)}
}

// Build creates an inline bundle from icons in order.
func Build(icons []normalize.Icon) *Bundle {
	b := New()
	for _, icon := range icons {
		b.Add(icon)
	}
	return b
}

// Add appends icon. Re-adding a name replaces the icon in place.
func (b *Bundle) Add(icon normalize.Icon) {
	if _, ok := b.icons[icon.Name]; !ok {
		b.names = append(b.names, icon.Name)
	}
	b.icons[icon.Name] = icon
}

// Len returns the number of icons.
func (b *Bundle) Len() int { return len(b.names) }

// Names returns icon names in insertion order.
func (b *Bundle) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Get returns the icon named name.
func (b *Bundle) Get(name string) (normalize.Icon, bool) {
	icon, ok := b.icons[name]
	return icon, ok
}

func (b *Bundle) entry(icon normalize.Icon) any {
	if b.Format == config.BundleFormatFile {
		return fileEntry{Name: icon.Name, File: icon.File, Content: icon.Content}
	}
	return inlineEntry{Name: icon.Name, Width: icon.Width, Height: icon.Height, Content: icon.Content}
}

// MarshalJSON encodes the bundle as an object whose keys follow insertion
// order. Markup is not HTML-escaped.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(name); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", name, err)
		}
		buf.WriteByte(':')
		if err := enc.Encode(b.entry(b.icons[name])); err != nil {
			return nil, fmt.Errorf("encode icon %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the bundle indented two spaces with a trailing newline.
func (b *Bundle) Encode() ([]byte, error) {
	compact, err := b.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent bundle: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
