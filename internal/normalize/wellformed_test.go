package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWellFormed_Accepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"minimal", `<svg><path d="M0 0"/></svg>`},
		{"prolog and comments", "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!-- icon -->\n<svg xmlns=\"http://www.w3.org/2000/svg\"><g><path d='M0 0'/></g></svg>\n"},
		{"doctype", `<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd"><svg><rect/></svg>`},
		{"prefixed root", `<svg:svg xmlns:svg="http://www.w3.org/2000/svg"><svg:path/></svg:svg>`},
		{"style cdata", `<svg><style><![CDATA[path{stroke:red}]]></style><path/></svg>`},
		{"tab in attribute", "<svg><path d=\"M0\t0\"/></svg>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, CheckWellFormed([]byte(tt.raw)))
		})
	}
}

func TestCheckWellFormed_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", ``, "no root element"},
		{"plain text", `this is not an icon`, "text outside the root element"},
		{"truncated attribute", `<svg width="24"><path fill="#f00" d="M0 0`, "attribute d has an unterminated or unquoted value"},
		{"truncated tag", `<svg width="24"><path`, "unterminated tag"},
		{"unclosed element", `<svg><g><path/></g>`, "unclosed element <svg>"},
		{"mismatched", `<svg><g><path/></svg></g>`, "end tag </svg> does not close <g>"},
		{"trailing junk", `<svg><path/></svg><<<<!@#`, "invalid tag name"},
		{"second root", `<svg><path/></svg><svg></svg>`, "element <svg> after the root element"},
		{"not svg", `<html><body/></html>`, "root element <html> is not svg"},
		{"unquoted value", `<svg width=24><path/></svg>`, "attribute width has an unterminated or unquoted value"},
		{"bare attribute", `<svg hidden><path/></svg>`, "attribute hidden has no value"},
		{"unterminated comment", `<svg><path/><!-- oops</svg>`, "unterminated comment"},
		{"stray end tag", `</svg>`, "end tag </svg> without a start tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWellFormed([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckWellFormed_ReportsPosition(t *testing.T) {
	err := CheckWellFormed([]byte("<svg>\n  <g>\n  </svg>"))
	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.Line)
}

func TestCheckWellFormed_LeavesInputUntouched(t *testing.T) {
	raw := make([]byte, 0, 64)
	raw = append(raw, "<svg><path d=\"M0\t0\"/></svg>"...)
	before := string(raw)

	require.NoError(t, CheckWellFormed(raw))
	assert.Equal(t, before, string(raw))
	assert.Zero(t, raw[:cap(raw)][len(raw)])
}

func TestMinifyOptimizer_RejectsMalformedMarkup(t *testing.T) {
	_, err := NewMinifyOptimizer().Optimize([]byte(`<svg><path fill="#f00" d="M0 0`))
	var malformed *MalformedError
	assert.True(t, errors.As(err, &malformed))
}
