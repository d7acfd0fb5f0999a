package normalize

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// MalformedError reports where markup stopped being well-formed.
type MalformedError struct {
	Message string
	Line    int
	Column  int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

type tagKind int

const (
	noTag tagKind = iota
	elementTag
	piTag
)

// CheckWellFormed accepts exactly one svg root element with properly nested,
// closed and quoted tags. Outside the root only whitespace, comments, a
// doctype and processing instructions may appear.
func CheckWellFormed(raw []byte) error {
	// The lexer writes into its buffer, so it gets a copy with room for the
	// trailing NULL.
	buf := make([]byte, len(raw), len(raw)+1)
	copy(buf, raw)
	input := parse.NewInputBytes(buf)
	l := xml.NewLexer(input)

	malformed := func(format string, a ...any) error {
		pe := parse.NewErrorLexer(input, format, a...)
		return &MalformedError{Message: pe.Message, Line: pe.Line, Column: pe.Column}
	}

	var open [][]byte
	tag := noTag
	sawRoot := false
	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return err
			}
			switch {
			case tag != noTag:
				return malformed("unterminated tag")
			case len(open) > 0:
				return malformed("unclosed element <%s>", open[len(open)-1])
			case !sawRoot:
				return malformed("no root element")
			}
			return nil

		case xml.StartTagToken:
			name := l.Text()
			if !validName(name) {
				return malformed("invalid tag name %q", name)
			}
			if len(open) == 0 {
				if sawRoot {
					return malformed("element <%s> after the root element", name)
				}
				if !bytes.Equal(localName(name), []byte("svg")) {
					return malformed("root element <%s> is not svg", name)
				}
				sawRoot = true
			}
			open = append(open, name)
			tag = elementTag

		case xml.StartTagPIToken:
			tag = piTag

		case xml.AttributeToken:
			if !validName(l.Text()) {
				return malformed("invalid attribute name %q", l.Text())
			}
			v := l.AttrVal()
			if len(v) == 0 {
				return malformed("attribute %s has no value", l.Text())
			}
			if q := v[0]; (q != '"' && q != '\'') || len(v) < 2 || v[len(v)-1] != q {
				return malformed("attribute %s has an unterminated or unquoted value", l.Text())
			}

		case xml.StartTagCloseToken:
			if tag != elementTag {
				return malformed("unterminated processing instruction")
			}
			tag = noTag

		case xml.StartTagCloseVoidToken:
			if tag != elementTag {
				return malformed("unterminated processing instruction")
			}
			open = open[:len(open)-1]
			tag = noTag

		case xml.StartTagClosePIToken:
			if tag != piTag {
				return malformed("unexpected ?>")
			}
			tag = noTag

		case xml.EndTagToken:
			if !bytes.HasSuffix(data, []byte(">")) {
				return malformed("unterminated end tag")
			}
			if len(open) == 0 {
				return malformed("end tag </%s> without a start tag", l.Text())
			}
			if top := open[len(open)-1]; !bytes.Equal(top, l.Text()) {
				return malformed("end tag </%s> does not close <%s>", l.Text(), top)
			}
			open = open[:len(open)-1]

		case xml.TextToken:
			if len(open) == 0 && len(bytes.TrimSpace(data)) > 0 {
				return malformed("text outside the root element")
			}

		case xml.CommentToken:
			if !bytes.HasSuffix(data, []byte("-->")) {
				return malformed("unterminated comment")
			}

		case xml.CDATAToken:
			if len(open) == 0 {
				return malformed("CDATA outside the root element")
			}
			if !bytes.HasSuffix(data, []byte("]]>")) {
				return malformed("unterminated CDATA section")
			}

		case xml.DOCTYPEToken:
			if sawRoot {
				return malformed("doctype after the root element")
			}
			if !bytes.HasSuffix(data, []byte(">")) {
				return malformed("unterminated doctype")
			}
		}
	}
}

func localName(name []byte) []byte {
	if i := bytes.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func validName(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':', c >= 0x80:
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
