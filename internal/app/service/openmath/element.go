package openmath

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is a namespace-free XML element. OpenMath documents are small and
// converted recursively, so the whole tree is read up front.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	// Text is the trimmed character data directly inside the element.
	Text string
}

// Attr returns the attribute with the given local name, or "".
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// Decode reads the first element of r and everything below it.
func Decode(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var text []string

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode OpenMath: no element found")
		}
		if err != nil {
			return nil, fmt.Errorf("decode OpenMath: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs[a.Name.Local] = a.Value
			}
			if n := len(stack); n > 0 {
				stack[n-1].Children = append(stack[n-1].Children, el)
			}
			stack = append(stack, el)
			text = append(text, "")
		case xml.CharData:
			if n := len(text); n > 0 {
				text[n-1] += string(t)
			}
		case xml.EndElement:
			n := len(stack)
			el := stack[n-1]
			el.Text = strings.TrimSpace(text[n-1])
			stack, text = stack[:n-1], text[:n-1]
			if len(stack) == 0 {
				return el, nil
			}
		}
	}
}

// DecodeString is Decode over a string.
func DecodeString(s string) (*Element, error) {
	return Decode(strings.NewReader(s))
}
