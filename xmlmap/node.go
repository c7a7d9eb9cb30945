// Package xmlmap maps OpenML documents to and from Go values through explicit
// per-resource binding tables.
package xmlmap

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Namespace is the namespace of every OpenML document.
	Namespace = "http://openml.org/openml"
	// Prefix is the prefix OpenML documents bind Namespace to.
	Prefix = "oml"
)

// Attr is an unprefixed attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a parsed document. Names carry no namespace prefix.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first child with the given name.
func (n *Node) ChildText(name string) string {
	if c := n.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Parse reads a single document.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node
	var text []*strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse document")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, errors.New("failed to parse document: multiple root elements")
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			content := text[len(text)-1].String()
			// whitespace between child elements is insignificant
			if len(n.Children) == 0 || strings.TrimSpace(content) != "" {
				n.Text = content
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, errors.New("failed to parse document: no root element")
	}
	return root, nil
}

// ParseBytes reads a single document from data.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// RootName returns the unprefixed name of the first element in data without
// parsing the rest of the document.
func RootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", errors.Wrap(err, "failed to read root element")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// MarshalXML writes the node with the OpenML prefix on every element name. It lets a
// Node be handed to anything that accepts an xml.Marshaler.
func (n *Node) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return n.encode(e)
}

func (n *Node) encode(e *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: Prefix + ":" + n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if len(n.Children) == 0 {
		if n.Text != "" {
			if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
				return err
			}
		}
	} else {
		for _, c := range n.Children {
			if err := c.encode(e); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(start.End())
}

// Document returns a copy of n that declares the OpenML namespace, suitable as a
// document root.
func Document(n *Node) *Node {
	root := *n
	root.Attrs = append([]Attr{{Name: "xmlns:" + Prefix, Value: Namespace}}, n.Attrs...)
	return &root
}

// Marshal writes root as an indented document with an XML header.
func Marshal(root *Node) ([]byte, error) {
	return write(Document(root), "  ", true)
}

// Canonical parses doc and writes it back without insignificant whitespace,
// header, or comments so that equivalent documents compare equal as text.
func Canonical(doc []byte) (string, error) {
	root, err := ParseBytes(doc)
	if err != nil {
		return "", err
	}
	out, err := write(root, "", false)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Equivalent reports whether a and b are the same document up to insignificant
// whitespace.
func Equivalent(a, b []byte) (bool, error) {
	ca, err := Canonical(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonical(b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

func write(root *Node, indent string, header bool) ([]byte, error) {
	buf := &bytes.Buffer{}
	if header {
		buf.WriteString(xml.Header)
	}
	enc := xml.NewEncoder(buf)
	if indent != "" {
		enc.Indent("", indent)
	}
	if err := root.encode(enc); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s document", root.Name)
	}
	if err := enc.Flush(); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s document", root.Name)
	}
	if header {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
