package xmlmap

import (
	"github.com/pkg/errors"
)

type fieldKind int

const (
	elementField fieldKind = iota
	attrField
	contentField
)

// Field binds one child element, attribute, or the text content of an element to a
// part of T.
type Field[T any] struct {
	name   string
	kind   fieldKind
	encode func(v *T) []*Node
	decode func(v *T, n *Node) error
}

// Table is the binding of a resource type to its document element. Fields are
// written in table order, which is the schema order of the element.
type Table[T any] struct {
	root   string
	fields []Field[T]
	index  map[string]int
	attrs  map[string]int
	check  func(v *T) error
}

// NewTable builds the binding for the element named root.
func NewTable[T any](root string, fields ...Field[T]) *Table[T] {
	t := &Table[T]{
		root:   root,
		fields: fields,
		index:  map[string]int{},
		attrs:  map[string]int{},
	}
	for i, f := range fields {
		switch f.kind {
		case elementField:
			t.index[f.name] = i
		case attrField:
			t.attrs[f.name] = i
		}
	}
	return t
}

// WithCheck sets an invariant check run after every decode.
func (t *Table[T]) WithCheck(check func(v *T) error) *Table[T] {
	t.check = check
	return t
}

// Root returns the element name bound by the table.
func (t *Table[T]) Root() string {
	return t.root
}

// Encode converts v to an element tree.
func (t *Table[T]) Encode(v *T) *Node {
	n := &Node{Name: t.root}
	for _, f := range t.fields {
		nodes := f.encode(v)
		switch f.kind {
		case attrField:
			if len(nodes) > 0 {
				n.Attrs = append(n.Attrs, Attr{Name: f.name, Value: nodes[0].Text})
			}
		case contentField:
			if len(nodes) > 0 {
				n.Text = nodes[0].Text
			}
		default:
			n.Children = append(n.Children, nodes...)
		}
	}
	return n
}

// Decode converts an element tree to a new T. Unknown children are ignored.
func (t *Table[T]) Decode(n *Node) (*T, error) {
	v := new(T)
	if err := t.DecodeInto(n, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeInto fills v from an element tree.
func (t *Table[T]) DecodeInto(n *Node, v *T) error {
	if n.Name != t.root {
		return errors.Errorf("unexpected element %s, expected %s", n.Name, t.root)
	}
	for _, a := range n.Attrs {
		i, ok := t.attrs[a.Name]
		if !ok {
			continue
		}
		if err := t.fields[i].decode(v, &Node{Name: a.Name, Text: a.Value}); err != nil {
			return errors.Wrapf(err, "failed to decode %s/@%s", t.root, a.Name)
		}
	}
	for _, f := range t.fields {
		if f.kind == contentField {
			if err := f.decode(v, n); err != nil {
				return errors.Wrapf(err, "failed to decode %s text", t.root)
			}
		}
	}
	for _, c := range n.Children {
		i, ok := t.index[c.Name]
		if !ok {
			continue
		}
		if err := t.fields[i].decode(v, c); err != nil {
			return errors.Wrapf(err, "failed to decode %s/%s", t.root, c.Name)
		}
	}
	if t.check != nil {
		if err := t.check(v); err != nil {
			return errors.Wrapf(err, "invalid %s", t.root)
		}
	}
	return nil
}

// Marshal writes v as a complete document.
func (t *Table[T]) Marshal(v *T) ([]byte, error) {
	return Marshal(t.Encode(v))
}

// Unmarshal reads a complete document into a new T.
func (t *Table[T]) Unmarshal(data []byte) (*T, error) {
	n, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return t.Decode(n)
}
