package xmlmap

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func leaf(name, text string) []*Node {
	return []*Node{{Name: name, Text: text}}
}

// Required binds a text element that is always written, empty or not.
func Required[T any](name string, get func(v *T) *string) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			return leaf(name, *get(v))
		},
		decode: func(v *T, n *Node) error {
			*get(v) = n.Text
			return nil
		},
	}
}

// OptText binds an optional text element. A nil value is not written; an empty one is
// written as an empty element.
func OptText[T any](name string, get func(v *T) **string) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			if s := *get(v); s != nil {
				return leaf(name, *s)
			}
			return nil
		},
		decode: func(v *T, n *Node) error {
			s := n.Text
			*get(v) = &s
			return nil
		},
	}
}

// Int binds a required integer element; it is always written.
func Int[T any](name string, get func(v *T) *int) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			return leaf(name, strconv.Itoa(*get(v)))
		},
		decode: func(v *T, n *Node) error {
			i, err := parseInt(n.Text)
			if err != nil {
				return err
			}
			*get(v) = i
			return nil
		},
	}
}

// OptInt binds an optional integer element.
func OptInt[T any](name string, get func(v *T) **int) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			if i := *get(v); i != nil {
				return leaf(name, strconv.Itoa(*i))
			}
			return nil
		},
		decode: func(v *T, n *Node) error {
			i, err := parseInt(n.Text)
			if err != nil {
				return err
			}
			*get(v) = &i
			return nil
		},
	}
}

// Bool binds a required boolean element written as true or false.
func Bool[T any](name string, get func(v *T) *bool) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			return leaf(name, strconv.FormatBool(*get(v)))
		},
		decode: func(v *T, n *Node) error {
			b, err := strconv.ParseBool(strings.TrimSpace(n.Text))
			if err != nil {
				return errors.Wrapf(err, "invalid boolean %q", n.Text)
			}
			*get(v) = b
			return nil
		},
	}
}

// Texts binds a repeated text element.
func Texts[T any](name string, get func(v *T) *[]string) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			var nodes []*Node
			for _, s := range *get(v) {
				nodes = append(nodes, &Node{Name: name, Text: s})
			}
			return nodes
		},
		decode: func(v *T, n *Node) error {
			*get(v) = append(*get(v), n.Text)
			return nil
		},
	}
}

// Ints binds a repeated integer element.
func Ints[T any](name string, get func(v *T) *[]int) Field[T] {
	return Field[T]{
		name: name,
		encode: func(v *T) []*Node {
			var nodes []*Node
			for _, i := range *get(v) {
				nodes = append(nodes, &Node{Name: name, Text: strconv.Itoa(i)})
			}
			return nodes
		},
		decode: func(v *T, n *Node) error {
			i, err := parseInt(n.Text)
			if err != nil {
				return err
			}
			*get(v) = append(*get(v), i)
			return nil
		},
	}
}

// Attribute binds a required attribute.
func Attribute[T any](name string, get func(v *T) *string) Field[T] {
	f := Required(name, get)
	f.kind = attrField
	return f
}

// Content binds the text content of the element itself.
func Content[T any](get func(v *T) *string) Field[T] {
	return Field[T]{
		kind: contentField,
		encode: func(v *T) []*Node {
			return leaf("", *get(v))
		},
		decode: func(v *T, n *Node) error {
			*get(v) = n.Text
			return nil
		},
	}
}

// Nested binds a repeated child element described by its own table.
func Nested[T, C any](get func(v *T) *[]C, table *Table[C]) Field[T] {
	return Field[T]{
		name: table.root,
		encode: func(v *T) []*Node {
			items := *get(v)
			nodes := make([]*Node, 0, len(items))
			for i := range items {
				nodes = append(nodes, table.Encode(&items[i]))
			}
			return nodes
		},
		decode: func(v *T, n *Node) error {
			var c C
			if err := table.DecodeInto(n, &c); err != nil {
				return err
			}
			*get(v) = append(*get(v), c)
			return nil
		},
	}
}

// Optional binds a single optional child element described by its own table.
func Optional[T, C any](get func(v *T) **C, table *Table[C]) Field[T] {
	return Field[T]{
		name: table.root,
		encode: func(v *T) []*Node {
			if c := *get(v); c != nil {
				return []*Node{table.Encode(c)}
			}
			return nil
		},
		decode: func(v *T, n *Node) error {
			c := new(C)
			if err := table.DecodeInto(n, c); err != nil {
				return err
			}
			*get(v) = c
			return nil
		},
	}
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns the value of an optional text, or the empty string when it is absent.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer %q", s)
	}
	return i, nil
}
