package schema

import (
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

// ValidationError lists every way a document violates a schema.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document is not valid: %s", strings.Join(e.Problems, "; "))
}

// IsValidationError reports whether err's chain holds a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// attributes allowed on any element
var instanceAttrs = map[string]bool{
	"schemaLocation":            true,
	"noNamespaceSchemaLocation": true,
	"nil":                       true,
}

const maxTypeDepth = 32

// Validate checks doc against the schema.
func (s *Schema) Validate(doc []byte) error {
	root, err := xmlmap.ParseBytes(doc)
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	return s.ValidateNode(root)
}

// ValidateNode checks a parsed document against the schema.
func (s *Schema) ValidateNode(root *xmlmap.Node) error {
	v := &validator{schema: s}
	path := "/" + root.Name
	if decl, ok := s.elements[root.Name]; ok {
		v.element(root, decl, path)
	} else {
		v.problem(path, "element is not declared by the schema")
	}
	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	schema   *Schema
	problems []string
}

func (v *validator) problem(path string, format string, args ...interface{}) {
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) resolve(decl *elementDecl) *elementDecl {
	for i := 0; decl != nil && decl.ref != "" && i < maxTypeDepth; i++ {
		decl = v.schema.elements[decl.ref]
	}
	return decl
}

func (v *validator) element(n *xmlmap.Node, decl *elementDecl, path string) {
	decl = v.resolve(decl)
	if decl == nil {
		v.problem(path, "element references an undeclared element")
		return
	}

	switch {
	case decl.complex != nil:
		v.complex(n, decl.complex, path)
	case decl.simple != nil:
		v.simpleElement(n, path, func(text string) error { return v.checkSimple(decl.simple, text, 0) })
	case decl.typeName == "" || decl.typeName == "anyType":
		// anything goes
	default:
		if ct, ok := v.schema.complex[decl.typeName]; ok {
			v.complex(n, ct, path)
			return
		}
		v.simpleElement(n, path, func(text string) error { return v.checkType(decl.typeName, text, 0) })
	}
}

func (v *validator) simpleElement(n *xmlmap.Node, path string, check func(string) error) {
	if len(n.Children) > 0 {
		v.problem(path, "element must not have child elements")
		return
	}
	for _, a := range n.Attrs {
		if !instanceAttrs[a.Name] {
			v.problem(path, "unexpected attribute %s", a.Name)
		}
	}
	if err := check(n.Text); err != nil {
		v.problem(path, "%v", err)
	}
}

func (v *validator) complex(n *xmlmap.Node, ct *complexType, path string) {
	attrs := v.attributes(ct, 0)
	declared := map[string]bool{}
	for _, a := range attrs {
		declared[a.name] = true
		value, ok := n.Attr(a.name)
		if !ok {
			if a.required {
				v.problem(path, "missing required attribute %s", a.name)
			}
			continue
		}
		var err error
		if a.simple != nil {
			err = v.checkSimple(a.simple, value, 0)
		} else if a.typeName != "" {
			err = v.checkType(a.typeName, value, 0)
		}
		if err != nil {
			v.problem(path+"/@"+a.name, "%v", err)
		}
	}
	for _, a := range n.Attrs {
		if !declared[a.Name] && !instanceAttrs[a.Name] {
			v.problem(path, "unexpected attribute %s", a.Name)
		}
	}

	if ct.textType != "" {
		if len(n.Children) > 0 {
			v.problem(path, "element must not have child elements")
			return
		}
		var err error
		if ct.text != nil {
			err = v.checkSimple(ct.text, n.Text, 0)
		} else {
			err = v.checkType(ct.textType, n.Text, 0)
		}
		if err != nil {
			v.problem(path, "%v", err)
		}
		return
	}

	if !ct.mixed && strings.TrimSpace(n.Text) != "" {
		v.problem(path, "unexpected text content")
	}

	content := v.content(ct, 0)
	if content == nil {
		for _, c := range n.Children {
			v.problem(path, "unexpected element %s", c.Name)
		}
		return
	}

	m := &matcher{validator: v, nodes: n.Children}
	ends := m.occur(content, []state{{}})
	for _, st := range ends {
		if st.pos != len(n.Children) {
			continue
		}
		for i, c := range n.Children {
			if st.decls[i] != nil {
				v.element(c, st.decls[i], path+"/"+c.Name)
			}
		}
		return
	}
	if m.furthest < len(n.Children) {
		v.problem(path, "unexpected element %s", n.Children[m.furthest].Name)
	} else {
		v.problem(path, "missing required element after %d children", len(n.Children))
	}
}

// content returns the content model of ct including the content of extended types.
func (v *validator) content(ct *complexType, depth int) *particle {
	if ct.extends == "" || depth > maxTypeDepth {
		return ct.content
	}
	base, ok := v.schema.complex[ct.extends]
	if !ok {
		return ct.content
	}
	baseContent := v.content(base, depth+1)
	switch {
	case baseContent == nil:
		return ct.content
	case ct.content == nil:
		return baseContent
	}
	return &particle{kind: sequenceParticle, min: 1, max: 1, children: []*particle{baseContent, ct.content}}
}

func (v *validator) attributes(ct *complexType, depth int) []attrDecl {
	if ct.extends == "" || depth > maxTypeDepth {
		return ct.attrs
	}
	base, ok := v.schema.complex[ct.extends]
	if !ok {
		return ct.attrs
	}
	return append(append([]attrDecl(nil), v.attributes(base, depth+1)...), ct.attrs...)
}

func (v *validator) checkType(name string, text string, depth int) error {
	if st, ok := v.schema.simple[name]; ok {
		return v.checkSimple(st, text, depth+1)
	}
	return checkBuiltin(name, text)
}

func (v *validator) checkSimple(st *simpleType, text string, depth int) error {
	if depth > maxTypeDepth {
		return errors.New("simple type nesting too deep")
	}
	var err error
	if st.baseType != nil {
		err = v.checkSimple(st.baseType, text, depth+1)
	} else {
		err = v.checkType(st.base, text, depth)
	}
	if err != nil {
		return err
	}

	if len(st.enums) > 0 {
		found := false
		for _, e := range st.enums {
			if e == text {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("value %q is not one of %s", text, strings.Join(st.enums, ", "))
		}
	}
	for _, re := range st.patterns {
		if !re.MatchString(text) {
			return errors.Errorf("value %q does not match pattern %s", text, re.String())
		}
	}
	length := utf8.RuneCountInString(text)
	if st.minLength != nil && length < *st.minLength {
		return errors.Errorf("value %q is shorter than %d", text, *st.minLength)
	}
	if st.maxLength != nil && length > *st.maxLength {
		return errors.Errorf("value %q is longer than %d", text, *st.maxLength)
	}
	return nil
}

func checkBuiltin(name string, text string) error {
	value := strings.TrimSpace(text)
	switch name {
	case "boolean":
		switch value {
		case "true", "false", "1", "0":
			return nil
		}
		return errors.Errorf("value %q is not a boolean", text)
	case "integer", "int", "long", "short", "byte":
		if _, ok := new(big.Int).SetString(value, 10); !ok {
			return errors.Errorf("value %q is not an integer", text)
		}
	case "nonNegativeInteger", "unsignedInt", "unsignedLong":
		i, ok := new(big.Int).SetString(value, 10)
		if !ok || i.Sign() < 0 {
			return errors.Errorf("value %q is not a non-negative integer", text)
		}
	case "positiveInteger":
		i, ok := new(big.Int).SetString(value, 10)
		if !ok || i.Sign() <= 0 {
			return errors.Errorf("value %q is not a positive integer", text)
		}
	case "decimal":
		if _, ok := new(big.Float).SetString(value); !ok || strings.ContainsAny(value, "eE") {
			return errors.Errorf("value %q is not a decimal", text)
		}
	case "float", "double":
		switch value {
		case "INF", "-INF", "NaN":
			return nil
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return errors.Errorf("value %q is not a %s", text, name)
		}
	case "date":
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return errors.Errorf("value %q is not a date", text)
		}
	case "dateTime":
		if _, err := time.Parse(time.RFC3339, value); err == nil {
			return nil
		}
		if _, err := time.Parse("2006-01-02T15:04:05", value); err != nil {
			return errors.Errorf("value %q is not a dateTime", text)
		}
	case "anyURI":
		if _, err := url.Parse(value); err != nil {
			return errors.Errorf("value %q is not a URI", text)
		}
	}
	return nil
}

// state is a partial match of child elements: the first pos children are matched,
// decls[i] holding the declaration child i was matched to.
type state struct {
	pos   int
	decls []*elementDecl
}

func (st state) advance(decl *elementDecl) state {
	decls := make([]*elementDecl, len(st.decls), len(st.decls)+1)
	copy(decls, st.decls)
	return state{pos: st.pos + 1, decls: append(decls, decl)}
}

type matcher struct {
	validator *validator
	nodes     []*xmlmap.Node
	furthest  int
}

func (m *matcher) name(decl *elementDecl) string {
	if decl.ref != "" {
		if target := m.validator.resolve(decl); target != nil {
			return target.name
		}
		return decl.ref
	}
	return decl.name
}

// occur matches p with its occurrence bounds from every input state and returns the
// reachable states, one per position.
func (m *matcher) occur(p *particle, in []state) []state {
	var out []state
	if p.min == 0 {
		out = append(out, in...)
	}
	limit := p.max
	if limit == unbounded {
		limit = p.min + len(m.nodes) + 1
	}
	cur := in
	for i := 1; i <= limit && len(cur) > 0; i++ {
		cur = dedupe(m.once(p, cur))
		if i >= p.min {
			out = append(out, cur...)
		}
	}
	return dedupe(out)
}

func (m *matcher) once(p *particle, in []state) []state {
	var out []state
	switch p.kind {
	case elementParticle, anyParticle:
		for _, st := range in {
			if st.pos >= len(m.nodes) {
				continue
			}
			if p.kind == anyParticle {
				out = append(out, m.reached(st.advance(nil)))
			} else if m.nodes[st.pos].Name == m.name(p.element) {
				out = append(out, m.reached(st.advance(p.element)))
			}
		}
	case sequenceParticle:
		out = in
		for _, c := range p.children {
			out = m.occur(c, out)
			if len(out) == 0 {
				break
			}
		}
	case choiceParticle:
		for _, c := range p.children {
			out = append(out, m.occur(c, in)...)
		}
	case allParticle:
		for _, st := range in {
			if next, ok := m.all(p, st); ok {
				out = append(out, next)
			}
		}
	}
	return out
}

// all matches the members of an all group in any order, each at most once.
func (m *matcher) all(p *particle, st state) (state, bool) {
	used := make([]bool, len(p.children))
	for st.pos < len(m.nodes) {
		matched := false
		for i, c := range p.children {
			if used[i] || c.kind != elementParticle || c.max == 0 {
				continue
			}
			if m.nodes[st.pos].Name == m.name(c.element) {
				used[i] = true
				st = m.reached(st.advance(c.element))
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	for i, c := range p.children {
		if !used[i] && c.min > 0 {
			return st, false
		}
	}
	return st, true
}

func (m *matcher) reached(st state) state {
	if st.pos > m.furthest {
		m.furthest = st.pos
	}
	return st
}

func dedupe(states []state) []state {
	seen := map[int]bool{}
	out := states[:0:0]
	for _, st := range states {
		if seen[st.pos] {
			continue
		}
		seen[st.pos] = true
		out = append(out, st)
	}
	return out
}
