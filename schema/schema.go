// Package schema checks OpenML documents against the XML schema documents the server
// publishes. It understands the subset of XML Schema those documents use.
package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

const unbounded = -1

type particleKind int

const (
	elementParticle particleKind = iota
	sequenceParticle
	choiceParticle
	allParticle
	anyParticle
)

type particle struct {
	kind     particleKind
	min      int
	max      int
	element  *elementDecl
	children []*particle
}

type elementDecl struct {
	name     string
	ref      string
	typeName string
	complex  *complexType
	simple   *simpleType
}

type attrDecl struct {
	name     string
	typeName string
	simple   *simpleType
	required bool
}

type complexType struct {
	content *particle
	attrs   []attrDecl
	// base type of simple content; empty for element-only content
	textType string
	text     *simpleType
	mixed    bool
	extends  string
}

type simpleType struct {
	base      string
	baseType  *simpleType
	enums     []string
	patterns  []*regexp.Regexp
	minLength *int
	maxLength *int
}

// Schema is a compiled schema document.
type Schema struct {
	elements map[string]*elementDecl
	complex  map[string]*complexType
	simple   map[string]*simpleType
}

// Compile reads a schema document.
func Compile(xsd []byte) (*Schema, error) {
	root, err := xmlmap.ParseBytes(xsd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read schema")
	}
	if root.Name != "schema" {
		return nil, errors.Errorf("failed to read schema: unexpected root %s", root.Name)
	}

	s := &Schema{
		elements: map[string]*elementDecl{},
		complex:  map[string]*complexType{},
		simple:   map[string]*simpleType{},
	}
	for _, c := range root.Children {
		name, _ := c.Attr("name")
		switch c.Name {
		case "element":
			decl, err := s.compileElement(c)
			if err != nil {
				return nil, err
			}
			s.elements[decl.name] = decl
		case "complexType":
			if name == "" {
				return nil, errors.New("global complexType without name")
			}
			ct, err := s.compileComplex(c)
			if err != nil {
				return nil, errors.Wrapf(err, "complexType %s", name)
			}
			s.complex[name] = ct
		case "simpleType":
			if name == "" {
				return nil, errors.New("global simpleType without name")
			}
			st, err := compileSimple(c)
			if err != nil {
				return nil, errors.Wrapf(err, "simpleType %s", name)
			}
			s.simple[name] = st
		}
	}
	if len(s.elements) == 0 {
		return nil, errors.New("schema declares no global element")
	}
	return s, nil
}

// Elements lists the names of the global elements.
func (s *Schema) Elements() []string {
	names := make([]string, 0, len(s.elements))
	for name := range s.elements {
		names = append(names, name)
	}
	return names
}

func (s *Schema) compileElement(n *xmlmap.Node) (*elementDecl, error) {
	decl := &elementDecl{}
	decl.name, _ = n.Attr("name")
	if ref, ok := n.Attr("ref"); ok {
		decl.ref = localName(ref)
		return decl, nil
	}
	if decl.name == "" {
		return nil, errors.New("element without name or ref")
	}
	if t, ok := n.Attr("type"); ok {
		decl.typeName = localName(t)
	}
	for _, c := range n.Children {
		switch c.Name {
		case "complexType":
			ct, err := s.compileComplex(c)
			if err != nil {
				return nil, errors.Wrapf(err, "element %s", decl.name)
			}
			decl.complex = ct
		case "simpleType":
			st, err := compileSimple(c)
			if err != nil {
				return nil, errors.Wrapf(err, "element %s", decl.name)
			}
			decl.simple = st
		}
	}
	return decl, nil
}

func (s *Schema) compileComplex(n *xmlmap.Node) (*complexType, error) {
	ct := &complexType{}
	if mixed, ok := n.Attr("mixed"); ok && mixed == "true" {
		ct.mixed = true
	}
	for _, c := range n.Children {
		switch c.Name {
		case "sequence", "choice", "all":
			p, err := s.compileGroup(c)
			if err != nil {
				return nil, err
			}
			ct.content = p
		case "attribute":
			a, err := compileAttr(c)
			if err != nil {
				return nil, err
			}
			ct.attrs = append(ct.attrs, a)
		case "simpleContent":
			ext := firstChild(c, "extension", "restriction")
			if ext == nil {
				return nil, errors.New("simpleContent without extension")
			}
			base, _ := ext.Attr("base")
			ct.textType = localName(base)
			if ext.Name == "restriction" {
				st, err := compileSimple(&xmlmap.Node{Name: "simpleType", Children: []*xmlmap.Node{ext}})
				if err != nil {
					return nil, err
				}
				ct.text = st
			}
			for _, a := range ext.Children {
				if a.Name != "attribute" {
					continue
				}
				attr, err := compileAttr(a)
				if err != nil {
					return nil, err
				}
				ct.attrs = append(ct.attrs, attr)
			}
		case "complexContent":
			ext := firstChild(c, "extension", "restriction")
			if ext == nil {
				return nil, errors.New("complexContent without extension")
			}
			base, _ := ext.Attr("base")
			if ext.Name == "extension" {
				ct.extends = localName(base)
			}
			inner, err := s.compileComplex(ext)
			if err != nil {
				return nil, err
			}
			ct.content = inner.content
			ct.attrs = append(ct.attrs, inner.attrs...)
		}
	}
	return ct, nil
}

func (s *Schema) compileGroup(n *xmlmap.Node) (*particle, error) {
	p := &particle{}
	switch n.Name {
	case "sequence":
		p.kind = sequenceParticle
	case "choice":
		p.kind = choiceParticle
	case "all":
		p.kind = allParticle
	}
	var err error
	if p.min, p.max, err = occurs(n); err != nil {
		return nil, err
	}
	for _, c := range n.Children {
		switch c.Name {
		case "element":
			decl, err := s.compileElement(c)
			if err != nil {
				return nil, err
			}
			ep := &particle{kind: elementParticle, element: decl}
			if ep.min, ep.max, err = occurs(c); err != nil {
				return nil, errors.Wrapf(err, "element %s", decl.name)
			}
			p.children = append(p.children, ep)
		case "sequence", "choice", "all":
			child, err := s.compileGroup(c)
			if err != nil {
				return nil, err
			}
			p.children = append(p.children, child)
		case "any":
			ap := &particle{kind: anyParticle}
			if ap.min, ap.max, err = occurs(c); err != nil {
				return nil, err
			}
			p.children = append(p.children, ap)
		}
	}
	return p, nil
}

func compileAttr(n *xmlmap.Node) (attrDecl, error) {
	a := attrDecl{}
	a.name, _ = n.Attr("name")
	if a.name == "" {
		return a, errors.New("attribute without name")
	}
	if t, ok := n.Attr("type"); ok {
		a.typeName = localName(t)
	}
	if use, ok := n.Attr("use"); ok && use == "required" {
		a.required = true
	}
	if c := firstChild(n, "simpleType"); c != nil {
		st, err := compileSimple(c)
		if err != nil {
			return a, errors.Wrapf(err, "attribute %s", a.name)
		}
		a.simple = st
	}
	return a, nil
}

func compileSimple(n *xmlmap.Node) (*simpleType, error) {
	st := &simpleType{base: "string"}
	r := firstChild(n, "restriction")
	if r == nil {
		// lists and unions are checked as plain strings
		return st, nil
	}
	if base, ok := r.Attr("base"); ok {
		st.base = localName(base)
	}
	if inner := firstChild(r, "simpleType"); inner != nil {
		bt, err := compileSimple(inner)
		if err != nil {
			return nil, err
		}
		st.baseType = bt
		st.base = ""
	}
	for _, f := range r.Children {
		value, _ := f.Attr("value")
		switch f.Name {
		case "enumeration":
			st.enums = append(st.enums, value)
		case "pattern":
			re, err := regexp.Compile("^(?:" + value + ")$")
			if err != nil {
				return nil, errors.Wrapf(err, "unsupported pattern %q", value)
			}
			st.patterns = append(st.patterns, re)
		case "minLength", "maxLength", "length":
			l, err := strconv.Atoi(value)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid %s", f.Name)
			}
			if f.Name != "maxLength" {
				st.minLength = &l
			}
			if f.Name != "minLength" {
				st.maxLength = &l
			}
		}
	}
	return st, nil
}

func occurs(n *xmlmap.Node) (int, int, error) {
	min, max := 1, 1
	if v, ok := n.Attr("minOccurs"); ok {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			return 0, 0, errors.Errorf("invalid minOccurs %q", v)
		}
		min = i
	}
	if v, ok := n.Attr("maxOccurs"); ok {
		if v == "unbounded" {
			max = unbounded
		} else {
			i, err := strconv.Atoi(v)
			if err != nil || i < 0 {
				return 0, 0, errors.Errorf("invalid maxOccurs %q", v)
			}
			max = i
		}
	}
	if max != unbounded && max < min {
		return 0, 0, errors.Errorf("maxOccurs %d below minOccurs %d", max, min)
	}
	return min, max, nil
}

func firstChild(n *xmlmap.Node, names ...string) *xmlmap.Node {
	for _, c := range n.Children {
		for _, name := range names {
			if c.Name == name {
				return c
			}
		}
	}
	return nil
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
