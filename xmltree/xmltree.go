// Package xmltree represents XML instance documents as a mutable tree.
//
// The xmltree package provides routines for accessing an XML document
// as a tree of elements and attributes, along with functionality to
// resolve namespace-prefixed strings at any point in the tree. Every
// element and attribute carries a "referenced" flag, which the upgrade
// package sets once a node of an original document has been reused in
// an upgraded document.
package xmltree // import "github.com/CognitoIQ/xmlupgrade/xmltree"

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const recursionLimit = 3000

// XMLNS is the namespace bound to the reserved "xml" prefix.
const XMLNS = "http://www.w3.org/XML/1998/namespace"

var errDeepXML = errors.New("xmltree: xml document too deeply nested")

// A Node is either an *Element or an *Attr.
type Node interface {
	// Referenced reports whether the node has been consumed.
	Referenced() bool
	// SetReferenced sets or clears the referenced flag.
	SetReferenced(bool)
	// Parent returns the element the node is attached to, or nil.
	Parent() *Element

	isNode()
}

// An Attr is a single key=value pair in the opening tag of an Element.
// Namespace declarations are kept as attributes with a Name.Space of
// "xmlns" (or a Name.Local of "xmlns" for the default namespace), the
// way encoding/xml reports them.
type Attr struct {
	Name  xml.Name
	Value string

	referenced bool
	parent     *Element
}

// NewAttr returns a detached attribute.
func NewAttr(name xml.Name, value string) *Attr {
	return &Attr{Name: name, Value: value}
}

func (*Attr) isNode() {}

// Referenced reports whether the attribute has been consumed.
func (a *Attr) Referenced() bool { return a.referenced }

// SetReferenced sets the referenced flag of the attribute.
func (a *Attr) SetReferenced(v bool) { a.referenced = v }

// Parent returns the element owning the attribute, or nil if the
// attribute is detached.
func (a *Attr) Parent() *Element { return a.parent }

// Detach removes the attribute from its element, if any.
func (a *Attr) Detach() {
	if a.parent != nil {
		a.parent.RemoveAttr(a)
	}
}

// IsNamespaceDecl reports whether the attribute declares an XML
// namespace prefix.
func (a *Attr) IsNamespaceDecl() bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// An Element represents a single element in an XML document. Elements
// may have zero or more children and attributes. Content holds the
// character data of the element; for elements with children it is
// usually insignificant white space. An Element also captures xml
// namespace prefixes, so that arbitrary QNames in attribute values
// can be resolved.
type Element struct {
	Name     xml.Name
	Attrs    []*Attr
	Content  string
	Children []*Element
	// A list of defined XML namespace prefixes, from least specific to
	// most specific. The Space field is the canonical xml namespace,
	// and the Local field is the prefix.
	Scope []xml.Name

	referenced bool
	parent     *Element
}

// NewElement returns a detached element with no content.
func NewElement(name xml.Name) *Element {
	return &Element{Name: name}
}

func (*Element) isNode() {}

// Referenced reports whether the element has been consumed.
func (el *Element) Referenced() bool { return el.referenced }

// SetReferenced sets the referenced flag of the element.
func (el *Element) SetReferenced(v bool) { el.referenced = v }

// Parent returns the parent element, or nil for a root or detached
// element.
func (el *Element) Parent() *Element { return el.parent }

// Text returns the character data of the element with leading and
// trailing white space removed.
func (el *Element) Text() string {
	return strings.TrimSpace(el.Content)
}

// Attr gets the value of the first attribute whose name matches the
// space and local arguments. If space is the empty string, only
// attributes' local names are considered when looking for a match.
// If an attribute could not be found, the empty string is returned.
func (el *Element) Attr(space, local string) string {
	if a := el.AttrNode(space, local); a != nil {
		return a.Value
	}
	return ""
}

// AttrNode is like Attr, but returns the attribute itself. Namespace
// declarations are never returned.
func (el *Element) AttrNode(space, local string) *Attr {
	for _, a := range el.Attrs {
		if a.Name.Local != local || a.IsNamespaceDecl() {
			continue
		}
		if space == "" || space == a.Name.Space {
			return a
		}
	}
	return nil
}

// SetAttr adds an XML attribute to an Element's existing Attributes.
// If the attribute already exists, it is replaced.
func (el *Element) SetAttr(space, local, value string) *Attr {
	for _, a := range el.Attrs {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			a.Value = value
			return a
		}
	}
	a := NewAttr(xml.Name{Space: space, Local: local}, value)
	el.AddAttr(a)
	return a
}

// AddAttr attaches a detached attribute to the element.
func (el *Element) AddAttr(a *Attr) {
	a.Detach()
	a.parent = el
	el.Attrs = append(el.Attrs, a)
}

// ReplaceAttr swaps old for a, keeping its position. If old is not
// an attribute of el, a is appended.
func (el *Element) ReplaceAttr(old, a *Attr) {
	for i, v := range el.Attrs {
		if v == old {
			a.Detach()
			old.parent = nil
			a.parent = el
			el.Attrs[i] = a
			return
		}
	}
	el.AddAttr(a)
}

// RemoveAttr detaches a from the element.
func (el *Element) RemoveAttr(a *Attr) {
	for i, v := range el.Attrs {
		if v == a {
			el.Attrs = append(el.Attrs[:i], el.Attrs[i+1:]...)
			a.parent = nil
			return
		}
	}
}

// RemoveNamespaceDecls removes every namespace declaration from the
// element's opening tag.
func (el *Element) RemoveNamespaceDecls() {
	attrs := el.Attrs[:0]
	for _, a := range el.Attrs {
		if a.IsNamespaceDecl() {
			a.parent = nil
			continue
		}
		attrs = append(attrs, a)
	}
	el.Attrs = attrs
}

// Index returns the position of child among the element's children,
// or -1.
func (el *Element) Index(child *Element) int {
	for i, c := range el.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild attaches child as the last child of el.
func (el *Element) AppendChild(child *Element) {
	child.Detach()
	child.parent = el
	el.Children = append(el.Children, child)
}

// InsertBefore attaches child in front of ref. If ref is nil or not a
// child of el, child is appended.
func (el *Element) InsertBefore(child, ref *Element) {
	i := -1
	if ref != nil {
		i = el.Index(ref)
	}
	if i < 0 {
		el.AppendChild(child)
		return
	}
	child.Detach()
	// Detaching may have shifted ref when child was an earlier sibling.
	i = el.Index(ref)
	child.parent = el
	el.Children = append(el.Children, nil)
	copy(el.Children[i+1:], el.Children[i:])
	el.Children[i] = child
}

// ReplaceChild swaps old for child, keeping its position. If old is
// not a child of el, child is appended.
func (el *Element) ReplaceChild(old, child *Element) {
	i := el.Index(old)
	if i < 0 {
		el.AppendChild(child)
		return
	}
	if child == old {
		return
	}
	child.Detach()
	i = el.Index(old)
	old.parent = nil
	child.parent = el
	el.Children[i] = child
}

// RemoveChild detaches child from el.
func (el *Element) RemoveChild(child *Element) {
	if i := el.Index(child); i >= 0 {
		el.Children = append(el.Children[:i], el.Children[i+1:]...)
		child.parent = nil
	}
}

// Detach removes the element from its parent, if any.
func (el *Element) Detach() {
	if el.parent != nil {
		el.parent.RemoveChild(el)
	}
}

// Resolve translates an XML QName (namespace-prefixed string) to an
// xml.Name with a canonicalized namespace in its Space field. If qname
// does not have a prefix, the default namespace is used. If a namespace
// prefix cannot be resolved, the returned value's Space field will be
// the unresolved prefix. Use the ResolveNS function to detect when a
// namespace prefix cannot be resolved.
func (el *Element) Resolve(qname string) xml.Name {
	name, _ := el.ResolveNS(qname)
	return name
}

// The ResolveNS method is like Resolve, but returns false for its second
// return value if a namespace prefix cannot be resolved.
func (el *Element) ResolveNS(qname string) (xml.Name, bool) {
	var prefix, local string
	parts := strings.SplitN(qname, ":", 2)
	if len(parts) == 2 {
		prefix, local = parts[0], parts[1]
	} else {
		prefix, local = "", parts[0]
	}
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Local == prefix {
			return xml.Name{Space: el.Scope[i].Space, Local: local}, true
		}
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// ResolveDefault is like Resolve, but allows for the default namespace to
// be overridden. The namespace of strings without a namespace prefix
// (known as an NCName in XML terminology) will be defaultns.
func (el *Element) ResolveDefault(qname, defaultns string) xml.Name {
	if defaultns == "" || strings.Contains(qname, ":") {
		return el.Resolve(qname)
	}
	return xml.Name{Space: defaultns, Local: qname}
}

// Prefix is the inverse of Resolve. It uses the closest prefix
// defined for a namespace to create a string of the form
// prefix:local. If the namespace cannot be found, an empty string
// is returned.
func (el *Element) Prefix(name xml.Name) (qname string) {
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Space == name.Space {
			if el.Scope[i].Local == "" {
				return name.Local
			}
			return el.Scope[i].Local + ":" + name.Local
		}
	}
	return ""
}

func (el *Element) pushNS() {
	var scope []xml.Name
	for _, attr := range el.Attrs {
		if attr.Name.Space == "xmlns" {
			scope = append(scope, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		} else if attr.Name.Local == "xmlns" && attr.Name.Space == "" {
			scope = append(scope, xml.Name{Space: attr.Value})
		}
	}
	if len(scope) > 0 {
		el.Scope = append(el.Scope, scope...)
		// Ensure that future additions to the scope create
		// a new backing array. This prevents the scope from
		// being clobbered during parsing.
		el.Scope = el.Scope[:len(el.Scope):len(el.Scope)]
	}
}

// Save some typing when scanning xml
type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.Token()
	return s.err == nil
}

// Parse builds a tree of Elements by reading an XML document. The
// byte slice passed to Parse is expected to be a valid XML document
// with a single root element.
func Parse(doc []byte) (*Element, error) {
	return ParseReader(bytes.NewReader(doc))
}

// ParseReader is like Parse, but reads the document from r. Documents
// declaring a non UTF-8 encoding are transcoded on the fly.
func ParseReader(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	scanner := scanner{Decoder: d}
	root := new(Element)

	for scanner.scan() {
		if start, ok := scanner.tok.(xml.StartElement); ok {
			root.start(start.Copy())
			break
		}
	}
	if scanner.err != nil {
		if scanner.err == io.EOF {
			return nil, errors.New("xmltree: no root element")
		}
		return nil, scanner.err
	}
	if err := root.parse(&scanner, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func (el *Element) start(tag xml.StartElement) {
	el.Name = tag.Name
	el.Attrs = make([]*Attr, 0, len(tag.Attr))
	for _, a := range tag.Attr {
		el.Attrs = append(el.Attrs, &Attr{Name: a.Name, Value: a.Value, parent: el})
	}
	el.pushNS()
}

func (el *Element) parse(scanner *scanner, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	var content strings.Builder
walk:
	for scanner.scan() {
		switch tok := scanner.tok.(type) {
		case xml.StartElement:
			child := &Element{Scope: el.Scope, parent: el}
			child.start(tok.Copy())
			if err := child.parse(scanner, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			content.Write(tok)
		case xml.EndElement:
			if tok.Name != el.Name {
				return fmt.Errorf("Expecting </%s>, got </%s>", el.Name.Local, tok.Name.Local)
			}
			el.Content = content.String()
			break walk
		}
	}
	return scanner.err
}

// Walk calls fn for el, each of its attributes and, recursively, each
// of its children in document order. Namespace declarations are
// skipped.
func Walk(el *Element, fn func(Node)) {
	walk(el, fn, 0)
}

func walk(el *Element, fn func(Node), depth int) {
	if depth > recursionLimit {
		return
	}
	fn(el)
	for _, a := range el.Attrs {
		if !a.IsNamespaceDecl() {
			fn(a)
		}
	}
	for _, c := range el.Children {
		walk(c, fn, depth+1)
	}
}

// ClearReferenced resets the referenced flag of every element and
// attribute in the tree rooted at el.
func ClearReferenced(el *Element) {
	Walk(el, func(n Node) { n.SetReferenced(false) })
}

// SearchFunc traverses the Element tree in depth-first order and returns
// a slice of Elements for which the function fn returns true. The root
// itself is not considered.
func (root *Element) SearchFunc(fn func(*Element) bool) []*Element {
	var results []*Element
	var search func(el *Element)

	search = func(el *Element) {
		if fn(el) {
			results = append(results, el)
		}
		for _, c := range el.Children {
			search(c)
		}
	}
	for _, c := range root.Children {
		search(c)
	}
	return results
}

// Search searches the Element tree for Elements with an xml tag
// matching the name and xml namespace. If space is the empty string,
// any namespace is matched.
func (root *Element) Search(space, local string) []*Element {
	return root.SearchFunc(func(el *Element) bool {
		if local != el.Name.Local {
			return false
		}
		return space == "" || space == el.Name.Space
	})
}
