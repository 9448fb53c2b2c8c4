package upgrade

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// A Node is a node of an upgraded document. It pairs an element or
// attribute of the new document with the schema construct it was built
// from and the quality of the match with the original document.
//
// Nodes built for a complex entity have Entity set; nodes built for a
// leaf field (attribute, indicator or simple element) have Field set.
// Extension point group wrappers are structural and have neither.
type Node struct {
	// Exactly one of Element and Attr is set.
	Element *xmltree.Element
	Attr    *xmltree.Attr

	// Entity actually used, possibly a facet or substitute of Declared.
	Entity *schema.Entity
	// Nominal type of the field the node was built for.
	Declared *schema.Entity
	Field    *schema.Field
	// Group wrappers only.
	Group schema.ExtensionKind

	Match MatchType
	// Node of the original document whose content was reused, if any.
	Original xmltree.Node

	Parent   *Node
	Children []*Node
}

// Name returns the name of the node's element or attribute.
func (n *Node) Name() xml.Name {
	if n.Attr != nil {
		return n.Attr.Name
	}
	return n.Element.Name
}

// Instance returns the element or attribute of the new document.
func (n *Node) Instance() xmltree.Node {
	if n.Attr != nil {
		return n.Attr
	}
	return n.Element
}

// IsStructural reports whether n wraps an extension point group.
func (n *Node) IsStructural() bool {
	return n.Entity == nil && n.Field == nil
}

// Attached reports whether the node's element or attribute is part of
// the new document. Missing placeholders are never attached.
func (n *Node) Attached() bool {
	if n.Parent == nil {
		return true
	}
	pel := n.Parent.Element
	if n.Attr != nil {
		return n.Attr.Parent() == pel
	}
	return n.Element.Parent() == pel
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func (n *Node) String() string {
	var what string
	switch {
	case n.Field != nil:
		what = n.Field.String()
	case n.Entity != nil:
		what = n.Entity.String()
	default:
		what = n.Group.String()
	}
	return fmt.Sprintf("%s(%s) %s", n.Path(), what, n.Match)
}

func (n *Node) index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Path returns a slash separated path from the root to n, using local
// names. Repeated names carry a 1-based position, and attributes are
// prefixed with @, as in Profile/Address[2]/@type.
func (n *Node) Path() string {
	var parts []string
	for ; n != nil; n = n.Parent {
		parts = append(parts, n.step())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (n *Node) step() string {
	if n.Attr != nil {
		return "@" + n.Attr.Name.Local
	}
	name := n.Element.Name.Local
	if n.Parent == nil {
		return name
	}
	pos, count := 0, 0
	for _, c := range n.Parent.Children {
		if c.Element == nil || c.Element.Name.Local != name {
			continue
		}
		count++
		if c == n {
			pos = count
		}
	}
	if count > 1 {
		return name + "[" + strconv.Itoa(pos) + "]"
	}
	return name
}

// Find returns the descendant of n at path, relative to n, in the
// syntax returned by Path. A leading step naming n itself is accepted.
// Find returns nil if there is no such node.
func (n *Node) Find(path string) *Node {
	steps := strings.Split(strings.Trim(path, "/"), "/")
	if len(steps) > 0 && steps[0] == n.step() {
		steps = steps[1:]
	}
	cur := n
	for _, s := range steps {
		if s == "" {
			continue
		}
		if cur = cur.child(s); cur == nil {
			return nil
		}
	}
	return cur
}

func (n *Node) child(step string) *Node {
	if strings.HasPrefix(step, "@") {
		for _, c := range n.Children {
			if c.Attr != nil && c.Attr.Name.Local == step[1:] {
				return c
			}
		}
		return nil
	}
	name, pos := step, 1
	if i := strings.IndexByte(step, '['); i > 0 && strings.HasSuffix(step, "]") {
		p, err := strconv.Atoi(step[i+1 : len(step)-1])
		if err != nil || p < 1 {
			return nil
		}
		name, pos = step[:i], p
	}
	for _, c := range n.Children {
		if c.Element != nil && c.Element.Name.Local == name {
			if pos--; pos == 0 {
				return c
			}
		}
	}
	return nil
}

// Walk calls fn for n and each of its descendants in depth-first
// order.
func Walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// A Summary counts the nodes of an upgraded document by MatchType.
type Summary map[MatchType]int

// Summarize counts the non-structural nodes of the tree rooted at n.
func Summarize(n *Node) Summary {
	s := make(Summary)
	Walk(n, func(n *Node) {
		if !n.IsStructural() {
			s[n.Match]++
		}
	})
	return s
}

// Matched returns the number of nodes whose MatchType is a match.
func (s Summary) Matched() int {
	var total int
	for t, n := range s {
		if t.IsMatch() {
			total += n
		}
	}
	return total
}

// Total returns the number of counted nodes.
func (s Summary) Total() int {
	var total int
	for _, n := range s {
		total += n
	}
	return total
}

// Unreferenced returns the elements and attributes of an original
// document that were not reused by the last build, in document order.
// Descendants of an unreferenced element are not listed separately.
func Unreferenced(original *xmltree.Element) []xmltree.Node {
	var result []xmltree.Node
	var visit func(el *xmltree.Element)
	visit = func(el *xmltree.Element) {
		if !el.Referenced() {
			result = append(result, el)
			return
		}
		for _, a := range el.Attrs {
			if !a.IsNamespaceDecl() && !a.Referenced() {
				result = append(result, a)
			}
		}
		for _, c := range el.Children {
			visit(c)
		}
	}
	visit(original)
	return result
}

// release clears the referenced flag of the original content reused
// by the tree rooted at n, so that it can be reused again.
func release(n *Node) {
	Walk(n, func(n *Node) {
		if n.Original != nil {
			n.Original.SetReferenced(false)
		}
	})
}

// retain marks the original content of n referenced again.
func retain(n *Node) {
	Walk(n, func(n *Node) {
		if n.Original != nil {
			n.Original.SetReferenced(true)
		}
	})
}
