package xmltree

import (
	"encoding/xml"
	"sort"
	"strings"
)

// Equal returns true if two xmltree.Elements are equal, ignoring
// differences in white space, sub-element order, namespace prefixes
// and referenced flags. Neither tree is modified.
func Equal(a, b *Element) bool {
	return equal(a, b, 0)
}

// EqualOrdered is like Equal, but sub-elements must appear in the
// same order.
func EqualOrdered(a, b *Element) bool {
	return equalOrdered(a, b, 0)
}

func sortedChildren(el *Element) []*Element {
	s := make([]*Element, len(el.Children))
	copy(s, el.Children)
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Name.Space+s[i].Name.Local < s[j].Name.Space+s[j].Name.Local
	})
	return s
}

func equal(a, b *Element, depth int) bool {
	const maxDepth = 1000
	if depth > maxDepth {
		return false
	}
	if !equalElement(a, b) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	if len(a.Children) == 0 {
		return strings.TrimSpace(a.Content) == strings.TrimSpace(b.Content)
	}
	ac, bc := sortedChildren(a), sortedChildren(b)
	for i := range ac {
		if !equal(ac[i], bc[i], depth+1) {
			return false
		}
	}
	return true
}

func equalOrdered(a, b *Element, depth int) bool {
	const maxDepth = 1000
	if depth > maxDepth {
		return false
	}
	if !equalElement(a, b) || len(a.Children) != len(b.Children) {
		return false
	}
	if len(a.Children) == 0 {
		return strings.TrimSpace(a.Content) == strings.TrimSpace(b.Content)
	}
	for i := range a.Children {
		if !equalOrdered(a.Children[i], b.Children[i], depth+1) {
			return false
		}
	}
	return true
}

func equalElement(a, b *Element) bool {
	if a.Name != b.Name {
		return false
	}
	attrs := make(map[xml.Name]string)
	for _, a := range a.Attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		attrs[a.Name] = a.Value
	}

	n := 0
	for _, a := range b.Attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		if v, ok := attrs[a.Name]; !ok || v != a.Value {
			return false
		}
		n++
	}
	return n == len(attrs)
}
