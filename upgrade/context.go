package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// A navContext is the state of the builder for one schema construct
// being visited.
type navContext struct {
	node *Node
	// original element paired with node, or nil
	original *xmltree.Element
	// position in original.Children where the next search starts
	cursor int
	// content below this construct is generated, not matched
	auto bool
	// value assigned by the caller to the next leaf visited
	manual    string
	hasManual bool
	// zero-based repetition of the element node was built for
	occurrence int
}

// takeManual returns the manual value, at most once.
func (ctx *navContext) takeManual() (string, bool) {
	if !ctx.hasManual {
		return "", false
	}
	ctx.hasManual = false
	return ctx.manual, true
}

// findNext scans the unreferenced children of the original element for
// one matching fn, starting at the cursor and wrapping around to the
// first child. On success the cursor is moved past the element found.
func (ctx *navContext) findNext(fn predicate) *xmltree.Element {
	i := ctx.ring(fn)
	if i < 0 {
		return nil
	}
	ctx.cursor = i + 1
	return ctx.original.Children[i]
}

// hasNext is like findNext, but leaves the cursor unchanged.
func (ctx *navContext) hasNext(fn predicate) bool {
	return ctx.ring(fn) >= 0
}

func (ctx *navContext) ring(fn predicate) int {
	if ctx.original == nil {
		return -1
	}
	kids := ctx.original.Children
	n := len(kids)
	if n == 0 {
		return -1
	}
	start := ctx.cursor % n
	for i := 0; i < n; i++ {
		j := (start + i) % n
		if el := kids[j]; !el.Referenced() && fn(el) {
			return j
		}
	}
	return -1
}

// nextInSequence scans forward from the cursor without wrapping.
func (ctx *navContext) nextInSequence(fn predicate) *xmltree.Element {
	if ctx.original == nil {
		return nil
	}
	kids := ctx.original.Children
	for j := ctx.cursor; j < len(kids); j++ {
		if el := kids[j]; !el.Referenced() && fn(el) {
			ctx.cursor = j + 1
			return el
		}
	}
	return nil
}

// findAny scans every unreferenced child in document order, ignoring
// the cursor.
func (ctx *navContext) findAny(fn predicate) *xmltree.Element {
	if ctx.original == nil {
		return nil
	}
	for _, el := range ctx.original.Children {
		if !el.Referenced() && fn(el) {
			return el
		}
	}
	return nil
}
