package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
	"github.com/pkg/errors"
)

// ReplaceBranch rebuilds the subtree of an upgraded document rooted at
// target. If override is nil, the new subtree is generated. Otherwise
// its content is taken from override, a node of the original document
// chosen by the caller, and the new subtree is classified Manual.
//
// For complex targets, override must be an element; the first facet of
// the target's declared type matching it is used, and the preferred
// facet if none does. For leaf targets, the text of override becomes
// the value of the field.
//
// The replacement takes the place of target in its parent, both in the
// upgrade tree and in the new document, and is returned so callers can
// install it as the new root when target had no parent. Original
// content reused by target is released before the new subtree is built,
// and referenced again if the build fails.
func (b *Builder) ReplaceBranch(target *Node, override xmltree.Node) (replacement *Node, err error) {
	var orig *xmltree.Element
	switch n := override.(type) {
	case *xmltree.Element:
		if n == nil {
			override = nil
		}
		orig = n
	case *xmltree.Attr:
		if n == nil {
			override = nil
		}
	}
	switch {
	case target.IsStructural():
		return nil, errors.Errorf("cannot replace extension point group %s", target.Path())
	case target.Entity != nil && override != nil && orig == nil:
		return nil, errors.Errorf("cannot replace %s with an attribute", target.Path())
	}

	defer catchBuildError(&err)
	defer b.reset()
	if target.Field != nil {
		replacement = b.replaceLeaf(target, override)
	} else {
		declared := target.Declared
		if declared == nil {
			declared = target.Entity
		}
		replacement = b.rebuild(target, declared, orig)
		if orig != nil {
			replacement.Match = Manual
		}
	}
	b.splice(target, replacement)
	if override != nil {
		override.SetReferenced(true)
	}
	b.updateNamespaces(replacement.Root())
	b.logf("replaced %s: %s", replacement.Path(), replacement.Match)
	return replacement, nil
}

// rebuild builds a new subtree for target. The original content of
// target is available to the build, since override may share it.
func (b *Builder) rebuild(target *Node, declared *schema.Entity, orig *xmltree.Element) *Node {
	release(target)
	defer func() {
		if r := recover(); r != nil {
			retain(target)
			panic(r)
		}
	}()
	return b.subtree(declared, orig, occurrence(target))
}

// replaceLeaf visits the field of target on its own, under a stand-in
// for the parent instance, with override as a one-shot manual value.
func (b *Builder) replaceLeaf(target *Node, override xmltree.Node) *Node {
	parent := target.Parent
	if parent == nil || parent.Entity == nil {
		stop("field %s is not part of an entity instance", target.Field)
	}
	f := target.Field
	if !b.isMember(parent.Entity, f) {
		stop("%s is not a member of %s", f, parent.Entity)
	}
	stand := &Node{
		Element:  xmltree.NewElement(parent.Element.Name),
		Entity:   parent.Entity,
		Declared: parent.Declared,
	}
	ctx := &navContext{
		node:       stand,
		auto:       override == nil,
		occurrence: occurrence(parent),
	}
	switch n := override.(type) {
	case *xmltree.Attr:
		ctx.manual, ctx.hasManual = n.Value, true
	case *xmltree.Element:
		ctx.manual, ctx.hasManual = n.Text(), true
	}
	b.push(ctx)
	b.navigator().visitOnce(f, occurrence(target))
	b.pop()
	if len(stand.Children) != 1 {
		stop("%s produced %d nodes", f, len(stand.Children))
	}
	repl := stand.Children[0]
	switch inst := repl.Instance().(type) {
	case *xmltree.Attr:
		inst.Detach()
	case *xmltree.Element:
		inst.Detach()
	}
	repl.Parent = nil
	if override != nil {
		repl.Match = Manual
		repl.Original = override
	}
	release(target)
	return repl
}

func (b *Builder) isMember(e *schema.Entity, f *schema.Field) bool {
	if f == b.model.RoleField(e) {
		return true
	}
	for _, m := range b.model.Members(e) {
		if m == f {
			return true
		}
	}
	return false
}

// occurrence returns the number of siblings preceding n that were
// built for the same field or type.
func occurrence(n *Node) int {
	if n.Parent == nil {
		return 0
	}
	count := 0
	for _, c := range n.Parent.Children {
		if c == n {
			break
		}
		if c.Field == n.Field && c.Declared == n.Declared && c.Group == n.Group {
			count++
		}
	}
	return count
}

// ClearBranch replaces target with an empty placeholder of the same
// kind, classified Missing. The element or attribute of target is
// removed from the new document and the original content it reused is
// released. The placeholder is returned so callers can install it as
// the new root when target had no parent.
func (b *Builder) ClearBranch(target *Node) (placeholder *Node, err error) {
	defer catchBuildError(&err)
	placeholder = &Node{
		Entity:   target.Entity,
		Declared: target.Declared,
		Field:    target.Field,
		Group:    target.Group,
		Match:    Missing,
	}
	if target.Attr != nil {
		placeholder.Attr = xmltree.NewAttr(target.Attr.Name, "")
	} else {
		placeholder.Element = xmltree.NewElement(target.Element.Name)
	}
	release(target)
	b.splice(target, placeholder)
	b.updateNamespaces(placeholder.Root())
	b.logf("cleared %s", placeholder.Path())
	return placeholder, nil
}

// splice puts repl in the place of old. Missing placeholders are not
// part of the new document, so for them the instance of old is only
// removed.
func (b *Builder) splice(old, repl *Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	i := old.index()
	parent.Children[i] = repl
	repl.Parent = parent
	pel := parent.Element

	attached := old.Attached()
	old.Parent = nil
	if repl.Match == Missing {
		if attached {
			detach(old)
			ungraft(parent)
		}
		return
	}
	regraft(parent)
	switch {
	case repl.Attr != nil:
		if attached && old.Attr != nil {
			pel.ReplaceAttr(old.Attr, repl.Attr)
		} else {
			if attached {
				detach(old)
			}
			pel.AddAttr(repl.Attr)
		}
	case attached && old.Element != nil:
		pel.ReplaceChild(old.Element, repl.Element)
	default:
		if attached {
			detach(old)
		}
		pel.InsertBefore(repl.Element, nextAttached(parent, i))
	}
}

// ungraft removes an extension point group from the new document once
// none of its facets are left in it.
func ungraft(group *Node) {
	if !group.IsStructural() || !group.Attached() {
		return
	}
	for _, c := range group.Children {
		if c.Match != Missing && c.Attached() {
			return
		}
	}
	group.Element.Detach()
	if group.Original != nil {
		group.Original.SetReferenced(false)
	}
}

// regraft puts an extension point group back into the new document
// before a facet is added to it.
func regraft(group *Node) {
	if !group.IsStructural() || group.Parent == nil || group.Attached() {
		return
	}
	owner := group.Parent
	owner.Element.InsertBefore(group.Element, nextAttached(owner, group.index()))
	if group.Original != nil {
		group.Original.SetReferenced(true)
	}
}

func detach(n *Node) {
	if n.Attr != nil {
		n.Attr.Detach()
	} else {
		n.Element.Detach()
	}
}

// nextAttached returns the element of the first sibling after position
// i that is part of the new document.
func nextAttached(parent *Node, i int) *xmltree.Element {
	for _, c := range parent.Children[i+1:] {
		if c.Element != nil && c.Element.Parent() == parent.Element {
			return c.Element
		}
	}
	return nil
}
