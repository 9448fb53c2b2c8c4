package upgrade

import (
	"encoding/xml"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// BeginExtensionGroup implements the Visitor interface. Extension point
// groups are never generated; the group wrapper is searched for after
// the cursor, without wrapping around.
func (b *Builder) BeginExtensionGroup(facet *schema.Entity, kind schema.ExtensionKind) bool {
	ctx := b.top()
	if ctx.auto || ctx.original == nil {
		return false
	}
	name := xml.Name{Space: facet.Namespace(), Local: kind.ElementName()}
	found := ctx.nextInSequence(isElem(b.model, name.Space, name.Local))
	if found == nil {
		return false
	}
	found.SetReferenced(true)
	node := &Node{
		Element:  xmltree.NewElement(name),
		Group:    kind,
		Match:    CompareNamespace(b.model, name.Space, found.Name.Space),
		Original: found,
	}
	b.push(&navContext{node: node, original: found})
	return true
}

// EndExtensionGroup implements the Visitor interface. The group is
// added to the document only if one of its facets was found.
func (b *Builder) EndExtensionGroup() {
	ctx := b.pop()
	if len(ctx.node.Children) == 0 {
		ctx.original.SetReferenced(false)
		return
	}
	parent := b.top().node
	ctx.node.Parent = parent
	parent.Children = append(parent.Children, ctx.node)
	parent.Element.AppendChild(ctx.node.Element)
}

// BeginExtensionFacet implements the Visitor interface. The content of
// a group is unordered, so every child of the group is considered.
func (b *Builder) BeginExtensionFacet(epf *schema.Entity) bool {
	ctx := b.top()
	found := ctx.findAny(isEntity(b.model, epf))
	if found == nil {
		return false
	}
	b.debugf("extension point %s found in <%s>", epf, ctx.original.Name.Local)
	found.SetReferenced(true)
	node := &Node{
		Element:  xmltree.NewElement(b.model.ElementName(epf)),
		Entity:   epf,
		Declared: epf,
		Match:    MatchEntity(b.model, epf, found),
		Original: found,
		Parent:   ctx.node,
	}
	ctx.node.Children = append(ctx.node.Children, node)
	ctx.node.Element.AppendChild(node.Element)
	b.push(&navContext{node: node, original: found})
	return true
}

// EndExtensionFacet implements the Visitor interface.
func (b *Builder) EndExtensionFacet() {
	b.pop()
}
