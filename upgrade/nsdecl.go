package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/internal/ordered"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// updateNamespaces replaces the namespace declarations of the root of
// an upgraded document. The namespace of the root entity becomes the
// default namespace; every other namespace used in the document is
// bound to the prefix the model assigns to it.
func (b *Builder) updateNamespaces(root *Node) {
	el := root.Element
	if el == nil {
		return
	}
	el.RemoveNamespaceDecls()
	def := el.Name.Space
	if root.Entity != nil {
		def = root.Entity.Namespace()
	}
	used := make(map[string]struct{})
	xmltree.Walk(el, func(n xmltree.Node) {
		switch n := n.(type) {
		case *xmltree.Element:
			used[n.Name.Space] = struct{}{}
		case *xmltree.Attr:
			used[n.Name.Space] = struct{}{}
		}
	})
	delete(used, "")
	delete(used, def)
	delete(used, xmltree.XMLNS)

	if def != "" {
		el.SetAttr("", "xmlns", def)
	}
	ordered.Range(used, func(ns string, _ struct{}) {
		el.SetAttr("xmlns", b.model.Prefix(ns), ns)
	})
	b.debugf("declared %d namespaces on <%s>", len(used)+1, el.Name.Local)
}
