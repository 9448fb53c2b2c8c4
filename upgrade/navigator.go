package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/schema"
)

// A Visitor is driven by a Navigator through the constructs of a schema
// entity in content order. Each Begin method that returns true must be
// balanced by a call to the matching End method.
type Visitor interface {
	// Attribute visits an attribute, an indicator published as an
	// attribute, or the role attribute of a list facet item.
	Attribute(f *schema.Field)
	// Indicator visits an indicator published as an element.
	Indicator(f *schema.Field)
	// BeginElement visits the given repetition of an element. If ok is
	// false, the repetition produced nothing and no more are visited.
	// A non-nil descend is navigated before EndElement is called.
	BeginElement(f *schema.Field, occurrence int) (descend *schema.Entity, ok bool)
	EndElement(f *schema.Field)
	// HasMoreOriginal reports whether another repetition of f exists
	// in the original document.
	HasMoreOriginal(f *schema.Field) bool
	// AutoGenerating reports whether the current content is generated.
	AutoGenerating() bool

	// BeginExtensionGroup visits the extension point group following
	// the content of facet. If it returns true, the extension point
	// facets of the group are visited before EndExtensionGroup.
	BeginExtensionGroup(facet *schema.Entity, kind schema.ExtensionKind) bool
	EndExtensionGroup()
	// BeginExtensionFacet visits one extension point facet of a group.
	// If it returns true, the facet is navigated before
	// EndExtensionFacet is called.
	BeginExtensionFacet(epf *schema.Entity) bool
	EndExtensionFacet()
}

// A Navigator walks the members of schema entities depth first in
// content order: attributes, indicators published as attributes, the
// role attribute of list items, then elements and element indicators
// interleaved with extension point groups.
type Navigator struct {
	model     *schema.Model
	visitor   Visitor
	maxRepeat int
}

// NewNavigator returns a Navigator calling v. Generated repetitions of
// an element are capped at maxRepeat.
func NewNavigator(m *schema.Model, v Visitor, maxRepeat int) *Navigator {
	if maxRepeat < 1 {
		maxRepeat = 1
	}
	return &Navigator{model: m, visitor: v, maxRepeat: maxRepeat}
}

// Navigate visits the members of e, which must be a facet, list
// facet, action facet, extension point facet or facet alias. Abstract
// owners must be resolved to one of their facets by the caller.
func (nav *Navigator) Navigate(e *schema.Entity) (err error) {
	defer catchBuildError(&err)
	nav.entity(e)
	return nil
}

func (nav *Navigator) entity(e *schema.Entity) {
	defer breadcrumb(e.String())
	switch e.Kind {
	case schema.Facet, schema.ListFacet, schema.ActionFacet, schema.ExtensionPointFacet:
		nav.facet(e)
	case schema.Alias:
		switch {
		case e.Owner == nil:
			stop("alias %s does not resolve to an owner", e.Name)
		case e.Owner.Kind.IsOwner():
			stop("alias %s of %s must be resolved to a facet", e.Name, e.Owner.Kind)
		}
		nav.facet(e)
	case schema.BusinessObject, schema.CoreObject, schema.ChoiceObject:
		stop("%s %s must be resolved to a facet", e.Kind, e.Name)
	default:
		stop("unrecognized entity kind %s", e.Kind)
	}
}

type extensionGroup struct {
	facet *schema.Entity
	kind  schema.ExtensionKind
	// position in the local facet hierarchy
	index int
}

func (nav *Navigator) facet(f *schema.Entity) {
	v := nav.visitor
	attrs := nav.model.Attributes(f)
	for _, a := range attrs {
		if a.Kind == schema.Attribute {
			v.Attribute(a)
		}
	}
	for _, a := range attrs {
		if a.Kind == schema.Indicator {
			v.Attribute(a)
		}
	}
	if role := nav.model.RoleField(f); role != nil {
		v.Attribute(role)
	}

	hierarchy := nav.model.LocalFacetHierarchy(f)
	var groups []extensionGroup
	for i, h := range hierarchy {
		kind := nav.model.ExtensionKind(h)
		if kind != schema.NoExtension && len(nav.model.ExtensionPointFacets(h)) > 0 {
			groups = append(groups, extensionGroup{facet: h, kind: kind, index: i})
		}
	}
	emitted := make(map[*schema.Entity]bool, len(groups))
	for _, p := range nav.model.Properties(f) {
		pos := indexOf(hierarchy, p.Facet)
		for _, g := range groups {
			if g.index < pos && !emitted[g.facet] {
				emitted[g.facet] = true
				nav.extensionGroup(g)
			}
		}
		nav.property(p.Field)
	}
	for _, g := range groups {
		if !emitted[g.facet] {
			nav.extensionGroup(g)
		}
	}
}

func indexOf(list []*schema.Entity, e *schema.Entity) int {
	for i, x := range list {
		if x == e {
			return i
		}
	}
	return -1
}

func (nav *Navigator) extensionGroup(g extensionGroup) {
	v := nav.visitor
	if !v.BeginExtensionGroup(g.facet, g.kind) {
		return
	}
	for _, epf := range nav.model.ExtensionPointFacets(g.facet) {
		if v.BeginExtensionFacet(epf) {
			nav.entity(epf)
			v.EndExtensionFacet()
		}
	}
	v.EndExtensionGroup()
}

func (nav *Navigator) property(f *schema.Field) {
	defer breadcrumb(f.Name)
	if f.Kind == schema.Indicator {
		nav.visitor.Indicator(f)
		return
	}
	modelMax := nav.modelMax(f)
	autoMax := modelMax
	if autoMax > nav.maxRepeat {
		autoMax = nav.maxRepeat
	}
	for count := 0; ; {
		if !nav.element(f, count) {
			break
		}
		count++
		if nav.visitor.AutoGenerating() {
			if count >= autoMax {
				break
			}
		} else if count >= modelMax || !nav.visitor.HasMoreOriginal(f) {
			break
		}
	}
}

// modelMax returns the number of repetitions of f allowed by the
// model. The items of a list facet repeat once per role of its core
// object.
func (nav *Navigator) modelMax(f *schema.Field) int {
	if f.Type != nil && !f.Reference {
		t := nav.model.Unalias(f.Type)
		if t.Kind == schema.ListFacet && !t.IsSimpleValue() {
			if n := len(nav.model.Roles(t)); n > 1 {
				return n
			}
			return 1
		}
	}
	return f.MaxOccurs()
}

func (nav *Navigator) element(f *schema.Field, occurrence int) bool {
	descend, ok := nav.visitor.BeginElement(f, occurrence)
	if !ok {
		return false
	}
	if descend != nil {
		nav.entity(descend)
	}
	nav.visitor.EndElement(f)
	return true
}

// visitOnce visits a single field in isolation, as if it were the
// only member of the current entity.
func (nav *Navigator) visitOnce(f *schema.Field, occurrence int) {
	defer breadcrumb(f.Name)
	switch {
	case f.IsAttribute():
		nav.visitor.Attribute(f)
	case f.Kind == schema.Indicator:
		nav.visitor.Indicator(f)
	default:
		nav.element(f, occurrence)
	}
}
