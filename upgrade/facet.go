package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/schema"
)

// PreferredFacet returns the facet used for a generated instance of the
// owner or owner alias e. A facet selected with the PreferFacet option
// for the alias or its owner takes precedence. Otherwise, the summary
// facet of business and core objects and the first choice facet of
// choice objects (or their shared facet) is used. For an alias, the
// corresponding facet alias is returned. Any other entity is returned
// unchanged.
func (b *Builder) PreferredFacet(e *schema.Entity) (facet *schema.Entity, err error) {
	defer catchBuildError(&err)
	return b.preferredFacet(e), nil
}

func (b *Builder) preferredFacet(e *schema.Entity) *schema.Entity {
	owner, alias := e, (*schema.Entity)(nil)
	if e.Kind == schema.Alias {
		if e.Owner == nil {
			stop("alias %s does not resolve to an owner", e.Name)
		}
		owner, alias = e.Owner, e
	}
	if !owner.Kind.IsOwner() {
		return e
	}

	keys := []string{owner.Name}
	if alias != nil {
		keys = []string{alias.Name, owner.Name}
	}
	var facet *schema.Entity
	for _, key := range keys {
		name, ok := b.preferred[key]
		if !ok {
			continue
		}
		if f := b.model.FacetByName(owner, name); f != nil && f.Kind == schema.Facet {
			facet = f
			break
		}
		b.errorf("%s has no facet %q, ignoring preference", owner.Name, name)
	}
	if facet == nil {
		switch owner.Kind {
		case schema.BusinessObject, schema.CoreObject:
			facet = b.model.FacetOf(owner, schema.Summary, "")
		case schema.ChoiceObject:
			for _, f := range owner.Facets {
				if f.FacetType == schema.Choice {
					facet = f
					break
				}
			}
			if facet == nil {
				facet = b.model.FacetOf(owner, schema.Shared, "")
			}
		}
	}
	if facet == nil {
		if len(owner.Facets) == 0 {
			stop("%s %s has no facets", owner.Kind, owner.Name)
		}
		facet = owner.Facets[0]
	}
	if alias != nil {
		if fa := b.model.FacetAlias(alias, facet); fa != nil {
			return fa
		}
		stop("alias %s has no alias for facet %s", alias.Name, facet)
	}
	return facet
}
