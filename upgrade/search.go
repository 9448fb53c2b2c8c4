package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// Search predicates for original elements
type predicate func(el *xmltree.Element) bool

func or(fns ...predicate) predicate {
	return func(el *xmltree.Element) bool {
		for _, f := range fns {
			if f(el) {
				return true
			}
		}
		return false
	}
}

// isElem matches the local name exactly and the namespace up to its
// version.
func isElem(m *schema.Model, space, local string) predicate {
	return func(el *xmltree.Element) bool {
		if el.Name.Local != local {
			return false
		}
		return CompareNamespace(m, space, el.Name.Space).IsMatch()
	}
}

func isEntity(m *schema.Model, e *schema.Entity) predicate {
	return func(el *xmltree.Element) bool {
		return MatchEntity(m, e, el).IsMatch()
	}
}

func isField(m *schema.Model, f *schema.Field) predicate {
	return func(el *xmltree.Element) bool {
		return MatchField(m, f, el.Name).IsMatch()
	}
}

// isAnyEntity matches the first of es that el is an instance of.
func isAnyEntity(m *schema.Model, es []*schema.Entity) predicate {
	fns := make([]predicate, 0, len(es))
	for _, e := range es {
		fns = append(fns, isEntity(m, e))
	}
	return or(fns...)
}
