package upgrade

import (
	"encoding/xml"
	"fmt"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// A MatchType classifies how a node of an upgraded document relates
// to the original document.
type MatchType int

const (
	// The original node has the expected name and namespace.
	Exact MatchType = iota + 1
	// The original node carries the name of the substitution group
	// head, in the expected namespace.
	ExactSubstitutable
	// The original node has the expected name, in another version of
	// the expected namespace.
	Partial
	// Like Partial, using the substitution group head's name.
	PartialSubstitutable
	// There was no original node; the content was generated.
	None
	// There was no original node and nothing was generated.
	Missing
	// The content was assigned by the caller.
	Manual
)

var matchNames = map[MatchType]string{
	Exact:                "Exact",
	ExactSubstitutable:   "ExactSubstitutable",
	Partial:              "Partial",
	PartialSubstitutable: "PartialSubstitutable",
	None:                 "None",
	Missing:              "Missing",
	Manual:               "Manual",
}

// preference order, best last
var matchRank = map[MatchType]int{
	Missing:              1,
	None:                 2,
	PartialSubstitutable: 3,
	Partial:              4,
	ExactSubstitutable:   5,
	Exact:                6,
	Manual:               7,
}

func (t MatchType) String() string {
	if s, ok := matchNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MatchType(%d)", int(t))
}

// IsMatch reports whether t stands for content taken from the original
// document or assigned by the caller.
func (t MatchType) IsMatch() bool {
	switch t {
	case Exact, ExactSubstitutable, Partial, PartialSubstitutable, Manual:
		return true
	}
	return false
}

// Better reports whether t is preferred over other.
func (t MatchType) Better(other MatchType) bool {
	return matchRank[t] > matchRank[other]
}

// substitutable returns the substitution group variant of an Exact or
// Partial match.
func (t MatchType) substitutable() MatchType {
	switch t {
	case Exact:
		return ExactSubstitutable
	case Partial:
		return PartialSubstitutable
	}
	return t
}

// CompareNamespace returns Exact if a and b are equal, Partial if they
// are different versions of the same base namespace, and None
// otherwise.
func CompareNamespace(m *schema.Model, a, b string) MatchType {
	switch {
	case a == b:
		return Exact
	case m.BaseNamespace(a) == m.BaseNamespace(b):
		return Partial
	}
	return None
}

func compareName(m *schema.Model, want, got xml.Name) MatchType {
	if want.Local != got.Local {
		return None
	}
	return CompareNamespace(m, want.Space, got.Space)
}

// MatchEntity compares the name of el with the element name of e and,
// failing that, with the name of the head of e's substitution group.
func MatchEntity(m *schema.Model, e *schema.Entity, el *xmltree.Element) MatchType {
	if t := compareName(m, m.ElementName(e), el.Name); t.IsMatch() {
		return t
	}
	if name, ok := m.SubstitutableName(e); ok {
		return compareName(m, name, el.Name).substitutable()
	}
	return None
}

// MatchField compares the local name of an original attribute or leaf
// element with the name of f. Namespaces are not considered.
func MatchField(m *schema.Model, f *schema.Field, name xml.Name) MatchType {
	if m.FieldName(f).Local == name.Local {
		return Exact
	}
	return None
}
