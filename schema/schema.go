// Package schema is a read-only model of a versioned, facet based
// structured schema.
//
// A Model holds the libraries of one schema version. Each library
// declares complex entities (business, core and choice objects, their
// facets, list facets and aliases, action facets and extension point
// facets) along with simple types. The upgrade package walks a Model
// to migrate instance documents written against an older version of
// the same libraries. The schema package never modifies a Model after
// it has been built, so a Model may be shared by concurrent readers.
package schema // import "github.com/CognitoIQ/xmlupgrade/schema"

import (
	"encoding/xml"
	"fmt"
	"math"
)

// Unbounded is the Repeat value of a field that may occur any number
// of times.
const Unbounded = -1

// Kind identifies the variant of a complex Entity.
type Kind int

const (
	BusinessObject Kind = iota
	CoreObject
	ChoiceObject
	Facet
	ListFacet
	ActionFacet
	Alias
	ExtensionPointFacet
)

var kindNames = [...]string{
	BusinessObject:      "BusinessObject",
	CoreObject:          "CoreObject",
	ChoiceObject:        "ChoiceObject",
	Facet:               "Facet",
	ListFacet:           "ListFacet",
	ActionFacet:         "ActionFacet",
	Alias:               "Alias",
	ExtensionPointFacet: "ExtensionPointFacet",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsOwner reports whether entities of kind k own facets.
func (k Kind) IsOwner() bool {
	return k == BusinessObject || k == CoreObject || k == ChoiceObject
}

// FacetType is the structural role of a facet within its owner.
type FacetType int

const (
	ID FacetType = iota + 1
	Summary
	Detail
	Shared
	Choice
	Custom
	Query
	Update
	Simple
)

var facetTypeNames = map[FacetType]string{
	ID:      "ID",
	Summary: "Summary",
	Detail:  "Detail",
	Shared:  "Shared",
	Choice:  "Choice",
	Custom:  "Custom",
	Query:   "Query",
	Update:  "Update",
	Simple:  "Simple",
}

func (t FacetType) String() string {
	if s, ok := facetTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FacetType(%d)", int(t))
}

// contextual facet types are distinguished by their label
func (t FacetType) contextual() bool {
	return t == Choice || t == Custom || t == Query || t == Update
}

// ExtensionKind selects the wrapper element of an extension point
// group.
type ExtensionKind int

const (
	NoExtension ExtensionKind = iota
	SummaryExtension
	SharedExtension
	OtherExtension
)

// Wrapper element names of extension point groups.
const (
	ExtensionPointElement        = "ExtensionPoint"
	ExtensionPointSummaryElement = "ExtensionPoint_Summary"
	ExtensionPointSharedElement  = "ExtensionPoint_Shared"
)

// ElementName returns the local name of the group wrapper element.
func (k ExtensionKind) ElementName() string {
	switch k {
	case SummaryExtension:
		return ExtensionPointSummaryElement
	case SharedExtension:
		return ExtensionPointSharedElement
	case OtherExtension:
		return ExtensionPointElement
	}
	return ""
}

func (k ExtensionKind) String() string {
	if k == NoExtension {
		return "none"
	}
	return k.ElementName()
}

// A Library groups the entities of one namespace. Namespaces of
// successive versions of a library share a base namespace.
type Library struct {
	Name      string
	Namespace string
	// Preferred namespace prefix; the Model may suffix it to keep
	// prefixes unique.
	Prefix string
	// If set, overrides the base namespace derived by stripping the
	// version segment of Namespace.
	BaseNamespace string

	Entities    []*Entity
	SimpleTypes []*SimpleType
}

// An Entity is a complex construct of the schema. The meaning of the
// Owner field depends on Kind:
//
//	Facet                facet owner (business, core or choice object)
//	ListFacet            core object
//	Alias                aliased owner or facet
//	ExtensionPointFacet  the facet it extends
type Entity struct {
	Kind    Kind
	Name    string
	Library *Library

	// Facets, list facets and facet aliases only.
	FacetType FacetType
	// Label of custom, query, update and choice facets.
	Label string

	Owner *Entity
	// Base owner this owner inherits fields from.
	Extends *Entity
	// Item facet repeated by a list facet.
	Item *Entity
	// Base payload of an action facet.
	Payload *Entity

	// Attributes, indicators and elements in declaration order.
	Fields []*Field

	// Owners only: facets in declaration order, list facets and
	// aliases.
	Facets     []*Entity
	ListFacets []*Entity
	Aliases    []*Entity
	// Core objects only: enumerated roles and the value type of the
	// simple facet.
	Roles  []string
	Simple *SimpleType

	// Head of the substitution group this entity belongs to.
	SubstitutionGroup *Entity
	NotExtendable     bool

	element      xml.Name
	facetAliases map[*Entity]*Entity
	roleField    *Field
}

// String returns a readable name of the entity, such as
// Profile/Detail.
func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case Facet, ListFacet:
		if e.Owner == nil {
			return e.Name
		}
		name := e.Owner.Name + "/"
		if e.Kind == ListFacet && e.Item != nil {
			return name + e.Item.FacetType.String() + "List"
		}
		if e.FacetType.contextual() {
			return name + e.Label
		}
		return name + e.FacetType.String()
	case Alias:
		if e.Owner != nil && !e.Owner.Kind.IsOwner() {
			return e.Name + "/" + e.Owner.FacetType.String()
		}
	}
	return e.Name
}

// Namespace returns the namespace of the library declaring e.
func (e *Entity) Namespace() string {
	if e.Library == nil {
		return ""
	}
	return e.Library.Namespace
}

// IsSimpleValue reports whether instances of e are leaf values, as
// with the simple facet of a core object and its simple list facet.
func (e *Entity) IsSimpleValue() bool {
	switch e.Kind {
	case Facet:
		return e.FacetType == Simple
	case ListFacet:
		return e.Item != nil && e.Item.FacetType == Simple
	case Alias:
		return e.Owner != nil && !e.Owner.Kind.IsOwner() && e.Owner.IsSimpleValue()
	}
	return false
}

// FieldKind distinguishes attributes, elements and indicators.
type FieldKind int

const (
	Element FieldKind = iota
	Attribute
	Indicator
)

func (k FieldKind) String() string {
	switch k {
	case Element:
		return "element"
	case Attribute:
		return "attribute"
	case Indicator:
		return "indicator"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// A Field is an attribute, indicator or element declared by an Entity.
// Exactly one of Type and Simple is set for attributes and elements;
// indicators are always boolean.
type Field struct {
	Kind      FieldKind
	Name      string
	Owner     *Entity
	Mandatory bool
	// Maximum number of occurrences of an element; 0 and 1 mean a
	// single occurrence, Unbounded means any number.
	Repeat int
	Type   *Entity
	Simple *SimpleType
	// Reference elements hold the identifier of an entity instead of
	// the entity itself.
	Reference bool
	// Indicators only: published as an element rather than an
	// attribute.
	PublishAsElement bool
}

func (f *Field) String() string {
	if f.Owner == nil {
		return f.Name
	}
	return f.Owner.String() + "." + f.Name
}

// IsAttribute reports whether f is rendered in an opening tag.
func (f *Field) IsAttribute() bool {
	return f.Kind == Attribute || (f.Kind == Indicator && !f.PublishAsElement)
}

// IsLeaf reports whether f holds a text value rather than a nested
// complex entity.
func (f *Field) IsLeaf() bool {
	return f.Type == nil || f.Reference || f.Type.IsSimpleValue()
}

// MaxOccurs returns the declared repeat count of f.
func (f *Field) MaxOccurs() int {
	switch {
	case f.Repeat < 0:
		return math.MaxInt32
	case f.Repeat == 0:
		return 1
	}
	return f.Repeat
}

// A SimpleType describes the text value of attributes and leaf
// elements. Base is the name of a built-in primitive.
type SimpleType struct {
	Name    string
	Library *Library
	Base    string
	Enum    []string
	// True if values are white space separated lists.
	List bool
}

var builtins = map[string]bool{
	"string": true, "token": true, "normalizedString": true,
	"int": true, "integer": true, "long": true, "short": true,
	"decimal": true, "double": true, "float": true,
	"boolean": true, "date": true, "dateTime": true, "time": true,
	"duration": true, "gYear": true, "gYearMonth": true,
	"ID": true, "IDREF": true, "IDREFS": true, "anyURI": true,
	"language": true, "base64Binary": true,
}

// Builtin returns the built-in primitive type called name, or nil.
func Builtin(name string) *SimpleType {
	if !builtins[name] {
		return nil
	}
	return &SimpleType{Name: name, Base: name, List: name == "IDREFS"}
}
