package schema

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// A Model is the linked, read-only collection of libraries making up
// one version of a schema.
type Model struct {
	Libraries []*Library

	byName    map[string]*Entity
	byElement map[xml.Name][]*Entity
	simple    map[string]*SimpleType
	// extension point facets, keyed by the facet they extend
	extensions map[*Entity][]*Entity

	mu       sync.Mutex
	prefixes map[string]string // namespace -> prefix
	used     map[string]string // prefix -> namespace
}

// NewModel links the entities of libs: element names are computed,
// facet aliases are derived from owner aliases, and namespace prefixes
// are assigned. NewModel fails if two libraries share a namespace.
func NewModel(libs ...*Library) (*Model, error) {
	m := &Model{
		Libraries:  libs,
		byName:     make(map[string]*Entity),
		byElement:  make(map[xml.Name][]*Entity),
		simple:     make(map[string]*SimpleType),
		extensions: make(map[*Entity][]*Entity),
		prefixes:   make(map[string]string),
		used:       make(map[string]string),
	}
	seen := make(map[string]string)
	for _, lib := range libs {
		if other, ok := seen[lib.Namespace]; ok {
			return nil, errors.Errorf("libraries %s and %s share namespace %q", other, lib.Name, lib.Namespace)
		}
		seen[lib.Namespace] = lib.Name
		m.assignPrefix(lib.Namespace, lib.Prefix)
		for _, st := range lib.SimpleTypes {
			st.Library = lib
			m.simple[st.Name] = st
			m.simple[lib.Prefix+":"+st.Name] = st
		}
	}
	for _, lib := range libs {
		for _, e := range lib.Entities {
			m.link(lib, e)
		}
	}
	return m, nil
}

func (m *Model) link(lib *Library, e *Entity) {
	e.Library = lib
	m.byName[e.Name] = e
	m.byName[lib.Prefix+":"+e.Name] = e
	m.index(e)

	for _, f := range e.Fields {
		f.Owner = e
	}
	for _, f := range e.Facets {
		f.Library = lib
		f.Owner = e
		for _, fld := range f.Fields {
			fld.Owner = f
		}
		m.index(f)
	}
	for _, l := range e.ListFacets {
		l.Library = lib
		l.Owner = e
		m.index(l)
	}
	for _, a := range e.Aliases {
		a.Library = lib
		a.Owner = e
		m.byName[a.Name] = a
		m.byName[lib.Prefix+":"+a.Name] = a
		m.index(a)
		if a.facetAliases == nil {
			a.facetAliases = make(map[*Entity]*Entity, len(e.Facets))
		}
		for _, f := range e.Facets {
			fa, ok := a.facetAliases[f]
			if !ok {
				fa = &Entity{Kind: Alias, Name: a.Name, Library: lib, FacetType: f.FacetType, Label: f.Label, Owner: f}
				a.facetAliases[f] = fa
			}
			m.index(fa)
		}
	}
	if e.Kind == ExtensionPointFacet && e.Owner != nil {
		m.addExtension(e)
	}
	if e.Kind == CoreObject && len(e.Roles) > 0 {
		e.roleField = &Field{
			Kind:      Attribute,
			Name:      "role",
			Owner:     e,
			Mandatory: true,
			Simple:    &SimpleType{Name: e.Name + "Role", Library: lib, Base: "string", Enum: e.Roles},
		}
	}
}

func (m *Model) addExtension(e *Entity) {
	for _, other := range m.extensions[e.Owner] {
		if other == e {
			return
		}
	}
	m.extensions[e.Owner] = append(m.extensions[e.Owner], e)
}

func (m *Model) index(e *Entity) {
	e.element = elementName(e)
	if e.element.Local == "" {
		return
	}
	for _, other := range m.byElement[e.element] {
		if other == e {
			return
		}
	}
	m.byElement[e.element] = append(m.byElement[e.element], e)
}

// facetName returns the element name of a facet whose owner (or
// alias) is called base.
func facetName(base string, t FacetType, label string) string {
	switch t {
	case Summary, Shared:
		return base
	case ID:
		return base + "ID"
	case Detail:
		return base + "Detail"
	case Simple:
		return base + "Simple"
	}
	return base + "_" + label
}

func elementName(e *Entity) xml.Name {
	name := xml.Name{Space: e.Namespace()}
	switch e.Kind {
	case BusinessObject, CoreObject, ChoiceObject, ActionFacet, ExtensionPointFacet:
		name.Local = e.Name
	case Facet:
		if e.Owner != nil {
			name.Local = facetName(e.Owner.Name, e.FacetType, e.Label)
		}
	case ListFacet:
		if e.Owner != nil && e.Item != nil {
			if e.Item.FacetType == Simple {
				name.Local = e.Owner.Name + "SimpleList"
			} else {
				name.Local = facetName(e.Owner.Name, e.Item.FacetType, e.Item.Label)
			}
		}
	case Alias:
		if e.Owner == nil || e.Owner.Kind.IsOwner() {
			name.Local = e.Name
		} else {
			name.Local = facetName(e.Name, e.Owner.FacetType, e.Owner.Label)
		}
	}
	return name
}

// ElementName returns the global element name of e: the name an
// instance of e carries in a document.
func (m *Model) ElementName(e *Entity) xml.Name {
	if e.element.Local == "" {
		return elementName(e)
	}
	return e.element
}

// SubstitutableName returns the element name of the head of the
// substitution group e belongs to. Facets and facet aliases belong to
// the group of their owner; they substitute for the head's facet of the
// same type when it has one.
func (m *Model) SubstitutableName(e *Entity) (xml.Name, bool) {
	head := e.SubstitutionGroup
	if head == nil && e.Owner != nil && (e.Kind == Facet || e.Kind == Alias || e.Kind == ListFacet) {
		owner := e.Owner
		if e.Kind == Alias && !owner.Kind.IsOwner() {
			owner = owner.Owner
		}
		if owner != nil && owner.SubstitutionGroup != nil {
			head = owner.SubstitutionGroup
			if e.Kind != ListFacet {
				if f := m.FacetOf(head, e.FacetType, e.Label); f != nil {
					head = f
				}
			}
		}
	}
	if head == nil || head == e {
		return xml.Name{}, false
	}
	name := m.ElementName(head)
	return name, name != m.ElementName(e)
}

var versionSuffix = regexp.MustCompile(`[/_]v\d+(?:[._-]\d+)*/?$`)

// BaseNamespace returns ns with its version segment removed. Two
// namespaces with the same base namespace are different versions of
// the same library.
func (m *Model) BaseNamespace(ns string) string {
	for _, lib := range m.Libraries {
		if lib.Namespace == ns && lib.BaseNamespace != "" {
			return lib.BaseNamespace
		}
	}
	return StripVersion(ns)
}

// StripVersion removes a trailing version segment such as /v2 or
// /v01_00 from a namespace.
func StripVersion(ns string) string {
	return versionSuffix.ReplaceAllString(ns, "")
}

func (m *Model) assignPrefix(ns, want string) string {
	if p, ok := m.prefixes[ns]; ok {
		return p
	}
	if want == "" {
		want = "ns"
	}
	p := want
	for i := 1; ; i++ {
		if _, taken := m.used[p]; !taken && p != "xml" && p != "xmlns" {
			break
		}
		p = want + strconv.Itoa(i)
	}
	m.prefixes[ns] = p
	m.used[p] = ns
	return p
}

// Prefix returns the namespace prefix assigned to ns. Each namespace
// is given a single prefix for the lifetime of the Model; namespaces
// that are not declared by a library are assigned one on first use.
func (m *Model) Prefix(ns string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignPrefix(ns, "")
}

// Lookup finds an entity by name. The name may be qualified with a
// library prefix (c:Address) and may select a facet of an owner or
// owner alias (Address/Detail, Profile/Loyalty, Address/SummaryList).
func (m *Model) Lookup(name string) *Entity {
	parts := strings.SplitN(name, "/", 2)
	e := m.byName[parts[0]]
	if e == nil || len(parts) == 1 {
		return e
	}
	return m.FacetByName(e, parts[1])
}

// FacetByName selects a facet of an owner or owner alias by facet type
// name or contextual facet label.
func (m *Model) FacetByName(e *Entity, facet string) *Entity {
	owner := e
	if e.Kind == Alias {
		owner = e.Owner
	}
	if owner == nil || !owner.Kind.IsOwner() {
		return nil
	}
	var found *Entity
	if strings.HasSuffix(facet, "List") {
		for _, l := range owner.ListFacets {
			if l.Item != nil && l.Item.FacetType.String()+"List" == facet {
				found = l
			}
		}
	}
	for _, f := range owner.Facets {
		if found != nil {
			break
		}
		if f.FacetType.contextual() && f.Label == facet || !f.FacetType.contextual() && f.FacetType.String() == facet {
			found = f
		}
	}
	if found != nil && e.Kind == Alias && found.Kind == Facet {
		return m.FacetAlias(e, found)
	}
	return found
}

// LookupElement returns the entities whose global element name is
// name. If there are none, entities whose element name has the same
// local name and base namespace are returned.
func (m *Model) LookupElement(name xml.Name) []*Entity {
	if found := m.byElement[name]; len(found) > 0 {
		return found
	}
	base := m.BaseNamespace(name.Space)
	var found []*Entity
	for _, lib := range m.Libraries {
		if m.BaseNamespace(lib.Namespace) != base {
			continue
		}
		found = append(found, m.byElement[xml.Name{Space: lib.Namespace, Local: name.Local}]...)
	}
	return found
}

// SimpleType returns the simple type called name: a library type,
// possibly prefixed, or a built-in primitive.
func (m *Model) SimpleType(name string) *SimpleType {
	if st, ok := m.simple[name]; ok {
		return st
	}
	return Builtin(name)
}

// FacetOf returns the facet of owner with the given type and, for
// contextual facets, label.
func (m *Model) FacetOf(owner *Entity, t FacetType, label string) *Entity {
	if owner == nil {
		return nil
	}
	if owner.Kind == Alias && owner.Owner != nil && owner.Owner.Kind.IsOwner() {
		if f := m.FacetOf(owner.Owner, t, label); f != nil {
			return m.FacetAlias(owner, f)
		}
		return nil
	}
	for _, f := range owner.Facets {
		if f.FacetType == t && (!t.contextual() || f.Label == label) {
			return f
		}
	}
	return nil
}

// FacetAlias returns the alias of facet derived from the owner alias
// alias, or nil.
func (m *Model) FacetAlias(alias, facet *Entity) *Entity {
	if alias == nil || alias.facetAliases == nil {
		return nil
	}
	return alias.facetAliases[facet]
}

// IsAbstract reports whether e never appears in a document itself
// and must be resolved to one of its Candidates.
func (m *Model) IsAbstract(e *Entity) bool {
	if e.Kind.IsOwner() {
		return true
	}
	return e.Kind == Alias && e.Owner != nil && e.Owner.Kind.IsOwner()
}

// Candidates returns the concrete facets of an abstract owner, or the
// facet aliases of an owner alias, in declaration order.
func (m *Model) Candidates(e *Entity) []*Entity {
	switch {
	case e.Kind.IsOwner():
		return append([]*Entity(nil), e.Facets...)
	case e.Kind == Alias && e.Owner != nil && e.Owner.Kind.IsOwner():
		var result []*Entity
		for _, f := range e.Owner.Facets {
			if fa := m.FacetAlias(e, f); fa != nil {
				result = append(result, fa)
			}
		}
		return result
	}
	return nil
}

// Unalias returns the facet an alias of a facet stands for; any other
// entity is returned unchanged.
func (m *Model) Unalias(e *Entity) *Entity {
	if e.Kind == Alias && e.Owner != nil && !e.Owner.Kind.IsOwner() {
		return e.Owner
	}
	return e
}

// LocalFacetHierarchy returns the facets whose content makes up an
// instance of f, least specific first. Facets of base owners are not
// part of the hierarchy; their content is merged into the facet of the
// same type. The result is nil for entities that are not facets.
func (m *Model) LocalFacetHierarchy(f *Entity) []*Entity {
	f = m.Unalias(f)
	switch f.Kind {
	case ListFacet:
		if f.Item == nil {
			return nil
		}
		return m.LocalFacetHierarchy(f.Item)
	case ActionFacet:
		var h []*Entity
		if f.Payload != nil {
			h = m.LocalFacetHierarchy(f.Payload)
		}
		return append(h, f)
	case ExtensionPointFacet:
		return []*Entity{f}
	case Facet:
	default:
		return nil
	}
	owner := f.Owner
	if owner == nil {
		return []*Entity{f}
	}
	var chain []FacetType
	switch owner.Kind {
	case BusinessObject:
		switch f.FacetType {
		case ID:
		case Summary:
			chain = []FacetType{ID}
		case Query:
		default:
			chain = []FacetType{ID, Summary}
		}
	case CoreObject:
		if f.FacetType == Detail {
			chain = []FacetType{Summary}
		}
	case ChoiceObject:
		if f.FacetType == Choice {
			chain = []FacetType{Shared}
		}
	}
	var h []*Entity
	for _, t := range chain {
		if p := m.FacetOf(owner, t, ""); p != nil {
			h = append(h, p)
		}
	}
	return append(h, f)
}

// inherited returns f preceded by the facets of the same type of the
// owners f's owner extends, root-most first.
func (m *Model) inherited(f *Entity) []*Entity {
	if f.Kind != Facet || f.Owner == nil {
		return []*Entity{f}
	}
	result := []*Entity{f}
	seen := map[*Entity]bool{f.Owner: true}
	for base := f.Owner.Extends; base != nil && !seen[base]; base = base.Extends {
		seen[base] = true
		if bf := m.FacetOf(base, f.FacetType, f.Label); bf != nil {
			result = append([]*Entity{bf}, result...)
		}
	}
	return result
}

// Attributes returns the attributes and attribute indicators of an
// instance of f: for each facet of its local hierarchy, inherited
// fields first, then locally declared ones.
func (m *Model) Attributes(f *Entity) []*Field {
	var result []*Field
	for _, h := range m.LocalFacetHierarchy(f) {
		for _, src := range m.inherited(h) {
			for _, fld := range src.Fields {
				if fld.IsAttribute() {
					result = append(result, fld)
				}
			}
		}
	}
	return result
}

// A Member is an element or element indicator of an instance of a
// facet, along with the facet of the local hierarchy it belongs to.
type Member struct {
	Field *Field
	Facet *Entity
}

// Properties returns the elements and element indicators of an
// instance of f in content order.
func (m *Model) Properties(f *Entity) []Member {
	var result []Member
	for _, h := range m.LocalFacetHierarchy(f) {
		for _, src := range m.inherited(h) {
			for _, fld := range src.Fields {
				if !fld.IsAttribute() {
					result = append(result, Member{Field: fld, Facet: h})
				}
			}
		}
	}
	return result
}

// Members returns every field of an instance of f, attributes first.
func (m *Model) Members(f *Entity) []*Field {
	result := m.Attributes(f)
	for _, p := range m.Properties(f) {
		result = append(result, p.Field)
	}
	return result
}

// ExtensionKind returns the kind of extension point group that follows
// the content of facet f, or NoExtension.
func (m *Model) ExtensionKind(f *Entity) ExtensionKind {
	if f.Kind != Facet || f.Owner == nil || f.Owner.NotExtendable {
		return NoExtension
	}
	switch f.FacetType {
	case ID, Simple:
		return NoExtension
	case Summary:
		return SummaryExtension
	case Shared:
		return SharedExtension
	}
	return OtherExtension
}

// ExtensionPointFacets returns the extension point facets that may
// appear in the extension point group of f, including those extending
// the same facet of a base owner.
func (m *Model) ExtensionPointFacets(f *Entity) []*Entity {
	var result []*Entity
	for _, src := range m.inherited(f) {
		result = append(result, m.extensions[src]...)
	}
	return result
}

// Roles returns the enumerated roles governing the repetition of a
// list facet, or nil.
func (m *Model) Roles(e *Entity) []string {
	e = m.Unalias(e)
	if e.Kind != ListFacet || e.Owner == nil {
		return nil
	}
	return e.Owner.Roles
}

// RoleField returns the synthetic role attribute of the items of a
// list facet, or nil if its core object declares no roles.
func (m *Model) RoleField(list *Entity) *Field {
	if len(m.Roles(list)) == 0 {
		return nil
	}
	return m.Unalias(list).Owner.roleField
}

// FieldName returns the name of the attribute or element that holds f.
// For elements of a complex type, the name is the element name of the
// type; see ElementName.
func (m *Model) FieldName(f *Field) xml.Name {
	if f.IsAttribute() {
		return xml.Name{Local: f.Name}
	}
	ns := ""
	if f.Owner != nil {
		ns = f.Owner.Namespace()
	}
	switch {
	case f.Kind == Indicator:
		return xml.Name{Space: ns, Local: IndicatorElementName(f.Name)}
	case f.Type != nil && !f.Reference:
		return m.ElementName(f.Type)
	}
	return xml.Name{Space: ns, Local: f.Name}
}

// IndicatorElementName returns the element name of an indicator
// published as an element.
func IndicatorElementName(name string) string {
	if strings.HasSuffix(name, "Ind") {
		return name
	}
	return name + "Ind"
}

// ValueType returns the simple type of the text of a leaf field.
func (m *Model) ValueType(f *Field) *SimpleType {
	switch {
	case f.Kind == Indicator:
		return Builtin("boolean")
	case f.Simple != nil:
		return f.Simple
	case f.Reference:
		return Builtin("IDREF")
	case f.Type != nil:
		t := m.Unalias(f.Type)
		list := t.Kind == ListFacet
		if list && t.Item != nil {
			t = t.Item
		}
		if t.Owner != nil && t.Owner.Simple != nil {
			st := *t.Owner.Simple
			st.List = st.List || list
			return &st
		}
	}
	return Builtin("string")
}
