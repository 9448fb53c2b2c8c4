package schema

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xmlupgrade/internal/dependency"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The YAML model descriptor read by Load. Type references name a
// simple type (string, Gender), an entity (Profile, c:Address) or a
// facet of an owner (Profile/Detail, Address/SummaryList,
// Profile/Loyalty for a contextual facet labelled Loyalty).
//
//	libraries:
//	- name: Travel
//	  namespace: http://example.com/ns/travel/v2
//	  prefix: t
//	  businessObjects:
//	  - name: Profile
//	    aliases: [Traveler]
//	    id:
//	    - {name: ProfileID, type: ID, mandatory: true}
//	    summary:
//	    - {name: Name, type: string, mandatory: true}
//	    - {name: Address, type: Address, repeat: "*"}
type modelDoc struct {
	Libraries []libraryDoc `yaml:"libraries"`
}

type libraryDoc struct {
	Name            string          `yaml:"name"`
	Namespace       string          `yaml:"namespace"`
	Prefix          string          `yaml:"prefix"`
	BaseNamespace   string          `yaml:"baseNamespace"`
	SimpleTypes     []simpleTypeDoc `yaml:"simpleTypes"`
	BusinessObjects []ownerDoc      `yaml:"businessObjects"`
	CoreObjects     []ownerDoc      `yaml:"coreObjects"`
	ChoiceObjects   []ownerDoc      `yaml:"choiceObjects"`
	ActionFacets    []facetDoc      `yaml:"actionFacets"`
	ExtensionPoints []facetDoc      `yaml:"extensionPoints"`
}

type simpleTypeDoc struct {
	Name string   `yaml:"name"`
	Base string   `yaml:"base"`
	Enum []string `yaml:"enum"`
	List bool     `yaml:"list"`
}

type ownerDoc struct {
	Name          string     `yaml:"name"`
	Extends       string     `yaml:"extends"`
	Substitutes   string     `yaml:"substitutes"`
	NotExtendable bool       `yaml:"notExtendable"`
	Aliases       []string   `yaml:"aliases"`
	Roles         []string   `yaml:"roles"`
	Simple        string     `yaml:"simple"`
	ID            []fieldDoc `yaml:"id"`
	Summary       []fieldDoc `yaml:"summary"`
	Detail        []fieldDoc `yaml:"detail"`
	Shared        []fieldDoc `yaml:"shared"`
	Custom        []facetDoc `yaml:"custom"`
	Query         []facetDoc `yaml:"query"`
	Update        []facetDoc `yaml:"update"`
	Choices       []facetDoc `yaml:"choices"`
}

type facetDoc struct {
	Name        string     `yaml:"name"`
	Label       string     `yaml:"label"`
	Extends     string     `yaml:"extends"`
	Payload     string     `yaml:"payload"`
	Substitutes string     `yaml:"substitutes"`
	Fields      []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Type      string `yaml:"type"`
	Mandatory bool   `yaml:"mandatory"`
	Repeat    repeat `yaml:"repeat"`
	Reference bool   `yaml:"reference"`
	// indicators only
	Element bool `yaml:"element"`
}

type repeat int

func (r *repeat) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "*", "unbounded":
		*r = Unbounded
		return nil
	}
	n, err := strconv.Atoi(value.Value)
	if err != nil || n < 0 {
		return errors.Errorf("line %d: invalid repeat %q", value.Line, value.Value)
	}
	*r = repeat(n)
	return nil
}

// LoadFile reads a YAML model descriptor from the named file.
func LoadFile(name string) (*Model, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open model")
	}
	defer f.Close()
	m, err := Load(f)
	return m, errors.Wrapf(err, "load model %s", name)
}

// Load reads a YAML model descriptor and returns the linked Model.
func Load(r io.Reader) (*Model, error) {
	var doc modelDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	var ld loader
	libs, err := ld.skeleton(doc)
	if err != nil {
		return nil, err
	}
	m, err := NewModel(libs...)
	if err != nil {
		return nil, err
	}
	ld.model = m
	for _, fix := range ld.fixups {
		if err := fix(); err != nil {
			return nil, err
		}
	}
	if err := checkCycles(libs); err != nil {
		return nil, err
	}
	for _, lib := range libs {
		for _, e := range lib.Entities {
			m.link(lib, e)
		}
	}
	return m, nil
}

// checkCycles rejects owners that extend or substitute for themselves,
// directly or through other owners.
func checkCycles(libs []*Library) error {
	var extends, substitutes dependency.Graph[string]
	for _, lib := range libs {
		for _, e := range lib.Entities {
			if e.Extends != nil {
				extends.Add(e.Name, e.Extends.Name)
			}
			if e.SubstitutionGroup != nil {
				substitutes.Add(e.Name, e.SubstitutionGroup.Name)
			}
		}
	}
	if c := extends.Cycle(); c != nil {
		return errors.Errorf("inheritance cycle %s", strings.Join(c, " -> "))
	}
	if c := substitutes.Cycle(); c != nil {
		return errors.Errorf("substitution group cycle %s", strings.Join(c, " -> "))
	}
	return nil
}

// A loader builds entities first and resolves references between them
// once every name is known.
type loader struct {
	model  *Model
	fixups []func() error
}

func (ld *loader) later(fn func() error) {
	ld.fixups = append(ld.fixups, fn)
}

func (ld *loader) entity(ref, context string) (*Entity, error) {
	e := ld.model.Lookup(ref)
	if e == nil {
		return nil, errors.Errorf("%s: unknown entity %q", context, ref)
	}
	return e, nil
}

func (ld *loader) skeleton(doc modelDoc) ([]*Library, error) {
	var libs []*Library
	for _, ldoc := range doc.Libraries {
		if ldoc.Namespace == "" {
			return nil, errors.Errorf("library %q has no namespace", ldoc.Name)
		}
		lib := &Library{
			Name:          ldoc.Name,
			Namespace:     ldoc.Namespace,
			Prefix:        ldoc.Prefix,
			BaseNamespace: ldoc.BaseNamespace,
		}
		for _, st := range ldoc.SimpleTypes {
			base := st.Base
			if base == "" {
				base = "string"
			}
			if Builtin(base) == nil {
				return nil, errors.Errorf("simple type %s: unknown base type %q", st.Name, base)
			}
			lib.SimpleTypes = append(lib.SimpleTypes, &SimpleType{Name: st.Name, Base: base, Enum: st.Enum, List: st.List})
		}
		for _, o := range ldoc.BusinessObjects {
			e, err := ld.owner(BusinessObject, o)
			if err != nil {
				return nil, err
			}
			lib.Entities = append(lib.Entities, e)
		}
		for _, o := range ldoc.CoreObjects {
			e, err := ld.owner(CoreObject, o)
			if err != nil {
				return nil, err
			}
			lib.Entities = append(lib.Entities, e)
		}
		for _, o := range ldoc.ChoiceObjects {
			e, err := ld.owner(ChoiceObject, o)
			if err != nil {
				return nil, err
			}
			lib.Entities = append(lib.Entities, e)
		}
		for _, a := range ldoc.ActionFacets {
			e := &Entity{Kind: ActionFacet, Name: a.Name}
			if err := ld.fields(e, a.Fields); err != nil {
				return nil, err
			}
			if a.Payload != "" {
				a := a
				ld.later(func() (err error) {
					e.Payload, err = ld.entity(a.Payload, "action facet "+a.Name)
					return err
				})
			}
			lib.Entities = append(lib.Entities, e)
		}
		for _, x := range ldoc.ExtensionPoints {
			e := &Entity{Kind: ExtensionPointFacet, Name: x.Name}
			if err := ld.fields(e, x.Fields); err != nil {
				return nil, err
			}
			x := x
			ld.later(func() (err error) {
				if x.Extends == "" {
					return errors.Errorf("extension point %s does not extend a facet", x.Name)
				}
				e.Owner, err = ld.entity(x.Extends, "extension point "+x.Name)
				if err == nil && e.Owner.Kind != Facet {
					err = errors.Errorf("extension point %s: %s is not a facet", x.Name, x.Extends)
				}
				return err
			})
			lib.Entities = append(lib.Entities, e)
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func (ld *loader) owner(kind Kind, o ownerDoc) (*Entity, error) {
	e := &Entity{Kind: kind, Name: o.Name, NotExtendable: o.NotExtendable, Roles: o.Roles}
	facet := func(t FacetType, label string, fields []fieldDoc) error {
		f := &Entity{Kind: Facet, Name: facetName(o.Name, t, label), FacetType: t, Label: label}
		if err := ld.fields(f, fields); err != nil {
			return err
		}
		e.Facets = append(e.Facets, f)
		return nil
	}
	contextual := func(t FacetType, docs []facetDoc) error {
		for _, d := range docs {
			label := d.Label
			if label == "" {
				label = d.Name
			}
			if label == "" {
				return errors.Errorf("%s: %s facet without a label", o.Name, t)
			}
			if err := facet(t, label, d.Fields); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	switch kind {
	case BusinessObject:
		if err = facet(ID, "", o.ID); err == nil {
			err = facet(Summary, "", o.Summary)
		}
		if err == nil {
			err = facet(Detail, "", o.Detail)
		}
		if err == nil {
			err = contextual(Custom, o.Custom)
		}
		if err == nil {
			err = contextual(Query, o.Query)
		}
		if err == nil {
			err = contextual(Update, o.Update)
		}
	case CoreObject:
		if err = facet(Summary, "", o.Summary); err == nil {
			err = facet(Detail, "", o.Detail)
		}
		if err != nil {
			break
		}
		items := []*Entity{e.Facets[0], e.Facets[1]}
		if o.Simple != "" {
			err = facet(Simple, "", nil)
			items = append(items, e.Facets[len(e.Facets)-1])
			ld.later(func() error {
				if e.Simple = ld.model.SimpleType(o.Simple); e.Simple == nil {
					return errors.Errorf("core object %s: unknown simple type %q", o.Name, o.Simple)
				}
				return nil
			})
		}
		for _, item := range items {
			e.ListFacets = append(e.ListFacets, &Entity{Kind: ListFacet, Name: item.Name + "List", FacetType: item.FacetType, Item: item})
		}
	case ChoiceObject:
		if err = facet(Shared, "", o.Shared); err == nil {
			err = contextual(Choice, o.Choices)
		}
	}
	if err != nil {
		return nil, err
	}
	if kind != CoreObject && (len(o.Roles) > 0 || o.Simple != "") {
		return nil, errors.Errorf("%s: only core objects declare roles and simple types", o.Name)
	}
	for _, alias := range o.Aliases {
		e.Aliases = append(e.Aliases, &Entity{Kind: Alias, Name: alias})
	}
	if o.Extends != "" {
		ld.later(func() (err error) {
			e.Extends, err = ld.entity(o.Extends, o.Name)
			if err == nil && e.Extends.Kind != kind {
				err = errors.Errorf("%s cannot extend %s %s", o.Name, e.Extends.Kind, o.Extends)
			}
			return err
		})
	}
	if o.Substitutes != "" {
		ld.later(func() (err error) {
			e.SubstitutionGroup, err = ld.entity(o.Substitutes, o.Name)
			return err
		})
	}
	return e, nil
}

func (ld *loader) fields(owner *Entity, docs []fieldDoc) error {
	for _, d := range docs {
		if d.Name == "" {
			return errors.Errorf("%s: field without a name", owner.Name)
		}
		f := &Field{
			Name:      d.Name,
			Owner:     owner,
			Mandatory: d.Mandatory,
			Repeat:    int(d.Repeat),
			Reference: d.Reference,
		}
		switch strings.ToLower(d.Kind) {
		case "", "element":
			f.Kind = Element
		case "attribute":
			f.Kind = Attribute
		case "indicator":
			f.Kind = Indicator
			f.PublishAsElement = d.Element
		default:
			return errors.Errorf("%s.%s: unknown field kind %q", owner.Name, d.Name, d.Kind)
		}
		owner.Fields = append(owner.Fields, f)
		if f.Kind == Indicator {
			continue
		}
		ref, context := d.Type, owner.Name+"."+d.Name
		if ref == "" {
			ref = "string"
		}
		ld.later(func() error {
			if e := ld.model.Lookup(ref); e != nil {
				if f.Kind == Attribute {
					return errors.Errorf("%s: attributes cannot have complex type %s", context, ref)
				}
				f.Type = e
				return nil
			}
			if f.Simple = ld.model.SimpleType(ref); f.Simple == nil {
				return errors.Errorf("%s: unknown type %q", context, ref)
			}
			return nil
		})
	}
	return nil
}
