package upgrade

import (
	"github.com/CognitoIQ/xmlupgrade/exgen"
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// A Builder reconciles original documents with a schema model. It
// walks the model with a Navigator and builds an upgraded document,
// reusing original content wherever a schema construct can be matched
// with it and generating content elsewhere.
//
// A Builder is not safe for concurrent use. Separate Builders may
// share a Model.
type Builder struct {
	Config
	model *schema.Model
	stack []*navContext
}

// NewBuilder returns a Builder for documents of the model m. The
// DefaultOptions are applied first, then opts. Unless the ValueGenerator
// option is given, values are generated by exgen.
func NewBuilder(m *schema.Model, opts ...Option) *Builder {
	b := &Builder{model: m}
	b.Option(DefaultOptions...)
	b.Option(opts...)
	if b.generator == nil {
		b.generator = exgen.New(m)
	}
	return b
}

// Model returns the schema model of the builder.
func (b *Builder) Model() *schema.Model { return b.model }

func (b *Builder) navigator() *Navigator {
	return NewNavigator(b.model, b, b.maxRepeat)
}

func (b *Builder) push(ctx *navContext) { b.stack = append(b.stack, ctx) }

func (b *Builder) pop() *navContext {
	ctx := b.stack[len(b.stack)-1]
	b.stack[len(b.stack)-1] = nil
	b.stack = b.stack[:len(b.stack)-1]
	return ctx
}

func (b *Builder) top() *navContext { return b.stack[len(b.stack)-1] }

func (b *Builder) reset() {
	for i := range b.stack {
		b.stack[i] = nil
	}
	b.stack = b.stack[:0]
}

// Build builds an upgraded document for an instance of e from the
// original document rooted at original, which may be nil to generate
// a complete example. If e is an owner or owner alias, the first of its
// facets matching the original root is used, and the preferred facet
// if none does. The referenced flags of the original document are
// reset, then set on every original node whose content was reused.
//
// Build fails only if the model cannot be navigated, in which case no
// partial result is returned.
func (b *Builder) Build(e *schema.Entity, original *xmltree.Element) (root *Node, err error) {
	defer catchBuildError(&err)
	defer b.reset()
	if original != nil {
		xmltree.ClearReferenced(original)
	}
	root = b.subtree(e, original, 0)
	b.updateNamespaces(root)
	if b.loglevel > 0 {
		s := Summarize(root)
		b.logf("built %s: %d of %d nodes matched", root.Entity, s.Matched(), s.Total())
	}
	return root, nil
}

// subtree builds a detached node for an instance of declared whose
// content is taken from original.
func (b *Builder) subtree(declared *schema.Entity, original *xmltree.Element, occurrence int) *Node {
	resolved, match := b.resolve(declared, original)
	node := &Node{
		Element:  xmltree.NewElement(b.model.ElementName(resolved)),
		Entity:   resolved,
		Declared: declared,
		Match:    match,
	}
	ctx := &navContext{node: node, auto: original == nil, occurrence: occurrence}
	if original != nil {
		ctx.original = original
		node.Original = original
		original.SetReferenced(true)
		if resolved.IsSimpleValue() {
			node.Element.Content = original.Text()
		}
	}
	b.push(ctx)
	b.navigator().entity(resolved)
	b.pop()
	return node
}

// resolve selects the concrete entity used for an instance of declared
// built from original.
func (b *Builder) resolve(declared *schema.Entity, original *xmltree.Element) (*schema.Entity, MatchType) {
	abstract := b.model.IsAbstract(declared)
	if original == nil {
		if abstract {
			return b.preferredFacet(declared), None
		}
		return declared, None
	}
	if !abstract {
		return declared, MatchEntity(b.model, declared, original)
	}
	for _, c := range b.model.Candidates(declared) {
		if t := MatchEntity(b.model, c, original); t.IsMatch() {
			b.debugf("<%s> resolved %s to %s", original.Name.Local, declared, c)
			return c, t
		}
	}
	return b.preferredFacet(declared), None
}

func (b *Builder) generate(ctx *navContext, f *schema.Field) string {
	if ctx.node.Entity != nil && f == b.model.RoleField(ctx.node.Entity) {
		roles := b.model.Roles(ctx.node.Entity)
		return roles[ctx.occurrence%len(roles)]
	}
	return b.generator.Generate(f, ctx.node.Entity)
}

// Attribute implements the Visitor interface.
func (b *Builder) Attribute(f *schema.Field) {
	ctx := b.top()
	name := b.model.FieldName(f)
	attr := xmltree.NewAttr(name, "")
	node := &Node{Attr: attr, Field: f, Parent: ctx.node}

	var src *xmltree.Attr
	if ctx.original != nil && !ctx.auto {
		if a := ctx.original.AttrNode("", name.Local); a != nil && !a.Referenced() {
			src = a
		}
	}
	if src != nil {
		node.Match = MatchField(b.model, f, src.Name)
		node.Original = src
		attr.Value = src.Value
		src.SetReferenced(true)
	} else if v, ok := ctx.takeManual(); ok {
		node.Match = Manual
		attr.Value = v
	} else if f.Mandatory || ctx.auto {
		node.Match = None
		attr.Value = b.generate(ctx, f)
	} else {
		node.Match = Missing
	}
	ctx.node.Children = append(ctx.node.Children, node)
	if node.Match != Missing {
		ctx.node.Element.AddAttr(attr)
	}
}

// Indicator implements the Visitor interface.
func (b *Builder) Indicator(f *schema.Field) {
	ctx := b.top()
	el := xmltree.NewElement(b.model.FieldName(f))
	node := &Node{Element: el, Field: f, Parent: ctx.node}

	var found *xmltree.Element
	if !ctx.auto {
		found = ctx.findNext(isField(b.model, f))
	}
	if found != nil {
		node.Match = MatchField(b.model, f, found.Name)
		node.Original = found
		found.SetReferenced(true)
		if el.Content = found.Text(); el.Content == "" {
			el.Content = "false"
		}
	} else if v, ok := ctx.takeManual(); ok {
		node.Match = Manual
		el.Content = v
	} else if f.Mandatory || ctx.auto {
		node.Match = None
		el.Content = b.generate(ctx, f)
	} else {
		node.Match = Missing
	}
	ctx.node.Children = append(ctx.node.Children, node)
	if node.Match != Missing {
		ctx.node.Element.AppendChild(el)
	}
}

// BeginElement implements the Visitor interface.
func (b *Builder) BeginElement(f *schema.Field, occurrence int) (*schema.Entity, bool) {
	ctx := b.top()
	resolved, found, match := b.matchElement(ctx, f)
	leaf := f.Reference || resolved == nil || resolved.IsSimpleValue()

	name := b.model.FieldName(f)
	if !leaf || (resolved != nil && !f.Reference) {
		name = b.model.ElementName(resolved)
	}
	el := xmltree.NewElement(name)
	node := &Node{Element: el, Declared: f.Type, Parent: ctx.node}
	if leaf {
		node.Field = f
	} else {
		node.Entity = resolved
	}

	if found != nil {
		node.Match = match
		node.Original = found
		found.SetReferenced(true)
		if leaf {
			el.Content = found.Text()
		}
	} else if v, ok := ctx.takeManual(); ok && leaf {
		node.Match = Manual
		el.Content = v
	} else if f.Mandatory || ctx.auto {
		node.Match = None
		if leaf {
			el.Content = b.generate(ctx, f)
		}
	} else {
		node.Match = Missing
	}
	ctx.node.Children = append(ctx.node.Children, node)
	if node.Match == Missing {
		return nil, false
	}
	ctx.node.Element.AppendChild(el)
	b.push(&navContext{
		node:       node,
		original:   found,
		auto:       node.Match == None,
		occurrence: occurrence,
	})
	if leaf {
		return nil, true
	}
	return resolved, true
}

// matchElement finds the original element for the next repetition of
// f. If there is none, the entity used to generate it is returned.
func (b *Builder) matchElement(ctx *navContext, f *schema.Field) (*schema.Entity, *xmltree.Element, MatchType) {
	declared := f.Type
	if declared == nil || f.Reference {
		if !ctx.auto {
			if el := ctx.findNext(isField(b.model, f)); el != nil {
				return declared, el, MatchField(b.model, f, el.Name)
			}
		}
		return declared, nil, Missing
	}
	abstract := b.model.IsAbstract(declared)
	if !ctx.auto {
		candidates := []*schema.Entity{declared}
		if abstract {
			candidates = b.model.Candidates(declared)
		}
		for _, c := range candidates {
			if el := ctx.findNext(isEntity(b.model, c)); el != nil {
				if abstract {
					b.debugf("%s: <%s> selects %s", f, el.Name.Local, c)
				}
				return c, el, MatchEntity(b.model, c, el)
			}
		}
	}
	if !abstract {
		return declared, nil, Missing
	}
	if ctx.hasManual {
		// a manual value can only be taken by a simple facet
		for _, c := range b.model.Candidates(declared) {
			if c.IsSimpleValue() {
				return c, nil, Missing
			}
		}
	}
	return b.preferredFacet(declared), nil, Missing
}

// EndElement implements the Visitor interface.
func (b *Builder) EndElement(f *schema.Field) {
	b.pop()
}

// HasMoreOriginal implements the Visitor interface.
func (b *Builder) HasMoreOriginal(f *schema.Field) bool {
	ctx := b.top()
	if ctx.auto || ctx.original == nil {
		return false
	}
	switch {
	case f.Type == nil || f.Reference:
		return ctx.hasNext(isField(b.model, f))
	case b.model.IsAbstract(f.Type):
		return ctx.hasNext(isAnyEntity(b.model, b.model.Candidates(f.Type)))
	}
	return ctx.hasNext(isEntity(b.model, f.Type))
}

// AutoGenerating implements the Visitor interface.
func (b *Builder) AutoGenerating() bool {
	return b.top().auto
}
