package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Marshal produces the XML encoding of an Element as a self-contained
// document. Namespace prefixes are taken from the namespace declarations
// found on the Element and its ancestors' encoding; any namespace that
// is used without a declaration in scope is declared on the element
// that first needs it, so the document produced by Marshal is always
// a valid XML document.
func Marshal(el *Element) []byte {
	var buf bytes.Buffer
	if err := Encode(&buf, el); err != nil {
		// bytes.Buffer.Write should never return an error
		panic(err)
	}
	return buf.Bytes()
}

// MarshalIndent is like Marshal, but each child element begins on a new
// line starting with prefix and followed by one or more copies of indent
// according to the nesting depth.
func MarshalIndent(el *Element, prefix, indent string) []byte {
	var buf bytes.Buffer
	enc := encoder{w: &buf, prefix: prefix, indent: indent, pretty: true}
	if err := enc.encode(el, nil, 0); err != nil {
		panic(err)
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

// Encode writes the XML encoding of the Element to w.
// Encode returns any errors encountered writing to w.
func Encode(w io.Writer, el *Element) error {
	enc := encoder{w: w}
	return enc.encode(el, nil, 0)
}

// String returns the XML encoding of an Element
// and its children as a string.
func (el *Element) String() string {
	return string(Marshal(el))
}

type encoder struct {
	w              io.Writer
	prefix, indent string
	pretty         bool
	err            error
}

// scope maps prefixes to namespaces; the empty prefix is the default
// namespace.
type scope map[string]string

func (s scope) with(prefix, space string) scope {
	next := make(scope, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[prefix] = space
	return next
}

func (s scope) lookup(space string, allowDefault bool) (string, bool) {
	if allowDefault {
		if v, ok := s[""]; ok && v == space {
			return "", true
		}
	}
	var found []string
	for k, v := range s {
		if k != "" && v == space {
			found = append(found, k)
		}
	}
	if len(found) == 0 {
		return "", false
	}
	// several prefixes may be bound to the same namespace; pick a
	// stable one.
	best := found[0]
	for _, k := range found[1:] {
		if k < best {
			best = k
		}
	}
	return best, true
}

func (s scope) fresh() string {
	for i := 0; ; i++ {
		p := "ns" + strconv.Itoa(i)
		if _, ok := s[p]; !ok {
			return p
		}
	}
}

func (e *encoder) write(s ...string) {
	for _, v := range s {
		if e.err != nil {
			return
		}
		_, e.err = io.WriteString(e.w, v)
	}
}

func (e *encoder) newline(depth int) {
	if !e.pretty {
		return
	}
	e.write("\n", e.prefix, strings.Repeat(e.indent, depth))
}

func (e *encoder) encode(el *Element, parent scope, depth int) error {
	if depth > recursionLimit {
		// We only return I/O errors
		return nil
	}
	if parent == nil {
		parent = scope{"xml": XMLNS}
	}
	ns := parent
	var decls []xml.Attr
	for _, a := range el.Attrs {
		if a.Name.Space == "xmlns" {
			ns = ns.with(a.Name.Local, a.Value)
			decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns:" + a.Name.Local}, Value: a.Value})
		} else if a.Name.Space == "" && a.Name.Local == "xmlns" {
			ns = ns.with("", a.Value)
			decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: a.Value})
		}
	}

	var tag string
	if el.Name.Space == "" {
		if ns[""] != "" {
			ns = ns.with("", "")
			decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns"}})
		}
		tag = el.Name.Local
	} else if p, ok := ns.lookup(el.Name.Space, true); ok {
		tag = qualify(p, el.Name.Local)
	} else if _, bound := ns[""]; !bound || ns[""] == "" && depth == 0 {
		ns = ns.with("", el.Name.Space)
		decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: el.Name.Space})
		tag = el.Name.Local
	} else {
		p := ns.fresh()
		ns = ns.with(p, el.Name.Space)
		decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns:" + p}, Value: el.Name.Space})
		tag = qualify(p, el.Name.Local)
	}

	var attrs []xml.Attr
	for _, a := range el.Attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		name := a.Name.Local
		if a.Name.Space != "" {
			p, ok := ns.lookup(a.Name.Space, false)
			if !ok {
				p = ns.fresh()
				ns = ns.with(p, a.Name.Space)
				decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns:" + p}, Value: a.Name.Space})
			}
			name = qualify(p, name)
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: a.Value})
	}

	e.write("<", tag)
	for _, a := range append(attrs, decls...) {
		e.write(" ", a.Name.Local, `="`)
		e.escape(a.Value)
		e.write(`"`)
	}
	content := el.Content
	if len(el.Children) > 0 {
		content = strings.TrimSpace(content)
	}
	if len(el.Children) == 0 && content == "" {
		e.write(" />")
		return e.err
	}
	e.write(">")
	if len(el.Children) == 0 {
		e.write(textEscaper.Replace(content))
	}
	for _, child := range el.Children {
		e.newline(depth + 1)
		if err := e.encode(child, ns, depth+1); err != nil {
			return err
		}
	}
	if len(el.Children) > 0 {
		e.newline(depth)
	}
	e.write("</", tag, ">")
	return e.err
}

func (e *encoder) escape(s string) {
	if e.err != nil {
		return
	}
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	e.write(buf.String())
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
