// Package exgen generates example values for the leaf fields of a
// schema model.
//
// The values are plausible rather than realistic: they depend only on
// the field and its type, so that generating the same document twice
// produces the same text.
package exgen // import "github.com/CognitoIQ/xmlupgrade/exgen"

import (
	"encoding/base64"
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A Generator produces example values. It is safe for concurrent use.
type Generator struct {
	model *schema.Model
	tag   language.Tag
}

// New returns a Generator for fields of the model m, producing English
// text.
func New(m *schema.Model) *Generator {
	return NewLocale(m, language.English)
}

// NewLocale is like New, but text values are cased according to the
// conventions of the given language. Casers keep state between calls,
// so one is made per value.
func NewLocale(m *schema.Model, tag language.Tag) *Generator {
	return &Generator{model: m, tag: tag}
}

// Generate returns an example value for f. The context entity is the
// entity whose instance holds the field; it is used to name
// identifiers.
func (g *Generator) Generate(f *schema.Field, context *schema.Entity) string {
	st := g.model.ValueType(f)
	if len(st.Enum) > 0 {
		return st.Enum[0]
	}
	v := g.value(st.Base, f, context)
	if st.List {
		return v + " " + v
	}
	return v
}

func (g *Generator) value(base string, f *schema.Field, context *schema.Entity) string {
	switch base {
	case "boolean":
		return "true"
	case "int", "integer", "long", "short":
		return strconv.Itoa(int(hash(f.Name)%1000) + 1)
	case "decimal", "double", "float":
		return strconv.Itoa(int(hash(f.Name)%1000)+1) + ".50"
	case "date":
		return "2024-01-15"
	case "dateTime":
		return "2024-01-15T09:30:00"
	case "time":
		return "09:30:00"
	case "duration":
		return "P1D"
	case "gYear":
		return "2024"
	case "gYearMonth":
		return "2024-01"
	case "language":
		return "en"
	case "anyURI":
		return "http://example.com/" + cases.Lower(g.tag).String(f.Name)
	case "base64Binary":
		return base64.StdEncoding.EncodeToString([]byte(f.Name))
	case "ID":
		return identifier(context, f)
	case "IDREF", "IDREFS":
		if f.Type != nil {
			return identifier(f.Type, nil)
		}
		return identifier(context, f)
	}
	return cases.Title(g.tag).String(strings.Join(words(f.Name), " "))
}

func identifier(e *schema.Entity, f *schema.Field) string {
	var name string
	switch {
	case e != nil && e.Owner != nil && e.Kind != schema.ExtensionPointFacet:
		name = e.Owner.Name
	case e != nil:
		name = e.Name
	case f != nil:
		name = f.Name
	}
	return name + "_" + strconv.Itoa(int(hash(name)%100))
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// words splits a camel case identifier: words("PostalCodeID") returns
// [Postal Code ID].
func words(name string) []string {
	var result []string
	runes := []rune(name)
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsLower(prev) && unicode.IsUpper(cur) ||
			unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) ||
			cur == '_' || prev == '_'
		if boundary {
			if w := strings.Trim(string(runes[start:i]), "_"); w != "" {
				result = append(result, w)
			}
			start = i
		}
	}
	if w := strings.Trim(string(runes[start:]), "_"); w != "" {
		result = append(result, w)
	}
	return result
}
