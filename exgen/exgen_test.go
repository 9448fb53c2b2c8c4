package exgen

import (
	"regexp"
	"sync"
	"testing"

	"github.com/CognitoIQ/xmlupgrade/internal/testutil"
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Name", []string{"Name"}},
		{"CardNumber", []string{"Card", "Number"}},
		{"PostalCodeID", []string{"Postal", "Code", "ID"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"snake_case", []string{"snake", "case"}},
		{"_x_", []string{"x"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, words(tt.in), tt.in)
	}
}

func TestGenerate(t *testing.T) {
	m := testutil.Model(t)
	g := New(m)
	summary := testutil.Lookup(t, m, "Profile/Summary")
	address := testutil.Lookup(t, m, "Address/Summary")

	tests := []struct {
		f    *schema.Field
		want string
	}{
		{summary.Fields[0], "2024-01-15"},
		{summary.Fields[2], "true"},
		{summary.Fields[3], "Name"},
		{summary.Fields[4], "Middle Name"},
		{summary.Fields[5], "Male"},
		{address.Fields[2], "Postal Code"},
		{&schema.Field{Name: "Codes", Simple: &schema.SimpleType{Base: "token", List: true}}, "Codes Codes"},
		{&schema.Field{Name: "HomePage", Simple: schema.Builtin("anyURI")}, "http://example.com/homepage"},
		{&schema.Field{Name: "Since", Simple: schema.Builtin("gYear")}, "2024"},
		{&schema.Field{Name: "Blob", Simple: schema.Builtin("base64Binary")}, "QmxvYg=="},
		{&schema.Field{Name: "snake_case"}, "Snake Case"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Generate(tt.f, summary), tt.f.String())
	}
}

func TestGenerateNumbers(t *testing.T) {
	m := testutil.Model(t)
	g := New(m)
	amount := testutil.Lookup(t, m, "Payment/Shared").Fields[0]
	tier := testutil.Lookup(t, m, "Profile/Loyalty").Fields[1]

	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]*\.50$`), g.Generate(amount, nil))
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]*$`), g.Generate(tier, nil))
	assert.Equal(t, g.Generate(tier, nil), g.Generate(tier, nil))
}

func TestGenerateIdentifiers(t *testing.T) {
	m := testutil.Model(t)
	g := New(m)
	rq := testutil.Lookup(t, m, "ProfileUpdateRQ")
	profile := testutil.Lookup(t, m, "Profile")
	summary := testutil.Lookup(t, m, "Profile/Summary")

	id := rq.Fields[0]
	assert.Regexp(t, regexp.MustCompile(`^ProfileUpdateRQ_[0-9]+$`), g.Generate(id, rq))

	// an ID generated for a facet of Profile is the value a reference
	// to Profile points at
	ref := &schema.Field{Name: "ProfileRef", Reference: true, Type: profile}
	idOfSummary := &schema.Field{Name: "key", Simple: schema.Builtin("ID")}
	assert.Regexp(t, regexp.MustCompile(`^Profile_[0-9]+$`), g.Generate(ref, nil))
	assert.Equal(t, g.Generate(ref, nil), g.Generate(idOfSummary, summary))
}

func TestNewLocale(t *testing.T) {
	m := testutil.Model(t)
	g := NewLocale(m, language.Dutch)
	assert.Equal(t, "IJs Type", g.Generate(&schema.Field{Name: "ijsType"}, nil))
}

func TestGenerateConcurrent(t *testing.T) {
	m := testutil.Model(t)
	g := New(m)
	f := testutil.Lookup(t, m, "Profile/Summary").Fields[4]

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				results[i] = g.Generate(f, nil)
			}
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, "Middle Name", got)
	}
}
