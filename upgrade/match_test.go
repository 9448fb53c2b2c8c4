package upgrade_test

import (
	"testing"

	"github.com/CognitoIQ/xmlupgrade/internal/testutil"
	"github.com/CognitoIQ/xmlupgrade/upgrade"
	"github.com/stretchr/testify/assert"
)

func TestCompareNamespace(t *testing.T) {
	m := testutil.Model(t)
	tests := []struct {
		a, b string
		want upgrade.MatchType
	}{
		{testutil.TravelNS, testutil.TravelNS, upgrade.Exact},
		{"", "", upgrade.Exact},
		{"urn:anything", "urn:anything", upgrade.Exact},
		{testutil.TravelV1NS, testutil.TravelNS, upgrade.Partial},
		{testutil.CommonNS, testutil.CommonV1NS, upgrade.Partial},
		{"http://example.com/ns/travel_v01_00", "http://example.com/ns/travel_v02_01", upgrade.Partial},
		{testutil.TravelNS, testutil.CommonNS, upgrade.None},
		{testutil.TravelNS, "", upgrade.None},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, upgrade.CompareNamespace(m, tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestMatchTypes(t *testing.T) {
	matches := map[upgrade.MatchType]bool{
		upgrade.Exact:                true,
		upgrade.ExactSubstitutable:   true,
		upgrade.Partial:              true,
		upgrade.PartialSubstitutable: true,
		upgrade.Manual:               true,
		upgrade.None:                 false,
		upgrade.Missing:              false,
	}
	for mt, want := range matches {
		assert.Equal(t, want, mt.IsMatch(), mt.String())
	}

	order := []upgrade.MatchType{
		upgrade.Manual,
		upgrade.Exact,
		upgrade.ExactSubstitutable,
		upgrade.Partial,
		upgrade.PartialSubstitutable,
		upgrade.None,
		upgrade.Missing,
	}
	for i := 0; i+1 < len(order); i++ {
		assert.True(t, order[i].Better(order[i+1]), "%s should be preferred over %s", order[i], order[i+1])
		assert.False(t, order[i+1].Better(order[i]))
	}
	assert.Equal(t, "MatchType(0)", upgrade.MatchType(0).String())
}

func TestMatchEntity(t *testing.T) {
	m := testutil.Model(t)
	summary := testutil.Lookup(t, m, "Profile/Summary")
	member := testutil.Lookup(t, m, "Member/Summary")

	tests := []struct {
		entity string
		doc    string
		want   upgrade.MatchType
	}{
		{"Profile/Summary", `<Profile xmlns="http://example.com/ns/travel/v2"/>`, upgrade.Exact},
		{"Profile/Summary", `<Profile xmlns="http://example.com/ns/travel/v1"/>`, upgrade.Partial},
		{"Profile/Summary", `<Profile xmlns="urn:other"/>`, upgrade.None},
		{"Profile/Summary", `<ProfileDetail xmlns="http://example.com/ns/travel/v2"/>`, upgrade.None},
		{"Member/Summary", `<Member xmlns="http://example.com/ns/travel/v2"/>`, upgrade.Exact},
		{"Member/Summary", `<Profile xmlns="http://example.com/ns/travel/v2"/>`, upgrade.ExactSubstitutable},
		{"Member/Summary", `<Profile xmlns="http://example.com/ns/travel/v1"/>`, upgrade.PartialSubstitutable},
		{"Member/Detail", `<ProfileDetail xmlns="http://example.com/ns/travel/v2"/>`, upgrade.ExactSubstitutable},
	}
	for _, tt := range tests {
		e := testutil.Lookup(t, m, tt.entity)
		el := testutil.Parse(t, tt.doc)
		assert.Equal(t, tt.want, upgrade.MatchEntity(m, e, el), "%s vs %s", tt.entity, tt.doc)
	}

	// substitution works one way only
	el := testutil.Parse(t, `<Member xmlns="http://example.com/ns/travel/v2"/>`)
	assert.Equal(t, upgrade.None, upgrade.MatchEntity(m, summary, el))
	el = testutil.Parse(t, `<Traveler xmlns="http://example.com/ns/travel/v2"/>`)
	assert.Equal(t, upgrade.None, upgrade.MatchEntity(m, member, el))
}

func TestMatchField(t *testing.T) {
	m := testutil.Model(t)
	summary := testutil.Lookup(t, m, "Profile/Summary")
	name, active := summary.Fields[3], summary.Fields[7]

	el := testutil.Parse(t, `<x:Name xmlns:x="urn:unrelated"/>`)
	assert.Equal(t, upgrade.Exact, upgrade.MatchField(m, name, el.Name))
	assert.Equal(t, upgrade.None, upgrade.MatchField(m, active, el.Name))

	el = testutil.Parse(t, `<ActiveInd/>`)
	assert.Equal(t, upgrade.Exact, upgrade.MatchField(m, active, el.Name))
}
