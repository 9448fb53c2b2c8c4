package schema_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CognitoIQ/xmlupgrade/internal/testutil"
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	m := testutil.Model(t)
	require.Len(t, m.Libraries, 2)
	assert.Equal(t, "Common", m.Libraries[0].Name)
	assert.Equal(t, testutil.TravelNS, m.Libraries[1].Namespace)

	member := testutil.Lookup(t, m, "Member")
	profile := testutil.Lookup(t, m, "Profile")
	assert.Equal(t, profile, member.Extends)
	assert.Equal(t, profile, member.SubstitutionGroup)

	rq := testutil.Lookup(t, m, "ProfileUpdateRQ")
	assert.Equal(t, testutil.Lookup(t, m, "Profile/Detail"), rq.Payload)

	ext := testutil.Lookup(t, m, "ProfileExtension")
	assert.Equal(t, testutil.Lookup(t, m, "Profile/Summary"), ext.Owner)

	address := testutil.Lookup(t, m, "Address")
	require.NotNil(t, address.Simple)
	assert.Equal(t, "string", address.Simple.Base)
	assert.Len(t, address.ListFacets, 3)

	summary := testutil.Lookup(t, m, "Profile/Summary")
	email, active := summary.Fields[6], summary.Fields[7]
	assert.Equal(t, 2, email.MaxOccurs())
	assert.True(t, active.PublishAsElement)
	assert.False(t, active.IsAttribute())
	phone := testutil.Lookup(t, m, "Profile/Detail").Fields[1]
	assert.Equal(t, schema.Unbounded, phone.Repeat)
}

func TestLoadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(name, []byte(testutil.ModelYAML), 0o644))
	m, err := schema.LoadFile(name)
	require.NoError(t, err)
	assert.NotNil(t, m.Lookup("Profile"))

	_, err = schema.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "open model")
	}
}

func TestLoadErrors(t *testing.T) {
	const header = "libraries:\n- name: L\n  namespace: urn:l\n"
	tests := []struct {
		doc  string
		want string
	}{
		{"libraries:\n- name: L\n", "has no namespace"},
		{"libraries:\n- name: L\n  namespace: urn:l\n  bogus: 1\n", "bogus"},
		{header + "  businessObjects:\n  - name: A\n    summary:\n    - {name: X, type: Nope}\n", `unknown type "Nope"`},
		{header + "  businessObjects:\n  - name: A\n    summary:\n    - {name: X, repeat: many}\n", "invalid repeat"},
		{header + "  businessObjects:\n  - name: A\n    summary:\n    - {name: X, kind: wire}\n", "unknown field kind"},
		{header + "  businessObjects:\n  - name: A\n    summary:\n    - {kind: element}\n", "field without a name"},
		{header + "  businessObjects:\n  - name: A\n    roles: [x]\n", "only core objects"},
		{header + "  businessObjects:\n  - name: A\n    extends: B\n", `unknown entity "B"`},
		{header + "  businessObjects:\n  - name: A\n  coreObjects:\n  - name: C\n    extends: A\n", "cannot extend"},
		{header + "  businessObjects:\n  - name: A\n    summary:\n    - {name: x, kind: attribute, type: A}\n", "complex type"},
		{header + "  coreObjects:\n  - name: C\n    simple: blob\n", "unknown simple type"},
		{header + "  choiceObjects:\n  - name: P\n    choices:\n    - fields: []\n", "without a label"},
		{header + "  businessObjects:\n  - name: A\n  extensionPoints:\n  - name: E\n    extends: A\n", "is not a facet"},
		{header + "  extensionPoints:\n  - name: E\n", "does not extend"},
		{header + "  simpleTypes:\n  - {name: S, base: blob}\n", "unknown base type"},
		{header + "- name: M\n  namespace: urn:l\n", "share namespace"},
		{header + "  businessObjects:\n  - name: A\n    extends: B\n  - name: B\n    extends: A\n", "inheritance cycle A -> B -> A"},
		{header + "  businessObjects:\n  - name: A\n    substitutes: A\n", "substitution group cycle A -> A"},
	}
	for _, tt := range tests {
		_, err := schema.Load(strings.NewReader(tt.doc))
		if assert.Error(t, err, tt.doc) {
			assert.Contains(t, err.Error(), tt.want, tt.doc)
		}
	}
}
