// Package testutil contains common utility functions for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

// Namespaces of the libraries in ModelYAML, and of the previous
// version of each.
const (
	CommonNS   = "http://example.com/ns/common/v2"
	TravelNS   = "http://example.com/ns/travel/v2"
	CommonV1NS = "http://example.com/ns/common/v1"
	TravelV1NS = "http://example.com/ns/travel/v1"
)

// ModelYAML describes a small two-library model exercising business,
// core and choice objects, aliases, roles, list facets, substitution
// groups, extension points and action facets.
const ModelYAML = `
libraries:
- name: Common
  namespace: http://example.com/ns/common/v2
  prefix: c
  simpleTypes:
  - {name: Gender, enum: [Male, Female]}
  - {name: PostalCode, base: token}
  coreObjects:
  - name: Address
    roles: [home, work]
    simple: string
    summary:
    - {name: Street, mandatory: true}
    - {name: City, mandatory: true}
    - {name: PostalCode, type: c:PostalCode}
    detail:
    - {name: Country}

- name: Travel
  namespace: http://example.com/ns/travel/v2
  prefix: t
  businessObjects:
  - name: Profile
    aliases: [Traveler]
    id:
    - {name: Number, mandatory: true}
    summary:
    - {name: created, kind: attribute, type: date, mandatory: true}
    - {name: status, kind: attribute}
    - {name: Vip, kind: indicator}
    - {name: Name, mandatory: true}
    - {name: MiddleName}
    - {name: Gender, type: c:Gender}
    - {name: Email, repeat: 2}
    - {name: Active, kind: indicator, element: true}
    detail:
    - {name: Address, type: c:Address/SummaryList}
    - {name: Phone, repeat: "*"}
    - {name: Airport, type: Airport}
    - {name: Payment, type: Payment}
    custom:
    - label: Loyalty
      fields:
      - {name: Program, mandatory: true}
      - {name: Tier, type: int}
  - name: Member
    extends: Profile
    substitutes: Profile
    summary:
    - {name: Level, type: int}
  coreObjects:
  - name: Airport
    simple: string
    summary:
    - {name: code, kind: attribute, mandatory: true}
    - {name: AirportName}
    detail:
    - {name: Terminal}
  choiceObjects:
  - name: Payment
    shared:
    - {name: Amount, type: decimal, mandatory: true}
    choices:
    - label: Card
      fields:
      - {name: CardNumber, mandatory: true}
    - label: Cash
  actionFacets:
  - name: ProfileUpdateRQ
    payload: Profile/Detail
    fields:
    - {name: requestID, kind: attribute, type: ID, mandatory: true}
  extensionPoints:
  - name: ProfileExtension
    extends: Profile/Summary
    fields:
    - {name: Nickname}
`

// Model loads ModelYAML.
func Model(t testing.TB) *schema.Model {
	t.Helper()
	m, err := schema.Load(strings.NewReader(ModelYAML))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// Lookup returns the entity called name in m.
func Lookup(t testing.TB, m *schema.Model, name string) *schema.Entity {
	t.Helper()
	e := m.Lookup(name)
	if e == nil {
		t.Fatalf("no entity %s in model", name)
	}
	return e
}

// Parse parses an XML document.
func Parse(t testing.TB, doc string) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return root
}

// ProfileV1 is a profile written against the previous version of the
// travel and common libraries.
const ProfileV1 = `<Profile xmlns="http://example.com/ns/travel/v1"
  xmlns:c="http://example.com/ns/common/v1" created="2020-02-02">
  <Number>P-100</Number>
  <Name>Bob</Name>
  <Email>bob@example.com</Email>
  <Email>bob@work.example.com</Email>
  <Email>third@example.com</Email>
  <ActiveInd/>
  <ExtensionPoint_Summary>
    <ProfileExtension><Nickname>Bobby</Nickname></ProfileExtension>
  </ExtensionPoint_Summary>
  <c:Address role="work">
    <c:Street>1 Main St</c:Street>
    <c:City>Springfield</c:City>
  </c:Address>
  <Phone>555-0100</Phone>
  <AirportSimple>LHR</AirportSimple>
  <Payment_Card>
    <Amount>10.00</Amount>
    <CardNumber>4111</CardNumber>
  </Payment_Card>
  <Legacy>dropped</Legacy>
</Profile>`
