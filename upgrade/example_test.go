package upgrade_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/upgrade"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

func ExampleBuilder_Build() {
	model, err := schema.Load(strings.NewReader(`
libraries:
- name: Contacts
  namespace: http://example.com/ns/contacts/v2
  businessObjects:
  - name: Person
    id:
    - {name: PersonID, mandatory: true}
    summary:
    - {name: Name, mandatory: true}
    - {name: Email}
`))
	if err != nil {
		log.Fatal(err)
	}
	original, err := xmltree.Parse([]byte(`
	<Person xmlns="http://example.com/ns/contacts/v1">
	  <PersonID>7</PersonID>
	  <Nickname>Al</Nickname>
	</Person>`))
	if err != nil {
		log.Fatal(err)
	}

	b := upgrade.NewBuilder(model)
	root, err := b.Build(model.Lookup("Person"), original)
	if err != nil {
		log.Fatal(err)
	}
	upgrade.Walk(root, func(n *upgrade.Node) {
		fmt.Println(n)
	})
	fmt.Printf("%s\n", xmltree.Marshal(root.Element))
	for _, n := range upgrade.Unreferenced(original) {
		fmt.Println("unused:", n.(*xmltree.Element).Name.Local)
	}

	// Output:
	// Person(Person/Summary) Partial
	// Person/PersonID(Person/ID.PersonID) Exact
	// Person/Name(Person/Summary.Name) None
	// Person/Email(Person/Summary.Email) Missing
	// <Person xmlns="http://example.com/ns/contacts/v2"><PersonID>7</PersonID><Name>Name</Name></Person>
	// unused: Nickname
}
