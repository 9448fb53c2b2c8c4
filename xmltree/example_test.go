package xmltree_test

import (
	"fmt"
	"log"

	"github.com/CognitoIQ/xmlupgrade/xmltree"
)

func ExampleElement_Search() {
	data := `
	<Profile xmlns="http://example.com/ns/travel/v1">
	  <Email>bob@example.com</Email>
	  <Contact>
	    <Email>office@example.com</Email>
	  </Contact>
	  <x:Email xmlns:x="urn:legacy">bob@legacy.example.com</x:Email>
	</Profile>
	`
	root, err := xmltree.Parse([]byte(data))
	if err != nil {
		log.Fatal(err)
	}
	for _, el := range root.Search("http://example.com/ns/travel/v1", "Email") {
		fmt.Println(el.Text())
	}
	fmt.Println(len(root.Search("", "Email")))

	// Output:
	// bob@example.com
	// office@example.com
	// 3
}

func ExampleElement_ResolveNS() {
	data := `
	<Profile xmlns="http://example.com/ns/travel/v2"
	  xmlns:c="http://example.com/ns/common/v2">
	  <Field type="c:Address"/>
	  <Field type="Airport"/>
	  <Legacy xmlns:c="http://example.com/ns/common/v1">
	    <Field type="c:Address"/>
	  </Legacy>
	  <Field type="x:Unknown"/>
	</Profile>
	`
	root, err := xmltree.Parse([]byte(data))
	if err != nil {
		log.Fatal(err)
	}
	for _, el := range root.Search("", "Field") {
		name, ok := el.ResolveNS(el.Attr("", "type"))
		fmt.Printf("%s {%s}%s %v\n", el.Attr("", "type"), name.Space, name.Local, ok)
	}

	// Output:
	// c:Address {http://example.com/ns/common/v2}Address true
	// Airport {http://example.com/ns/travel/v2}Airport true
	// c:Address {http://example.com/ns/common/v1}Address true
	// x:Unknown {x}Unknown false
}

func ExampleWalk() {
	root, err := xmltree.Parse([]byte(`<Person id="7"><Name>Ada</Name><Email>ada@example.com</Email></Person>`))
	if err != nil {
		log.Fatal(err)
	}
	root.Children[0].SetReferenced(true)

	xmltree.Walk(root, func(n xmltree.Node) {
		switch n := n.(type) {
		case *xmltree.Element:
			fmt.Printf("<%s> referenced=%v\n", n.Name.Local, n.Referenced())
		case *xmltree.Attr:
			fmt.Printf("@%s referenced=%v\n", n.Name.Local, n.Referenced())
		}
	})

	// Output:
	// <Person> referenced=false
	// @id referenced=false
	// <Name> referenced=true
	// <Email> referenced=false
}
