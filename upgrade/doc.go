/*
Package upgrade rebuilds XML documents written against an older version
of a schema model so that they conform to the current one.

A Builder walks the model in content order with a Navigator. For each
attribute, indicator and element the model allows, it searches the
original document for matching content and reuses it, recording how
well the names and namespaces agreed as a MatchType. Content that cannot
be found is generated with the configured Generator, and original
content that was never used is left unreferenced so callers can report
it with Unreferenced.

	b := upgrade.NewBuilder(model, upgrade.PreferFacet("Payment", "Cash"))
	root, err := b.Build(model.Lookup("Profile"), original)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", xmltree.MarshalIndent(root.Element, "", "  "))

Once built, branches of the upgraded document can be cleared or
regenerated with ClearBranch and ReplaceBranch.
*/
package upgrade // import "github.com/CognitoIQ/xmlupgrade/upgrade"
