/*
xmlupgrade reconciles an XML document with a schema model, producing
a document that conforms to the model while keeping as much of the
original content as can be matched.

Usage:

	xmlupgrade -model file -entity name [options] [file.xml]

The model is a YAML descriptor of the schema libraries, as read by
the schema package. The -entity flag names the business object, core
object, choice object, alias or facet the document is an instance of,
as in Profile, c:Address or Profile/Detail.

If no input file is given, or the file is "-", the original document
is read from standard input. With -new, no original document is read
and a complete example document is generated instead.

The upgraded document is written to standard output, or to the file
named by -o.

Options:

	-config file
		YAML file with maxRepeat, logLevel and preferredFacets
		settings. Flags override the file.
	-max-repeat n
		maximum number of generated repetitions of an element
		(default 3)
	-prefer owner=facet
		facet to generate for instances of owner, such as
		Payment=Cash. May be repeated.
	-clear path
		remove the node at path from the upgraded document, as in
		Profile/Address[2]. May be repeated.
	-regen path
		regenerate the node at path from the model, discarding its
		original content. May be repeated.
	-report
		print each node of the upgraded document with its match
		type to standard error, followed by the original content
		that was not used.
	-diff
		print a line diff of the original and upgraded documents to
		standard error.
	-v
		verbose logging. May be repeated.
*/
package main
