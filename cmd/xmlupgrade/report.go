package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/CognitoIQ/xmlupgrade/internal/ordered"
	"github.com/CognitoIQ/xmlupgrade/upgrade"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
	textdiff "github.com/andreyvit/diff"
	"github.com/fatih/color"
)

var matchColors = map[upgrade.MatchType]*color.Color{
	upgrade.Exact:                color.New(color.FgGreen),
	upgrade.ExactSubstitutable:   color.New(color.FgGreen, color.Italic),
	upgrade.Partial:              color.New(color.FgCyan),
	upgrade.PartialSubstitutable: color.New(color.FgCyan, color.Italic),
	upgrade.None:                 color.New(color.FgYellow),
	upgrade.Missing:              color.New(color.Faint),
	upgrade.Manual:               color.New(color.FgMagenta),
}

var (
	bold    = color.New(color.Bold)
	added   = color.New(color.FgGreen)
	removed = color.New(color.FgRed)
)

// printReport lists the nodes of the upgraded document with their
// match types, a count per match type, and the original content that
// was not carried over.
func printReport(w io.Writer, root *upgrade.Node, original *xmltree.Element) {
	upgrade.Walk(root, func(n *upgrade.Node) {
		if c, ok := matchColors[n.Match]; ok {
			fmt.Fprintln(w, c.Sprint(n.String()))
		} else {
			fmt.Fprintln(w, n.String())
		}
	})

	s := upgrade.Summarize(root)
	bold.Fprintf(w, "%d of %d nodes matched\n", s.Matched(), s.Total())
	ordered.Range(s, func(t upgrade.MatchType, count int) {
		fmt.Fprintf(w, "  %-20s %d\n", t, count)
	})

	if original == nil {
		return
	}
	for _, n := range upgrade.Unreferenced(original) {
		switch n := n.(type) {
		case *xmltree.Element:
			removed.Fprintf(w, "unused element %s\n", n.Name.Local)
		case *xmltree.Attr:
			removed.Fprintf(w, "unused attribute %s\n", n.Name.Local)
		}
	}
}

func printDiff(w io.Writer, original, upgraded []byte) {
	bold.Fprintln(w, "--- original")
	bold.Fprintln(w, "+++ upgraded")
	for _, line := range textdiff.LineDiffAsLines(string(original), string(upgraded)) {
		switch {
		case strings.HasPrefix(line, "+"):
			added.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}
