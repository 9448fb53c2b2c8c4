package dependency

import (
	"fmt"
	"testing"
)

// edges read "owner -> base"
var flattenTests = [...]struct {
	edges   []string
	ordered []string
}{
	{
		edges: []string{
			"Member -> Profile",
			"Profile -> Party",
			"Agent -> Party",
			"Vendor -> Organization",
			"Agency -> Organization",
			"Agency -> Agent",
		},
		ordered: []string{
			"Party",
			"Agent",
			"Organization",
			"Agency",
			"Profile",
			"Member",
			"Vendor",
		},
	},
	{
		// Order shouldn't matter
		edges: []string{
			"Agency -> Agent",
			"Vendor -> Organization",
			"Profile -> Party",
			"Agency -> Organization",
			"Member -> Profile",
			"Agent -> Party",
		},
		ordered: []string{
			"Party",
			"Agent",
			"Organization",
			"Agency",
			"Profile",
			"Member",
			"Vendor",
		},
	},
	{
		// Loops are not followed
		edges: []string{
			"Card -> Payment",
			"Payment -> Card",
			"Payment -> Amount",
			"Cash -> Payment",
		},
		ordered: []string{
			"Amount",
			"Payment",
			"Card",
			"Cash",
		},
	},
}

func TestFlatten(t *testing.T) {
	for _, tt := range flattenTests {
		var graph Graph[string]
		for _, edge := range tt.edges {
			var target string
			var dep string
			if _, err := fmt.Sscanf(edge, "%s -> %s", &target, &dep); err != nil {
				panic("bad test edge " + edge)
			}
			graph.Add(target, dep)
		}
		var i int
		graph.Flatten(func(vertex string) {
			if i >= len(tt.ordered) {
				t.Fatalf("advanced past expected output with %s", vertex)
			}
			if tt.ordered[i] != vertex {
				t.Errorf("got %q, wanted %q", vertex, tt.ordered[i])
			} else {
				t.Log(vertex)
			}
			i++
		})
	}
}

func TestCycle(t *testing.T) {
	tests := []struct {
		edges [][2]string
		want  []string
	}{
		{[][2]string{{"Member", "Profile"}, {"Profile", "Person"}}, nil},
		{[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}}, []string{"A", "B", "C", "A"}},
		{[][2]string{{"A", "B"}, {"B", "B"}}, []string{"B", "B"}},
		{[][2]string{{"X", "Y"}, {"Y", "Z"}, {"Z", "Y"}}, []string{"Y", "Z", "Y"}},
		{nil, nil},
	}
	for _, tt := range tests {
		var graph Graph[string]
		for _, e := range tt.edges {
			graph.Add(e[0], e[1])
		}
		got := graph.Cycle()
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("%v: got cycle %v, wanted %v", tt.edges, got, tt.want)
		}
	}
}
