package transform

import (
	"testing"

	"github.com/matzehuels/schematic/pkg/digraph"
)

func TestFindCycleEdges(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []digraph.Edge
	}{
		{
			name:  "acyclic",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:  "two cycle",
			ids:   []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  []digraph.Edge{{From: "b", To: "a", Label: "a"}},
		},
		{
			name:  "triangle",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
			want:  []digraph.Edge{{From: "c", To: "a", Label: "a"}},
		},
		{
			name:  "self loop",
			ids:   []string{"a"},
			edges: [][2]string{{"a", "a"}},
			want:  []digraph.Edge{{From: "a", To: "a", Label: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t, tt.ids, tt.edges...)
			before := g.EdgeCount()
			got := FindCycleEdges(g)
			if len(got) != len(tt.want) {
				t.Fatalf("FindCycleEdges() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("edge %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if g.EdgeCount() != before {
				t.Error("graph was modified")
			}
		})
	}
}
