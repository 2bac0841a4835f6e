package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/schematic/pkg/digraph"
)

// MarshalGraph encodes g as an indented graph document. This is the body
// of the "graph" artifact format.
func MarshalGraph(g *digraph.Graph) ([]byte, error) {
	return json.MarshalIndent(FromDigraph(g), "", "  ")
}

// WriteGraph writes g to w as a graph document followed by a newline.
func WriteGraph(g *digraph.Graph, w io.Writer) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadGraph decodes a graph document and rebuilds the reference graph.
// Edges naming unknown nodes are rejected by [ToDigraph].
func ReadGraph(r io.Reader) (*digraph.Graph, error) {
	var gj Graph
	if err := json.NewDecoder(r).Decode(&gj); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return ToDigraph(gj)
}

// WriteGraphFile is [WriteGraph] to a file at path.
func WriteGraphFile(g *digraph.Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadGraphFile is [ReadGraph] from the file at path.
func ReadGraphFile(path string) (*digraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
