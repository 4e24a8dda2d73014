// Package callgraph reads the call graph artifact (a D3-style node/link
// document) and normalizes it into an adjacency mapping.
package callgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Graph is the raw call graph artifact.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node carries the canonical symbol of one function in the graph.
type Node struct {
	Symbol string `json:"symbol"`
}

// Link is a directed call edge from Source to Target.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Load reads and decodes a call graph artifact. Any read or decode failure
// is fatal to the analysis.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &g, nil
}

// NodeSymbols returns the symbols of all nodes, in artifact order.
func (g *Graph) NodeSymbols() []string {
	syms := make([]string, len(g.Nodes))
	for i := range g.Nodes {
		syms[i] = g.Nodes[i].Symbol
	}
	return syms
}

// Adjacency builds the caller-to-callees mapping. Duplicate edges collapse
// to one; self-loops are kept (a function may call itself). Callee lists are
// sorted for deterministic iteration.
func (g *Graph) Adjacency() map[string][]string {
	seen := make(map[Link]struct{}, len(g.Links))
	adj := make(map[string][]string)
	for _, l := range g.Links {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		adj[l.Source] = append(adj[l.Source], l.Target)
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}
	return adj
}
