package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/quarry-dev/quarry/internal/symbol"
)

// ContainmentGraph builds the directed containment tree of one file's
// symbols, edges pointing parent to child. Symbols with no parent hang off
// nothing; Roots finds them.
func ContainmentGraph(rec *symbol.FileRecord) (graph.Graph[string, *symbol.Symbol], error) {
	g := graph.New(func(s *symbol.Symbol) string { return s.ID }, graph.Directed(), graph.Acyclic())

	for i := range rec.Symbols {
		if err := g.AddVertex(&rec.Symbols[i]); err != nil {
			return nil, fmt.Errorf("add symbol %s: %w", rec.Symbols[i].Name, err)
		}
	}
	for i := range rec.Symbols {
		s := &rec.Symbols[i]
		if s.ParentID == "" {
			continue
		}
		if err := g.AddEdge(s.ParentID, s.ID); err != nil {
			return nil, fmt.Errorf("add containment edge %s -> %s: %w", s.ParentID, s.ID, err)
		}
	}
	return g, nil
}

// Roots returns the file's top-level symbols in declaration order.
func Roots(rec *symbol.FileRecord) []*symbol.Symbol {
	var out []*symbol.Symbol
	for i := range rec.Symbols {
		if rec.Symbols[i].ParentID == "" {
			out = append(out, &rec.Symbols[i])
		}
	}
	return out
}

// Outline renders the containment tree as indented text, one symbol per
// line, children in declaration order.
func Outline(rec *symbol.FileRecord) (string, error) {
	g, err := ContainmentGraph(rec)
	if err != nil {
		return "", err
	}
	adj, err := g.AdjacencyMap()
	if err != nil {
		return "", fmt.Errorf("adjacency map: %w", err)
	}

	// Declaration order for deterministic traversal.
	order := make(map[string]int, len(rec.Symbols))
	for i := range rec.Symbols {
		order[rec.Symbols[i].ID] = i
	}

	var b strings.Builder
	var walk func(s *symbol.Symbol, depth int)
	walk = func(s *symbol.Symbol, depth int) {
		fmt.Fprintf(&b, "%s%s %s [%d:%d]\n", strings.Repeat("  ", depth), s.Kind, s.Name, s.Span.StartLine, s.Span.EndLine)
		childIDs := make([]string, 0, len(adj[s.ID]))
		for id := range adj[s.ID] {
			childIDs = append(childIDs, id)
		}
		sort.Slice(childIDs, func(i, j int) bool { return order[childIDs[i]] < order[childIDs[j]] })
		for _, id := range childIDs {
			walk(&rec.Symbols[order[id]], depth+1)
		}
	}
	for _, root := range Roots(rec) {
		walk(root, 0)
	}
	return b.String(), nil
}
