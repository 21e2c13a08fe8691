// Package index aggregates per-file symbol records into a single queryable
// index keyed by file path and by qualified symbol path.
package index

import (
	"fmt"
	"sort"

	"github.com/quarry-dev/quarry/internal/symbol"
)

// Assembler collects FileRecords and produces an immutable Index snapshot.
// Adding a path that already exists replaces the previous record wholesale;
// there is no partial patching. The assembler is not safe for concurrent
// use: concurrent producers hand records to a single aggregating consumer,
// which gives the collision check a total order over observed symbols.
type Assembler struct {
	files map[string]*symbol.FileRecord
}

func NewAssembler() *Assembler {
	return &Assembler{files: make(map[string]*symbol.FileRecord)}
}

// Add records one file's extraction result, replacing any earlier record for
// the same path.
func (a *Assembler) Add(rec *symbol.FileRecord) {
	a.files[rec.Path] = rec
}

// Len returns the number of files recorded so far.
func (a *Assembler) Len() int { return len(a.files) }

// Finalize builds the qualified-path map and reports collisions. Every
// colliding symbol is retained; each occurrence beyond the first produces
// one qualified_path_collision diagnostic. Paths are visited in sorted
// order so diagnostics are deterministic regardless of producer scheduling.
func (a *Assembler) Finalize() (*symbol.Index, []symbol.Diagnostic) {
	idx := symbol.NewIndex()
	var diags []symbol.Diagnostic

	paths := make([]string, 0, len(a.files))
	for p := range a.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		rec := a.files[p]
		idx.Files[p] = rec
		for i := range rec.Symbols {
			s := &rec.Symbols[i]
			key := symbol.PathKey(s.QualifiedPath)
			refs := idx.Paths[key]
			if len(refs) > 0 {
				prev := refs[len(refs)-1]
				diags = append(diags, symbol.Diagnostic{
					Code:     symbol.CodeQualifiedPathCollision,
					Path:     rec.Path,
					Line:     s.Span.StartLine,
					Col:      s.Span.StartCol,
					Severity: symbol.SeverityWarning,
					Message:  fmt.Sprintf("qualified path %q already declared in %s; both symbols kept", key, prev.Path),
				})
			}
			idx.Paths[key] = append(refs, symbol.Ref{Path: rec.Path, SymbolID: s.ID})
		}
	}
	return idx, diags
}
