package symbol

import "github.com/quarry-dev/quarry/internal/lang"

// Ref locates one symbol inside the index.
type Ref struct {
	Path     string `json:"path"`
	SymbolID string `json:"symbol_id"`
}

// Index is the assembled result of one ingestion run: every FileRecord keyed
// by path, plus the cross-file qualified-path map used for collision
// detection. The index is append-only during a run; a finalized index is an
// immutable snapshot.
type Index struct {
	Files map[string]*FileRecord `json:"files"`
	// Paths maps a dotted qualified path to every symbol declaring it.
	// More than one entry means a collision was reported.
	Paths map[string][]Ref `json:"paths"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Files: make(map[string]*FileRecord),
		Paths: make(map[string][]Ref),
	}
}

// File returns the record for path, or nil.
func (ix *Index) File(path string) *FileRecord {
	return ix.Files[path]
}

// Lookup returns every symbol declared under the dotted qualified path.
func (ix *Index) Lookup(qualifiedPath string) []Ref {
	return ix.Paths[qualifiedPath]
}

// Stats summarizes an index for reporting.
type Stats struct {
	TotalFiles    int                   `json:"total_files"`
	TotalSymbols  int                   `json:"total_symbols"`
	ParseFailures int                   `json:"parse_failures"`
	ByLanguage    map[lang.Language]int `json:"by_language"`
}

// ComputeStats tallies files and symbols per language.
func (ix *Index) ComputeStats() Stats {
	st := Stats{ByLanguage: make(map[lang.Language]int)}
	for _, fr := range ix.Files {
		st.TotalFiles++
		st.TotalSymbols += len(fr.Symbols)
		st.ByLanguage[fr.Language]++
		if !fr.ParseSucceeded {
			st.ParseFailures++
		}
	}
	return st
}
