// Package symbol defines the unified symbol model: the language-agnostic
// records every extractor's output is normalized into.
package symbol

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/quarry-dev/quarry/internal/lang"
)

// Kind is the unified declaration kind.
type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindRecord   Kind = "record"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindField    Kind = "field"
	KindVariable Kind = "variable"
	KindConstant Kind = "constant"
	// KindUnknown is assigned when a raw record matches no normalization
	// table entry for its language. The symbol is kept, never dropped.
	KindUnknown Kind = "unknown"
)

// Modifier is one tag from the union of all languages' modifier vocabularies.
// Decorators are recorded as "decorator:<name>".
type Modifier string

const (
	ModAsync        Modifier = "async"
	ModStatic       Modifier = "static"
	ModAbstract     Modifier = "abstract"
	ModExported     Modifier = "exported"
	ModDefaultValue Modifier = "default-valued"
)

// DecoratorModifier returns the modifier tag for a decorator or attribute
// by name, e.g. "dataclass" -> "decorator:dataclass".
func DecoratorModifier(name string) Modifier {
	return Modifier("decorator:" + name)
}

// Span is a source range, 1-indexed, inclusive at both ends. A declaration's
// span includes its decorators and attributes.
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	if other.StartLine < s.StartLine || (other.StartLine == s.StartLine && other.StartCol < s.StartCol) {
		return false
	}
	if other.EndLine > s.EndLine || (other.EndLine == s.EndLine && other.EndCol > s.EndCol) {
		return false
	}
	return true
}

// Symbol is one unified declaration record. Symbols are created during
// normalization and never mutated afterwards.
type Symbol struct {
	ID            string     `json:"id"`
	Kind          Kind       `json:"kind"`
	Name          string     `json:"name"`
	QualifiedPath []string   `json:"qualified_path"`
	Span          Span       `json:"span"`
	Documentation string     `json:"documentation,omitempty"`
	Modifiers     []Modifier `json:"modifiers,omitempty"`
	// ParentID references the enclosing symbol within the same file, and
	// always points at a symbol earlier in declaration order.
	ParentID string `json:"parent_id,omitempty"`
}

// HasModifier reports whether the symbol carries the given tag.
func (s *Symbol) HasModifier(m Modifier) bool {
	for _, have := range s.Modifiers {
		if have == m {
			return true
		}
	}
	return false
}

// AddModifier inserts m keeping Modifiers a sorted, duplicate-free set, so
// serialized symbols are deterministic.
func (s *Symbol) AddModifier(m Modifier) {
	if s.HasModifier(m) {
		return
	}
	s.Modifiers = append(s.Modifiers, m)
	sort.Slice(s.Modifiers, func(i, j int) bool { return s.Modifiers[i] < s.Modifiers[j] })
}

// PathKey flattens a qualified path to its canonical dotted form, the key
// used by the index's collision map.
func PathKey(qualifiedPath []string) string {
	return strings.Join(qualifiedPath, ".")
}

// ID derives the stable symbol identifier from the file path, the file's
// content hash, and the symbol's ordinal position in declaration order.
// Re-ingesting an unmodified file reproduces identical IDs.
func ID(path, contentHash string, ordinal int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\n%s\n%d", path, contentHash, ordinal))
	return hex.EncodeToString(sum[:])[:12]
}

// ContentHash hashes raw file content for use in symbol IDs and the parse
// cache key.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FileRecord is the full extraction result for one source file.
type FileRecord struct {
	Path           string        `json:"path"`
	Language       lang.Language `json:"language"`
	ParseSucceeded bool          `json:"parse_succeeded"`
	// Symbols are in declaration order; the order is part of the contract.
	Symbols     []Symbol     `json:"symbols"`
	ParseErrors []Diagnostic `json:"parse_errors,omitempty"`
}

// SymbolByID returns the symbol with the given id, or nil.
func (fr *FileRecord) SymbolByID(id string) *Symbol {
	for i := range fr.Symbols {
		if fr.Symbols[i].ID == id {
			return &fr.Symbols[i]
		}
	}
	return nil
}
