// Package grammar wraps tree-sitter behind a uniform parse-and-walk
// capability. One Adapter exists per supported language; per-language
// differences in declaration shapes live in the extraction rule tables, not
// here.
package grammar

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/quarry-dev/quarry/internal/lang"
)

// Adapter parses one language's source into a walkable syntax tree.
type Adapter struct {
	language lang.Language
	grammar  *sitter.Language
}

var adapters = map[lang.Language]*Adapter{}

func register(l lang.Language, g *sitter.Language) {
	adapters[l] = &Adapter{language: l, grammar: g}
}

func init() {
	register(lang.Python, sitter.NewLanguage(python.Language()))
	register(lang.TypeScript, sitter.NewLanguage(typescript.LanguageTypescript()))
	// JavaScript is a syntactic subset of the TypeScript grammar.
	register(lang.JavaScript, sitter.NewLanguage(typescript.LanguageTypescript()))
	register(lang.Go, sitter.NewLanguage(golang.Language()))
	register(lang.Java, sitter.NewLanguage(java.Language()))
	register(lang.Ruby, sitter.NewLanguage(ruby.Language()))
	register(lang.Rust, sitter.NewLanguage(rust.Language()))
	register(lang.C, sitter.NewLanguage(c.Language()))
	register(lang.PHP, sitter.NewLanguage(php.LanguagePHP()))
}

// For returns the adapter for the given language.
func For(l lang.Language) (*Adapter, bool) {
	a, ok := adapters[l]
	return a, ok
}

// Language returns the language this adapter parses.
func (a *Adapter) Language() lang.Language { return a.language }

// Parse builds a syntax tree from content. Malformed source does not fail
// the parse: tree-sitter recovers and marks the damaged regions with error
// nodes, so symbols found before a syntax error survive. The caller must
// Close the returned tree.
func (a *Adapter) Parse(content []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(a.grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s grammar produced no tree", a.language)
	}
	return &Tree{inner: tree, source: content}, nil
}
