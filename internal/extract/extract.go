// Package extract walks parsed syntax trees and emits raw, language-shaped
// declaration records. Each language contributes a declarative rule table
// mapping node kinds to records; the walk engine itself is shared.
package extract

import (
	"strings"

	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/symbol"
)

// Raw is one language-level declaration record, before normalization.
type Raw struct {
	RawKind    string
	Name       string
	Span       symbol.Span
	Doc        string // doc text with delimiters intact; the normalizer strips them
	Decorators []string
	Receiver   string // declaring type for detached methods (Go receivers, Rust impl blocks)
	Async      bool
	Static     bool
	Abstract   bool
	Exported   bool
	HasDefault bool
	Parent     int // index of the enclosing record in the emitted slice, -1 at top level
}

// Binding is one named value binding produced from a variable-bearing
// statement. Anonymous and destructured bindings are never produced.
type Binding struct {
	Name       string
	Span       symbol.Span
	HasDefault bool
}

// DeclRule maps one node kind to a raw record.
type DeclRule struct {
	RawKind   string
	Kind      func(grammar.Node) string // dynamic raw kind; overrides RawKind
	NameField string                    // grammar field holding the name node
	Name      func(grammar.Node) (string, bool)
	BodyField string // where nested declarations live
	Body      func(grammar.Node) (grammar.Node, bool)
	Nested    bool // descend into the body for nested declarations
	Default   func(grammar.Node) bool
	// Components yields field children that live outside the body, such as
	// Java record components.
	Components func(grammar.Node) []Binding
	// Group re-processes named children that carry their own declaration
	// rules at the same level (Go type_declaration wrapping type_specs).
	Group bool
	// Transparent containers (Rust impl blocks) emit no record of their own;
	// their direct children are emitted with Receiver set.
	Transparent   bool
	ReceiverField string
	Receiver      func(grammar.Node) string
}

// BindingRule expands a statement node into zero or more bindings. In a
// class body the bindings become fields; at other scopes they become
// ForceKind, or variables/constants by the ALL_CAPS heuristic.
type BindingRule struct {
	Expand    func(grammar.Node) []Binding
	ForceKind string
}

// DocRules describes how documentation attaches to declarations in one
// language.
type DocRules struct {
	CommentKinds []string // node kinds that are comments
	Docstring    bool     // doc is the first string expression inside the body
}

// Rules is one language's extraction table.
type Rules struct {
	Language lang.Language
	Decls    map[string]DeclRule
	Bindings map[string]BindingRule
	Doc      DocRules
	// Unwrap peels wrapper nodes (decorated definitions, export statements).
	// It reports the inner declaration, decorator names, and whether the
	// wrapper marks the declaration exported.
	Unwrap func(grammar.Node) (inner grammar.Node, decorators []string, exported bool, ok bool)
	// AttributeSiblings names node kinds that attach to the following
	// declaration as preceding siblings (Rust attribute_item). They become
	// decorators and the declaration's span grows to cover them.
	AttributeSiblings []string
	// Decorators collects attribute/annotation names attached inside the
	// declaration node itself.
	Decorators func(grammar.Node) []string
	// Qualifier hooks; nil means the qualifier does not exist in the language.
	Async    func(grammar.Node) bool
	Static   func(grammar.Node) bool
	Abstract func(grammar.Node) bool
	Exported func(name string, n grammar.Node) bool
}

var registry = map[lang.Language]*Rules{}

func register(r *Rules) { registry[r.Language] = r }

// Extractor walks one language's trees.
type Extractor struct {
	rules *Rules
}

// ForLanguage returns the extractor for the given language.
func ForLanguage(l lang.Language) (*Extractor, bool) {
	r, ok := registry[l]
	if !ok {
		return nil, false
	}
	return &Extractor{rules: r}, true
}

// Extract emits raw declaration records in declaration order. Extraction is
// a pure function of the tree: no side effects, no mutation of the source.
func (e *Extractor) Extract(tree *grammar.Tree) []Raw {
	out := make([]Raw, 0, 16)
	e.scope(tree.Root(), -1, false, false, &out)
	return out
}

// scope processes the direct children of a container node. parent is the
// index of the enclosing declaration record, inClass marks class-body scope
// where bindings become fields, inFunction marks function-body scope where
// value bindings are local and never become symbols.
func (e *Extractor) scope(container grammar.Node, parent int, inClass, inFunction bool, out *[]Raw) {
	for i := 0; i < container.NamedChildCount(); i++ {
		child, ok := container.NamedChild(i)
		if !ok {
			continue
		}
		e.statement(child, parent, inClass, inFunction, out)
	}
}

func (e *Extractor) statement(node grammar.Node, parent int, inClass, inFunction bool, out *[]Raw) {
	decl := node
	span := node.Span()
	var decorators []string
	exported := false

	if e.rules.Unwrap != nil {
		if inner, decs, exp, ok := e.rules.Unwrap(node); ok {
			decl = inner
			decorators = decs
			exported = exp
			// The span stays the wrapper's: it includes the decorators.
		}
	}

	if rule, ok := e.rules.Decls[decl.Kind()]; ok {
		anchor := node
		if len(e.rules.AttributeSiblings) > 0 {
			attrs, outermost := e.siblingAttributes(node)
			if len(attrs) > 0 {
				decorators = append(attrs, decorators...)
				span.StartLine = outermost.Span().StartLine
				span.StartCol = outermost.Span().StartCol
				anchor = outermost
			}
		}
		e.declaration(anchor, decl, rule, span, decorators, exported, parent, inClass, inFunction, out)
		return
	}

	if inFunction {
		// Bindings inside a function body are locals, not symbols.
		return
	}

	if rule, ok := e.rules.Bindings[decl.Kind()]; ok {
		doc := e.leadingComments(node)
		for _, b := range rule.Expand(decl) {
			raw := Raw{
				Name:       b.Name,
				Span:       b.Span,
				HasDefault: b.HasDefault,
				Parent:     parent,
				Doc:        doc,
			}
			switch {
			case inClass:
				raw.RawKind = "field"
			case rule.ForceKind != "":
				raw.RawKind = rule.ForceKind
			case isConstantName(b.Name):
				raw.RawKind = "constant"
			default:
				raw.RawKind = "variable"
			}
			raw.Exported = exported
			if !raw.Exported && e.rules.Exported != nil {
				raw.Exported = e.rules.Exported(b.Name, decl)
			}
			*out = append(*out, raw)
		}
	}
}

func (e *Extractor) declaration(wrapper, decl grammar.Node, rule DeclRule, span symbol.Span, decorators []string, exported bool, parent int, inClass, inFunction bool, out *[]Raw) {
	if rule.Group {
		for i := 0; i < decl.NamedChildCount(); i++ {
			c, ok := decl.NamedChild(i)
			if !ok {
				continue
			}
			if _, has := e.rules.Decls[c.Kind()]; has {
				e.statement(c, parent, inClass, inFunction, out)
			}
		}
		return
	}

	receiver := ""
	switch {
	case rule.Receiver != nil:
		receiver = rule.Receiver(decl)
	case rule.ReceiverField != "":
		receiver = strings.TrimLeft(decl.FieldText(rule.ReceiverField), "*& ")
	}

	if rule.Transparent {
		body, ok := declBody(decl, rule)
		if !ok {
			return
		}
		start := len(*out)
		e.scope(body, parent, false, inFunction, out)
		for i := start; i < len(*out); i++ {
			if (*out)[i].Parent == parent && (*out)[i].Receiver == "" {
				(*out)[i].Receiver = receiver
			}
		}
		return
	}

	name := ""
	ok := false
	if rule.Name != nil {
		name, ok = rule.Name(decl)
	} else if rule.NameField != "" {
		name = decl.FieldText(rule.NameField)
		ok = name != ""
	}
	if !ok || name == "" {
		// Anonymous declarations are skipped; only named, visible
		// declarations become symbols.
		return
	}

	// Decorators can also sit inside the declaration node itself
	// (TypeScript class decorators, Java annotations, PHP attributes).
	for i := 0; i < decl.NamedChildCount(); i++ {
		c, ok := decl.NamedChild(i)
		if ok && c.Kind() == "decorator" {
			decorators = append(decorators, decoratorName(c))
		}
	}
	if e.rules.Decorators != nil {
		decorators = append(decorators, e.rules.Decorators(decl)...)
	}

	rawKind := rule.RawKind
	if rule.Kind != nil {
		rawKind = rule.Kind(decl)
	}

	raw := Raw{
		RawKind:    rawKind,
		Name:       name,
		Span:       span,
		Decorators: decorators,
		Receiver:   receiver,
		Exported:   exported,
		Parent:     parent,
	}
	if e.rules.Async != nil {
		raw.Async = e.rules.Async(decl)
	}
	if e.rules.Static != nil {
		raw.Static = e.rules.Static(decl)
	}
	if e.rules.Abstract != nil {
		raw.Abstract = e.rules.Abstract(decl)
	}
	if !raw.Exported && e.rules.Exported != nil {
		raw.Exported = e.rules.Exported(name, decl)
	}
	if rule.Default != nil {
		raw.HasDefault = rule.Default(decl)
	}

	raw.Doc = e.documentation(wrapper, decl, rule)

	idx := len(*out)
	*out = append(*out, raw)

	if rule.Components != nil {
		for _, b := range rule.Components(decl) {
			*out = append(*out, Raw{
				RawKind:    "field",
				Name:       b.Name,
				Span:       b.Span,
				HasDefault: b.HasDefault,
				Parent:     idx,
			})
		}
	}

	if rule.Nested {
		if body, ok := declBody(decl, rule); ok {
			e.scope(body, idx, classLike(rawKind), inFunction || functionLike(rawKind), out)
		}
	}
}

func declBody(decl grammar.Node, rule DeclRule) (grammar.Node, bool) {
	if rule.Body != nil {
		return rule.Body(decl)
	}
	if rule.BodyField == "" {
		return grammar.Node{}, false
	}
	return decl.ChildByField(rule.BodyField)
}

// functionLike reports whether a raw kind opens a function-body scope.
// Nested declarations inside it still surface; value bindings do not.
func functionLike(rawKind string) bool {
	return rawKind == "function" || rawKind == "method"
}

// classLike reports whether a raw kind opens a class-body scope, where value
// bindings become fields.
func classLike(rawKind string) bool {
	switch rawKind {
	case "class", "record", "struct", "interface", "enum", "trait", "module":
		return true
	}
	return false
}

// siblingAttributes walks the unbroken run of attribute siblings directly
// above a declaration. It returns their names in source order and the
// outermost attribute node, which becomes the anchor for doc comments.
func (e *Extractor) siblingAttributes(node grammar.Node) ([]string, grammar.Node) {
	kinds := make(map[string]bool, len(e.rules.AttributeSiblings))
	for _, k := range e.rules.AttributeSiblings {
		kinds[k] = true
	}
	var names []string
	outermost := node
	cur := node
	for {
		prev, ok := cur.PrevSibling()
		if !ok || !kinds[prev.Kind()] {
			break
		}
		names = append(names, attributeName(prev))
		outermost = prev
		cur = prev
	}
	// Collected bottom-up; restore source order.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, outermost
}

// attributeName extracts the head name of an attribute, e.g.
// "#[derive(Debug)]" -> "derive".
func attributeName(attr grammar.Node) string {
	text := strings.TrimPrefix(attr.Text(), "#")
	text = strings.Trim(text, "[]")
	for i, r := range text {
		if r == '(' || r == ' ' || r == ']' {
			return text[:i]
		}
	}
	return text
}

// documentation resolves the doc text for a declaration: either the leading
// comment run or the language's docstring convention.
func (e *Extractor) documentation(wrapper, decl grammar.Node, rule DeclRule) string {
	if e.rules.Doc.Docstring {
		if ds := bodyDocstring(decl, rule); ds != "" {
			return ds
		}
	}
	return e.leadingComments(wrapper)
}

// leadingComments gathers the unbroken run of comment nodes immediately
// above a declaration, in source order.
func (e *Extractor) leadingComments(node grammar.Node) string {
	if len(e.rules.Doc.CommentKinds) == 0 {
		return ""
	}
	kinds := make(map[string]bool, len(e.rules.Doc.CommentKinds))
	for _, k := range e.rules.Doc.CommentKinds {
		kinds[k] = true
	}

	var parts []string
	limit := node.Span().StartLine
	cur := node
	for {
		prev, ok := cur.PrevSibling()
		if !ok || !kinds[prev.Kind()] {
			break
		}
		ps := prev.Span()
		if ps.EndLine < limit-1 {
			break // a blank line detaches the comment from the declaration
		}
		parts = append(parts, prev.Text())
		limit = ps.StartLine
		cur = prev
	}
	// Collected bottom-up; restore source order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "\n")
}

// bodyDocstring returns the string literal that opens a body block, per the
// Python docstring convention.
func bodyDocstring(decl grammar.Node, rule DeclRule) string {
	body, ok := declBody(decl, rule)
	if !ok {
		return ""
	}
	first, ok := body.NamedChild(0)
	if !ok || first.Kind() != "expression_statement" {
		return ""
	}
	str, ok := first.NamedChild(0)
	if !ok || str.Kind() != "string" {
		return ""
	}
	return str.Text()
}

// decoratorName extracts the decorator's dotted name, without arguments.
func decoratorName(dec grammar.Node) string {
	text := strings.TrimPrefix(dec.Text(), "@")
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// isConstantName reports whether a binding name follows the ALL_CAPS
// constant convention.
func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, ch := range name {
		if ch >= 'a' && ch <= 'z' {
			return false
		}
		if ch >= 'A' && ch <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// tokenInChild reports whether a named child of the given kind contains the
// token text. Used for modifier lists (Java `modifiers`, Rust
// `function_modifiers`).
func tokenInChild(n grammar.Node, childKind, token string) bool {
	c, ok := n.FindChild(childKind)
	if !ok {
		return false
	}
	for _, f := range strings.Fields(c.Text()) {
		if f == token {
			return true
		}
	}
	return false
}
