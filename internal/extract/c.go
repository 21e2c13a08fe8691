package extract

import (
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.C,
		Decls: map[string]DeclRule{
			"function_definition": {
				RawKind: "function",
				Name:    cDeclaratorName,
			},
			"struct_specifier": {
				RawKind:   "struct",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"enum_specifier": {
				RawKind:   "enum",
				NameField: "name",
			},
			"type_definition": {
				RawKind: "type_alias",
				Kind:    cTypedefKind,
				Name:    cTypedefName,
				Body:    cTypedefBody,
				Nested:  true,
			},
			"field_declaration": {
				RawKind: "field",
				Name:    cFieldName,
			},
			"preproc_def": {
				RawKind:   "constant",
				NameField: "name",
				Default: func(n grammar.Node) bool {
					_, ok := n.ChildByField("value")
					return ok
				},
			},
		},
		Bindings: map[string]BindingRule{
			"declaration": {Expand: cDeclarationNames},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
		},
	})
}

// cDeclaratorName digs through the declarator chain of a function definition
// to its identifier: `static int *find(...)` -> "find".
func cDeclaratorName(decl grammar.Node) (string, bool) {
	cur := decl
	for {
		next, ok := cur.ChildByField("declarator")
		if !ok {
			break
		}
		cur = next
		switch cur.Kind() {
		case "identifier", "field_identifier":
			return cur.Text(), true
		}
	}
	return "", false
}

// cTypedefKind reports whether a typedef wraps a struct or enum definition.
func cTypedefKind(decl grammar.Node) string {
	t, ok := decl.ChildByField("type")
	if !ok {
		return "type_alias"
	}
	switch t.Kind() {
	case "struct_specifier":
		return "struct"
	case "enum_specifier":
		return "enum"
	}
	return "type_alias"
}

// cTypedefName takes the declared alias, the conventional name for
// `typedef struct {...} name_t;`.
func cTypedefName(decl grammar.Node) (string, bool) {
	d, ok := decl.ChildByField("declarator")
	if !ok {
		return "", false
	}
	if d.Kind() != "type_identifier" {
		return "", false
	}
	return d.Text(), true
}

// cTypedefBody exposes the wrapped struct's fields for nesting.
func cTypedefBody(decl grammar.Node) (grammar.Node, bool) {
	t, ok := decl.ChildByField("type")
	if !ok || t.Kind() != "struct_specifier" {
		return grammar.Node{}, false
	}
	return t.ChildByField("body")
}

// cFieldName resolves one struct member's identifier.
func cFieldName(field grammar.Node) (string, bool) {
	cur := field
	for {
		next, ok := cur.ChildByField("declarator")
		if !ok {
			return "", false
		}
		cur = next
		if cur.Kind() == "field_identifier" {
			return cur.Text(), true
		}
	}
}

// cDeclarationNames expands file-scope variable declarations. Function
// prototypes and abstract declarators produce nothing.
func cDeclarationNames(decl grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < decl.NamedChildCount(); i++ {
		d, ok := decl.NamedChild(i)
		if !ok {
			continue
		}
		switch d.Kind() {
		case "identifier":
			out = append(out, Binding{Name: d.Text(), Span: decl.Span()})
		case "init_declarator":
			name, ok := d.ChildByField("declarator")
			if ok && name.Kind() == "identifier" {
				out = append(out, Binding{
					Name:       name.Text(),
					Span:       decl.Span(),
					HasDefault: true,
				})
			}
		}
	}
	return out
}
