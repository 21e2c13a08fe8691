package extract

import (
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(newECMARules(lang.TypeScript))
	// JavaScript rides the TypeScript grammar; the tables are identical,
	// TypeScript-only node kinds simply never occur in JavaScript trees.
	register(newECMARules(lang.JavaScript))
}

func newECMARules(l lang.Language) *Rules {
	return &Rules{
		Language: l,
		Decls: map[string]DeclRule{
			"function_declaration": {
				RawKind:   "function",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"generator_function_declaration": {
				RawKind:   "function",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"class_declaration": {
				RawKind:   "class",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"abstract_class_declaration": {
				RawKind:   "class",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"interface_declaration": {
				RawKind:   "interface",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"enum_declaration": {
				RawKind:   "enum",
				NameField: "name",
			},
			"method_definition": {
				RawKind:   "method",
				NameField: "name",
			},
			"method_signature": {
				RawKind:   "method",
				NameField: "name",
			},
			"abstract_method_signature": {
				RawKind:   "method",
				NameField: "name",
			},
			"public_field_definition": {
				RawKind:   "field",
				NameField: "name",
				Default: func(n grammar.Node) bool {
					_, ok := n.ChildByField("value")
					return ok
				},
			},
			"property_signature": {
				RawKind:   "field",
				NameField: "name",
			},
		},
		Bindings: map[string]BindingRule{
			"lexical_declaration":  {Expand: ecmaDeclarators},
			"variable_declaration": {Expand: ecmaDeclarators},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
		},
		Unwrap: ecmaUnwrapExport,
		Async: func(n grammar.Node) bool {
			return n.HasChildToken("async")
		},
		Static: func(n grammar.Node) bool {
			return n.HasChildToken("static")
		},
		Abstract: func(n grammar.Node) bool {
			switch n.Kind() {
			case "abstract_class_declaration", "abstract_method_signature":
				return true
			}
			return n.HasChildToken("abstract")
		},
	}
}

// ecmaUnwrapExport peels export statements so that `export class X {}` yields
// the class itself, tagged exported.
func ecmaUnwrapExport(n grammar.Node) (grammar.Node, []string, bool, bool) {
	if n.Kind() != "export_statement" {
		return grammar.Node{}, nil, false, false
	}
	inner, ok := n.ChildByField("declaration")
	if !ok {
		return grammar.Node{}, nil, false, false
	}
	return inner, nil, true, true
}

// ecmaDeclarators expands a let/const/var statement. Destructuring patterns
// produce no bindings.
func ecmaDeclarators(stmt grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < stmt.NamedChildCount(); i++ {
		d, ok := stmt.NamedChild(i)
		if !ok || d.Kind() != "variable_declarator" {
			continue
		}
		name, ok := d.ChildByField("name")
		if !ok || name.Kind() != "identifier" {
			continue
		}
		_, hasValue := d.ChildByField("value")
		out = append(out, Binding{
			Name:       name.Text(),
			Span:       stmt.Span(),
			HasDefault: hasValue,
		})
	}
	return out
}
