package extract

import (
	"strings"

	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.PHP,
		Decls: map[string]DeclRule{
			"function_definition": {
				RawKind:   "function",
				NameField: "name",
			},
			"class_declaration": {
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
			"trait_declaration": {
				RawKind:   "trait",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"enum_declaration": {
				RawKind:   "enum",
				NameField: "name",
			},
			"method_declaration": {
				RawKind:   "method",
				NameField: "name",
			},
		},
		Bindings: map[string]BindingRule{
			"property_declaration": {Expand: phpPropertyNames},
			"const_declaration":    {Expand: phpConstNames, ForceKind: "constant"},
			"expression_statement": {Expand: phpAssignment},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
		},
		Decorators: phpAttributes,
		Static: func(n grammar.Node) bool {
			_, ok := n.FindChild("static_modifier")
			return ok
		},
		Abstract: func(n grammar.Node) bool {
			_, ok := n.FindChild("abstract_modifier")
			return ok
		},
		Exported: func(_ string, n grammar.Node) bool {
			v, ok := n.FindChild("visibility_modifier")
			return ok && v.Text() == "public"
		},
	})
}

// phpAttributes collects #[Attr] attribute names from a declaration.
func phpAttributes(decl grammar.Node) []string {
	list, ok := decl.FindChild("attribute_list")
	if !ok {
		return nil
	}
	var out []string
	for i := 0; i < list.NamedChildCount(); i++ {
		group, ok := list.NamedChild(i)
		if !ok || group.Kind() != "attribute_group" {
			continue
		}
		for j := 0; j < group.NamedChildCount(); j++ {
			attr, ok := group.NamedChild(j)
			if !ok || attr.Kind() != "attribute" {
				continue
			}
			name := attr.Text()
			if k := strings.IndexByte(name, '('); k >= 0 {
				name = name[:k]
			}
			out = append(out, name)
		}
	}
	return out
}

// phpPropertyNames expands a property declaration's elements, trimming the
// leading $ sigil.
func phpPropertyNames(decl grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < decl.NamedChildCount(); i++ {
		el, ok := decl.NamedChild(i)
		if !ok || el.Kind() != "property_element" {
			continue
		}
		v, ok := el.FindChild("variable_name")
		if !ok {
			v, ok = el.ChildByField("name")
		}
		if !ok {
			continue
		}
		_, hasValue := el.ChildByField("default_value")
		out = append(out, Binding{
			Name:       strings.TrimPrefix(v.Text(), "$"),
			Span:       decl.Span(),
			HasDefault: hasValue,
		})
	}
	return out
}

// phpConstNames expands class and file constants.
func phpConstNames(decl grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < decl.NamedChildCount(); i++ {
		el, ok := decl.NamedChild(i)
		if !ok || el.Kind() != "const_element" {
			continue
		}
		name, ok := el.NamedChild(0)
		if !ok {
			continue
		}
		out = append(out, Binding{
			Name:       name.Text(),
			Span:       decl.Span(),
			HasDefault: true,
		})
	}
	return out
}

// phpAssignment captures top-level `$name = value;` statements.
func phpAssignment(stmt grammar.Node) []Binding {
	expr, ok := stmt.NamedChild(0)
	if !ok || expr.Kind() != "assignment_expression" {
		return nil
	}
	left, ok := expr.ChildByField("left")
	if !ok || left.Kind() != "variable_name" {
		return nil
	}
	return []Binding{{
		Name:       strings.TrimPrefix(left.Text(), "$"),
		Span:       stmt.Span(),
		HasDefault: true,
	}}
}
