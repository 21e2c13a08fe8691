package extract

import (
	"strings"

	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.Java,
		Decls: map[string]DeclRule{
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
			"enum_declaration": {
				RawKind:   "enum",
				NameField: "name",
			},
			"record_declaration": {
				RawKind:    "record",
				NameField:  "name",
				BodyField:  "body",
				Nested:     true,
				Components: javaRecordComponents,
			},
			"method_declaration": {
				RawKind:   "method",
				NameField: "name",
			},
			"constructor_declaration": {
				RawKind:   "method",
				NameField: "name",
			},
		},
		Bindings: map[string]BindingRule{
			"field_declaration": {Expand: javaFieldDeclarators},
		},
		Doc: DocRules{
			CommentKinds: []string{"line_comment", "block_comment"},
		},
		Decorators: javaAnnotations,
		Static: func(n grammar.Node) bool {
			return tokenInChild(n, "modifiers", "static")
		},
		Abstract: func(n grammar.Node) bool {
			return tokenInChild(n, "modifiers", "abstract")
		},
		Exported: func(_ string, n grammar.Node) bool {
			return tokenInChild(n, "modifiers", "public")
		},
	})
}

// javaAnnotations collects annotation names from a declaration's modifiers.
func javaAnnotations(decl grammar.Node) []string {
	mods, ok := decl.FindChild("modifiers")
	if !ok {
		return nil
	}
	var out []string
	for i := 0; i < mods.NamedChildCount(); i++ {
		c, ok := mods.NamedChild(i)
		if !ok {
			continue
		}
		if c.Kind() == "marker_annotation" || c.Kind() == "annotation" {
			name := strings.TrimPrefix(c.Text(), "@")
			if j := strings.IndexByte(name, '('); j >= 0 {
				name = name[:j]
			}
			out = append(out, name)
		}
	}
	return out
}

// javaRecordComponents turns a record's header parameters into field
// bindings, in declaration order.
func javaRecordComponents(decl grammar.Node) []Binding {
	params, ok := decl.ChildByField("parameters")
	if !ok {
		return nil
	}
	var out []Binding
	for i := 0; i < params.NamedChildCount(); i++ {
		p, ok := params.NamedChild(i)
		if !ok || p.Kind() != "formal_parameter" {
			continue
		}
		if name := p.FieldText("name"); name != "" {
			out = append(out, Binding{Name: name, Span: p.Span()})
		}
	}
	return out
}

// javaFieldDeclarators expands `int a = 1, b;` into its declarators.
func javaFieldDeclarators(field grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < field.NamedChildCount(); i++ {
		d, ok := field.NamedChild(i)
		if !ok || d.Kind() != "variable_declarator" {
			continue
		}
		if name := d.FieldText("name"); name != "" {
			_, hasValue := d.ChildByField("value")
			out = append(out, Binding{
				Name:       name,
				Span:       field.Span(),
				HasDefault: hasValue,
			})
		}
	}
	return out
}
