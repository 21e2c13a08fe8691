package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.Go,
		Decls: map[string]DeclRule{
			"function_declaration": {
				RawKind:   "function",
				NameField: "name",
				BodyField: "body",
			},
			"method_declaration": {
				RawKind:   "method",
				NameField: "name",
				Receiver:  goReceiverType,
			},
			"type_declaration": {Group: true},
			// `type ID = string` parses as type_alias, not type_spec.
			"type_alias": {
				RawKind:   "type_alias",
				NameField: "name",
			},
			"type_spec": {
				RawKind:   "type_alias",
				Kind:      goTypeKind,
				NameField: "name",
				Body:      goTypeBody,
				Nested:    true,
			},
		},
		Bindings: map[string]BindingRule{
			"const_declaration": {Expand: goValueSpecs("const_spec"), ForceKind: "constant"},
			"var_declaration":   {Expand: goValueSpecs("var_spec"), ForceKind: "variable"},
			"field_declaration": {Expand: goFieldNames},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
		},
		Exported: func(name string, _ grammar.Node) bool {
			r, _ := utf8.DecodeRuneInString(name)
			return unicode.IsUpper(r)
		},
	})
}

// goTypeKind classifies a type_spec by the shape of its type expression.
func goTypeKind(spec grammar.Node) string {
	t, ok := spec.ChildByField("type")
	if !ok {
		return "type_alias"
	}
	switch t.Kind() {
	case "struct_type":
		return "struct"
	case "interface_type":
		return "interface"
	}
	return "type_alias"
}

// goTypeBody exposes a struct's field_declaration_list as the nesting body.
func goTypeBody(spec grammar.Node) (grammar.Node, bool) {
	t, ok := spec.ChildByField("type")
	if !ok || t.Kind() != "struct_type" {
		return grammar.Node{}, false
	}
	return t.FindChild("field_declaration_list")
}

// goReceiverType extracts the bare receiver type name from a method
// declaration, e.g. "(s *Server)" -> "Server".
func goReceiverType(decl grammar.Node) string {
	recv, ok := decl.ChildByField("receiver")
	if !ok {
		return ""
	}
	param, ok := recv.NamedChild(0)
	if !ok {
		return ""
	}
	t, ok := param.ChildByField("type")
	if !ok {
		return ""
	}
	name := strings.TrimLeft(t.Text(), "*")
	// Strip type parameters on generic receivers.
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// goValueSpecs expands grouped const/var declarations; each spec can bind
// several names.
func goValueSpecs(specKind string) func(grammar.Node) []Binding {
	return func(decl grammar.Node) []Binding {
		var out []Binding
		for i := 0; i < decl.NamedChildCount(); i++ {
			spec, ok := decl.NamedChild(i)
			if !ok || spec.Kind() != specKind {
				continue
			}
			_, hasValue := spec.ChildByField("value")
			for j := 0; j < spec.NamedChildCount(); j++ {
				c, ok := spec.NamedChild(j)
				if ok && c.Kind() == "identifier" {
					out = append(out, Binding{
						Name:       c.Text(),
						Span:       spec.Span(),
						HasDefault: hasValue,
					})
				}
			}
		}
		return out
	}
}

// goFieldNames expands one struct field declaration; embedded (unnamed)
// fields are skipped.
func goFieldNames(field grammar.Node) []Binding {
	var out []Binding
	for i := 0; i < field.NamedChildCount(); i++ {
		c, ok := field.NamedChild(i)
		if ok && c.Kind() == "field_identifier" {
			out = append(out, Binding{Name: c.Text(), Span: field.Span()})
		}
	}
	return out
}
