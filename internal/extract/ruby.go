package extract

import (
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.Ruby,
		Decls: map[string]DeclRule{
			"class": {
				RawKind:   "class",
				NameField: "name",
				Body:      rubyBody,
				Nested:    true,
			},
			"module": {
				RawKind:   "module",
				NameField: "name",
				Body:      rubyBody,
				Nested:    true,
			},
			"method": {
				RawKind:   "function",
				NameField: "name",
			},
			"singleton_method": {
				RawKind:   "function",
				NameField: "name",
			},
		},
		Bindings: map[string]BindingRule{
			"assignment": {Expand: rubyAssignment},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
		},
	})
}

// rubyBody returns a class or module body. Empty bodies have no
// body_statement node at all.
func rubyBody(decl grammar.Node) (grammar.Node, bool) {
	return decl.FindChild("body_statement")
}

// rubyAssignment expands `NAME = value` at any scope. Only simple identifier
// and constant targets bind; multiple assignment is skipped.
func rubyAssignment(expr grammar.Node) []Binding {
	left, ok := expr.ChildByField("left")
	if !ok {
		return nil
	}
	if left.Kind() != "identifier" && left.Kind() != "constant" {
		return nil
	}
	return []Binding{{
		Name:       left.Text(),
		Span:       expr.Span(),
		HasDefault: true,
	}}
}
