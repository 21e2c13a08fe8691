package extract

import (
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.Python,
		Decls: map[string]DeclRule{
			"function_definition": {
				RawKind:   "function",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"class_definition": {
				RawKind:   "class",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
		},
		Bindings: map[string]BindingRule{
			"expression_statement": {Expand: pythonAssignment},
		},
		Doc: DocRules{
			CommentKinds: []string{"comment"},
			Docstring:    true,
		},
		Unwrap: pythonUnwrap,
		Async: func(n grammar.Node) bool {
			return n.HasChildToken("async")
		},
	})
}

// pythonUnwrap peels decorated_definition wrappers, collecting decorator
// names. The wrapper's span covers the decorators, which is what the symbol
// model wants.
func pythonUnwrap(n grammar.Node) (grammar.Node, []string, bool, bool) {
	if n.Kind() != "decorated_definition" {
		return grammar.Node{}, nil, false, false
	}
	var decorators []string
	for i := 0; i < n.NamedChildCount(); i++ {
		c, ok := n.NamedChild(i)
		if ok && c.Kind() == "decorator" {
			decorators = append(decorators, decoratorName(c))
		}
	}
	inner, ok := n.ChildByField("definition")
	if !ok {
		return grammar.Node{}, nil, false, false
	}
	return inner, decorators, false, true
}

// pythonAssignment expands `x = value` and `x: T = value` statements. Only
// plain identifier targets produce bindings; tuple unpacking and attribute
// targets are skipped.
func pythonAssignment(stmt grammar.Node) []Binding {
	expr, ok := stmt.NamedChild(0)
	if !ok || expr.Kind() != "assignment" {
		return nil
	}
	left, ok := expr.ChildByField("left")
	if !ok || left.Kind() != "identifier" {
		return nil
	}
	_, hasValue := expr.ChildByField("right")
	return []Binding{{
		Name:       left.Text(),
		Span:       stmt.Span(),
		HasDefault: hasValue,
	}}
}
