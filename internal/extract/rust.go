package extract

import (
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

func init() {
	register(&Rules{
		Language: lang.Rust,
		Decls: map[string]DeclRule{
			"function_item": {
				RawKind:   "function",
				NameField: "name",
				BodyField: "body",
			},
			"function_signature_item": {
				RawKind:   "function",
				NameField: "name",
			},
			"struct_item": {
				RawKind:   "struct",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"enum_item": {
				RawKind:   "enum",
				NameField: "name",
			},
			"trait_item": {
				RawKind:   "trait",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"mod_item": {
				RawKind:   "module",
				NameField: "name",
				BodyField: "body",
				Nested:    true,
			},
			"impl_item": {
				Transparent:   true,
				BodyField:     "body",
				ReceiverField: "type",
			},
			"field_declaration": {
				RawKind:   "field",
				NameField: "name",
			},
			"const_item": {
				RawKind:   "constant",
				NameField: "name",
				Default: func(n grammar.Node) bool {
					_, ok := n.ChildByField("value")
					return ok
				},
			},
			"static_item": {
				RawKind:   "variable",
				NameField: "name",
			},
		},
		Doc: DocRules{
			CommentKinds: []string{"line_comment", "block_comment"},
		},
		AttributeSiblings: []string{"attribute_item"},
		Async: func(n grammar.Node) bool {
			return tokenInChild(n, "function_modifiers", "async")
		},
		Exported: func(_ string, n grammar.Node) bool {
			_, ok := n.FindChild("visibility_modifier")
			return ok
		},
	})
}
