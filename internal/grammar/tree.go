package grammar

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/quarry-dev/quarry/internal/symbol"
)

// Tree owns a parsed syntax tree plus the source it was parsed from.
type Tree struct {
	inner  *sitter.Tree
	source []byte
}

// Close releases the underlying tree. The Tree must not be used afterwards.
func (t *Tree) Close() { t.inner.Close() }

// Root returns the root node.
func (t *Tree) Root() Node {
	return Node{n: t.inner.RootNode(), src: t.source}
}

// HasError reports whether any part of the source failed to parse.
func (t *Tree) HasError() bool {
	return t.inner.RootNode().HasError()
}

// maxErrorSpans bounds how many damaged regions are reported per file.
const maxErrorSpans = 16

// ErrorSpans collects the positions of error and missing nodes, in source
// order, for PartialParse diagnostics.
func (t *Tree) ErrorSpans() []symbol.Span {
	var spans []symbol.Span
	t.Walk(func(n Node) bool {
		if len(spans) >= maxErrorSpans {
			return false
		}
		if n.IsError() || n.IsMissing() {
			spans = append(spans, n.Span())
			return false
		}
		// Only descend where an error is known to hide.
		return n.hasError()
	})
	return spans
}

// Walk traverses the tree pre-order. Returning false from visit prunes the
// node's subtree.
func (t *Tree) Walk(visit func(Node) bool) {
	walk(t.Root(), visit)
}

func walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		child, ok := n.Child(i)
		if !ok {
			continue
		}
		walk(child, visit)
	}
}

// Node is one syntax-tree node: a kind, a span, its text, and ordered
// children. The zero Node is invalid.
type Node struct {
	n   *sitter.Node
	src []byte
}

// Kind returns the grammar's node kind name.
func (n Node) Kind() string { return n.n.Kind() }

// Span converts tree-sitter's 0-indexed, end-exclusive positions to the
// 1-indexed inclusive convention of the symbol model.
func (n Node) Span() symbol.Span {
	start := n.n.StartPosition()
	end := n.n.EndPosition()
	endCol := int(end.Column)
	if endCol < 1 {
		endCol = 1
	}
	return symbol.Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    endCol,
	}
}

// Text returns the source text the node covers.
func (n Node) Text() string {
	return string(n.src[n.n.StartByte():n.n.EndByte()])
}

// ChildCount counts all children, named and anonymous.
func (n Node) ChildCount() int { return int(n.n.ChildCount()) }

// Child returns the i-th child.
func (n Node) Child(i int) (Node, bool) {
	c := n.n.Child(uint(i))
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, src: n.src}, true
}

// NamedChildCount counts children that carry grammar meaning (no
// punctuation or keyword tokens).
func (n Node) NamedChildCount() int { return int(n.n.NamedChildCount()) }

// NamedChild returns the i-th named child.
func (n Node) NamedChild(i int) (Node, bool) {
	c := n.n.NamedChild(uint(i))
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, src: n.src}, true
}

// ChildByField returns the child bound to a grammar field, e.g. "name".
func (n Node) ChildByField(field string) (Node, bool) {
	c := n.n.ChildByFieldName(field)
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, src: n.src}, true
}

// FieldText returns the text of the child bound to field, or "".
func (n Node) FieldText(field string) string {
	c, ok := n.ChildByField(field)
	if !ok {
		return ""
	}
	return c.Text()
}

// PrevSibling returns the node immediately before n under the same parent.
func (n Node) PrevSibling() (Node, bool) {
	s := n.n.PrevSibling()
	if s == nil {
		return Node{}, false
	}
	return Node{n: s, src: n.src}, true
}

// IsNamed reports whether the node is a named grammar node.
func (n Node) IsNamed() bool { return n.n.IsNamed() }

// IsError reports whether the node is a parse error node.
func (n Node) IsError() bool { return n.n.IsError() }

// IsMissing reports whether the parser inserted this node to recover.
func (n Node) IsMissing() bool { return n.n.IsMissing() }

func (n Node) hasError() bool { return n.n.HasError() }

// FindChild returns the first direct child of the given kind.
func (n Node) FindChild(kind string) (Node, bool) {
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if ok && c.Kind() == kind {
			return c, true
		}
	}
	return Node{}, false
}

// HasChildToken reports whether any direct child's text equals token.
// Used to detect keyword qualifiers such as "async" or "static".
func (n Node) HasChildToken(token string) bool {
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if ok && !c.IsNamed() && c.Text() == token {
			return true
		}
	}
	return false
}
