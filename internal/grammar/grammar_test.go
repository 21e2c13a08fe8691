package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/lang"
)

func TestFor_AllSupportedLanguages(t *testing.T) {
	t.Parallel()

	for _, l := range lang.All() {
		a, ok := For(l)
		require.True(t, ok, "no adapter for %s", l)
		assert.Equal(t, l, a.Language())
	}

	_, ok := For(lang.Unknown)
	assert.False(t, ok)
}

func TestParse_Python(t *testing.T) {
	t.Parallel()

	a, _ := For(lang.Python)
	tree, err := a.Parse([]byte("def greet(name):\n    return f\"hi {name}\"\n"))
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	assert.Equal(t, "module", root.Kind())
	assert.False(t, tree.HasError())

	fn, ok := root.FindChild("function_definition")
	require.True(t, ok)
	assert.Equal(t, "greet", fn.FieldText("name"))

	span := fn.Span()
	assert.Equal(t, 1, span.StartLine)
	assert.Equal(t, 1, span.StartCol)
	assert.Equal(t, 2, span.EndLine)
}

func TestParse_SyntaxErrorKeepsPrefix(t *testing.T) {
	t.Parallel()

	src := []byte("def ok():\n    pass\n\ndef broken(:\n")
	a, _ := For(lang.Python)
	tree, err := a.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.HasError())

	// The valid prefix is still walkable.
	var names []string
	tree.Walk(func(n Node) bool {
		if n.Kind() == "function_definition" {
			names = append(names, n.FieldText("name"))
		}
		return true
	})
	assert.Contains(t, names, "ok")

	spans := tree.ErrorSpans()
	require.NotEmpty(t, spans)
	assert.GreaterOrEqual(t, spans[0].StartLine, 4)
}

func TestWalk_Prune(t *testing.T) {
	t.Parallel()

	a, _ := For(lang.Python)
	tree, err := a.Parse([]byte("class A:\n    def m(self):\n        pass\n"))
	require.NoError(t, err)
	defer tree.Close()

	// Pruning at the class prevents visiting the method.
	var sawMethod bool
	tree.Walk(func(n Node) bool {
		if n.Kind() == "function_definition" {
			sawMethod = true
		}
		return n.Kind() != "class_definition"
	})
	assert.False(t, sawMethod)
}

func TestHasChildToken(t *testing.T) {
	t.Parallel()

	a, _ := For(lang.Python)
	tree, err := a.Parse([]byte("async def fetch():\n    pass\n"))
	require.NoError(t, err)
	defer tree.Close()

	fn, ok := tree.Root().FindChild("function_definition")
	require.True(t, ok)
	assert.True(t, fn.HasChildToken("async"))
	assert.False(t, fn.HasChildToken("static"))
}
