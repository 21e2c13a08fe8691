package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/lang"
)

// Test Plan for the Python rules:
// - Classes, methods, and nesting via the enclosing-declaration stack
// - Docstrings win over leading comments
// - Decorators collected from decorated_definition wrappers, span included
// - async def tagged
// - ALL_CAPS assignments become constants, others variables
// - Class-body assignments become fields
// - Tuple unpacking produces no bindings

func pythonRaws(t *testing.T, src string) []Raw {
	t.Helper()
	a, ok := grammar.For(lang.Python)
	require.True(t, ok)
	tree, err := a.Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	ex, ok := ForLanguage(lang.Python)
	require.True(t, ok)
	return ex.Extract(tree)
}

func findRaw(raws []Raw, name string) *Raw {
	for i := range raws {
		if raws[i].Name == name {
			return &raws[i]
		}
	}
	return nil
}

func TestPython_ClassWithMethods(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `class UserService:
    """Manages users."""

    def add_user(self, name):
        return name

    def remove_user(self, name):
        pass

def standalone():
    pass
`)

	svc := findRaw(raws, "UserService")
	require.NotNil(t, svc)
	assert.Equal(t, "class", svc.RawKind)
	assert.Equal(t, -1, svc.Parent)
	assert.Equal(t, `"""Manages users."""`, svc.Doc)

	add := findRaw(raws, "add_user")
	require.NotNil(t, add)
	assert.Equal(t, "function", add.RawKind)
	assert.Equal(t, 0, add.Parent, "method parents to the class record")

	sa := findRaw(raws, "standalone")
	require.NotNil(t, sa)
	assert.Equal(t, -1, sa.Parent)

	// Declaration order is preserved.
	var names []string
	for _, r := range raws {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"UserService", "add_user", "remove_user", "standalone"}, names)
}

func TestPython_Decorators(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `from dataclasses import dataclass

@dataclass
@other.wrapper(arg=1)
class Point:
    x: int = 0
    y: int = 0
`)

	pt := findRaw(raws, "Point")
	require.NotNil(t, pt)
	assert.Equal(t, []string{"dataclass", "other.wrapper"}, pt.Decorators)
	// The span starts at the first decorator, not the class keyword.
	assert.Equal(t, 3, pt.Span.StartLine)

	x := findRaw(raws, "x")
	require.NotNil(t, x)
	assert.Equal(t, "field", x.RawKind)
	assert.True(t, x.HasDefault)
	pi := 0
	for i := range raws {
		if raws[i].Name == "Point" {
			pi = i
		}
	}
	assert.Equal(t, pi, x.Parent)
}

func TestPython_AsyncFunction(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `async def fetch_data(url):
    """Fetch a URL."""
    return url
`)

	fd := findRaw(raws, "fetch_data")
	require.NotNil(t, fd)
	assert.Equal(t, "function", fd.RawKind)
	assert.True(t, fd.Async)
	assert.Equal(t, `"""Fetch a URL."""`, fd.Doc)
}

func TestPython_ConstantsAndVariables(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `MAX_RETRIES = 5
database_url = "postgres://localhost"
a, b = 1, 2
`)

	mr := findRaw(raws, "MAX_RETRIES")
	require.NotNil(t, mr)
	assert.Equal(t, "constant", mr.RawKind)
	assert.True(t, mr.HasDefault)

	db := findRaw(raws, "database_url")
	require.NotNil(t, db)
	assert.Equal(t, "variable", db.RawKind)

	// Tuple unpacking is anonymous for our purposes.
	assert.Nil(t, findRaw(raws, "a"))
	assert.Nil(t, findRaw(raws, "b"))
	assert.Len(t, raws, 2)
}

func TestPython_LeadingComment(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `# Retry budget for the client.
# Tuned by hand.
MAX_RETRIES = 5

# Detached by a blank line.

timeout = 30
`)

	mr := findRaw(raws, "MAX_RETRIES")
	require.NotNil(t, mr)
	assert.Equal(t, "# Retry budget for the client.\n# Tuned by hand.", mr.Doc)

	to := findRaw(raws, "timeout")
	require.NotNil(t, to)
	assert.Empty(t, to.Doc)
}

func TestPython_SyntaxErrorKeepsPrefix(t *testing.T) {
	t.Parallel()

	raws := pythonRaws(t, `def before():
    pass

def broken(:
`)

	assert.NotNil(t, findRaw(raws, "before"))
}
