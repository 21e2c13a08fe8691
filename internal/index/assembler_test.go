package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/symbol"
)

// Test Plan for the assembler:
// - Lookup by path and by qualified path after Finalize
// - Cross-file collisions keep both symbols with exactly one diagnostic
// - Re-adding a path replaces the old record wholesale
// - Finalize output is deterministic regardless of Add order

func fileRec(path string, names ...string) *symbol.FileRecord {
	rec := &symbol.FileRecord{
		Path:           path,
		Language:       lang.Python,
		ParseSucceeded: true,
	}
	hash := symbol.ContentHash([]byte(path))
	for i, name := range names {
		rec.Symbols = append(rec.Symbols, symbol.Symbol{
			ID:            symbol.ID(path, hash, i),
			Kind:          symbol.KindFunction,
			Name:          name,
			QualifiedPath: []string{name},
			Span:          symbol.Span{StartLine: i + 1, StartCol: 1, EndLine: i + 1, EndCol: 10},
		})
	}
	return rec
}

func TestFinalizeBuildsPathMap(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	a.Add(fileRec("a.py", "alpha", "beta"))
	a.Add(fileRec("b.py", "gamma"))

	idx, diags := a.Finalize()
	require.Empty(t, diags)
	assert.Equal(t, 2, a.Len())

	rec := idx.File("a.py")
	require.NotNil(t, rec)
	assert.Len(t, rec.Symbols, 2)

	refs := idx.Lookup("gamma")
	require.Len(t, refs, 1)
	assert.Equal(t, "b.py", refs[0].Path)
}

func TestCollisionKeepsBothSymbols(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	a.Add(fileRec("a.py", "shared"))
	a.Add(fileRec("b.py", "shared"))

	idx, diags := a.Finalize()

	refs := idx.Lookup("shared")
	assert.Len(t, refs, 2, "colliding symbols are both retained")

	require.Len(t, diags, 1, "two occurrences produce exactly one diagnostic")
	assert.Equal(t, symbol.CodeQualifiedPathCollision, diags[0].Code)
	assert.Equal(t, "b.py", diags[0].Path, "the later occurrence in path order is flagged")
	assert.Contains(t, diags[0].Message, "a.py")
}

func TestReAddReplacesWholesale(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	a.Add(fileRec("a.py", "old_name"))
	a.Add(fileRec("a.py", "new_name"))

	idx, diags := a.Finalize()
	require.Empty(t, diags)

	assert.Empty(t, idx.Lookup("old_name"))
	assert.Len(t, idx.Lookup("new_name"), 1)

	rec := idx.File("a.py")
	assert.Len(t, rec.Symbols, 1)
}

func TestFinalizeIsOrderIndependent(t *testing.T) {
	t.Parallel()

	build := func(order []string) ([]symbol.Diagnostic, *symbol.Index) {
		a := NewAssembler()
		for _, p := range order {
			a.Add(fileRec(p, "dup"))
		}
		idx, diags := a.Finalize()
		return diags, idx
	}

	d1, _ := build([]string{"a.py", "b.py", "c.py"})
	d2, _ := build([]string{"c.py", "a.py", "b.py"})
	assert.Equal(t, d1, d2, "diagnostics do not depend on producer order")
	assert.Len(t, d1, 2, "three occurrences produce two diagnostics")
}
