package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/symbol"
)

// Test Plan for the ingestion engine:
// - A mixed-language batch yields one FileRecord per input path
// - Symbol order within a file equals declaration order
// - Unknown language, oversized, and binary files are recorded with
//   diagnostics but never abort the run
// - Syntax errors keep the valid prefix and add partial_parse diagnostics
// - Cross-file collisions surface exactly once
// - Re-running unchanged input reproduces identical symbols
// - Cancellation returns the partial result with the context error

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(opts)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestRunMixedBatch(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "svc.py", Content: []byte("class UserService:\n    def add_user(self, name):\n        pass\n")},
		{Path: "main.go", Content: []byte("package main\n\nfunc main() {}\n")},
		{Path: "widget.ts", Content: []byte("export class Widget {}\n")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	require.Len(t, res.Index.Files, 3)

	py := res.Index.File("svc.py")
	require.NotNil(t, py)
	assert.True(t, py.ParseSucceeded)
	assert.Equal(t, lang.Python, py.Language)
	require.Len(t, py.Symbols, 2)
	assert.Equal(t, "UserService", py.Symbols[0].Name)
	assert.Equal(t, "add_user", py.Symbols[1].Name)
	assert.Equal(t, []string{"UserService", "add_user"}, py.Symbols[1].QualifiedPath)

	refs := res.Index.Lookup("UserService.add_user")
	require.Len(t, refs, 1)
	assert.Equal(t, "svc.py", refs[0].Path)

	assert.Equal(t, 3, res.Stats.TotalFiles)
	assert.Equal(t, 1, res.Stats.ByLanguage[lang.Go])
}

func TestUnknownLanguageIsTerminal(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "README", Content: []byte("hello\n")},
	})
	require.NoError(t, err)

	rec := res.Index.File("README")
	require.NotNil(t, rec)
	assert.False(t, rec.ParseSucceeded)
	assert.Empty(t, rec.Symbols)
	assert.Equal(t, lang.Unknown, rec.Language)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, symbol.CodeUnknownLanguage, res.Diagnostics[0].Code)
}

func TestLanguageFilter(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Options{Languages: []lang.Language{lang.Python}})
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "a.py", Content: []byte("def f():\n    pass\n")},
		{Path: "b.go", Content: []byte("package b\n\nfunc G() {}\n")},
	})
	require.NoError(t, err)

	assert.Len(t, res.Index.File("a.py").Symbols, 1)

	gorec := res.Index.File("b.go")
	require.NotNil(t, gorec, "disabled-language files are still recorded")
	assert.Empty(t, gorec.Symbols)
	assert.Equal(t, lang.Go, gorec.Language)
}

func TestOversizedFile(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Options{MaxFileBytes: 16})
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "big.py", Content: []byte(strings.Repeat("x = 1\n", 100))},
	})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, symbol.CodeFileTooLarge, res.Diagnostics[0].Code)
	assert.False(t, res.Index.File("big.py").ParseSucceeded)
	assert.Equal(t, lang.Python, res.Index.File("big.py").Language,
		"size gating does not hide the file's language")
}

func TestTotalSizeBudget(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Options{MaxFileBytes: 64, MaxTotalBytes: 20})
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "a.py", Content: []byte("def f():\n    pass\n")}, // 18 bytes, fits
		{Path: "b.py", Content: []byte("def g():\n    pass\n")}, // over budget
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Index.File("a.py").Symbols)
	assert.Empty(t, res.Index.File("b.py").Symbols)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, symbol.CodeTotalSizeExceeded, res.Diagnostics[0].Code)
	assert.Equal(t, "b.py", res.Diagnostics[0].Path)
	assert.Equal(t, lang.Python, res.Index.File("b.py").Language)
}

func TestBinaryContent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "blob.py", Content: []byte{0xff, 0xfe, 0x00, 0x01}},
	})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, symbol.CodeInvalidUTF8, res.Diagnostics[0].Code)
	assert.Equal(t, lang.Python, res.Index.File("blob.py").Language)
}

func TestSyntaxErrorKeepsPrefix(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "broken.py", Content: []byte("def before():\n    pass\n\ndef broken(:\n")},
	})
	require.NoError(t, err)

	rec := res.Index.File("broken.py")
	require.NotNil(t, rec)

	names := make([]string, 0, len(rec.Symbols))
	for _, s := range rec.Symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "before")

	require.NotEmpty(t, rec.ParseErrors)
	assert.Equal(t, symbol.CodePartialParse, rec.ParseErrors[0].Code)
	assert.GreaterOrEqual(t, rec.ParseErrors[0].Line, 4, "diagnostic points at or after the broken line")
}

func TestCrossFileCollision(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "a.py", Content: []byte("def shared():\n    pass\n")},
		{Path: "b.py", Content: []byte("def shared():\n    pass\n")},
	})
	require.NoError(t, err)

	assert.Len(t, res.Index.Lookup("shared"), 2)

	var collisions []symbol.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == symbol.CodeQualifiedPathCollision {
			collisions = append(collisions, d)
		}
	}
	require.Len(t, collisions, 1)
}

func TestFunctionLocalsStayOutOfIndex(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(context.Background(), []FileInput{
		{Path: "a.py", Content: []byte("def f():\n    local_x = 1\n    return local_x\n")},
		{Path: "b.py", Content: []byte("def f():\n    local_x = 2\n    return local_x\n")},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Index.Lookup("f.local_x"),
		"function locals are not symbols and cannot collide across files")

	// The duplicated f collides; the locals manufacture nothing beyond it.
	var collisions []symbol.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == symbol.CodeQualifiedPathCollision {
			collisions = append(collisions, d)
		}
	}
	require.Len(t, collisions, 1)

	require.Len(t, res.Index.File("a.py").Symbols, 1)
	assert.Equal(t, "f", res.Index.File("a.py").Symbols[0].Name)
}

func TestIdempotentRuns(t *testing.T) {
	t.Parallel()

	files := []FileInput{
		{Path: "svc.py", Content: []byte("class A:\n    def m(self):\n        pass\n")},
	}

	e := newTestEngine(t, DefaultOptions())
	r1, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	r2, err := e.Run(context.Background(), files)
	require.NoError(t, err)

	assert.NotEqual(t, r1.RunID, r2.RunID)
	assert.Equal(t, r1.Index.File("svc.py").Symbols, r2.Index.File("svc.py").Symbols,
		"unchanged input reproduces identical symbol records")
}

func TestDocumentationToggle(t *testing.T) {
	t.Parallel()

	files := []FileInput{
		{Path: "a.py", Content: []byte("def f():\n    \"\"\"Doc text.\"\"\"\n    pass\n")},
	}

	with := newTestEngine(t, DefaultOptions())
	res, err := with.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, "Doc text.", res.Index.File("a.py").Symbols[0].Documentation)

	opts := DefaultOptions()
	opts.IncludeDocumentation = false
	without := newTestEngine(t, opts)
	res, err = without.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Empty(t, res.Index.File("a.py").Symbols[0].Documentation)
}

func TestCancelledRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, DefaultOptions())
	res, err := e.Run(ctx, []FileInput{
		{Path: "a.py", Content: []byte("def f():\n    pass\n")},
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "the partial result is still returned")
}

func TestNewEngineRejectsNegativeConcurrency(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Options{MaxConcurrency: -1})
	assert.Error(t, err)
}
