package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/export"
	"github.com/quarry-dev/quarry/internal/ingest"
)

// Test Plan for the SQLite store:
// - Save then Load reproduces symbols, parse errors, and diagnostics
// - Saving again replaces the previous snapshot wholesale
// - Loading an empty store yields an empty document

func ingestFixture(t *testing.T) *export.Document {
	t.Helper()
	e, err := ingest.NewEngine(ingest.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(e.Close)

	res, err := e.Run(context.Background(), []ingest.FileInput{
		{Path: "svc.py", Content: []byte("class UserService:\n    \"\"\"Service.\"\"\"\n\n    def add_user(self, name):\n        pass\n")},
		{Path: "broken.py", Content: []byte("def before():\n    pass\n\ndef broken(:\n")},
	})
	require.NoError(t, err)
	return &export.Document{RunID: res.RunID, Index: res.Index, Diagnostics: res.Diagnostics, Stats: res.Stats}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quarry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	doc := ingestFixture(t)
	s := openStore(t)
	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, doc.RunID, got.RunID)
	require.Len(t, got.Index.Files, 2)

	want := doc.Index.File("svc.py")
	have := got.Index.File("svc.py")
	require.NotNil(t, have)
	assert.Equal(t, want.Symbols, have.Symbols, "symbols reload field-for-field")
	assert.Equal(t, want.Language, have.Language)
	assert.Equal(t, want.ParseSucceeded, have.ParseSucceeded)

	broken := got.Index.File("broken.py")
	require.NotNil(t, broken)
	assert.Equal(t, doc.Index.File("broken.py").ParseErrors, broken.ParseErrors)

	assert.Equal(t, doc.Diagnostics, got.Diagnostics)
	assert.Equal(t, doc.Index.Paths, got.Index.Paths)
	assert.Equal(t, doc.Stats, got.Stats)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	require.NoError(t, s.Save(ingestFixture(t)))

	e, err := ingest.NewEngine(ingest.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	res, err := e.Run(context.Background(), []ingest.FileInput{
		{Path: "only.go", Content: []byte("package only\n\nfunc F() {}\n")},
	})
	require.NoError(t, err)
	require.NoError(t, s.Save(&export.Document{RunID: res.RunID, Index: res.Index, Stats: res.Stats}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, got.Index.Files, 1)
	assert.NotNil(t, got.Index.File("only.go"))
	assert.Nil(t, got.Index.File("svc.py"))
}

func TestLoadEmptyStore(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.RunID)
	assert.Empty(t, got.Index.Files)
}
