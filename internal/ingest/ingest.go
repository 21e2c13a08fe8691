// Package ingest runs the full pipeline over a batch of files: detect,
// parse, extract, normalize, assemble. Files are processed by a bounded
// worker pool and assembled by a single sequential pass, so symbol order
// within a file and collision diagnostics are deterministic.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
	"golang.org/x/sync/errgroup"

	"github.com/quarry-dev/quarry/internal/extract"
	"github.com/quarry-dev/quarry/internal/grammar"
	"github.com/quarry-dev/quarry/internal/index"
	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/normalize"
	"github.com/quarry-dev/quarry/internal/symbol"
)

const (
	// DefaultMaxFileBytes caps a single file; larger files are recorded but
	// not parsed.
	DefaultMaxFileBytes = 10 * 1024 * 1024
	// DefaultMaxTotalBytes caps the cumulative parsed bytes of one run.
	DefaultMaxTotalBytes = 50 * 1024 * 1024

	parseCacheCapacity = 8192
)

// Options is the configuration surface the driver hands to the engine.
type Options struct {
	// Languages restricts processing to the given set; empty enables all
	// supported languages.
	Languages []lang.Language
	// MaxConcurrency bounds the worker pool; zero means the number of CPUs.
	MaxConcurrency       int
	IncludeDocumentation bool
	MaxFileBytes         int64
	MaxTotalBytes        int64
}

// DefaultOptions enables every language with documentation included.
func DefaultOptions() Options {
	return Options{
		IncludeDocumentation: true,
		MaxFileBytes:         DefaultMaxFileBytes,
		MaxTotalBytes:        DefaultMaxTotalBytes,
	}
}

// FileInput is one (path, content) pair delivered by the driver. The engine
// never walks directories itself.
type FileInput struct {
	Path    string
	Content []byte
}

// Result is the outcome of one ingestion run. The run always completes and
// returns a full index plus diagnostics; callers decide whether any
// diagnostic is build-breaking.
type Result struct {
	RunID       string
	Index       *symbol.Index
	Diagnostics []symbol.Diagnostic
	Stats       symbol.Stats
}

// cachedParse is the path-independent part of a file's pipeline output,
// keyed by (language, content hash). Re-ingesting unchanged content skips
// the parse.
type cachedParse struct {
	raws       []extract.Raw
	errorSpans []symbol.Span
	failed     bool
}

// Engine ingests file batches. Safe for concurrent use by a single run at a
// time; the parse cache is shared across runs.
type Engine struct {
	opts    Options
	enabled map[lang.Language]bool
	cache   otter.Cache[string, cachedParse]
}

// NewEngine validates options and builds the parse cache.
func NewEngine(opts Options) (*Engine, error) {
	if opts.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max concurrency must not be negative, got %d", opts.MaxConcurrency)
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	if opts.MaxTotalBytes <= 0 {
		opts.MaxTotalBytes = DefaultMaxTotalBytes
	}

	enabled := make(map[lang.Language]bool)
	if len(opts.Languages) == 0 {
		for _, l := range lang.All() {
			enabled[l] = true
		}
	} else {
		for _, l := range opts.Languages {
			enabled[l] = true
		}
	}

	cache, err := otter.MustBuilder[string, cachedParse](parseCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build parse cache: %w", err)
	}

	return &Engine{opts: opts, enabled: enabled, cache: cache}, nil
}

// Close releases the parse cache.
func (e *Engine) Close() {
	e.cache.Close()
}

// fileOutcome pairs one input's record with its diagnostics, indexed by
// input position so producer scheduling never reorders output.
type fileOutcome struct {
	record *symbol.FileRecord
	diags  []symbol.Diagnostic
}

// Run processes the batch and assembles the index. On cancellation the
// in-flight files run to completion, unstarted files are skipped, and the
// partial result is returned together with the context error.
func (e *Engine) Run(ctx context.Context, files []FileInput) (*Result, error) {
	outcomes := make([]fileOutcome, len(files))

	// The total-size budget is applied in input order before workers start,
	// so the set of skipped files does not depend on scheduling.
	budget := e.opts.MaxTotalBytes
	skipped := make([]bool, len(files))
	for i, f := range files {
		n := int64(len(f.Content))
		if n > budget {
			skipped[i] = true
			outcomes[i] = fileOutcome{
				record: &symbol.FileRecord{Path: f.Path, Language: lang.Detect(f.Path, f.Content)},
				diags: []symbol.Diagnostic{{
					Code:     symbol.CodeTotalSizeExceeded,
					Path:     f.Path,
					Severity: symbol.SeverityWarning,
					Message:  fmt.Sprintf("run size budget exhausted (%d bytes remaining, file is %d); file skipped", budget, n),
				}},
			}
			continue
		}
		budget -= n
	}

	g := new(errgroup.Group)
	g.SetLimit(e.opts.MaxConcurrency)
	for i := range files {
		if skipped[i] {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = e.processFile(files[i])
			return nil
		})
	}
	_ = g.Wait()

	// Single aggregating consumer: assembly needs a total order over
	// observed symbols for the collision check.
	asm := index.NewAssembler()
	var diags []symbol.Diagnostic
	for i := range outcomes {
		if outcomes[i].record == nil {
			continue // not started before cancellation
		}
		asm.Add(outcomes[i].record)
		diags = append(diags, outcomes[i].diags...)
	}
	idx, collisions := asm.Finalize()
	diags = append(diags, collisions...)

	res := &Result{
		RunID:       uuid.NewString(),
		Index:       idx,
		Diagnostics: diags,
		Stats:       idx.ComputeStats(),
	}
	return res, ctx.Err()
}

func (e *Engine) processFile(f FileInput) fileOutcome {
	// Detection runs before the size and encoding gates so rejected files
	// still carry their real language in per-language stats.
	language := lang.Detect(f.Path, f.Content)
	rec := &symbol.FileRecord{Path: f.Path, Language: language}

	if int64(len(f.Content)) > e.opts.MaxFileBytes {
		d := symbol.Diagnostic{
			Code:     symbol.CodeFileTooLarge,
			Path:     f.Path,
			Severity: symbol.SeverityWarning,
			Message:  fmt.Sprintf("file is %d bytes, limit is %d; not parsed", len(f.Content), e.opts.MaxFileBytes),
		}
		return fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}

	if !utf8.Valid(f.Content) {
		d := symbol.Diagnostic{
			Code:     symbol.CodeInvalidUTF8,
			Path:     f.Path,
			Severity: symbol.SeverityWarning,
			Message:  "content is not valid UTF-8; not parsed",
		}
		return fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}

	if language == lang.Unknown {
		// A terminal classification, not an error.
		d := symbol.Diagnostic{
			Code:     symbol.CodeUnknownLanguage,
			Path:     f.Path,
			Severity: symbol.SeverityWarning,
			Message:  "language not recognized; file recorded without symbols",
		}
		return fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}
	if !e.enabled[language] {
		return fileOutcome{record: rec}
	}

	hash := symbol.ContentHash(f.Content)
	parsed, ok := e.cache.Get(cacheKey(language, hash))
	if !ok {
		var outcome fileOutcome
		parsed, outcome = e.parse(f, language)
		if outcome.record != nil {
			return outcome
		}
		e.cache.Set(cacheKey(language, hash), parsed)
	}

	var diags []symbol.Diagnostic
	rec.ParseSucceeded = !parsed.failed
	for _, span := range parsed.errorSpans {
		d := symbol.Diagnostic{
			Code:     symbol.CodePartialParse,
			Path:     f.Path,
			Line:     span.StartLine,
			Col:      span.StartCol,
			Severity: symbol.SeverityWarning,
			Message:  "syntax error; symbols from the valid region are kept",
		}
		rec.ParseErrors = append(rec.ParseErrors, d)
		diags = append(diags, d)
	}

	syms, normDiags := normalize.File(f.Path, language, hash, parsed.raws, normalize.Options{
		IncludeDocumentation: e.opts.IncludeDocumentation,
	})
	rec.Symbols = syms
	diags = append(diags, normDiags...)

	return fileOutcome{record: rec, diags: diags}
}

// parse runs the grammar adapter and extractor. On a total parse failure it
// returns a terminal outcome instead of a cache entry.
func (e *Engine) parse(f FileInput, language lang.Language) (cachedParse, fileOutcome) {
	adapter, ok := grammar.For(language)
	if !ok {
		rec := &symbol.FileRecord{Path: f.Path, Language: language}
		d := symbol.Diagnostic{
			Code:     symbol.CodeParseFailure,
			Path:     f.Path,
			Severity: symbol.SeverityError,
			Message:  fmt.Sprintf("no grammar adapter for %s", language),
		}
		return cachedParse{}, fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}

	tree, err := adapter.Parse(f.Content)
	if err != nil {
		rec := &symbol.FileRecord{Path: f.Path, Language: language}
		d := symbol.Diagnostic{
			Code:     symbol.CodeParseFailure,
			Path:     f.Path,
			Severity: symbol.SeverityError,
			Message:  fmt.Sprintf("parse failed: %v", err),
		}
		return cachedParse{}, fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}
	defer tree.Close()

	extractor, ok := extract.ForLanguage(language)
	if !ok {
		rec := &symbol.FileRecord{Path: f.Path, Language: language}
		d := symbol.Diagnostic{
			Code:     symbol.CodeParseFailure,
			Path:     f.Path,
			Severity: symbol.SeverityError,
			Message:  fmt.Sprintf("no extraction rules for %s", language),
		}
		return cachedParse{}, fileOutcome{record: rec, diags: []symbol.Diagnostic{d}}
	}

	parsed := cachedParse{raws: extractor.Extract(tree)}
	if tree.HasError() {
		parsed.errorSpans = tree.ErrorSpans()
		// The tree was built; symbols from valid regions survive.
		parsed.failed = len(parsed.raws) == 0
	}
	return parsed, fileOutcome{}
}

func cacheKey(l lang.Language, contentHash string) string {
	return string(l) + ":" + contentHash
}
