// Package export serializes an assembled index as JSON. Serialization is
// lossless: decoding an encoded index reproduces identical symbol records.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/quarry-dev/quarry/internal/symbol"
)

// Document is the serialized form of one ingestion run. Field names mirror
// the in-memory model.
type Document struct {
	RunID       string              `json:"run_id,omitempty"`
	Index       *symbol.Index       `json:"index"`
	Diagnostics []symbol.Diagnostic `json:"diagnostics,omitempty"`
	Stats       symbol.Stats        `json:"stats"`
}

// Write encodes the document as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, creating or truncating it.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, doc); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Read decodes a document produced by Write.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if doc.Index == nil {
		doc.Index = symbol.NewIndex()
	}
	return &doc, nil
}

// ReadFile decodes the document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
