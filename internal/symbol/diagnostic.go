package symbol

import "fmt"

// Severity grades a diagnostic. No diagnostic aborts an ingestion run;
// callers decide whether any severity is build-breaking.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes. These form the error taxonomy of the engine.
const (
	CodeUnknownLanguage        = "unknown_language"
	CodeParseFailure           = "parse_failure"
	CodePartialParse           = "partial_parse"
	CodeQualifiedPathCollision = "qualified_path_collision"
	CodeNormalizationAmbiguity = "normalization_ambiguity"
	CodeFileTooLarge           = "file_too_large"
	CodeTotalSizeExceeded      = "total_size_exceeded"
	CodeInvalidUTF8            = "invalid_utf8"
)

// Diagnostic is one entry on the side channel: parse errors, collisions,
// and normalization ambiguities are reported here, never mixed into the
// symbol stream.
type Diagnostic struct {
	Code     string   `json:"code"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Col      int      `json:"col,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Line, d.Col, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Path, d.Code, d.Message)
}
