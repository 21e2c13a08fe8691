// Package lang classifies source files into the closed set of languages the
// ingestion engine understands.
package lang

import "fmt"

// Language identifies one supported source language.
type Language string

const (
	Python     Language = "python"
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Go         Language = "go"
	Java       Language = "java"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
	C          Language = "c"
	PHP        Language = "php"
	Unknown    Language = "unknown"
)

// All lists every supported language, in stable order. Unknown is not a
// member; it is a terminal classification, not a language.
func All() []Language {
	return []Language{Python, TypeScript, JavaScript, Go, Java, Ruby, Rust, C, PHP}
}

// Parse converts a language identifier string (as it appears in configuration)
// to a Language. Unrecognized identifiers are an error so that a bad config
// surfaces before any file is processed.
func Parse(s string) (Language, error) {
	for _, l := range All() {
		if string(l) == s {
			return l, nil
		}
	}
	return Unknown, fmt.Errorf("unsupported language %q", s)
}

func (l Language) String() string { return string(l) }
