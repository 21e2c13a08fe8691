package lang

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
)

// sniffLimit caps how much content Detect inspects for extensionless files.
const sniffLimit = 512

var byExtension = map[string]Language{
	".py":   Python,
	".pyi":  Python,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".go":   Go,
	".java": Java,
	".rb":   Ruby,
	".rake": Ruby,
	".rs":   Rust,
	".c":    C,
	".h":    C,
	".php":  PHP,
}

// Extensions returns every file extension with a known language mapping,
// sorted, with the leading dot.
func Extensions() []string {
	out := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Detect classifies a file from its path and the leading bytes of its
// content. The extension mapping is authoritative when it matches;
// content sniffing (shebang lines, characteristic markers) is the fallback
// for extensionless or unrecognized files.
func Detect(path string, content []byte) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := byExtension[ext]; ok {
		return l
	}
	return sniff(content)
}

// sniff inspects the first bytes of content for a shebang or a marker that
// identifies the language without an extension.
func sniff(content []byte) Language {
	if len(content) > sniffLimit {
		content = content[:sniffLimit]
	}
	head := string(content)

	if strings.HasPrefix(head, "#!") {
		line := head
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		switch {
		case strings.Contains(line, "python"):
			return Python
		case strings.Contains(line, "ruby"):
			return Ruby
		case strings.Contains(line, "node"):
			return JavaScript
		case strings.Contains(line, "php"):
			return PHP
		}
		return Unknown
	}

	if bytes.HasPrefix(bytes.TrimLeft(content, " \t\r\n"), []byte("<?php")) {
		return PHP
	}

	return Unknown
}
