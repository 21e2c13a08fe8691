package normalize

import "strings"

// CleanDoc strips language-specific comment and docstring delimiters and
// normalizes indentation, so triple-quoted docstrings, slash comments, hash
// comments, and block comments all yield the same plain-text shape.
func CleanDoc(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}

	switch {
	case hasTripleQuote(doc):
		doc = stripTripleQuote(doc)
	case strings.HasPrefix(doc, "/*"):
		doc = stripBlockComment(doc)
	case strings.HasPrefix(doc, "=begin"):
		doc = stripEmbeddedDoc(doc)
	default:
		doc = stripLineComments(doc)
	}
	return strings.TrimSpace(dedent(doc))
}

var tripleQuotes = []string{`"""`, "'''"}

func hasTripleQuote(doc string) bool {
	s := strings.TrimLeft(doc, "rRbBuUfF")
	for _, q := range tripleQuotes {
		if strings.HasPrefix(s, q) {
			return true
		}
	}
	return false
}

func stripTripleQuote(doc string) string {
	doc = strings.TrimLeft(doc, "rRbBuUfF")
	for _, q := range tripleQuotes {
		if strings.HasPrefix(doc, q) {
			doc = strings.TrimPrefix(doc, q)
			doc = strings.TrimSuffix(doc, q)
			return doc
		}
	}
	return doc
}

// stripEmbeddedDoc removes Ruby =begin/=end fence lines.
func stripEmbeddedDoc(doc string) string {
	lines := strings.Split(doc, "\n")
	var kept []string
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "=begin" || t == "=end" || strings.HasPrefix(t, "=begin ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func stripBlockComment(doc string) string {
	doc = strings.TrimPrefix(doc, "/**")
	doc = strings.TrimPrefix(doc, "/*")
	doc = strings.TrimSuffix(doc, "*/")
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		// Javadoc-style continuation stars.
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			trimmed = strings.TrimPrefix(trimmed, " ")
			lines[i] = trimmed
		}
	}
	return strings.Join(lines, "\n")
}

// linePrefixes in longest-first order so `///` wins over `//`.
var linePrefixes = []string{"///", "//!", "//", "#"}

func stripLineComments(doc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		for _, p := range linePrefixes {
			if strings.HasPrefix(trimmed, p) {
				trimmed = strings.TrimPrefix(trimmed, p)
				trimmed = strings.TrimPrefix(trimmed, " ")
				break
			}
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

// dedent removes the longest common leading whitespace from non-blank lines
// after the first, which in a docstring sits flush against the delimiter.
func dedent(doc string) string {
	lines := strings.Split(doc, "\n")
	if len(lines) <= 1 {
		return doc
	}
	margin := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return doc
	}
	for i, line := range lines[1:] {
		if len(line) >= margin {
			lines[i+1] = line[margin:]
		} else {
			lines[i+1] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
