// Package normalize maps raw per-language declaration records onto the
// unified symbol model. The mapping is table-driven per (language, raw kind)
// pair: adding a language means adding table data, not control flow.
package normalize

import (
	"fmt"
	"strings"

	"github.com/quarry-dev/quarry/internal/extract"
	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/symbol"
)

// Options control how raw records are normalized.
type Options struct {
	// IncludeDocumentation keeps cleaned doc text on symbols. When false the
	// documentation field is omitted entirely.
	IncludeDocumentation bool
}

// table is one language's normalization rules.
type table struct {
	// kinds maps raw kinds to unified kinds. A raw kind absent from the map
	// normalizes to KindUnknown with a diagnostic.
	kinds map[string]symbol.Kind
	// recordMarker reports an explicit data-record marker on a class-like
	// declaration (the Python dataclass decorator).
	recordMarker func(raw *extract.Raw) bool
	// recordByFields promotes class-like declarations whose members are all
	// fields, with at least one field and no function or method children.
	recordByFields bool
}

// baseKinds is the raw-kind vocabulary shared by every language table.
// Interfaces, traits, and enums carry behavior contracts, so they stay
// classes. Named types normalize to classes as well: methods can attach to
// them through receivers.
func baseKinds() map[string]symbol.Kind {
	return map[string]symbol.Kind{
		"module":     symbol.KindModule,
		"class":      symbol.KindClass,
		"record":     symbol.KindRecord,
		"struct":     symbol.KindClass,
		"interface":  symbol.KindClass,
		"enum":       symbol.KindClass,
		"trait":      symbol.KindClass,
		"type_alias": symbol.KindClass,
		"function":   symbol.KindFunction,
		"method":     symbol.KindMethod,
		"field":      symbol.KindField,
		"variable":   symbol.KindVariable,
		"constant":   symbol.KindConstant,
	}
}

var tables = map[lang.Language]*table{
	lang.Python: {
		kinds:          baseKinds(),
		recordMarker:   pythonDataclass,
		recordByFields: true,
	},
	lang.TypeScript: {kinds: baseKinds()},
	lang.JavaScript: {kinds: baseKinds()},
	lang.Go:         {kinds: baseKinds(), recordByFields: true},
	lang.Java:       {kinds: baseKinds()},
	lang.Ruby:       {kinds: baseKinds()},
	lang.Rust:       {kinds: baseKinds(), recordByFields: true},
	lang.C:          {kinds: baseKinds(), recordByFields: true},
	lang.PHP:        {kinds: baseKinds()},
}

// pythonDataclass matches any decorator path ending in "dataclass"
// (`@dataclass`, `@dataclasses.dataclass`).
func pythonDataclass(raw *extract.Raw) bool {
	for _, d := range raw.Decorators {
		if d == "dataclass" || strings.HasSuffix(d, ".dataclass") {
			return true
		}
	}
	return false
}

// File normalizes one file's raw records into unified symbols, in declaration
// order. contentHash feeds the stable symbol IDs. Raw kinds without a table
// entry become KindUnknown and produce a normalization_ambiguity diagnostic;
// no record is ever dropped.
func File(path string, language lang.Language, contentHash string, raws []extract.Raw, opts Options) ([]symbol.Symbol, []symbol.Diagnostic) {
	tbl, ok := tables[language]
	if !ok {
		tbl = &table{kinds: baseKinds()}
	}

	syms := make([]symbol.Symbol, 0, len(raws))
	var diags []symbol.Diagnostic

	for i := range raws {
		raw := &raws[i]

		kind, known := tbl.kinds[raw.RawKind]
		if !known {
			kind = symbol.KindUnknown
			diags = append(diags, symbol.Diagnostic{
				Code:     symbol.CodeNormalizationAmbiguity,
				Path:     path,
				Line:     raw.Span.StartLine,
				Col:      raw.Span.StartCol,
				Severity: symbol.SeverityWarning,
				Message:  fmt.Sprintf("no %s mapping for declaration kind %q; kept as unknown", language, raw.RawKind),
			})
		}

		parent := raw.Parent
		if kind == symbol.KindFunction && (raw.Receiver != "" || (parent >= 0 && classLike(syms[parent].Kind))) {
			kind = symbol.KindMethod
		}

		s := symbol.Symbol{
			Kind: kind,
			Name: raw.Name,
			Span: raw.Span,
		}
		switch {
		case parent >= 0:
			s.QualifiedPath = append(append([]string{}, syms[parent].QualifiedPath...), raw.Name)
			s.ParentID = syms[parent].ID
		case raw.Receiver != "":
			// Receiver methods sit outside their type's span, so they are
			// qualified through the receiver but never parented: a parent's
			// span must contain every descendant span.
			s.QualifiedPath = []string{raw.Receiver, raw.Name}
		default:
			s.QualifiedPath = []string{raw.Name}
		}
		s.ID = symbol.ID(path, contentHash, len(syms))

		if raw.Async {
			s.AddModifier(symbol.ModAsync)
		}
		if raw.Static {
			s.AddModifier(symbol.ModStatic)
		}
		if raw.Abstract {
			s.AddModifier(symbol.ModAbstract)
		}
		if raw.Exported {
			s.AddModifier(symbol.ModExported)
		}
		if raw.HasDefault {
			s.AddModifier(symbol.ModDefaultValue)
		}
		for _, d := range raw.Decorators {
			s.AddModifier(symbol.DecoratorModifier(d))
		}

		if opts.IncludeDocumentation && raw.Doc != "" {
			s.Documentation = CleanDoc(raw.Doc)
		}

		syms = append(syms, s)
	}

	promoteRecords(tbl, raws, syms)
	return syms, diags
}

func classLike(k symbol.Kind) bool {
	switch k {
	case symbol.KindClass, symbol.KindRecord, symbol.KindModule:
		return true
	}
	return false
}

// promoteRecords upgrades class symbols to records after the whole file is
// normalized, when either an explicit marker is present or the class's
// members are all fields. Kind is decided by syntactic form only.
func promoteRecords(tbl *table, raws []extract.Raw, syms []symbol.Symbol) {
	if tbl.recordMarker == nil && !tbl.recordByFields {
		return
	}
	for i := range syms {
		if syms[i].Kind != symbol.KindClass {
			continue
		}
		switch raws[i].RawKind {
		case "class", "struct":
		default:
			continue
		}
		if tbl.recordMarker != nil && tbl.recordMarker(&raws[i]) {
			syms[i].Kind = symbol.KindRecord
			continue
		}
		if tbl.recordByFields && fieldsOnly(i, syms) && !hasReceiverMethods(i, syms) {
			syms[i].Kind = symbol.KindRecord
		}
	}
}

// hasReceiverMethods reports whether any unparented method in the file is
// qualified through symbol i's name, i.e. a receiver method on that type.
// A type with behavior stays a class even though the methods sit outside
// its span.
func hasReceiverMethods(i int, syms []symbol.Symbol) bool {
	if syms[i].ParentID != "" {
		return false
	}
	name := syms[i].Name
	for j := range syms {
		if syms[j].Kind == symbol.KindMethod && syms[j].ParentID == "" &&
			len(syms[j].QualifiedPath) == 2 && syms[j].QualifiedPath[0] == name {
			return true
		}
	}
	return false
}

// fieldsOnly reports whether symbol i has at least one field child and no
// function or method children.
func fieldsOnly(i int, syms []symbol.Symbol) bool {
	id := syms[i].ID
	hasField := false
	for j := i + 1; j < len(syms); j++ {
		if syms[j].ParentID != id {
			continue
		}
		switch syms[j].Kind {
		case symbol.KindField:
			hasField = true
		case symbol.KindFunction, symbol.KindMethod:
			return false
		}
	}
	return hasField
}
