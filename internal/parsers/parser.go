// Package parsers provides the BSL source parser.
//
// The parser is line-oriented and bilingual: 1C:Enterprise accepts Russian
// and English keywords interchangeably, so both spellings are recognized,
// case-insensitively. It extracts the declaration structure (methods,
// regions, module variables) and every qualified call site with the exact
// range of the callee name token; point queries over the reference index
// depend on that range being exact.
package parsers

import (
	"github.com/tolkachev/bsema/internal/symbols"
	"github.com/tolkachev/bsema/internal/text"
)

// CallSite is one call discovered in a document.
type CallSite struct {
	// Module is the qualifier identifier as written in source. Empty for
	// unqualified calls, which target the current module.
	Module string

	// Method is the called method name as written in source.
	Method string

	// Range is the span of the method name token only.
	Range text.Range
}

// ParseResult contains everything extracted from one document.
type ParseResult struct {
	// Root is the module symbol with regions, methods and variables as
	// children. Its name is left empty; the analysis pass knows the mdo ref.
	Root *symbols.Symbol

	// Calls are the call sites found anywhere in the document.
	Calls []CallSite
}

// Parser is the contract the analysis pipeline consumes.
type Parser interface {
	// Parse extracts symbols and call sites from source content.
	Parse(uri string, content []byte) (*ParseResult, error)
}
