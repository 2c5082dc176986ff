// Package refs provides the cross-module reference index.
//
// It records every call/usage edge discovered during document analysis and
// answers three query shapes over them: who calls a symbol, what a document
// calls, and what is called at an exact position. Stored entries are
// lightweight identities; they are resolved into live symbols lazily at query
// time, so the index stays correct across document reloads.
package refs

import (
	"strings"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/symbols"
	"github.com/tolkachev/bsema/internal/text"
)

// SymbolKey is the canonical identity of a method symbol: the owning module
// reference, the module kind and the method name.
//
// Both string parts are case-folded on construction, so identity never
// depends on source casing and the key can be compared and hashed
// structurally. Always build keys through NewSymbolKey.
type SymbolKey struct {
	// Module is the case-folded mdo ref of the owning module.
	Module string

	// Kind is the module kind.
	Kind modules.Kind

	// Name is the case-folded method name.
	Name string
}

// NewSymbolKey builds a canonical key from raw source identifiers.
func NewSymbolKey(mdoRef string, kind modules.Kind, name string) SymbolKey {
	return SymbolKey{
		Module: strings.ToLower(mdoRef),
		Kind:   kind,
		Name:   strings.ToLower(name),
	}
}

// String returns the key in Module.Kind.Name form, for diagnostics output.
func (k SymbolKey) String() string {
	return k.Module + "." + string(k.Kind) + "." + k.Name
}

// Reference is a resolved view of one stored edge.
//
// References are produced on demand and never stored: both symbol pointers
// belong to the symbol trees currently loaded in the registry.
type Reference struct {
	// From is the declared symbol enclosing the call site.
	From *symbols.Symbol

	// To is the live target method symbol.
	To *symbols.Symbol

	// Target is the canonical identity the edge was stored under.
	Target SymbolKey

	// URI is the document containing the call site.
	URI string

	// SelectionRange is the exact range of the callee name token.
	SelectionRange text.Range
}
