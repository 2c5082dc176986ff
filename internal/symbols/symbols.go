// Package symbols provides the per-document symbol tree for BSL modules.
//
// A symbol tree is built once per parsed document version and is immutable
// afterwards; reanalysis produces a fresh tree. Method lookup is
// case-insensitive, matching BSL identifier semantics.
package symbols

import (
	"strings"

	"github.com/tolkachev/bsema/internal/text"
)

// Kind classifies a declared symbol.
type Kind string

const (
	KindModule   Kind = "module"
	KindMethod   Kind = "method"
	KindRegion   Kind = "region"
	KindVariable Kind = "variable"
)

// Symbol is a declared named entity inside a module.
type Symbol struct {
	// Name is the symbol name with its original source casing.
	Name string

	// Kind classifies the symbol.
	Kind Kind

	// Range covers the whole declaration, body included.
	Range text.Range

	// SelectionRange covers only the name token.
	SelectionRange text.Range

	// Exported reports whether the symbol carries the Export keyword.
	Exported bool

	// Children are symbols declared inside this one.
	Children []*Symbol
}

// Tree is the symbol hierarchy of one document.
type Tree struct {
	module  *Symbol
	methods map[string]*Symbol
	flat    []*Symbol
}

// NewTree builds a tree rooted at the given module symbol.
//
// The module symbol's children (regions, methods, methods nested in regions)
// are indexed for lookup. The tree takes ownership of the symbols; callers
// must not mutate them afterwards.
func NewTree(module *Symbol) *Tree {
	t := &Tree{
		module:  module,
		methods: make(map[string]*Symbol),
	}
	t.index(module)
	return t
}

func (t *Tree) index(sym *Symbol) {
	t.flat = append(t.flat, sym)
	if sym.Kind == KindMethod {
		t.methods[strings.ToLower(sym.Name)] = sym
	}
	for _, child := range sym.Children {
		t.index(child)
	}
}

// Module returns the document's root module symbol.
func (t *Tree) Module() *Symbol {
	return t.module
}

// MethodSymbol returns the method with the given name, case-insensitively.
func (t *Tree) MethodSymbol(name string) (*Symbol, bool) {
	sym, ok := t.methods[strings.ToLower(name)]
	return sym, ok
}

// Methods returns all method symbols in declaration order.
func (t *Tree) Methods() []*Symbol {
	methods := make([]*Symbol, 0, len(t.methods))
	for _, sym := range t.flat {
		if sym.Kind == KindMethod {
			methods = append(methods, sym)
		}
	}
	return methods
}

// Flatten returns every symbol of the tree in depth-first order,
// the root module symbol included.
func (t *Tree) Flatten() []*Symbol {
	return t.flat
}

// EnclosingSymbol returns the most specific symbol containing the position.
//
// Region symbols only group declarations and are skipped. When no finer
// symbol contains the position the module symbol itself is returned.
func (t *Tree) EnclosingSymbol(pos text.Position) *Symbol {
	for _, sym := range t.flat {
		if sym.Kind == KindRegion || sym.Kind == KindModule {
			continue
		}
		if sym.Range.Contains(pos) {
			return sym
		}
	}
	return t.module
}
