package refs

import (
	"strings"
	"sync"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/symbols"
	"github.com/tolkachev/bsema/internal/text"
)

// Edge is one call/usage site to record: a target identity plus the range of
// the callee name token inside the originating document.
type Edge struct {
	// Target identifies the called method.
	Target SymbolKey

	// Range is the span of the callee name token at the call site.
	Range text.Range
}

// Index owns the edge set of a project and the three coupled views over it.
//
// The views are never exposed raw; every mutation updates all three under one
// write-lock acquisition, so readers cannot observe a partially updated
// triple. Resolution against the module registry happens outside the lock.
type Index struct {
	registry *modules.Registry

	mu sync.RWMutex

	// to is the forward view: target identity -> call site locations,
	// in insertion order.
	to map[SymbolKey][]text.Location

	// from is the reverse view: document -> target identity -> site ranges.
	from map[string]map[SymbolKey][]text.Range

	// at is the positional view: document -> site range -> target identity.
	// At most one identity per (document, range); later insertions overwrite.
	at map[string]map[text.Range]SymbolKey
}

// NewIndex creates an empty index resolving symbols through the registry.
func NewIndex(registry *modules.Registry) *Index {
	return &Index{
		registry: registry,
		to:       make(map[SymbolKey][]text.Location),
		from:     make(map[string]map[SymbolKey][]text.Range),
		at:       make(map[string]map[text.Range]SymbolKey),
	}
}

// Add records one edge from a call site in uri to the method named by
// (mdoRef, kind, name).
//
// Callers reanalyzing a document must retract its previous edges first;
// Add only accumulates. ReplaceDocument does both in one critical section.
func (i *Index) Add(uri, mdoRef string, kind modules.Kind, name string, rng text.Range) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.add(uri, NewSymbolKey(mdoRef, kind, name), rng)
}

// add inserts into all three views. Must be called with the write lock held.
func (i *Index) add(uri string, key SymbolKey, rng text.Range) {
	i.to[key] = append(i.to[key], text.Location{URI: uri, Range: rng})

	if i.from[uri] == nil {
		i.from[uri] = make(map[SymbolKey][]text.Range)
	}
	i.from[uri][key] = append(i.from[uri][key], rng)

	if i.at[uri] == nil {
		i.at[uri] = make(map[text.Range]SymbolKey)
	}
	i.at[uri][rng] = key
}

// RetractDocument removes every edge whose site is in uri from all three
// views. Edges from other documents to the same targets survive. Retracting
// a document with no recorded edges is a no-op.
func (i *Index) RetractDocument(uri string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.retract(uri)
}

// retract drops uri from all views. Must be called with the write lock held.
func (i *Index) retract(uri string) {
	for key := range i.from[uri] {
		kept := i.to[key][:0]
		for _, loc := range i.to[key] {
			if loc.URI != uri {
				kept = append(kept, loc)
			}
		}
		if len(kept) == 0 {
			delete(i.to, key)
		} else {
			i.to[key] = kept
		}
	}
	delete(i.from, uri)
	delete(i.at, uri)
}

// ReplaceDocument retracts uri's previous edges and records the new ones as
// a single critical section, so concurrent queries never observe a mix of
// the document's old and new edges.
func (i *Index) ReplaceDocument(uri string, edges []Edge) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.retract(uri)
	for _, edge := range edges {
		i.add(uri, edge.Target, edge.Range)
	}
}

// ReferencesTo returns every known call site targeting the identity,
// resolved into References. Sites whose document or target module is not
// currently loaded are dropped. Ordering is unspecified.
func (i *Index) ReferencesTo(key SymbolKey) []Reference {
	i.mu.RLock()
	locations := make([]text.Location, len(i.to[key]))
	copy(locations, i.to[key])
	i.mu.RUnlock()

	references := make([]Reference, 0, len(locations))
	for _, loc := range locations {
		if ref, ok := i.resolve(key, loc.URI, loc.Range); ok {
			references = append(references, ref)
		}
	}
	return references
}

// ReferencesFrom returns every edge whose call site is inside uri, resolved.
func (i *Index) ReferencesFrom(uri string) []Reference {
	type entry struct {
		key SymbolKey
		rng text.Range
	}

	i.mu.RLock()
	var entries []entry
	for key, ranges := range i.from[uri] {
		for _, rng := range ranges {
			entries = append(entries, entry{key: key, rng: rng})
		}
	}
	i.mu.RUnlock()

	references := make([]Reference, 0, len(entries))
	for _, e := range entries {
		if ref, ok := i.resolve(e.key, uri, e.rng); ok {
			references = append(references, ref)
		}
	}
	return references
}

// ReferencesFromSymbol returns uri's references restricted to call sites
// enclosed by the given symbol. The symbol is matched by identity (folded
// name and kind), not by pointer, since the tree may have been rebuilt.
func (i *Index) ReferencesFromSymbol(uri string, sym *symbols.Symbol) []Reference {
	var filtered []Reference
	for _, ref := range i.ReferencesFrom(uri) {
		if ref.From == nil || ref.From.Kind != sym.Kind {
			continue
		}
		if strings.EqualFold(ref.From.Name, sym.Name) {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

// ReferenceAt returns the reference whose call site contains the position,
// if any. Site ranges are half-open, so a position equal to a range's end
// does not match.
func (i *Index) ReferenceAt(uri string, pos text.Position) (Reference, bool) {
	i.mu.RLock()
	var (
		key   SymbolKey
		rng   text.Range
		found bool
	)
	for r, k := range i.at[uri] {
		if r.Contains(pos) {
			key, rng, found = k, r, true
			break
		}
	}
	i.mu.RUnlock()

	if !found {
		return Reference{}, false
	}
	return i.resolve(key, uri, rng)
}

// Stats returns a summary of index size.
func (i *Index) Stats() map[string]int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	edges := 0
	for _, locations := range i.to {
		edges += len(locations)
	}
	return map[string]int{
		"edges":     edges,
		"targets":   len(i.to),
		"documents": len(i.from),
	}
}

// resolve turns a stored entry into a Reference via the registry.
//
// Never called with the index lock held: it only touches the registry and
// the (immutable) symbol trees, and both sides may be unloaded, in which
// case the entry is silently dropped.
func (i *Index) resolve(key SymbolKey, uri string, rng text.Range) (Reference, bool) {
	target, ok := i.targetSymbol(key)
	if !ok {
		return Reference{}, false
	}

	siteDoc, ok := i.registry.DocumentByURI(uri)
	if !ok || siteDoc.SymbolTree == nil {
		return Reference{}, false
	}
	from := siteDoc.SymbolTree.EnclosingSymbol(rng.Start)

	return Reference{
		From:           from,
		To:             target,
		Target:         key,
		URI:            uri,
		SelectionRange: rng,
	}, true
}

// targetSymbol resolves the identity to a live method symbol, if its module
// is currently loaded and still declares the method.
func (i *Index) targetSymbol(key SymbolKey) (*symbols.Symbol, bool) {
	doc, ok := i.registry.Resolve(key.Module, key.Kind)
	if !ok || doc.SymbolTree == nil {
		return nil, false
	}
	return doc.SymbolTree.MethodSymbol(key.Name)
}
