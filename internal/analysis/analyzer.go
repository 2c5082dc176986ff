package analysis

import (
	"context"
	"fmt"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/parsers"
	"github.com/tolkachev/bsema/internal/refs"
	"github.com/tolkachev/bsema/internal/storage"
	"github.com/tolkachev/bsema/internal/symbols"
)

// Analyzer runs the per-document analysis: parse, register, index, persist.
//
// The backend is optional; without one the analyzer works purely in memory.
type Analyzer struct {
	registry *modules.Registry
	index    *refs.Index
	backend  storage.Backend
	parser   parsers.Parser
}

// NewAnalyzer creates an analyzer over the given registry and index.
func NewAnalyzer(registry *modules.Registry, index *refs.Index, backend storage.Backend) *Analyzer {
	return &Analyzer{
		registry: registry,
		index:    index,
		backend:  backend,
		parser:   parsers.NewBSLParser(),
	}
}

// Registry returns the module registry the analyzer populates.
func (a *Analyzer) Registry() *modules.Registry {
	return a.registry
}

// Index returns the reference index the analyzer populates.
func (a *Analyzer) Index() *refs.Index {
	return a.index
}

// AnalyzeFile analyzes one document version end to end.
//
// The document's previous edges are replaced, not accumulated, so
// reanalyzing a changed file never leaves stale edges behind.
func (a *Analyzer) AnalyzeFile(ctx context.Context, entry FileEntry) (*modules.Document, error) {
	result, err := a.parser.Parse(entry.RelPath, entry.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", entry.RelPath, err)
	}

	mdoRef, kind := DeriveModule(entry.RelPath)
	result.Root.Name = mdoRef

	doc := &modules.Document{
		URI:        entry.RelPath,
		MdoRef:     mdoRef,
		Kind:       kind,
		Source:     string(entry.Content),
		SymbolTree: symbols.NewTree(result.Root),
	}
	a.registry.Put(doc)

	edges := make([]refs.Edge, 0, len(result.Calls))
	for _, call := range result.Calls {
		target := refs.NewSymbolKey(mdoRef, kind, call.Method)
		if call.Module != "" {
			// A qualified call names a common module; other module kinds
			// are never addressed by bare identifier in BSL source.
			target = refs.NewSymbolKey(call.Module, modules.CommonModule, call.Method)
		}
		edges = append(edges, refs.Edge{Target: target, Range: call.Range})
	}
	a.index.ReplaceDocument(entry.RelPath, edges)

	if a.backend != nil {
		if err := a.backend.SaveDocument(ctx, a.snapshot(doc, edges)); err != nil {
			return nil, fmt.Errorf("persisting %s: %w", entry.RelPath, err)
		}
	}
	return doc, nil
}

// RemoveFile retracts a deleted document from the registry, the index and
// the snapshot store.
func (a *Analyzer) RemoveFile(ctx context.Context, uri string) error {
	a.index.RetractDocument(uri)
	a.registry.Remove(uri)

	if a.backend != nil {
		if err := a.backend.DeleteDocument(ctx, uri); err != nil {
			return fmt.Errorf("removing snapshot for %s: %w", uri, err)
		}
	}
	return nil
}

// Restore rehydrates the registry and the index from the snapshot store,
// without touching source files.
//
// A record with an unknown module-kind tag fails the restore: it means the
// snapshot was written outside the canonicalization contract.
func (a *Analyzer) Restore(ctx context.Context) error {
	if a.backend == nil {
		return fmt.Errorf("no snapshot backend configured")
	}

	return a.backend.LoadAll(ctx, func(record storage.DocumentRecord) error {
		kind, err := modules.KindFromTag(record.KindTag)
		if err != nil {
			return fmt.Errorf("corrupt snapshot for %s: %w", record.URI, err)
		}

		root := &symbols.Symbol{
			Name:  record.MdoRef,
			Kind:  symbols.KindModule,
			Range: record.ModuleRange,
		}
		for _, m := range record.Methods {
			root.Children = append(root.Children, &symbols.Symbol{
				Name:           m.Name,
				Kind:           symbols.KindMethod,
				Range:          m.Range,
				SelectionRange: m.SelectionRange,
				Exported:       m.Exported,
			})
		}

		a.registry.Put(&modules.Document{
			URI:        record.URI,
			MdoRef:     record.MdoRef,
			Kind:       kind,
			SymbolTree: symbols.NewTree(root),
		})

		edges := make([]refs.Edge, 0, len(record.Edges))
		for _, e := range record.Edges {
			targetKind, err := modules.KindFromTag(e.TargetKindTag)
			if err != nil {
				return fmt.Errorf("corrupt snapshot for %s: %w", record.URI, err)
			}
			edges = append(edges, refs.Edge{
				Target: refs.NewSymbolKey(e.TargetModule, targetKind, e.TargetMethod),
				Range:  e.Range,
			})
		}
		a.index.ReplaceDocument(record.URI, edges)
		return nil
	})
}

// snapshot converts an analyzed document into its persistent record.
func (a *Analyzer) snapshot(doc *modules.Document, edges []refs.Edge) storage.DocumentRecord {
	record := storage.DocumentRecord{
		URI:         doc.URI,
		MdoRef:      doc.MdoRef,
		KindTag:     doc.Kind.Tag(),
		ModuleRange: doc.SymbolTree.Module().Range,
	}
	for _, m := range doc.SymbolTree.Methods() {
		record.Methods = append(record.Methods, storage.MethodRecord{
			Name:           m.Name,
			Range:          m.Range,
			SelectionRange: m.SelectionRange,
			Exported:       m.Exported,
		})
	}
	for _, e := range edges {
		record.Edges = append(record.Edges, storage.EdgeRecord{
			TargetModule:  e.Target.Module,
			TargetKindTag: e.Target.Kind.Tag(),
			TargetMethod:  e.Target.Name,
			Range:         e.Range,
		})
	}
	return record
}
