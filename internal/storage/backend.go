// Package storage provides snapshot persistence for analyzed configurations.
//
// It defines the Backend protocol that all storage implementations must
// satisfy, along with the record types shared across backends. A snapshot
// holds, per document, the semantic facts needed to rehydrate the module
// registry and the reference index without reparsing: the declared methods
// and the recorded call edges.
package storage

import (
	"context"

	"github.com/tolkachev/bsema/internal/text"
)

// MethodRecord is one declared method of a snapshotted document.
type MethodRecord struct {
	// Name is the method name with original casing.
	Name string `json:"name"`

	// Range covers the whole declaration.
	Range text.Range `json:"range"`

	// SelectionRange covers the name token.
	SelectionRange text.Range `json:"selection_range"`

	// Exported reports the Export keyword.
	Exported bool `json:"exported,omitempty"`
}

// EdgeRecord is one recorded call site of a snapshotted document.
type EdgeRecord struct {
	// TargetModule is the mdo ref of the called module as written in source.
	TargetModule string `json:"target_module"`

	// TargetKindTag is the canonical file-name tag of the target module kind.
	TargetKindTag string `json:"target_kind"`

	// TargetMethod is the called method name as written in source.
	TargetMethod string `json:"target_method"`

	// Range is the span of the callee name token.
	Range text.Range `json:"range"`
}

// DocumentRecord is the snapshot of one analyzed document.
type DocumentRecord struct {
	// URI identifies the document.
	URI string `json:"uri"`

	// MdoRef is the owning metadata object reference.
	MdoRef string `json:"mdo_ref"`

	// KindTag is the canonical file-name tag of the module kind.
	KindTag string `json:"kind"`

	// ModuleRange covers the whole document.
	ModuleRange text.Range `json:"module_range"`

	// Methods are the declared methods.
	Methods []MethodRecord `json:"methods,omitempty"`

	// Edges are the recorded call sites.
	Edges []EdgeRecord `json:"edges,omitempty"`
}

// Backend is the protocol all snapshot stores satisfy.
type Backend interface {
	// SaveDocument writes or replaces the record for its URI.
	SaveDocument(ctx context.Context, record DocumentRecord) error

	// DeleteDocument removes the record for the URI. Unknown URIs are a no-op.
	DeleteDocument(ctx context.Context, uri string) error

	// LoadAll streams every stored record to fn. A non-nil error from fn
	// aborts the iteration and is returned.
	LoadAll(ctx context.Context, fn func(DocumentRecord) error) error

	// DocumentCount returns the number of stored records.
	DocumentCount() int

	// Close releases the backend's resources.
	Close() error
}
