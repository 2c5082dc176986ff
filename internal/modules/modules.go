// Package modules provides the module model and registry for a 1C:Enterprise
// configuration.
//
// Every BSL document belongs to a module, identified by a metadata object
// reference (mdo ref) plus a module kind. The registry maps that identity to
// the currently loaded document, if any; documents come and go as files are
// opened, reanalyzed or closed, so lookups may legitimately miss.
package modules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tolkachev/bsema/internal/symbols"
)

// Kind is the category of a BSL module.
type Kind string

const (
	CommonModule              Kind = "CommonModule"
	ObjectModule              Kind = "ObjectModule"
	ManagerModule             Kind = "ManagerModule"
	FormModule                Kind = "FormModule"
	CommandModule             Kind = "CommandModule"
	RecordSetModule           Kind = "RecordSetModule"
	ValueManagerModule        Kind = "ValueManagerModule"
	SessionModule             Kind = "SessionModule"
	ManagedApplicationModule  Kind = "ManagedApplicationModule"
	OrdinaryApplicationModule Kind = "OrdinaryApplicationModule"
	ExternalConnectionModule  Kind = "ExternalConnectionModule"
	UnknownModule             Kind = "UnknownModule"
)

// Kinds returns every known module kind, UnknownModule excluded.
func Kinds() []Kind {
	return []Kind{
		CommonModule,
		ObjectModule,
		ManagerModule,
		FormModule,
		CommandModule,
		RecordSetModule,
		ValueManagerModule,
		SessionModule,
		ManagedApplicationModule,
		OrdinaryApplicationModule,
		ExternalConnectionModule,
	}
}

// fileNameTags maps each kind to the canonical file name 1C uses for it.
// The tag is the stable storage form of the kind.
var fileNameTags = map[Kind]string{
	CommonModule:              "Module",
	ObjectModule:              "ObjectModule",
	ManagerModule:             "ManagerModule",
	FormModule:                "Form/Module",
	CommandModule:             "CommandModule",
	RecordSetModule:           "RecordSetModule",
	ValueManagerModule:        "ValueManagerModule",
	SessionModule:             "SessionModule",
	ManagedApplicationModule:  "ManagedApplicationModule",
	OrdinaryApplicationModule: "OrdinaryApplicationModule",
	ExternalConnectionModule:  "ExternalConnectionModule",
	UnknownModule:             "Unknown",
}

// Tag returns the canonical file-name tag for the kind.
func (k Kind) Tag() string {
	if tag, ok := fileNameTags[k]; ok {
		return tag
	}
	return fileNameTags[UnknownModule]
}

// KindFromTag resolves a canonical tag back to its kind.
//
// An unknown tag means a snapshot or key was produced outside the
// canonicalization contract and is reported as an error.
func KindFromTag(tag string) (Kind, error) {
	for kind, t := range fileNameTags {
		if t == tag {
			return kind, nil
		}
	}
	return UnknownModule, fmt.Errorf("unknown module kind tag %q", tag)
}

// Document is one loaded BSL file together with its symbol tree.
type Document struct {
	// URI identifies the file.
	URI string

	// MdoRef is the metadata object reference owning the module,
	// e.g. "CommonModule.CommonUtils".
	MdoRef string

	// Kind is the module kind.
	Kind Kind

	// Source is the file content the symbol tree was built from.
	Source string

	// SymbolTree is the document's symbol hierarchy.
	SymbolTree *symbols.Tree
}

// Registry tracks the currently loaded documents of a configuration.
//
// Lookups are case-insensitive on the mdo ref, matching BSL identifier
// semantics. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byMdo  map[mdoKey]*Document
	byURI  map[string]*Document
}

type mdoKey struct {
	mdoRef string
	kind   Kind
}

func newMdoKey(mdoRef string, kind Kind) mdoKey {
	return mdoKey{mdoRef: strings.ToLower(mdoRef), kind: kind}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMdo: make(map[mdoKey]*Document),
		byURI: make(map[string]*Document),
	}
}

// Put registers the document, replacing any previous version for the same
// URI or module identity.
func (r *Registry) Put(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byURI[doc.URI]; ok {
		delete(r.byMdo, newMdoKey(old.MdoRef, old.Kind))
	}
	r.byURI[doc.URI] = doc
	r.byMdo[newMdoKey(doc.MdoRef, doc.Kind)] = doc
}

// Remove drops the document with the given URI. Unknown URIs are a no-op.
func (r *Registry) Remove(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byURI[uri]
	if !ok {
		return
	}
	delete(r.byURI, uri)
	delete(r.byMdo, newMdoKey(doc.MdoRef, doc.Kind))
}

// Resolve returns the loaded document for the module identity, if any.
func (r *Registry) Resolve(mdoRef string, kind Kind) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byMdo[newMdoKey(mdoRef, kind)]
	return doc, ok
}

// DocumentByURI returns the loaded document for the URI, if any.
func (r *Registry) DocumentByURI(uri string) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byURI[uri]
	return doc, ok
}

// Documents returns a snapshot of all loaded documents.
func (r *Registry) Documents() []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*Document, 0, len(r.byURI))
	for _, doc := range r.byURI {
		docs = append(docs, doc)
	}
	return docs
}

// Len returns the number of loaded documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byURI)
}
