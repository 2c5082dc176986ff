package diagnostics

import (
	"fmt"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
)

// UnusedMethodRule flags non-exported methods that no indexed document
// calls. Exported methods are skipped: they form the module's public
// surface and may be called from outside the analyzed sources.
type UnusedMethodRule struct {
	index *refs.Index
}

// NewUnusedMethodRule creates the rule over the given index.
func NewUnusedMethodRule(index *refs.Index) *UnusedMethodRule {
	return &UnusedMethodRule{index: index}
}

func (r *UnusedMethodRule) Code() string {
	return "UnusedMethod"
}

func (r *UnusedMethodRule) Check(doc *modules.Document) []Diagnostic {
	if doc.SymbolTree == nil {
		return nil
	}

	var findings []Diagnostic
	for _, method := range doc.SymbolTree.Methods() {
		if method.Exported {
			continue
		}
		key := refs.NewSymbolKey(doc.MdoRef, doc.Kind, method.Name)
		if len(r.index.ReferencesTo(key)) > 0 {
			continue
		}
		findings = append(findings, Diagnostic{
			URI:      doc.URI,
			Range:    method.SelectionRange,
			Severity: SeverityMinor,
			Code:     r.Code(),
			Message:  fmt.Sprintf("Method %s is never called", method.Name),
		})
	}
	return findings
}
