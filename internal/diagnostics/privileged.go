package diagnostics

import (
	"fmt"
	"strings"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
)

// PrivilegedModuleCallRule flags calls into methods of privileged common
// modules. Code running there skips access right checks, so every call site
// deserves review.
type PrivilegedModuleCallRule struct {
	index      *refs.Index
	privileged map[string]bool
}

// NewPrivilegedModuleCallRule creates the rule for the given module names.
func NewPrivilegedModuleCallRule(index *refs.Index, moduleNames []string) *PrivilegedModuleCallRule {
	privileged := make(map[string]bool, len(moduleNames))
	for _, name := range moduleNames {
		privileged[strings.ToLower(name)] = true
	}
	return &PrivilegedModuleCallRule{index: index, privileged: privileged}
}

func (r *PrivilegedModuleCallRule) Code() string {
	return "PrivilegedModuleMethodCall"
}

func (r *PrivilegedModuleCallRule) Check(doc *modules.Document) []Diagnostic {
	var findings []Diagnostic
	for _, ref := range r.index.ReferencesFrom(doc.URI) {
		if ref.Target.Kind != modules.CommonModule || !r.privileged[ref.Target.Module] {
			continue
		}
		findings = append(findings, Diagnostic{
			URI:      doc.URI,
			Range:    ref.SelectionRange,
			Severity: SeverityMajor,
			Code:     r.Code(),
			Message:  fmt.Sprintf("Method %s of a privileged module is called here", ref.To.Name),
		})
	}
	return findings
}
