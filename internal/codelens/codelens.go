// Package codelens computes code lenses for BSL documents.
package codelens

import (
	"fmt"
	"strings"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/text"
)

// Lens is one actionable annotation anchored above a method name.
type Lens struct {
	URI     string     `json:"uri"`
	Range   text.Range `json:"range"`
	Title   string     `json:"title"`
	Command string     `json:"command"`
}

// Test method name prefixes recognized by OneScript test frameworks.
var testNamePrefixes = []string{"test", "тест"}

// RunTestSupplier produces "Run test" lenses for test methods in OneScript
// files. Regular configuration modules never get them.
type RunTestSupplier struct {
	runner string
}

// NewRunTestSupplier creates a supplier invoking the given test runner
// executable. Empty selects 1testrunner.
func NewRunTestSupplier(runner string) *RunTestSupplier {
	if runner == "" {
		runner = "1testrunner"
	}
	return &RunTestSupplier{runner: runner}
}

// Lenses returns one lens per exported test method of the document.
func (s *RunTestSupplier) Lenses(doc *modules.Document) []Lens {
	if !strings.HasSuffix(strings.ToLower(doc.URI), ".os") {
		return nil
	}
	if doc.SymbolTree == nil {
		return nil
	}

	var lenses []Lens
	for _, method := range doc.SymbolTree.Methods() {
		if !method.Exported || !isTestName(method.Name) {
			continue
		}
		lenses = append(lenses, Lens{
			URI:     doc.URI,
			Range:   method.SelectionRange,
			Title:   "⏵ Run test",
			Command: fmt.Sprintf("%s -run %s %s", s.runner, doc.URI, method.Name),
		})
	}
	return lenses
}

func isTestName(name string) bool {
	folded := strings.ToLower(name)
	for _, prefix := range testNamePrefixes {
		if strings.HasPrefix(folded, prefix) {
			return true
		}
	}
	return false
}
