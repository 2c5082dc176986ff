// Package diagnostics computes analysis findings over indexed BSL modules.
//
// Rules are pure consumers of the module registry and the reference index;
// they never reparse source. A rule sees one document at a time and reports
// findings anchored to ranges inside it.
package diagnostics

import (
	"sort"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
	"github.com/tolkachev/bsema/internal/text"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
	SeverityInfo  Severity = "info"
)

// Diagnostic is one finding in one document.
type Diagnostic struct {
	URI      string     `json:"uri"`
	Range    text.Range `json:"range"`
	Severity Severity   `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
}

// Rule checks one document and reports findings.
type Rule interface {
	// Code is the stable rule identifier shown next to each finding.
	Code() string

	// Check inspects the document and returns its findings.
	Check(doc *modules.Document) []Diagnostic
}

// Engine runs a fixed rule set over indexed documents.
type Engine struct {
	registry *modules.Registry
	rules    []Rule
}

// Config selects and parameterizes the rule set.
type Config struct {
	// PrivilegedModules lists common module names whose methods run in
	// privileged mode. Case-insensitive. Empty disables the rule.
	PrivilegedModules []string
}

// NewEngine creates an engine with the default rule set.
func NewEngine(registry *modules.Registry, index *refs.Index, cfg Config) *Engine {
	rules := []Rule{
		NewUnusedMethodRule(index),
	}
	if len(cfg.PrivilegedModules) > 0 {
		rules = append(rules, NewPrivilegedModuleCallRule(index, cfg.PrivilegedModules))
	}
	return &Engine{registry: registry, rules: rules}
}

// CheckDocument runs every rule against the document with the given URI.
// An unknown URI yields no findings.
func (e *Engine) CheckDocument(uri string) []Diagnostic {
	doc, ok := e.registry.DocumentByURI(uri)
	if !ok {
		return nil
	}
	return e.check(doc)
}

// CheckAll runs every rule against every registered document, ordered by URI
// and position for stable output.
func (e *Engine) CheckAll() []Diagnostic {
	var findings []Diagnostic
	for _, doc := range e.registry.Documents() {
		findings = append(findings, e.check(doc)...)
	}
	sort.Slice(findings, func(a, b int) bool {
		if findings[a].URI != findings[b].URI {
			return findings[a].URI < findings[b].URI
		}
		return findings[a].Range.Start.Before(findings[b].Range.Start)
	})
	return findings
}

func (e *Engine) check(doc *modules.Document) []Diagnostic {
	var findings []Diagnostic
	for _, rule := range e.rules {
		findings = append(findings, rule.Check(doc)...)
	}
	return findings
}
