package analysis

import (
	"context"
	"fmt"
	"time"
)

// PipelineResult summarizes a pipeline run.
type PipelineResult struct {
	Files        int
	Methods      int
	Edges        int
	DurationSecs float64
}

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// RunPipeline analyzes every BSL source file under rootPath.
//
// Phase 1 walks the configuration dump honoring .gitignore; phase 2
// analyzes each file, populating the registry and the index and writing
// snapshots through the analyzer's backend.
func RunPipeline(ctx context.Context, rootPath string, analyzer *Analyzer, progress ProgressCallback) (*PipelineResult, error) {
	started := time.Now()
	result := &PipelineResult{}

	if progress != nil {
		progress("Walking files", 0.0)
	}
	patterns := LoadGitignore(rootPath)
	entries, err := WalkConfiguration(rootPath, patterns)
	if err != nil {
		return nil, fmt.Errorf("walking configuration: %w", err)
	}
	result.Files = len(entries)
	if progress != nil {
		progress("Walking files", 1.0)
	}

	if progress != nil {
		progress("Analyzing modules", 0.0)
	}
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := analyzer.AnalyzeFile(ctx, entry)
		if err != nil {
			return nil, err
		}
		result.Methods += len(doc.SymbolTree.Methods())
		if progress != nil {
			progress("Analyzing modules", float64(i+1)/float64(len(entries)))
		}
	}
	if progress != nil {
		progress("Analyzing modules", 1.0)
	}

	result.Edges = analyzer.Index().Stats()["edges"]
	result.DurationSecs = time.Since(started).Seconds()
	return result, nil
}
