// Package cmd provides CLI command implementations for bsema.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/tolkachev/bsema/internal/analysis"
	"github.com/tolkachev/bsema/internal/codelens"
	"github.com/tolkachev/bsema/internal/colors"
	"github.com/tolkachev/bsema/internal/diagnostics"
	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
	"github.com/tolkachev/bsema/internal/storage"
	"github.com/tolkachev/bsema/internal/symbols"
	"github.com/tolkachev/bsema/internal/text"
	"github.com/tolkachev/bsema/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// AnalyzeCmd indexes a configuration dump into a reference index.
type AnalyzeCmd struct {
	Path string `arg:"" optional:"" default:"." help:"Path to configuration source"`
}

// Run executes the analyze command.
func (c *AnalyzeCmd) Run() error {
	ctx := context.Background()
	rootPath, err := filepath.Abs(c.Path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rootPath)
	}

	color.Green("Indexing %s", rootPath)

	// Create .bsema directory
	bsemaDir := filepath.Join(rootPath, ".bsema")
	if err := os.MkdirAll(bsemaDir, 0o755); err != nil {
		return fmt.Errorf("creating .bsema directory: %w", err)
	}

	// Initialize BadgerDB storage
	dbPath := filepath.Join(bsemaDir, "badger")
	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, false); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	registry := modules.NewRegistry()
	analyzer := analysis.NewAnalyzer(registry, refs.NewIndex(registry), store)

	progress := func(phase string, pct float64) {
		fmt.Printf("\r\033[K%s (%.0f%%)", phase, pct*100)
	}

	result, err := analysis.RunPipeline(ctx, rootPath, analyzer, progress)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	fmt.Println() // Newline after progress

	// Write meta.json
	meta := map[string]any{
		"version": Version,
		"name":    filepath.Base(rootPath),
		"path":    rootPath,
		"stats": map[string]any{
			"files":   result.Files,
			"methods": result.Methods,
			"edges":   result.Edges,
		},
		"indexed_at": time.Now().UTC().Format(time.RFC3339),
	}

	metaPath := filepath.Join(bsemaDir, "meta.json")
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing meta.json: %w", err)
	}

	// Print summary
	color.Green("\n✓ Indexing complete")
	fmt.Printf("  Files:     %d\n", result.Files)
	fmt.Printf("  Methods:   %d\n", result.Methods)
	fmt.Printf("  Edges:     %d\n", result.Edges)
	fmt.Printf("  Duration:  %.2fs\n", result.DurationSecs)

	return nil
}

// UsagesCmd lists every call site of a method.
type UsagesCmd struct {
	Module string `arg:"" help:"Module reference (e.g. CommonUtils or Catalog.Products)"`
	Method string `arg:"" help:"Method name"`
	Kind   string `help:"Module kind tag" default:"CommonModule"`
}

// Run executes the usages command.
func (c *UsagesCmd) Run() error {
	analyzer, store, err := loadState(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	kind, err := parseKindTag(c.Kind)
	if err != nil {
		return err
	}

	usages := analyzer.Index().ReferencesTo(refs.NewSymbolKey(c.Module, kind, c.Method))
	if len(usages) == 0 {
		fmt.Printf("No usages of %s.%s found\n", c.Module, c.Method)
		return nil
	}

	fmt.Printf("## Usages of %s.%s\n\n", c.Module, c.Method)
	for _, ref := range usages {
		printReference(ref)
	}
	fmt.Printf("\n%d usage(s)\n", len(usages))

	return nil
}

// RefsCmd lists outgoing references of a document.
type RefsCmd struct {
	URI    string `arg:"" help:"Document URI"`
	Method string `help:"Restrict to call sites inside this method"`
	At     string `help:"Resolve the single reference at line:character instead"`
}

// Run executes the refs command.
func (c *RefsCmd) Run() error {
	analyzer, store, err := loadState(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	index := analyzer.Index()

	if c.At != "" {
		pos, err := parsePosition(c.At)
		if err != nil {
			return err
		}
		ref, ok := index.ReferenceAt(c.URI, pos)
		if !ok {
			fmt.Printf("No reference at %s:%s\n", c.URI, c.At)
			return nil
		}
		fmt.Printf("%s.%s.%s\n", ref.Target.Module, ref.Target.Kind.Tag(), ref.Target.Name)
		printReference(ref)
		return nil
	}

	var outgoing []refs.Reference
	if c.Method != "" {
		doc, ok := analyzer.Registry().DocumentByURI(c.URI)
		if !ok {
			return fmt.Errorf("document %s is not indexed", c.URI)
		}
		sym, ok := doc.SymbolTree.MethodSymbol(c.Method)
		if !ok {
			return fmt.Errorf("method %s not found in %s", c.Method, c.URI)
		}
		outgoing = index.ReferencesFromSymbol(c.URI, sym)
	} else {
		outgoing = index.ReferencesFrom(c.URI)
	}

	if len(outgoing) == 0 {
		fmt.Println("No outgoing references found")
		return nil
	}

	fmt.Printf("## References from %s\n\n", c.URI)
	for _, ref := range outgoing {
		fmt.Printf("  %s -> %s.%s  (line %d)\n",
			symbolName(ref.From), ref.Target.Module, ref.To.Name, ref.SelectionRange.Start.Line+1)
	}
	fmt.Printf("\n%d reference(s)\n", len(outgoing))

	return nil
}

// DiagnoseCmd runs diagnostic rules over the index.
type DiagnoseCmd struct {
	URI        string   `arg:"" optional:"" help:"Check a single document instead of all"`
	Privileged []string `help:"Module names treated as privileged"`
}

// Run executes the diagnose command.
func (c *DiagnoseCmd) Run() error {
	analyzer, store, err := loadState(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := diagnostics.NewEngine(analyzer.Registry(), analyzer.Index(), diagnostics.Config{
		PrivilegedModules: c.Privileged,
	})

	var findings []diagnostics.Diagnostic
	if c.URI != "" {
		findings = engine.CheckDocument(c.URI)
	} else {
		findings = engine.CheckAll()
	}

	if len(findings) == 0 {
		color.Green("No findings")
		return nil
	}

	for _, d := range findings {
		fmt.Printf("%s:%d:%d  [%s] %s: %s\n",
			d.URI, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Code, d.Message)
	}
	fmt.Printf("\n%d finding(s)\n", len(findings))

	return nil
}

// LensesCmd lists run-test code lenses of a document.
type LensesCmd struct {
	URI    string `arg:"" help:"Document URI"`
	Runner string `help:"Test runner executable" default:"1testrunner"`
}

// Run executes the lenses command.
func (c *LensesCmd) Run() error {
	analyzer, store, err := loadState(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	doc, ok := analyzer.Registry().DocumentByURI(c.URI)
	if !ok {
		return fmt.Errorf("document %s is not indexed", c.URI)
	}

	lenses := codelens.NewRunTestSupplier(c.Runner).Lenses(doc)
	if len(lenses) == 0 {
		fmt.Println("No code lenses found")
		return nil
	}

	for _, lens := range lenses {
		fmt.Printf("%s:%d  %s\n    %s\n", lens.URI, lens.Range.Start.Line+1, lens.Title, lens.Command)
	}

	return nil
}

// ColorsCmd lists color literals in a source file.
type ColorsCmd struct {
	Path string `arg:"" help:"Path to a BSL source file"`
}

// Run executes the colors command.
func (c *ColorsCmd) Run() error {
	content, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Path, err)
	}

	doc := &modules.Document{URI: c.Path, Source: string(content)}
	infos := colors.DocumentColors(doc)
	if len(infos) == 0 {
		fmt.Println("No color literals found")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%s:%d:%d  rgb(%d, %d, %d)\n",
			info.URI, info.Range.Start.Line+1, info.Range.Start.Character+1,
			int(info.Color.Red*255), int(info.Color.Green*255), int(info.Color.Blue*255))
		for _, p := range colors.Presentations(info.Color) {
			fmt.Printf("    %s: %s\n", p.Label, p.Text)
		}
	}

	return nil
}

// WatchCmd enables watch mode with live re-indexing.
type WatchCmd struct {
	Path string `arg:"" optional:"" default:"." help:"Path to configuration source"`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	rootPath, err := filepath.Abs(c.Path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	analyzer, store, err := loadStateAt(rootPath, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Println("## Watch Mode")
	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n\n", rootPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping watch mode...")
		cancel()
	}()

	err = analysis.WatchConfiguration(ctx, rootPath, analyzer)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("watch error: %w", err)
	}

	fmt.Println("Watch mode stopped.")
	return nil
}

// MCPCmd starts the MCP server.
type MCPCmd struct {
	Privileged []string `help:"Module names treated as privileged"`
}

// Run executes the mcp command.
func (c *MCPCmd) Run() error {
	ctx := context.Background()
	analyzer, store, err := loadState(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := newMCPServer(analyzer, c.Privileged)

	// Note: No output to stderr - MCP server uses stdio for JSON-RPC only
	return server.Run(ctx, os.Stdin, os.Stdout)
}

// ServeCmd starts the MCP server with optional watch mode.
type ServeCmd struct {
	Watch      bool     `short:"w" help:"Enable file watching"`
	Privileged []string `help:"Module names treated as privileged"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	ctx := context.Background()
	analyzer, store, err := loadState(!c.Watch)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := newMCPServer(analyzer, c.Privileged)

	if c.Watch {
		fmt.Fprintln(os.Stderr, "Starting MCP server with watch mode...")

		rootPath, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}

		// Start watch mode in background
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			err := analysis.WatchConfiguration(watchCtx, rootPath, analyzer)
			if err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			}
		}()

		fmt.Fprintln(os.Stderr, "File watching enabled")
	} else {
		fmt.Fprintln(os.Stderr, "Starting MCP server...")
	}

	return server.Run(ctx, os.Stdin, os.Stdout)
}

// StatusCmd shows index status for current configuration.
type StatusCmd struct{}

// Run executes the status command.
func (c *StatusCmd) Run() error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	metaPath := filepath.Join(rootPath, ".bsema", "meta.json")
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no index found at %s. Run 'bsema analyze' first", rootPath)
		}
		return fmt.Errorf("reading meta.json: %w", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return fmt.Errorf("parsing meta.json: %w", err)
	}

	fmt.Printf("Index status for %s\n", rootPath)
	if version, ok := meta["version"].(string); ok {
		fmt.Printf("  Version:       %s\n", version)
	}
	if indexedAt, ok := meta["indexed_at"].(string); ok {
		fmt.Printf("  Last indexed:  %s\n", indexedAt)
	}
	if stats, ok := meta["stats"].(map[string]any); ok {
		if files, ok := stats["files"].(float64); ok {
			fmt.Printf("  Files:         %.0f\n", files)
		}
		if methods, ok := stats["methods"].(float64); ok {
			fmt.Printf("  Methods:       %.0f\n", methods)
		}
		if edges, ok := stats["edges"].(float64); ok {
			fmt.Printf("  Edges:         %.0f\n", edges)
		}
	}

	return nil
}

// CleanCmd deletes index for current configuration.
type CleanCmd struct {
	Force bool `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	bsemaDir := filepath.Join(rootPath, ".bsema")
	if _, err := os.Stat(bsemaDir); os.IsNotExist(err) {
		return fmt.Errorf("no index found at %s. Nothing to clean", rootPath)
	}

	if !c.Force {
		fmt.Printf("Delete index at %s? [y/N] ", bsemaDir)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(bsemaDir); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}

	color.Green("Deleted %s", bsemaDir)
	return nil
}

// Helper functions

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// loadState opens the on-disk index in the working directory and rebuilds
// the in-memory registry and reference index from it.
func loadState(readOnly bool) (*analysis.Analyzer, *storage.BadgerBackend, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting working directory: %w", err)
	}
	return loadStateAt(rootPath, readOnly)
}

func loadStateAt(rootPath string, readOnly bool) (*analysis.Analyzer, *storage.BadgerBackend, error) {
	dbPath := filepath.Join(rootPath, ".bsema", "badger")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("no index found at %s. Run 'bsema analyze' first", rootPath)
	}

	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, readOnly); err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	registry := modules.NewRegistry()
	analyzer := analysis.NewAnalyzer(registry, refs.NewIndex(registry), store)
	if err := analyzer.Restore(context.Background()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("restoring index: %w", err)
	}

	return analyzer, store, nil
}

func newMCPServer(analyzer *analysis.Analyzer, privileged []string) *mcp.Server {
	engine := diagnostics.NewEngine(analyzer.Registry(), analyzer.Index(), diagnostics.Config{
		PrivilegedModules: privileged,
	})
	return mcp.NewServer(analyzer.Registry(), analyzer.Index(), engine)
}

func parseKindTag(tag string) (modules.Kind, error) {
	kind, err := modules.KindFromTag(tag)
	if err == nil {
		return kind, nil
	}
	for _, k := range modules.Kinds() {
		if strings.EqualFold(string(k), tag) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown module kind %q", tag)
}

func parsePosition(s string) (text.Position, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return text.Position{}, fmt.Errorf("position must be line:character, got %q", s)
	}
	line, err := strconv.Atoi(parts[0])
	if err != nil {
		return text.Position{}, fmt.Errorf("bad line in %q: %w", s, err)
	}
	char, err := strconv.Atoi(parts[1])
	if err != nil {
		return text.Position{}, fmt.Errorf("bad character in %q: %w", s, err)
	}
	return text.Position{Line: line, Character: char}, nil
}

func printReference(ref refs.Reference) {
	fmt.Printf("  %s:%d:%d  in %s\n",
		ref.URI, ref.SelectionRange.Start.Line+1, ref.SelectionRange.Start.Character+1, symbolName(ref.From))
}

func symbolName(sym *symbols.Symbol) string {
	if sym == nil {
		return "<module>"
	}
	return sym.Name
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	// Commands
	Analyze  AnalyzeCmd  `cmd:"" help:"Index a configuration dump"`
	Usages   UsagesCmd   `cmd:"" help:"List call sites of a method"`
	Refs     RefsCmd     `cmd:"" help:"List outgoing references of a document"`
	Diagnose DiagnoseCmd `cmd:"" help:"Run diagnostic rules over the index"`
	Lenses   LensesCmd   `cmd:"" help:"List run-test code lenses of a document"`
	Colors   ColorsCmd   `cmd:"" help:"List color literals in a source file"`
	Watch    WatchCmd    `cmd:"" help:"Watch mode with live re-indexing"`
	Setup    SetupCmd    `cmd:"" help:"Configure MCP for Claude Code / Cursor"`
	MCP      MCPCmd      `cmd:"" help:"Start MCP server (stdio transport)"`
	Serve    ServeCmd    `cmd:"" help:"Start MCP server with optional watch mode"`
	Status   StatusCmd   `cmd:"" help:"Show index status for current configuration"`
	Clean    CleanCmd    `cmd:"" help:"Delete index for current configuration"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("bsema"),
		kong.Description("Semantic reference index for 1C:Enterprise configurations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
