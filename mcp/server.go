// Package mcp provides the MCP (Model Context Protocol) server for bsema.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tolkachev/bsema/internal/diagnostics"
	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
	"github.com/tolkachev/bsema/internal/text"
)

// Server exposes the reference index over MCP.
type Server struct {
	registry *modules.Registry
	index    *refs.Index
	engine   *diagnostics.Engine
	server   *mcp.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server over the given semantic state.
func NewServer(registry *modules.Registry, index *refs.Index, engine *diagnostics.Engine) *Server {
	s := &Server{
		registry: registry,
		index:    index,
		engine:   engine,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "bsema",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "bsema_usages",
			Description: "Find every call site of a method across the analyzed configuration.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"module": {Type: "string", Description: "Module reference, e.g. CommonUtils or Catalog.Items"},
					"kind":   {Type: "string", Description: "Module kind, e.g. CommonModule, ObjectModule, FormModule. Defaults to CommonModule"},
					"method": {Type: "string", Description: "Method name"},
				},
				Required: []string{"module", "method"},
			},
		},
		{
			Name:        "bsema_refs_from",
			Description: "List every outgoing reference of a document, optionally restricted to one method.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"uri":    {Type: "string", Description: "Document path relative to the configuration root"},
					"method": {Type: "string", Description: "Restrict to call sites inside this method"},
				},
				Required: []string{"uri"},
			},
		},
		{
			Name:        "bsema_reference_at",
			Description: "Resolve the reference under a source position, if any.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"uri":       {Type: "string", Description: "Document path relative to the configuration root"},
					"line":      {Type: "integer", Description: "Zero-based line"},
					"character": {Type: "integer", Description: "Zero-based character (rune) column"},
				},
				Required: []string{"uri", "line", "character"},
			},
		},
		{
			Name:        "bsema_diagnostics",
			Description: "Run analysis rules and report findings, for one document or the whole configuration.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"uri": {Type: "string", Description: "Document path; omit to check every analyzed document"},
				},
			},
		},
		{
			Name:        "bsema_stats",
			Description: "Summarize the index: analyzed documents, edge and target counts.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "bsema://stats",
			Name:        "Index Statistics",
			Description: "Size of the reference index and the module registry",
			MimeType:    "text/plain",
		},
		{
			URI:         "bsema://modules",
			Name:        "Analyzed Modules",
			Description: "Every module currently registered, with kind and document path",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "bsema_usages":
		module, _ := args["module"].(string)
		kind, _ := args["kind"].(string)
		method, _ := args["method"].(string)
		return s.handleUsages(module, kind, method)
	case "bsema_refs_from":
		uri, _ := args["uri"].(string)
		method, _ := args["method"].(string)
		return s.handleRefsFrom(uri, method)
	case "bsema_reference_at":
		uri, _ := args["uri"].(string)
		line, _ := args["line"].(float64)
		character, _ := args["character"].(float64)
		return s.handleReferenceAt(uri, int(line), int(character))
	case "bsema_diagnostics":
		uri, _ := args["uri"].(string)
		return s.handleDiagnostics(uri)
	case "bsema_stats":
		return s.handleStats()
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "bsema://stats":
		result, _ := s.handleStats()
		return result, nil
	case "bsema://modules":
		return s.modulesOverview(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "bsema",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func (s *Server) handleUsages(module, kind, method string) (string, error) {
	if module == "" || method == "" {
		return "Both module and method must be provided", nil
	}

	moduleKind, err := parseKind(kind)
	if err != nil {
		return err.Error(), nil
	}

	key := refs.NewSymbolKey(module, moduleKind, method)
	references := s.index.ReferencesTo(key)
	if len(references) == 0 {
		return fmt.Sprintf("No usages of %s.%s found", module, method), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d usage(s) of **%s.%s**:\n\n", len(references), module, method))
	for _, ref := range references {
		sb.WriteString(formatReference(ref))
	}
	sb.WriteString("\nNext: Use `bsema_refs_from` on a listed document to see its other dependencies.")
	return sb.String(), nil
}

func (s *Server) handleRefsFrom(uri, method string) (string, error) {
	if uri == "" {
		return "No document provided", nil
	}

	var references []refs.Reference
	if method == "" {
		references = s.index.ReferencesFrom(uri)
	} else {
		doc, ok := s.registry.DocumentByURI(uri)
		if !ok {
			return fmt.Sprintf("Document %s is not analyzed", uri), nil
		}
		sym, ok := doc.SymbolTree.MethodSymbol(method)
		if !ok {
			return fmt.Sprintf("Method %s is not declared in %s", method, uri), nil
		}
		references = s.index.ReferencesFromSymbol(uri, sym)
	}

	if len(references) == 0 {
		return fmt.Sprintf("No outgoing references found in %s", uri), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d outgoing reference(s) in **%s**:\n\n", len(references), uri))
	for _, ref := range references {
		sb.WriteString(fmt.Sprintf("- %s.%s, called from %s at %s\n",
			ref.Target.Module, ref.To.Name, ref.From.Name, ref.SelectionRange))
	}
	return sb.String(), nil
}

func (s *Server) handleReferenceAt(uri string, line, character int) (string, error) {
	if uri == "" {
		return "No document provided", nil
	}

	pos := text.Position{Line: line, Character: character}
	ref, ok := s.index.ReferenceAt(uri, pos)
	if !ok {
		return fmt.Sprintf("No reference at %s:%d:%d", uri, line, character), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference at %s:%d:%d:\n\n", uri, line, character))
	sb.WriteString(fmt.Sprintf("- Target: **%s.%s**\n", ref.Target.Module, ref.To.Name))
	sb.WriteString(fmt.Sprintf("- Called from: %s\n", ref.From.Name))
	sb.WriteString(fmt.Sprintf("- Call site: %s\n", ref.SelectionRange))
	return sb.String(), nil
}

func (s *Server) handleDiagnostics(uri string) (string, error) {
	if s.engine == nil {
		return "Diagnostics are not configured", nil
	}

	var findings []diagnostics.Diagnostic
	if uri == "" {
		findings = s.engine.CheckAll()
	} else {
		findings = s.engine.CheckDocument(uri)
	}

	if len(findings) == 0 {
		return "No findings", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d finding(s):\n\n", len(findings)))
	for _, d := range findings {
		sb.WriteString(fmt.Sprintf("- [%s] %s at %s:%s (%s)\n", d.Severity, d.Code, d.URI, d.Range, d.Message))
	}
	return sb.String(), nil
}

func (s *Server) handleStats() (string, error) {
	stats := s.index.Stats()

	var sb strings.Builder
	sb.WriteString("# Reference Index Statistics\n\n")
	sb.WriteString(fmt.Sprintf("**Modules:** %d\n", s.registry.Len()))
	sb.WriteString(fmt.Sprintf("**Documents with edges:** %d\n", stats["documents"]))
	sb.WriteString(fmt.Sprintf("**Edges:** %d\n", stats["edges"]))
	sb.WriteString(fmt.Sprintf("**Distinct targets:** %d\n", stats["targets"]))
	return sb.String(), nil
}

func (s *Server) modulesOverview() string {
	docs := s.registry.Documents()
	sort.Slice(docs, func(a, b int) bool { return docs[a].MdoRef < docs[b].MdoRef })

	var sb strings.Builder
	sb.WriteString("# Analyzed Modules\n\n")
	if len(docs) == 0 {
		sb.WriteString("No modules analyzed yet. Run `bsema analyze` first.\n")
		return sb.String()
	}
	for _, doc := range docs {
		sb.WriteString(fmt.Sprintf("- %s (%s) - %s\n", doc.MdoRef, doc.Kind, doc.URI))
	}
	return sb.String()
}

// Helper functions

func formatReference(ref refs.Reference) string {
	return fmt.Sprintf("- %s, inside %s at %s\n", ref.URI, ref.From.Name, ref.SelectionRange)
}

func parseKind(kind string) (modules.Kind, error) {
	if kind == "" {
		return modules.CommonModule, nil
	}
	for _, known := range modules.Kinds() {
		if strings.EqualFold(string(known), kind) {
			return known, nil
		}
	}
	return modules.UnknownModule, fmt.Errorf("unknown module kind %q", kind)
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
