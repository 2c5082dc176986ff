package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkachev/bsema/internal/analysis"
	"github.com/tolkachev/bsema/internal/diagnostics"
	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
)

const utilsSource = `Procedure DoWork() Export
EndProcedure

Procedure Orphan()
EndProcedure
`

const formSource = `&AtClient
Procedure OnOpen(Cancel)
	CommonUtils.DoWork();
EndProcedure
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := modules.NewRegistry()
	index := refs.NewIndex(registry)
	analyzer := analysis.NewAnalyzer(registry, index, nil)

	ctx := context.Background()
	_, err := analyzer.AnalyzeFile(ctx, analysis.FileEntry{
		RelPath: "CommonModules/CommonUtils/Ext/Module.bsl",
		Content: []byte(utilsSource),
	})
	require.NoError(t, err)
	_, err = analyzer.AnalyzeFile(ctx, analysis.FileEntry{
		RelPath: "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl",
		Content: []byte(formSource),
	})
	require.NoError(t, err)

	engine := diagnostics.NewEngine(registry, index, diagnostics.Config{})
	return NewServer(registry, index, engine)
}

func TestListTools(t *testing.T) {
	t.Parallel()

	tools := newTestServer(t).ListTools()
	require.Len(t, tools, 5)

	names := make(map[string]bool)
	for _, tool := range tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description)
		require.NotNil(t, tool.InputSchema)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
	assert.True(t, names["bsema_usages"])
	assert.True(t, names["bsema_refs_from"])
	assert.True(t, names["bsema_reference_at"])
	assert.True(t, names["bsema_diagnostics"])
	assert.True(t, names["bsema_stats"])
}

func TestCallToolUsages(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	t.Run("FindsCallSites", func(t *testing.T) {
		result, err := server.CallTool(context.Background(), "bsema_usages", map[string]any{
			"module": "CommonUtils",
			"method": "DoWork",
		})
		require.NoError(t, err)
		assert.Contains(t, result, "1 usage(s)")
		assert.Contains(t, result, "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl")
		assert.Contains(t, result, "OnOpen")
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		result, err := server.CallTool(context.Background(), "bsema_usages", map[string]any{
			"module": "CommonUtils",
			"method": "Missing",
		})
		require.NoError(t, err)
		assert.Contains(t, result, "No usages")
	})

	t.Run("ExplicitKind", func(t *testing.T) {
		result, err := server.CallTool(context.Background(), "bsema_usages", map[string]any{
			"module": "CommonUtils",
			"kind":   "commonmodule",
			"method": "DoWork",
		})
		require.NoError(t, err)
		assert.Contains(t, result, "1 usage(s)")
	})

	t.Run("BadKind", func(t *testing.T) {
		result, err := server.CallTool(context.Background(), "bsema_usages", map[string]any{
			"module": "CommonUtils",
			"kind":   "Nonsense",
			"method": "DoWork",
		})
		require.NoError(t, err)
		assert.Contains(t, result, "unknown module kind")
	})
}

func TestCallToolRefsFrom(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	result, err := server.CallTool(context.Background(), "bsema_refs_from", map[string]any{
		"uri": "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "CommonUtils.DoWork")
	assert.Contains(t, result, "OnOpen")

	result, err = server.CallTool(context.Background(), "bsema_refs_from", map[string]any{
		"uri":    "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl",
		"method": "OnOpen",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "CommonUtils.DoWork")
}

func TestCallToolReferenceAt(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	// "\tCommonUtils.DoWork();" on line 2 - the name token spans 13..19.
	result, err := server.CallTool(context.Background(), "bsema_reference_at", map[string]any{
		"uri":       "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl",
		"line":      float64(2),
		"character": float64(15),
	})
	require.NoError(t, err)
	assert.Contains(t, result, "CommonUtils.DoWork")

	result, err = server.CallTool(context.Background(), "bsema_reference_at", map[string]any{
		"uri":       "Catalogs/Items/Forms/ItemForm/Ext/Form/Module.bsl",
		"line":      float64(0),
		"character": float64(0),
	})
	require.NoError(t, err)
	assert.Contains(t, result, "No reference at")
}

func TestCallToolDiagnostics(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	result, err := server.CallTool(context.Background(), "bsema_diagnostics", map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, result, "UnusedMethod")
	assert.Contains(t, result, "Orphan")
}

func TestCallToolStats(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	result, err := server.CallTool(context.Background(), "bsema_stats", nil)
	require.NoError(t, err)
	assert.Contains(t, result, "**Modules:** 2")
	assert.Contains(t, result, "**Edges:** 1")
}

func TestCallToolUnknown(t *testing.T) {
	t.Parallel()

	_, err := newTestServer(t).CallTool(context.Background(), "bsema_nope", nil)
	assert.Error(t, err)
}

func TestReadResources(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	stats, err := server.ReadResource(context.Background(), "bsema://stats")
	require.NoError(t, err)
	assert.Contains(t, stats, "Reference Index Statistics")

	mods, err := server.ReadResource(context.Background(), "bsema://modules")
	require.NoError(t, err)
	assert.Contains(t, mods, "CommonUtils")
	assert.Contains(t, mods, "Catalog.Items.Form.ItemForm")

	_, err = server.ReadResource(context.Background(), "bsema://nope")
	assert.Error(t, err)
}

func TestRunProtocol(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	requests := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"bsema_stats","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"nope"}`,
	}, "\n") + "\n"

	var stdout bytes.Buffer
	err := server.Run(context.Background(), strings.NewReader(requests), &stdout)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)

	var initResp map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &initResp))
	result := initResp["result"].(map[string]any)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])

	var errResp map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &errResp))
	assert.NotNil(t, errResp["error"])
}

func TestRunRequiresStreams(t *testing.T) {
	t.Parallel()

	err := newTestServer(t).Run(context.Background(), nil, nil)
	assert.Error(t, err)
}
