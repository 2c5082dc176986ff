package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/refs"
)

// writeConfigDump lays out a minimal designer dump with one common module,
// one form module calling into it and one test module.
func writeConfigDump(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"CommonModules/CommonUtils/Ext/Module.bsl": "Procedure DoWork() Export\nEndProcedure\n",
		"Catalogs/Products/Forms/ItemForm/Ext/Form/Module.bsl": "&AtClient\n" +
			"Procedure OnOpen(Cancel)\n" +
			"\tCommonUtils.DoWork();\n" +
			"EndProcedure\n",
		"tests/Smoke.os": "Procedure TestDoWork() Export\n\tCommonUtils.DoWork();\nEndProcedure\n",
	}

	for path, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// indexConfiguration writes a dump into a temp dir, indexes it and makes it
// the working directory for the remainder of the test.
func indexConfiguration(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	writeConfigDump(t, tmpDir)

	cmd := &AnalyzeCmd{Path: tmpDir}
	require.NoError(t, cmd.Run())

	origDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(tmpDir))

	return tmpDir
}

func TestAnalyzeCmd_Run(t *testing.T) {
	// Note: Not using t.Parallel() because some subtests change directories

	t.Run("AnalyzeConfiguration", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeConfigDump(t, tmpDir)

		cmd := &AnalyzeCmd{Path: tmpDir}
		err := cmd.Run()
		assert.NoError(t, err)

		// Verify .bsema directory was created
		bsemaDir := filepath.Join(tmpDir, ".bsema")
		_, err = os.Stat(bsemaDir)
		assert.NoError(t, err)

		// Verify meta.json was created
		metaPath := filepath.Join(bsemaDir, "meta.json")
		_, err = os.Stat(metaPath)
		assert.NoError(t, err)
	})

	t.Run("InvalidPath", func(t *testing.T) {
		cmd := &AnalyzeCmd{Path: "/nonexistent/path"}
		assert.Error(t, cmd.Run())
	})

	t.Run("NotADirectory", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		cmd := &AnalyzeCmd{Path: tmpFile}
		assert.Error(t, cmd.Run())
	})
}

func TestLoadState(t *testing.T) {
	t.Run("NoIndex", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		require.NoError(t, os.Chdir(tmpDir))

		analyzer, store, err := loadState(true)
		assert.Error(t, err)
		assert.Nil(t, analyzer)
		assert.Nil(t, store)
	})

	t.Run("RestoresIndex", func(t *testing.T) {
		indexConfiguration(t)

		analyzer, store, err := loadState(true)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, 3, analyzer.Registry().Len())

		key := refs.NewSymbolKey("CommonUtils", modules.CommonModule, "DoWork")
		usages := analyzer.Index().ReferencesTo(key)
		assert.Len(t, usages, 2)
	})
}

func TestUsagesCmd_Run(t *testing.T) {
	indexConfiguration(t)

	t.Run("FindsUsages", func(t *testing.T) {
		cmd := &UsagesCmd{Module: "CommonUtils", Method: "DoWork", Kind: "CommonModule"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		cmd := &UsagesCmd{Module: "CommonUtils", Method: "Missing", Kind: "CommonModule"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("BadKind", func(t *testing.T) {
		cmd := &UsagesCmd{Module: "CommonUtils", Method: "DoWork", Kind: "Bogus"}
		assert.Error(t, cmd.Run())
	})
}

func TestRefsCmd_Run(t *testing.T) {
	indexConfiguration(t)
	formURI := "Catalogs/Products/Forms/ItemForm/Ext/Form/Module.bsl"

	t.Run("ListsOutgoing", func(t *testing.T) {
		cmd := &RefsCmd{URI: formURI}
		assert.NoError(t, cmd.Run())
	})

	t.Run("FilterByMethod", func(t *testing.T) {
		cmd := &RefsCmd{URI: formURI, Method: "OnOpen"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		cmd := &RefsCmd{URI: formURI, Method: "Missing"}
		assert.Error(t, cmd.Run())
	})

	t.Run("UnknownDocument", func(t *testing.T) {
		cmd := &RefsCmd{URI: "nope.bsl", Method: "OnOpen"}
		assert.Error(t, cmd.Run())
	})

	t.Run("ReferenceAt", func(t *testing.T) {
		cmd := &RefsCmd{URI: formURI, At: "2:15"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("BadPosition", func(t *testing.T) {
		cmd := &RefsCmd{URI: formURI, At: "nonsense"}
		assert.Error(t, cmd.Run())
	})
}

func TestDiagnoseCmd_Run(t *testing.T) {
	indexConfiguration(t)

	t.Run("CheckAll", func(t *testing.T) {
		cmd := &DiagnoseCmd{Privileged: []string{"CommonUtils"}}
		assert.NoError(t, cmd.Run())
	})

	t.Run("SingleDocument", func(t *testing.T) {
		cmd := &DiagnoseCmd{URI: "CommonModules/CommonUtils/Ext/Module.bsl"}
		assert.NoError(t, cmd.Run())
	})
}

func TestLensesCmd_Run(t *testing.T) {
	indexConfiguration(t)

	t.Run("TestModule", func(t *testing.T) {
		cmd := &LensesCmd{URI: "tests/Smoke.os", Runner: "1testrunner"}
		assert.NoError(t, cmd.Run())
	})

	t.Run("UnknownDocument", func(t *testing.T) {
		cmd := &LensesCmd{URI: "nope.os", Runner: "1testrunner"}
		assert.Error(t, cmd.Run())
	})
}

func TestColorsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("FindsColors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Module.bsl")
		source := "Цвет = Новый Цвет(255, 0, 0);\n"
		require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

		cmd := &ColorsCmd{Path: path}
		assert.NoError(t, cmd.Run())
	})

	t.Run("MissingFile", func(t *testing.T) {
		cmd := &ColorsCmd{Path: "/nonexistent/Module.bsl"}
		assert.Error(t, cmd.Run())
	})
}

func TestStatusCmd_Run(t *testing.T) {
	t.Run("StatusWithNoIndex", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		require.NoError(t, os.Chdir(tmpDir))

		cmd := &StatusCmd{}
		assert.Error(t, cmd.Run())
	})

	t.Run("StatusWithIndex", func(t *testing.T) {
		indexConfiguration(t)

		cmd := &StatusCmd{}
		assert.NoError(t, cmd.Run())
	})
}

func TestCleanCmd_Run(t *testing.T) {
	t.Run("CleanWithNoIndex", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		require.NoError(t, os.Chdir(tmpDir))

		cmd := &CleanCmd{Force: true}
		assert.Error(t, cmd.Run())
	})

	t.Run("CleanWithIndex", func(t *testing.T) {
		tmpDir := indexConfiguration(t)

		cmd := &CleanCmd{Force: true}
		assert.NoError(t, cmd.Run())

		_, err := os.Stat(filepath.Join(tmpDir, ".bsema"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestParseKindTag(t *testing.T) {
	t.Parallel()

	kind, err := parseKindTag("CommonModule")
	require.NoError(t, err)
	assert.Equal(t, modules.CommonModule, kind)

	kind, err = parseKindTag("formmodule")
	require.NoError(t, err)
	assert.Equal(t, modules.FormModule, kind)

	_, err = parseKindTag("Bogus")
	assert.Error(t, err)
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	pos, err := parsePosition("2:15")
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 15, pos.Character)

	_, err = parsePosition("2")
	assert.Error(t, err)

	_, err = parsePosition("a:b")
	assert.Error(t, err)
}
