package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCmd_Run(t *testing.T) {
	t.Run("SetupQwenLocal", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		os.Chdir(tmpDir)

		cmd := &SetupCmd{
			Qwen:   true,
			Local:  true,
			Format: "json",
		}

		err := cmd.Run()
		assert.NoError(t, err)

		mcpPath := filepath.Join(tmpDir, ".qwen", "mcp.json")
		_, err = os.Stat(mcpPath)
		assert.NoError(t, err)
	})

	t.Run("SetupQwenGlobal", func(t *testing.T) {
		tmpHome := t.TempDir()
		origHome := os.Getenv("HOME")
		os.Setenv("HOME", tmpHome)
		defer os.Setenv("HOME", origHome)

		cmd := &SetupCmd{
			Qwen:   true,
			Global: true,
			Format: "json",
		}

		err := cmd.Run()
		assert.NoError(t, err)

		globalPath := filepath.Join(tmpHome, ".qwen", "global", "mcp.json")
		_, err = os.Stat(globalPath)
		assert.NoError(t, err)
	})

	t.Run("SetupClaude", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		os.Chdir(tmpDir)

		cmd := &SetupCmd{
			Claude: true,
			Local:  true,
			Format: "json",
		}

		err := cmd.Run()
		assert.NoError(t, err)

		mcpPath := filepath.Join(tmpDir, ".claude", "mcp.json")
		_, err = os.Stat(mcpPath)
		assert.NoError(t, err)
	})

	t.Run("SetupCursor", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)
		os.Chdir(tmpDir)

		cmd := &SetupCmd{
			Cursor: true,
			Local:  true,
			Format: "json",
		}

		err := cmd.Run()
		assert.NoError(t, err)

		mcpPath := filepath.Join(tmpDir, ".cursor", "mcp.json")
		_, err = os.Stat(mcpPath)
		assert.NoError(t, err)
	})

	t.Run("SetupDefault", func(t *testing.T) {
		// When no specific client is specified, should output to stdout
		cmd := &SetupCmd{
			Format: "json",
		}

		err := cmd.Run()
		assert.NoError(t, err)
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		cmd := &SetupCmd{
			Qwen:   true,
			Format: "invalid",
		}

		err := cmd.Run()
		assert.Error(t, err)
	})
}

func TestServerConfigGeneration(t *testing.T) {
	t.Parallel()

	config := generateServerConfig()

	assert.NotNil(t, config)
	assert.Contains(t, config, "mcpServers")

	mcpServers := config["mcpServers"].(map[string]any)
	assert.Contains(t, mcpServers, "bsema")

	server := mcpServers["bsema"].(map[string]any)
	assert.Equal(t, "bsema", server["command"])
	assert.Contains(t, server["args"], "serve")
	assert.Contains(t, server["args"], "--watch")
}

func TestConfigPaths(t *testing.T) {
	t.Parallel()

	t.Run("GetLocalConfigPath", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := getLocalConfigPath(tmpDir, "qwen")
		assert.Equal(t, filepath.Join(tmpDir, ".qwen", "mcp.json"), path)
	})

	t.Run("GetClientConfigDir", func(t *testing.T) {
		assert.Equal(t, ".qwen", getClientConfigDir("qwen"))
		assert.Equal(t, ".claude", getClientConfigDir("claude"))
		assert.Equal(t, ".cursor", getClientConfigDir("cursor"))
	})
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	t.Run("WriteJSONConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		err := writeConfig(configPath, generateServerConfig(), "json")
		assert.NoError(t, err)

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)

		var loaded map[string]any
		err = json.Unmarshal(content, &loaded)
		assert.NoError(t, err)
		assert.Contains(t, loaded, "mcpServers")
	})

	t.Run("WriteConfigCreatesDirectory", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

		err := writeConfig(configPath, map[string]any{"test": "value"}, "json")
		assert.NoError(t, err)

		_, err = os.Stat(configPath)
		assert.NoError(t, err)
	})
}
