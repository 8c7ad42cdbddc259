package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	for _, dir := range []string{
		filepath.Join(tmpDir, ".config", "gnoccur"),
		filepath.Join(tmpDir, ".cache", "gnoccur"),
		filepath.Join(tmpDir, ".local", "share", "gnoccur", "logs"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureDirs(tmpDir))
}

func TestTouchDir_ExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	existingDir := filepath.Join(tmpDir, "existing")
	require.NoError(t, os.MkdirAll(existingDir, 0755))

	require.NoError(t, touchDir(existingDir))

	info, err := os.Stat(existingDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestEnsureConfigFile_CreatesFile verifies config file
// is created from the embedded template.
func TestEnsureConfigFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureConfigFile(tmpDir))

	configPath := filepath.Join(tmpDir, ".config", "gnoccur",
		"config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content))
}

// TestEnsureConfigFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureConfigFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureConfigFile(tmpDir))

	configPath := filepath.Join(tmpDir, ".config", "gnoccur",
		"config.yaml")
	customContent := "# Custom config\nprovider: gbif"
	require.NoError(t,
		os.WriteFile(configPath, []byte(customContent), 0644))

	require.NoError(t, EnsureConfigFile(tmpDir))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing config file should not be overwritten")
}

func TestEnsureAssaysFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureAssaysFile(tmpDir))

	assaysPath := filepath.Join(tmpDir, ".config", "gnoccur",
		"assays.yaml")
	content, err := os.ReadFile(assaysPath)
	require.NoError(t, err)
	assert.Equal(t, AssaysYAML, string(content))
}

func TestEnsureAssaysFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureAssaysFile(tmpDir))

	assaysPath := filepath.Join(tmpDir, ".config", "gnoccur",
		"assays.yaml")
	customContent := "assays:\n  - name: coi"
	require.NoError(t,
		os.WriteFile(assaysPath, []byte(customContent), 0644))

	require.NoError(t, EnsureAssaysFile(tmpDir))

	content, err := os.ReadFile(assaysPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content))
}

// TestEmbeddedTemplates verifies the embedded templates carry the
// sections the bootstrap depends on.
func TestEmbeddedTemplates(t *testing.T) {
	assert.Contains(t, ConfigYAML, "provider")
	assert.Contains(t, ConfigYAML, "retry")
	assert.Contains(t, ConfigYAML, "log")
	assert.Contains(t, AssaysYAML, "assays")
}
