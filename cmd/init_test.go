package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	cmd, stdout, _ := newTestRootCmd(t, newInitCmd(), newRunCmd())
	cmd.SetArgs([]string{"init"})

	require.NoError(t, cmd.Execute())

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)

	assert.Contains(t, string(contents), "max_mutations: 20")
	assert.Contains(t, string(contents), "mutation_timeout: 15s")
	assert.Contains(t, string(contents), "{target}")
	assert.Contains(t, stdout.String(), "wrote mutscore.yaml")
}

func TestInitCmd_ErrorsWhenFileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	cmd, _, _ := newTestRootCmd(t, newInitCmd())
	cmd.SetArgs([]string{"init"})

	require.Error(t, cmd.Execute())

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "existing: true\n", string(contents))
}
