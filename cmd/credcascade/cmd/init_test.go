package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/credcascade/configs"
	"github.com/Aman-CERP/credcascade/internal/config"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

func TestInitCmd_WritesTemplate(t *testing.T) {
	// Given: an empty directory
	dir := t.TempDir()

	// When: running init
	out, err := execute(t, "init", "--dir", dir)

	// Then: the config template is written and loads cleanly
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	path := filepath.Join(dir, config.ProjectFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err = config.LoadFile(path)
	assert.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, ExampleGraphFileName))
}

func TestInitCmd_ExistingFile(t *testing.T) {
	// Given: an initialized directory with an edited config
	dir := t.TempDir()
	_, err := execute(t, "init", "--dir", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, config.ProjectFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	// When: running init again without --force
	_, err = execute(t, "init", "--dir", dir)

	// Then: it refuses and leaves the file alone
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeConfigInvalid, cerrors.GetCode(err))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))

	// When: running init with --force
	out, err := execute(t, "init", "--dir", dir, "--force")

	// Then: the old file is backed up and replaced
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up")
	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err = os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestInitCmd_ExampleGraph(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--dir", dir, "--example-graph")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ExampleGraphFileName))
	assert.Contains(t, out, "credcascade save credential_set cs-permit")
}
