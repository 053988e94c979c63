package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/credcascade/configs"
	"github.com/Aman-CERP/credcascade/internal/config"
)

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// project is a temporary project with a config file and the example graph.
type project struct {
	dir        string
	configPath string
	graphPath  string
	dataDir    string
}

func newProject(t *testing.T, backend string) project {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"CREDCASCADE_INDEX_BACKEND",
		"CREDCASCADE_DATA_DIR",
		"CREDCASCADE_MAX_DEPTH",
		"CREDCASCADE_CYCLE_GUARD",
		"CREDCASCADE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	p := project{
		dir:        dir,
		configPath: filepath.Join(dir, config.ProjectFileName),
		graphPath:  filepath.Join(dir, ExampleGraphFileName),
		dataDir:    filepath.Join(dir, ".credcascade"),
	}

	cfg := config.NewConfig()
	cfg.Index.Backend = backend
	cfg.Logging.Level = "error"
	require.NoError(t, cfg.WriteYAML(p.configPath))
	require.NoError(t, os.WriteFile(p.graphPath, []byte(configs.ExampleGraph), 0o644))

	return p
}

func (p project) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append(args, "--config", p.configPath)...)
}
