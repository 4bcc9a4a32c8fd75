package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiffs2pdfs/files_manager"
	"tiffs2pdfs/tiff_reader/tifftest"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunConvertsTree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "box1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	tifftest.Write(t, filepath.Join(dir, "a.tif"),
		tifftest.Page{Width: 12, Height: 16},
		tifftest.Page{Width: 12, Height: 16, Fill: 255},
	)
	tifftest.Write(t, filepath.Join(dir, "b.tiff"), tifftest.Page{Width: 16, Height: 12})

	stdout, _, err := execute(t, root)
	require.NoError(t, err)

	assert.Contains(t, stdout, "loaded 2 tiffs in 1 dirs from under "+root)
	assert.Contains(t, stdout, "processing tiffs in dir: ["+dir+"], tiff count: [2], outputting to: ["+filepath.Join(dir, "a.pdf")+"]")

	n, err := api.PageCountFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunEmptyRoot(t *testing.T) {
	root := t.TempDir()
	stdout, _, err := execute(t, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "loaded 0 tiffs in 0 dirs")
}

func TestRunFailuresDoNotFailTheRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.tif"), []byte("not a tiff"), 0o644))

	stdout, _, err := execute(t, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "failed to process tiff file "+filepath.Join(root, "bad.tif"))
	assert.Contains(t, stdout, "failed to process tiffs in dir "+root)
}

func TestRunMissingRoot(t *testing.T) {
	_, stderr, err := execute(t, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, files_manager.ErrRootNotFound)
	assert.Contains(t, stderr, "root directory not found")
}

func TestRunMissingRootIsLogged(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	logFile := filepath.Join(t.TempDir(), "run.log")

	_, _, err := execute(t, "--log-file", logFile, root)
	require.Error(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"error"`)
	assert.Contains(t, string(data), `"message":"run aborted"`)
	assert.Contains(t, string(data), "root directory not found")
}

func TestRunArgumentCount(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)

	_, _, err = execute(t, "a", "b")
	assert.Error(t, err)
}

func TestRunDebugAndLogFile(t *testing.T) {
	root := t.TempDir()
	tifftest.Write(t, filepath.Join(root, "p.tif"), tifftest.Page{Width: 2, Height: 2})
	logFile := filepath.Join(t.TempDir(), "run.log")
	cfg := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: debug\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfg, "--log-file", logFile, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "added page")
	assert.Contains(t, stdout, "using config file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"wrote pdf"`)
}
