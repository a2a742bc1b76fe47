package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConverter records calls and returns scripted results keyed by the
// input's base name.
type stubConverter struct {
	calls   []string
	results map[string]FileResult
}

func (c *stubConverter) Convert(ctx context.Context, inputPath, outputPath string) FileResult {
	c.calls = append(c.calls, inputPath)
	base := filepath.Base(inputPath)
	if r, ok := c.results[base]; ok {
		r.Input, r.Output = inputPath, outputPath
		return r
	}
	// Default: pretend success and produce the output file.
	_ = os.WriteFile(outputPath, []byte("%PDF-1.7\n%%EOF"), 0o644)
	return FileResult{Input: inputPath, Output: outputPath, Status: StatusOK, Pages: 1}
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n%%EOF"), 0o644))
	}
}

func testConfig(in, out string) Config {
	cfg := DefaultConfig()
	cfg.InputDir = in
	cfg.OutputDir = out
	return cfg
}

func TestRunMirrorsDirectoryTree(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf", "sub/b.PDF", "sub/deeper/c.pdf", "notes.txt")

	conv := &stubConverter{}
	summary, err := Run(context.Background(), conv, testConfig(in, out), zerolog.Nop())
	require.NoError(t, err)

	assert.Len(t, conv.calls, 3, "only pdf files are converted, extension match is case-insensitive")
	assert.Len(t, summary.Results, 3)
	assert.Equal(t, 3, summary.Count(StatusOK))
	assert.True(t, summary.Clean())

	assert.FileExists(t, filepath.Join(out, "a.pdf"))
	assert.FileExists(t, filepath.Join(out, "sub", "b.PDF"))
	assert.FileExists(t, filepath.Join(out, "sub", "deeper", "c.pdf"))
}

func TestRunNonRecursive(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf", "sub/b.pdf")

	cfg := testConfig(in, out)
	cfg.Recursive = false

	conv := &stubConverter{}
	summary, err := Run(context.Background(), conv, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, summary.Results, 1)
}

// One corrupt file and one valid file: the valid output exists, the corrupt
// one is reported failed, and the batch itself still completes.
func TestRunContinuesPastFailures(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "good.pdf", "corrupt.pdf")

	conv := &stubConverter{results: map[string]FileResult{
		"corrupt.pdf": {Status: StatusFailed, Err: fmt.Errorf("open source: not a pdf")},
	}}
	summary, err := Run(context.Background(), conv, testConfig(in, out), zerolog.Nop())
	require.NoError(t, err, "a file failure never aborts the run")

	assert.Equal(t, 1, summary.Count(StatusOK))
	assert.Equal(t, 1, summary.Count(StatusFailed))
	assert.False(t, summary.Clean())
	assert.FileExists(t, filepath.Join(out, "good.pdf"))
	assert.NoFileExists(t, filepath.Join(out, "corrupt.pdf"))
}

func TestRunOverwriteGuard(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.pdf"), []byte("existing"), 0o644))

	conv := &stubConverter{}
	summary, err := Run(context.Background(), conv, testConfig(in, out), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, conv.calls, "existing output is not reconverted")
	assert.Equal(t, 1, summary.Count(StatusSkipped))

	cfg := testConfig(in, out)
	cfg.Overwrite = true
	summary, err = Run(context.Background(), conv, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, conv.calls, 1)
	assert.Equal(t, 1, summary.Count(StatusOK))
}

func TestRunPartialCounted(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf")

	conv := &stubConverter{results: map[string]FileResult{
		"a.pdf": {Status: StatusPartial, Err: fmt.Errorf("metadata injection: boom")},
	}}
	summary, err := Run(context.Background(), conv, testConfig(in, out), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(StatusPartial))
	assert.False(t, summary.Clean())
}

func TestRunValidatesConfig(t *testing.T) {
	_, err := Run(context.Background(), &stubConverter{}, Config{}, zerolog.Nop())
	assert.Error(t, err)

	cfg := testConfig(t.TempDir(), t.TempDir())
	cfg.Synth.DPI = -1
	_, err = Run(context.Background(), &stubConverter{}, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunCanceledContext(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, "a.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &stubConverter{}, testConfig(in, out), zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "partial", StatusPartial.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
