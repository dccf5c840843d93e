package clients

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/rt09-segmenter/logger"
)

func TestConverter_Target(t *testing.T) {
	c := NewConverter("sph2pipe", "wav", logger.Discard())
	assert.Equal(t, "/data/sph/EDI_1.wav", c.Target("/data/sph/EDI_1.sph"))
	assert.Equal(t, "/data/EDI_1.WAV", c.Target("/data/EDI_1.WAV"))
}

func TestConverter_RunsTool(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.sph")
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0o644))

	c := NewConverter("cp", "wav", logger.Discard())
	c.Args = func(src, dst string) []string { return []string{src, dst} }

	dst, err := c.Convert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.wav"), dst)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(got))
}

func TestConverter_SkipsExistingTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.sph")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav"), []byte("done"), 0o644))

	c := NewConverter("/nonexistent/tool", "wav", logger.Discard())
	dst, err := c.Convert(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.wav"), dst)
}

func TestConverter_DiagnosticsAreFatal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.sph")

	c := NewConverter("sh", "wav", logger.Discard())
	c.Args = func(src, dst string) []string {
		return []string{"-c", "echo 'bad header' >&2; touch " + dst}
	}

	_, err := c.Convert(context.Background(), src)
	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, src, ce.Source)
	assert.Contains(t, ce.Error(), "bad header")
}

func TestConverter_ToolFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.sph")
	c := NewConverter("false", "wav", logger.Discard())
	c.Args = func(string, string) []string { return nil }

	_, err := c.Convert(context.Background(), src)
	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Error(t, ce.Unwrap())
}

func TestConverter_RejectsUnexpectedSource(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.flac")
	c := NewConverter("cp", "wav", logger.Discard())
	c.SourceExt = "sph"

	_, err := c.Convert(context.Background(), src)
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "unexpected extension")
}
