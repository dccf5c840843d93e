package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConversionError is returned when the conversion tool fails or writes
// anything to its diagnostic stream.
type ConversionError struct {
	Source string
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %s", e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

type Converter struct {
	Tool   string
	Format string
	// SourceExt, when set, is the only extension handed to Tool.
	SourceExt string
	// Args builds the tool arguments for one file.
	Args func(src, dst string) []string
	log  *logrus.Entry
}

// NewConverter returns a converter driving sph2pipe-compatible tools.
func NewConverter(tool, format string, log *logrus.Entry) *Converter {
	return &Converter{
		Tool:   tool,
		Format: format,
		Args: func(src, dst string) []string {
			return []string{"-p", "-f", format, "-c", "1", src, dst}
		},
		log: log.WithField("component", "converter"),
	}
}

// Target is the path src is converted to.
func (c *Converter) Target(src string) string {
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(src), "."), c.Format) {
		return src
	}
	return swapExt(src, c.Format)
}

// Convert produces the decodable file for src and returns its path. Existing
// targets are reused.
func (c *Converter) Convert(ctx context.Context, src string) (string, error) {
	dst := c.Target(src)
	if dst == src {
		return dst, nil
	}
	if ext := strings.TrimPrefix(filepath.Ext(src), "."); c.SourceExt != "" && !strings.EqualFold(ext, c.SourceExt) {
		return "", &ConversionError{Source: src, Err: fmt.Errorf("unexpected extension %q, want %q", ext, c.SourceExt)}
	}
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	c.log.WithFields(logrus.Fields{"source": src, "target": dst}).Info("converting file")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Tool, c.Args(src, dst)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil || stderr.Len() > 0 {
		return "", &ConversionError{Source: src, Stderr: stderr.String(), Err: err}
	}
	return dst, nil
}
