// Package clients wraps the external collaborators of a corpus run: the
// format conversion tool and the waveform clipper.
package clients

import (
	"path/filepath"
	"strings"
)

// swapExt replaces the extension of path with ext (given without the dot).
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
