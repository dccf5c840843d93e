package orchestrator

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	uemSuffix       = ".uem"
	audioListSuffix = "audioList.txt"
)

// ConfigurationError reports missing or ambiguous corpus index data. It
// always aborts the run.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// findIndexFile returns the single file under root whose name ends with
// suffix and, when task is set, contains task.
func findIndexFile(root, suffix, task string) (string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, suffix) && (task == "" || strings.Contains(name, task)) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}

	switch len(found) {
	case 0:
		return "", configErrorf("no file ending with %q under %s", suffix, root)
	case 1:
		return found[0], nil
	default:
		return "", configErrorf("%d files ending with %q under %s (%s); are several tasks colocated? set data.task",
			len(found), suffix, root, strings.Join(found, ", "))
	}
}

// readLines returns the trimmed non-empty lines of r that are not ';'
// comments.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

type uemEntry struct {
	ID      string
	Channel string
	Start   float64
	End     float64
}

func parseUEM(r io.Reader) ([]uemEntry, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	out := make([]uemEntry, 0, len(lines))
	for i, line := range lines {
		f := strings.Fields(line)
		if len(f) < 4 {
			return nil, configErrorf("uem entry %d: want 4 fields, got %q", i, line)
		}
		start, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, configErrorf("uem entry %d: start %q", i, f[2])
		}
		end, err := strconv.ParseFloat(f[3], 64)
		if err != nil {
			return nil, configErrorf("uem entry %d: end %q", i, f[3])
		}
		out = append(out, uemEntry{ID: f[0], Channel: f[1], Start: start, End: end})
	}
	return out, nil
}

// parseAudioList maps conversation ids to their audio files. Paths keep
// their last two components and are re-rooted under baseDir.
func parseAudioList(r io.Reader, baseDir string) (map[string][]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	out := map[string][]string{}
	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 2 {
			return nil, configErrorf("audio list entry without files: %q", line)
		}
		for _, p := range f[1:] {
			out[f[0]] = append(out[f[0]], rebase(baseDir, p))
		}
	}
	return out, nil
}

func rebase(baseDir, p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return filepath.Join(append([]string{baseDir}, parts...)...)
}

func readIndex[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return parse(f)
}
