// Package voxceleb draws a random speaker subset from a VoxCeleb tree so a
// training run can be limited to a fixed number of identities.
package voxceleb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maastricht-university/rt09-segmenter/packer"
)

// SpeakerList returns the speaker directories directly under root, sorted.
func SpeakerList(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// SubsetName is the file WriteSubset writes for count speakers.
func SubsetName(count int) string {
	return fmt.Sprintf("speakers_voxceleb_%d.txt", count)
}

// WriteSubset shuffles the speakers of root and writes the first count of
// them, one per line, to outDir. Fewer lines are written when root holds
// fewer speakers. It returns the path written.
func WriteSubset(root string, count int, rng packer.Shuffler, outDir string) (string, error) {
	if count <= 0 {
		return "", errors.New("voxceleb: count must be positive")
	}
	speakers, err := SpeakerList(root)
	if err != nil {
		return "", fmt.Errorf("voxceleb: list %s: %w", root, err)
	}
	if len(speakers) == 0 {
		return "", fmt.Errorf("voxceleb: no speaker directories under %s", root)
	}

	rng.Shuffle(len(speakers), func(i, j int) { speakers[i], speakers[j] = speakers[j], speakers[i] })
	if count < len(speakers) {
		speakers = speakers[:count]
	}

	path := filepath.Join(outDir, SubsetName(count))
	body := strings.Join(speakers, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
