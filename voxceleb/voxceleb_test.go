package voxceleb

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keep struct{}

func (keep) Shuffle(int, func(i, j int)) {}

func tree(t *testing.T, speakers ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, s := range speakers {
		require.NoError(t, os.MkdirAll(filepath.Join(root, s, "clip"), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("not a speaker"), 0o644))
	return root
}

func TestSpeakerList(t *testing.T) {
	root := tree(t, "id10002", "id10001", "id10003")
	got, err := SpeakerList(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"id10001", "id10002", "id10003"}, got)
}

func TestWriteSubset(t *testing.T) {
	root := tree(t, "id1", "id2", "id3", "id4")
	out := t.TempDir()

	path, err := WriteSubset(root, 2, keep{}, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "speakers_voxceleb_2.txt"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id1\nid2\n", string(body))
}

func TestWriteSubset_CountAboveAvailable(t *testing.T) {
	root := tree(t, "id1", "id2")
	path, err := WriteSubset(root, 100, keep{}, t.TempDir())
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id1\nid2\n", string(body))
	assert.True(t, strings.HasSuffix(path, "speakers_voxceleb_100.txt"))
}

func TestWriteSubset_SeededShuffleIsSubset(t *testing.T) {
	all := []string{"a", "b", "c", "d", "e", "f"}
	root := tree(t, all...)

	write := func() string {
		path, err := WriteSubset(root, 3, rand.New(rand.NewPCG(9, 9)), t.TempDir())
		require.NoError(t, err)
		body, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(body)
	}
	first := write()
	assert.Equal(t, first, write())

	lines := strings.Split(strings.TrimSpace(first), "\n")
	assert.Len(t, lines, 3)
	assert.Subset(t, all, lines)
}

func TestWriteSubset_Errors(t *testing.T) {
	_, err := WriteSubset(tree(t, "id1"), 0, keep{}, t.TempDir())
	assert.Error(t, err)

	_, err = WriteSubset(tree(t), 5, keep{}, t.TempDir())
	assert.Error(t, err)

	_, err = WriteSubset(filepath.Join(t.TempDir(), "missing"), 5, keep{}, t.TempDir())
	assert.Error(t, err)
}
