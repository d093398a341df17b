package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/dsync/internal/hash"
	"github.com/danieljhkim/dsync/internal/targets"
)

func TestAdd_File(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())
	repo.write(t, "data/raw.csv", "a,b\n")

	written, err := repo.engine.Add([]string{"data/raw.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"data/raw.csv.dsync"}, written)

	f, err := targets.Parse([]byte(repo.read(t, "data/raw.csv.dsync")))
	require.NoError(t, err)
	require.Len(t, f.Outs, 1)
	assert.Equal(t, "raw.csv", f.Outs[0].Path)
	assert.Equal(t, hash.FromBytes([]byte("a,b\n")), f.Outs[0].Digest)
	assert.Equal(t, int64(4), f.Outs[0].Size)

	has, err := repo.cache.Has(f.Outs[0].Digest)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAdd_Directory(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())
	repo.write(t, "images/a.png", "png a")
	repo.write(t, "images/nested/b.png", "png b")

	written, err := repo.engine.Add([]string{"images"})
	require.NoError(t, err)
	assert.Equal(t, []string{"images.dsync"}, written)

	f, err := targets.Parse([]byte(repo.read(t, "images.dsync")))
	require.NoError(t, err)
	var paths []string
	for _, out := range f.Outs {
		paths = append(paths, out.Path)
	}
	assert.Equal(t, []string{"images/a.png", "images/nested/b.png"}, paths)
}

func TestAdd_RelativeToCWD(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())
	repo.write(t, "data/raw.csv", "x")
	repo.engine.cwd = repo.paths.Abs("data")

	written, err := repo.engine.Add([]string{"raw.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"data/raw.csv.dsync"}, written)
}

func TestAdd_Rejects(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())
	repo.write(t, "empty/.keep.dsync", "outs: []\n")

	tests := []struct {
		name string
		path string
	}{
		{name: "repository root", path: "."},
		{name: "outside repository", path: "../elsewhere"},
		{name: "missing file", path: "nothing.csv"},
		{name: "target file", path: "empty/.keep.dsync"},
		{name: "directory without data", path: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.engine.Add([]string{tt.path})
			assert.Error(t, err)
		})
	}
}
