package targets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/gitx"
	"github.com/danieljhkim/dsync/internal/hash"
)

func targetYAML(outs ...string) string {
	var b strings.Builder
	b.WriteString("outs:\n")
	for _, out := range outs {
		b.WriteString("  - path: " + out + "\n")
		b.WriteString("    digest: " + hash.FromBytes([]byte(out)).String() + "\n")
		b.WriteString("    size: 3\n")
	}
	return b.String()
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"raw.csv.dsync":              targetYAML("raw.csv"),
		"models/model.dsync":         targetYAML("model.bin") + "deps:\n  - ../features/features.dsync\n",
		"features/features.dsync":    targetYAML("train.parquet", "test.parquet") + "deps:\n  - ../raw.csv.dsync\n",
		"features/nested/more.dsync": targetYAML("more.csv"),
		".dsync/ignored.dsync":       targetYAML("nope"),
		".git/ignored.dsync":         targetYAML("nope"),
		"notes.txt":                  "not a target\n",
	})
	return root
}

func TestParse(t *testing.T) {
	d := hash.FromBytes([]byte("x")).String()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "valid", yaml: "outs:\n  - path: a.csv\n    digest: " + d + "\n    size: 1\n"},
		{name: "empty outs", yaml: "outs: []\n"},
		{name: "bad digest", yaml: "outs:\n  - path: a.csv\n    digest: md5:zz\n", wantErr: "invalid digest"},
		{name: "absolute path", yaml: "outs:\n  - path: /etc/passwd\n    digest: " + d + "\n", wantErr: "must be relative"},
		{name: "escaping path", yaml: "outs:\n  - path: ../x\n    digest: " + d + "\n", wantErr: "escapes"},
		{name: "duplicate", yaml: "outs:\n  - path: a\n    digest: " + d + "\n  - path: ./a\n    digest: " + d + "\n", wantErr: "duplicate"},
		{name: "negative size", yaml: "outs:\n  - path: a\n    digest: " + d + "\n    size: -1\n", wantErr: "negative"},
		{name: "absolute dep", yaml: "outs: []\ndeps:\n  - /x.dsync\n", wantErr: "relative"},
		{name: "not yaml", yaml: "outs: [", wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFile_Outputs(t *testing.T) {
	f, err := Parse([]byte(targetYAML("train.parquet", "sub/test.parquet")))
	require.NoError(t, err)

	outputs := f.Outputs("features/features.dsync")
	require.Len(t, outputs, 2)
	assert.Equal(t, "features/train.parquet", outputs[0].Path)
	assert.Equal(t, "features/sub/test.parquet", outputs[1].Path)
	assert.Equal(t, "features/features.dsync", outputs[1].Target)
	assert.Equal(t, int64(3), outputs[0].Size)
}

func TestSave_RoundTrip(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "data.dsync")
	f := &File{
		Outs: []Out{{Path: "data", Digest: hash.FromBytes([]byte("data")), Size: 4}},
		Deps: []string{"other.dsync"},
	}

	require.NoError(t, Save(fsops.NewRealFS(), dst, f))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestSave_RejectsInvalid(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "bad.dsync")
	err := Save(fsops.NewRealFS(), dst, &File{Outs: []Out{{Path: "../x", Digest: hash.FromBytes(nil)}}})
	assert.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolver_Resolve(t *testing.T) {
	root := setupWorkspace(t)

	tests := []struct {
		name    string
		target  string
		opts    Options
		want    []string
		wantErr error
	}{
		{
			name:   "all targets skip metadata dirs",
			target: "",
			want:   []string{"features/features.dsync", "features/nested/more.dsync", "models/model.dsync", "raw.csv.dsync"},
		},
		{name: "target file", target: "models/model.dsync", want: []string{"models/model.dsync"}},
		{name: "data path", target: "raw.csv", want: []string{"raw.csv.dsync"}},
		{name: "unclean path", target: "./models/../raw.csv", want: []string{"raw.csv.dsync"}},
		{name: "directory without recursive", target: "features", wantErr: ErrNotRecursive},
		{
			name:   "directory recursive",
			target: "features",
			opts:   Options{Recursive: true},
			want:   []string{"features/features.dsync", "features/nested/more.dsync"},
		},
		{
			name:   "with deps",
			target: "models/model.dsync",
			opts:   Options{WithDeps: true},
			want:   []string{"models/model.dsync", "features/features.dsync", "raw.csv.dsync"},
		},
		{name: "unknown", target: "missing.csv", wantErr: ErrTargetNotFound},
		{name: "untracked file", target: "notes.txt", wantErr: ErrTargetNotFound},
		{name: "outside repository", target: "../elsewhere", wantErr: ErrTargetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(NewWorkspaceSource(root))
			got, err := r.Resolve(tt.target, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_DependencyCycle(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.dsync": targetYAML("a") + "deps:\n  - b.dsync\n",
		"b.dsync": targetYAML("b") + "deps:\n  - a.dsync\n  - b.dsync\n",
	})

	r := NewResolver(NewWorkspaceSource(root))
	got, err := r.Resolve("a.dsync", Options{WithDeps: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.dsync", "b.dsync"}, got)
}

func TestResolver_MissingDependency(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.dsync": targetYAML("a") + "deps:\n  - gone.dsync\n",
	})

	r := NewResolver(NewWorkspaceSource(root))
	_, err := r.Resolve("a", Options{WithDeps: true})
	assert.ErrorIs(t, err, ErrTargetNotFound)

	got, err := r.Resolve("a", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.dsync"}, got)
}

func TestResolver_Outputs(t *testing.T) {
	root := setupWorkspace(t)

	r := NewResolver(NewWorkspaceSource(root))
	outputs, err := r.Outputs("models/model.dsync", Options{WithDeps: true})
	require.NoError(t, err)

	var paths []string
	for _, o := range outputs {
		paths = append(paths, o.Path)
	}
	assert.Equal(t, []string{"models/model.bin", "features/train.parquet", "features/test.parquet", "raw.csv"}, paths)
}

func TestResolver_InvalidTargetFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"bad.dsync": "outs: {"})

	r := NewResolver(NewWorkspaceSource(root))
	_, err := r.Resolve("bad.dsync", Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTargetNotFound))
}

// fakeRepo serves a fixed tree for every revision.
type fakeRepo struct {
	root  string
	files map[string]string
}

func (f *fakeRepo) Root() string { return f.root }

func (f *fakeRepo) Branches() ([]gitx.Revision, error) { return nil, nil }

func (f *fakeRepo) Tags() ([]gitx.Revision, error) { return nil, nil }

func (f *fakeRepo) ReadFile(_ gitx.Revision, name string) ([]byte, error) {
	content, ok := f.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (f *fakeRepo) Files(_ gitx.Revision, suffix string) ([]string, error) {
	var names []string
	for name := range f.files {
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func TestRevisionSource(t *testing.T) {
	gitRoot := t.TempDir()
	repo := &fakeRepo{
		root: gitRoot,
		files: map[string]string{
			"project/old.csv.dsync":     targetYAML("old.csv"),
			"project/dir/a.dsync":       targetYAML("a.csv"),
			"project/.dsync/skip.dsync": targetYAML("skip"),
			"other/outside.dsync":       targetYAML("outside.csv"),
		},
	}
	rev := gitx.Revision{Name: "feature", Kind: gitx.KindBranch}

	src, err := NewRevisionSource(repo, rev, filepath.Join(gitRoot, "project"))
	require.NoError(t, err)
	assert.Equal(t, "branch feature", src.Name())

	r := NewResolver(src)

	all, err := r.Resolve("", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/a.dsync", "old.csv.dsync"}, all)

	outputs, err := r.Outputs("old.csv", Options{})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "old.csv", outputs[0].Path)

	_, err = r.Resolve("dir", Options{})
	assert.ErrorIs(t, err, ErrNotRecursive)

	_, err = r.Resolve("missing", Options{})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRevisionSource_OutsideWorktree(t *testing.T) {
	repo := &fakeRepo{root: filepath.Join(t.TempDir(), "repo")}

	_, err := NewRevisionSource(repo, gitx.Revision{Name: "main"}, t.TempDir())
	assert.Error(t, err)
}
