package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.csv",
		"a.CSV",
		"notes.txt",
		"scene_2/c.csv",
		"scene_1/deeper/d.csv",
		"scene_1/e.xlsx",
		"csv",
	} {
		touch(t, filepath.Join(root, name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.csv"), 0755))

	tests := []struct {
		name string
		ext  string
		want []string
	}{
		{
			name: "csv any case recursive",
			ext:  ".csv",
			want: []string{"a.CSV", "b.csv", "scene_1/deeper/d.csv", "scene_2/c.csv"},
		},
		{
			name: "without dot",
			ext:  "xlsx",
			want: []string{"scene_1/e.xlsx"},
		},
		{
			name: "no match",
			ext:  ".json",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindByExtension(root, tt.ext)
			require.NoError(t, err)
			rel := make([]string, len(got))
			for i, p := range got {
				r, err := filepath.Rel(root, p)
				require.NoError(t, err)
				rel[i] = filepath.ToSlash(r)
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestFindByExtension_MissingDir(t *testing.T) {
	_, err := FindByExtension(filepath.Join(t.TempDir(), "absent"), ".csv")
	assert.Error(t, err)
}

func TestDiscovery_RelativeToBase(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "in", "x.csv"))

	found, err := NewDiscovery(root).FindByExtension("in", ".csv")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "x.csv", found[0].Name)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestManager_Create(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base, nil)

	f, err := m.Create(filepath.Join("nested", "out.csv"))
	require.NoError(t, err)
	_, err = f.WriteString("a,b\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := os.ReadFile(filepath.Join(base, "nested", "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))
	assert.Equal(t, filepath.Join(base, "nested", "out.csv"), f.Name())

	abs := filepath.Join(t.TempDir(), "abs.csv")
	g, err := m.Create(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, g.Name())
	require.NoError(t, g.Close())
}
