package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LOGRAT_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "~", want: home},
		{in: "~/photos", want: filepath.Join(home, "photos")},
		{in: "$LOGRAT_TEST_DIR/docs", want: "/srv/data/docs"},
		{in: "/abs/path", want: "/abs/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Expand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	rel, err := Expand("relative")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
}

func TestExpandAll(t *testing.T) {
	got, err := ExpandAll([]string{"/a", "/b/../c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/c"}, got)
}

func TestDuplicates(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	dups := Duplicates([]string{dir, filepath.Join(dir, "."), "/elsewhere", link})
	assert.Equal(t, []string{filepath.Join(dir, "."), link}, dups)
	assert.Empty(t, Duplicates([]string{"/a", "/b"}))
}
