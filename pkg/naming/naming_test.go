package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/data/photos", want: "photos"},
		{path: "/data/photos/", want: "photos"},
		{path: "/data/photos///", want: "photos"},
		{path: "photos", want: "photos"},
		{path: "relative/dir", want: "dir"},
		{path: "/", want: "root"},
		{path: "//", want: "root"},
		{path: "", want: "root"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFor(tt.path))
		})
	}
}

func TestNamesFor(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "distinct leaves",
			paths: []string{"/data/photos", "/data/music"},
			want:  []string{"photos", "music"},
		},
		{
			name:  "collision walks up the colliding path",
			paths: []string{"/home/a/photos", "/backup/b/photos"},
			want:  []string{"photos", "b"},
		},
		{
			name:  "collision skips taken parents",
			paths: []string{"/x/photos", "/y/x/photos", "/z/x/photos"},
			want:  []string{"photos", "x", "z"},
		},
		{
			name:  "exhausted path gets numeric suffix",
			paths: []string{"/a/b", "/a/b", "/a/b", "/a/b"},
			want:  []string{"b", "a", "b-2", "b-3"},
		},
		{
			name:  "root path",
			paths: []string{"/", "/"},
			want:  []string{"root", "root-2"},
		},
		{
			name:  "empty input",
			paths: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NamesFor(tt.paths))
		})
	}
}

func TestNamesForIsUniqueAndComplete(t *testing.T) {
	inputs := [][]string{
		{"/a", "/a", "/a", "/a/a", "/a/a/a"},
		{"/srv/logs", "/var/logs", "/var/log", "/logs", "logs", "./logs/"},
		{"/", "", "/tmp", "tmp", "/tmp/"},
	}

	for _, paths := range inputs {
		names := NamesFor(paths)
		assert.Len(t, names, len(paths))

		seen := make(map[string]bool)
		for _, name := range names {
			assert.False(t, seen[name], "duplicate name %q in %v", name, names)
			seen[name] = true
		}
	}
}
