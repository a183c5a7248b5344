package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogratHomeWins(t *testing.T) {
	t.Setenv("LOGRAT_HOME", "/opt/lograt")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	assert.Equal(t, filepath.Join("/opt/lograt", "config"), ConfigDir())
	assert.Equal(t, filepath.Join("/opt/lograt", "state"), StateDir())
	assert.Equal(t, filepath.Join("/opt/lograt", "config", "lograt.yml"), GlobalConfigFile())
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("LOGRAT_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	assert.Equal(t, filepath.Join("/xdg/config", "lograt"), ConfigDir())
	assert.Equal(t, filepath.Join("/xdg/state", "lograt"), StateDir())
}

func TestHomeFallback(t *testing.T) {
	t.Setenv("LOGRAT_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, filepath.Join("/home/tester", ".config", "lograt"), ConfigDir())
	assert.Equal(t, filepath.Join("/home/tester", ".local", "state", "lograt"), StateDir())
}
