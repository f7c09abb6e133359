package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	t.Run("empty path stays empty", func(t *testing.T) {
		assert.Empty(t, ExpandPath(""))
	})

	t.Run("plain path unchanged", func(t *testing.T) {
		assert.Equal(t, "/var/lib/duitbot.db", ExpandPath("/var/lib/duitbot.db"))
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := filepath.Abs(t.TempDir())
		require.NoError(t, err)
		t.Setenv("HOME", home)

		assert.Equal(t, filepath.Join(home, "data.db"), ExpandPath("~/data.db"))
		assert.Equal(t, home, ExpandPath("~"))
	})

	t.Run("environment variables expand", func(t *testing.T) {
		t.Setenv("DUITBOT_DATA", "/srv/duitbot")
		assert.Equal(t, "/srv/duitbot/data.db", ExpandPath("$DUITBOT_DATA/data.db"))
	})
}
