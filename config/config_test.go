package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, ":8080", c.Listen)
	assert.Equal(t, 1500*time.Millisecond, c.Stages.Encrypt.D())
	assert.Equal(t, time.Second, c.Stages.Send.D())
	assert.Equal(t, 2*time.Second, c.Stages.Compute.D())
	assert.NoError(t, c.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	data := `
listen: "127.0.0.1:9090"
log:
  level: debug
stages:
  encrypt: 150ms
  send: "100ms"
session:
  ttl: 5m
theme:
  primary: "#00ff00"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", c.Listen)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 150*time.Millisecond, c.Stages.Encrypt.D())
	assert.Equal(t, 100*time.Millisecond, c.Stages.Send.D())
	assert.Equal(t, 2*time.Second, c.Stages.Compute.D())
	assert.Equal(t, 5*time.Minute, c.Session.TTL.D())
	assert.Equal(t, "#00ff00", c.Theme.Primary)
	assert.Equal(t, "#b57bff", c.Theme.Accent)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`
listen: "nope"
log:
  level: loud
theme:
  accent: red
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen address")
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "theme.accent")
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("stages:\n  send: soon\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
