package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
		ok    bool
	}{
		{"", log.InfoLevel, true},
		{"debug", log.DebugLevel, true},
		{"INFO", log.InfoLevel, true},
		{"warning", log.WarnLevel, true},
		{" error ", log.ErrorLevel, true},
		{"loud", log.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rendercards.log")

	l, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	l.Debug("rendered", "label", "alef")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rendered")
	assert.Contains(t, string(data), "label=alef")
}

func TestNew_QuietUsesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendercards.log")

	l, err := New(Options{Level: "nonsense", Quiet: true, DefaultFile: path})
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, l.GetLevel())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unknown log level")
}

func TestNew_QuietWithoutFile(t *testing.T) {
	l, err := New(Options{Quiet: true})
	require.NoError(t, err)
	l.Info("discarded")
	assert.NoError(t, l.Close())
}
