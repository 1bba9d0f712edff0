package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults sqlite dsn from data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: dir}
		require.NoError(t, p.Validate())
		require.Equal(t, filepath.Join(dir, "studywithme_dev.db"), p.DSN)
	})

	t.Run("unknown mode falls back to demo", func(t *testing.T) {
		p := &Profile{Mode: "staging", Driver: "sqlite", Data: dir}
		require.NoError(t, p.Validate())
		require.Equal(t, "demo", p.Mode)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "mysql", Data: dir}
		require.Error(t, p.Validate())
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "postgres", Data: dir}
		require.Error(t, p.Validate())
	})

	t.Run("rejects missing data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: filepath.Join(dir, "nope")}
		require.Error(t, p.Validate())
	})
}

func TestIsAIEnabled(t *testing.T) {
	p := &Profile{AIEnabled: true}
	require.False(t, p.IsAIEnabled())

	p.AIAPIKey = "sk-test"
	require.True(t, p.IsAIEnabled())

	p = &Profile{AIEnabled: false, AIAPIKey: "sk-test"}
	require.False(t, p.IsAIEnabled())

	// A base URL alone is enough for key-less local endpoints.
	p = &Profile{AIEnabled: true, AIBaseURL: "http://localhost:11434/v1"}
	require.True(t, p.IsAIEnabled())
}
