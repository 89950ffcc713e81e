// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NewsAPIKey, "  na_abc123  \n")
				writeFile(t, dir, HuggingFaceKey, "hf_xyz789")
				writeFile(t, dir, AnthropicKey, "sk-ant-1\n")
				return dir
			},
			want: map[string]string{
				NewsAPIKey:     "na_abc123",
				HuggingFaceKey: "hf_xyz789",
				AnthropicKey:   "sk-ant-1",
			},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NewsAPIKey, "na_real")
				writeFile(t, dir, HuggingFaceKey, "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, AnthropicKey), 0o755))
				return dir
			},
			want: map[string]string{NewsAPIKey: "na_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), discardLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_UnknownKeyIsKeptAndLogged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "newsapi-key", "typo")

	var buf bytes.Buffer
	got, err := Load(dir, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	assert.Equal(t, "typo", got["newsapi-key"])
	assert.Contains(t, buf.String(), "unrecognized secret file")
	assert.Contains(t, buf.String(), "newsapi-key")
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, NewsAPIKey, "value123")

	badPath := filepath.Join(dir, AnthropicKey)
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	var buf bytes.Buffer
	got, err := Load(dir, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{NewsAPIKey: "value123"}, got)
	assert.Contains(t, buf.String(), "skipping unreadable secret")
}

func TestLoad_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Load(path, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestResolve(t *testing.T) {
	loaded := map[string]string{NewsAPIKey: "from-file"}

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("NEWS_API_KEY", "from-env")
		assert.Equal(t, "from-env", Resolve(loaded, "NEWS_API_KEY", NewsAPIKey))
	})

	t.Run("falls back to secret file", func(t *testing.T) {
		t.Setenv("NEWS_API_KEY", "  ")
		assert.Equal(t, "from-file", Resolve(loaded, "NEWS_API_KEY", NewsAPIKey))
	})

	t.Run("empty when neither is set", func(t *testing.T) {
		t.Setenv("HUGGINGFACE_API_KEY", "")
		assert.Empty(t, Resolve(loaded, "HUGGINGFACE_API_KEY", HuggingFaceKey))
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
