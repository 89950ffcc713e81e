// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials from the environment and from a
// directory of key files. Each file holds one credential: the file name is
// the key and the trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Key file names understood by newspulse.
const (
	NewsAPIKey     = "news-api-key"
	HuggingFaceKey = "huggingface-api-key"
	AnthropicKey   = "anthropic-api-key"
)

// KnownKeys lists every key file newspulse reads.
var KnownKeys = []string{NewsAPIKey, HuggingFaceKey, AnthropicKey}

// Load reads the key files in dir. A missing directory yields an empty
// map. Dotfiles, subdirectories and empty files are skipped; unreadable
// files and unrecognized names are logged to logger and do not abort.
func Load(dir string, logger *slog.Logger) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	loaded := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", "key", name, "error", err)
			continue
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		if !slices.Contains(KnownKeys, name) {
			logger.Warn("unrecognized secret file", "key", name, "known", KnownKeys)
		}
		loaded[name] = value
	}
	return loaded, nil
}

// Resolve returns the value of the environment variable env when set and
// the secret file named key from loaded otherwise. It returns "" when
// neither is present; there is no built-in fallback credential.
func Resolve(loaded map[string]string, env, key string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	return loaded[key]
}
