// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/newspulse/internal/llm"
	"github.com/pdiddy/newspulse/pkg/types"
)

// NewBackend returns the backend selected by cfg.Backend. An empty
// selection means the hosted inference backend. A missing API key is not
// an error here: the returned backend degrades every article instead.
func NewBackend(client *http.Client, cfg types.ClassifierConfig) (Backend, error) {
	switch cfg.Backend {
	case "", types.BackendInference:
		return NewInferenceBackend(client, cfg), nil
	case types.BackendLLM:
		if cfg.APIKey == "" {
			return NewLLMBackend(nil), nil
		}
		return NewLLMBackend(llm.NewClient(cfg.APIKey, cfg.Model)), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q: use inference or llm", cfg.Backend)
	}
}
