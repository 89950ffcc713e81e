// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newspulse/pkg/types"
)

type scripted struct {
	status int
	body   string
}

// newScriptedServer answers the n-th request with responses[n] (the last
// entry repeats). A status of 0 closes the connection without a reply.
func newScriptedServer(t *testing.T, responses ...scripted) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		resp := responses[n]
		if resp.status == 0 {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
				}
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		fmt.Fprint(w, resp.body)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func newTestInference(ts *httptest.Server) *InferenceBackend {
	return NewInferenceBackend(ts.Client(), types.ClassifierConfig{
		APIKey:         "hf_test",
		BaseURL:        ts.URL,
		ColdStartDelay: time.Millisecond,
	})
}

const (
	flatPositive   = `[{"label":"Positive","score":0.91},{"label":"neutral","score":0.06}]`
	nestedNegative = `[[{"label":"negative","score":0.87},{"label":"neutral","score":0.1},{"label":"positive","score":0.03}]]`
)

func TestInferenceBackend_RequestShape(t *testing.T) {
	var (
		gotAuth, gotPath, gotType string
		gotBody                   map[string]string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, flatPositive)
	}))
	defer ts.Close()

	_, err := newTestInference(ts).Score(context.Background(), "Stocks soar")
	require.NoError(t, err)

	assert.Equal(t, "Bearer hf_test", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/"+DefaultInferenceModel, gotPath)
	assert.Equal(t, map[string]string{"inputs": "Stocks soar"}, gotBody)
}

func TestInferenceBackend_Score(t *testing.T) {
	tests := []struct {
		name      string
		responses []scripted
		want      types.SentimentResult
		wantCalls int32
		wantErr   error
	}{
		{
			name:      "flat list",
			responses: []scripted{{http.StatusOK, flatPositive}},
			want:      types.SentimentResult{Label: types.LabelPositive, Score: 0.91},
			wantCalls: 1,
		},
		{
			name:      "nested list",
			responses: []scripted{{http.StatusOK, nestedNegative}},
			want:      types.SentimentResult{Label: types.LabelNegative, Score: 0.87},
			wantCalls: 1,
		},
		{
			name:      "cold start then success",
			responses: []scripted{{http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`}, {http.StatusOK, nestedNegative}},
			want:      types.SentimentResult{Label: types.LabelNegative, Score: 0.87},
			wantCalls: 2,
		},
		{
			name:      "cold start twice",
			responses: []scripted{{http.StatusServiceUnavailable, `{}`}, {http.StatusServiceUnavailable, `{}`}},
			wantCalls: 2,
			wantErr:   ErrColdStart,
		},
		{
			name:      "cold start then server error",
			responses: []scripted{{http.StatusServiceUnavailable, `{}`}, {http.StatusInternalServerError, `{}`}},
			wantCalls: 2,
		},
		{
			name:      "other status is not retried",
			responses: []scripted{{http.StatusBadRequest, `{"error":"bad input"}`}},
			wantCalls: 1,
		},
		{
			name:      "not a list",
			responses: []scripted{{http.StatusOK, `{"label":"positive","score":0.9}`}},
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
		{
			name:      "empty list",
			responses: []scripted{{http.StatusOK, `[]`}},
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
		{
			name:      "empty nested list",
			responses: []scripted{{http.StatusOK, `[[]]`}},
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
		{
			name:      "missing score",
			responses: []scripted{{http.StatusOK, `[{"label":"positive"}]`}},
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := newScriptedServer(t, tt.responses...)

			got, err := newTestInference(ts).Score(context.Background(), "headline")
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))

			if tt.want != (types.SentimentResult{}) {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestInferenceBackend_ColdStartThenConnectionError(t *testing.T) {
	ts, calls := newScriptedServer(t, scripted{http.StatusServiceUnavailable, `{}`}, scripted{})

	_, err := newTestInference(ts).Score(context.Background(), "headline")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestInferenceBackend_MissingCredential(t *testing.T) {
	ts, calls := newScriptedServer(t, scripted{http.StatusOK, flatPositive})

	b := NewInferenceBackend(ts.Client(), types.ClassifierConfig{BaseURL: ts.URL})
	_, err := b.Score(context.Background(), "headline")
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestNewInferenceBackend_Defaults(t *testing.T) {
	b := NewInferenceBackend(nil, types.ClassifierConfig{})
	assert.Equal(t, DefaultInferenceModel, b.Config.Model)
	assert.Equal(t, DefaultColdStartDelay, b.Config.ColdStartDelay)
	assert.Equal(t, defaultInferenceTimeout, b.Client.Timeout)
	assert.Equal(t, inferenceBase+DefaultInferenceModel, b.endpoint())
}

func TestParseInferenceResponse(t *testing.T) {
	got, err := parseInferenceResponse([]byte(`[[{"label":"NEUTRAL","score":0.5}]]`))
	require.NoError(t, err)
	assert.Equal(t, types.SentimentResult{Label: types.LabelNeutral, Score: 0.5}, got)

	_, err = parseInferenceResponse([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
