package checkers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPChecker(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"unauthorized still reachable", http.StatusUnauthorized, false},
		{"not found still reachable", http.StatusNotFound, false},
		{"internal error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			err := NewHTTPChecker(server.URL, "firebase").Check(context.Background())
			assert.Equal(t, http.MethodGet, method)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unhealthy status code")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHTTPCheckerName(t *testing.T) {
	assert.Equal(t, "firebase", NewHTTPChecker("http://example.invalid", "firebase").Name())
	assert.Equal(t, "http://example.invalid", NewHTTPChecker("http://example.invalid", "").Name())
}

func TestHTTPCheckerTransportFailure(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		err := NewHTTPChecker("http://localhost:1", "unreachable").Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http request failed")
	})

	t.Run("client timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		client := &http.Client{Timeout: 10 * time.Millisecond}
		err := NewHTTPCheckerWithClient(server.URL, "slow", client).Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http request failed")
	})
}
