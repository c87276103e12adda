package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClient_Analyze(t *testing.T) {
	var received ClassifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"analysis": "Classification: Phishing\nConfidence: 88"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zaptest.NewLogger(t))
	report, err := client.Analyze(context.Background(), "Subject: hi\nFrom: a@b\nBody: x")
	require.NoError(t, err)

	assert.Equal(t, "Subject: hi\nFrom: a@b\nBody: x", received.EmailText)
	assert.Equal(t, "Classification: Phishing\nConfidence: 88", report)
}

func TestClient_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, body: `{}`, wantErr: "API request failed: 503"},
		{name: "not found", status: http.StatusNotFound, body: `{"analysis":"x"}`, wantErr: "API request failed: 404"},
		{name: "missing analysis", status: http.StatusOK, body: `{"result":"x"}`, wantErr: "missing the analysis field"},
		{name: "null analysis", status: http.StatusOK, body: `{"analysis":null}`, wantErr: "missing the analysis field"},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantErr: "failed to decode API response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second, zaptest.NewLogger(t))
			_, err := client.Analyze(context.Background(), "Subject: hi")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_EmptyAnalysisIsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"analysis": ""}`))
	}))
	defer server.Close()

	report, err := NewClient(server.URL, time.Second, zaptest.NewLogger(t)).Analyze(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "", report)
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second, zaptest.NewLogger(t)).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API request failed")
}
