package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alimgiray/bookshelf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoverService(endpoint string) *CoverService {
	return NewCoverService(config.CoverConfig{
		URL:           endpoint,
		Host:          "covers.test",
		APIKey:        "test-key",
		LanguageCode:  "en",
		Timeout:       200 * time.Millisecond,
		RatePerSecond: 1000,
	})
}

func TestFetchCoverURLSendsHeadersAndQuery(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://covers.test/9780141439518.jpg"}`))
	}))
	defer server.Close()

	svc := newTestCoverService(server.URL + "/cover/url")
	coverURL := svc.FetchCoverURL(context.Background(), "9780141439518")

	assert.Equal(t, "https://covers.test/9780141439518.jpg", coverURL)
	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/cover/url", gotReq.URL.Path)
	assert.Equal(t, "9780141439518", gotReq.URL.Query().Get("isbn"))
	assert.Equal(t, "en", gotReq.URL.Query().Get("languageCode"))
	assert.Equal(t, "test-key", gotReq.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, "covers.test", gotReq.Header.Get("X-RapidAPI-Host"))
}

func TestFetchCoverURLDegrades(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		latency time.Duration
	}{
		{name: "Non-JSON body", status: http.StatusOK, body: "<html>rate limited</html>"},
		{name: "Missing url field", status: http.StatusOK, body: `{"message":"not found"}`},
		{name: "Blank url", status: http.StatusOK, body: `{"url":"  "}`},
		{name: "Server error", status: http.StatusInternalServerError, body: `{"url":"https://covers.test/x.jpg"}`},
		{name: "Timeout", status: http.StatusOK, body: `{"url":"https://covers.test/x.jpg"}`, latency: time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.latency > 0 {
					select {
					case <-time.After(tc.latency):
					case <-r.Context().Done():
						return
					}
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			svc := newTestCoverService(server.URL)
			assert.Equal(t, "", svc.FetchCoverURL(context.Background(), "123"))

			_, err := svc.lookup(context.Background(), "123")
			assert.True(t, errors.Is(err, ErrCoverLookupDegraded))
		})
	}
}

func TestFetchCoverURLConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	svc := newTestCoverService(endpoint)
	assert.Equal(t, "", svc.FetchCoverURL(context.Background(), "123"))
}

func TestFetchCoverURLWithoutAPIKeySkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewCoverService(config.CoverConfig{URL: server.URL, Timeout: time.Second})
	assert.Equal(t, "", svc.FetchCoverURL(context.Background(), "123"))
	assert.False(t, called)
}
