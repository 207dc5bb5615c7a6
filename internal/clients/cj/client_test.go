package cj

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, tokenCalls *atomic.Int64, listStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/getAccessToken":
			tokenCalls.Add(1)
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-key", body["apiKey"])
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"accessToken":           "tok-123",
					"accessTokenExpiryDate": time.Now().Add(2 * time.Hour).Format(time.RFC3339),
				},
			})
		case "/product/listV2":
			assert.Equal(t, "tok-123", r.Header.Get("CJ-Access-Token"))
			w.WriteHeader(listStatus)
			if listStatus == http.StatusOK {
				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{"list": []any{map[string]any{"productId": "a"}}},
				})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEnsureTokenCachedAcrossFetches(t *testing.T) {
	var tokenCalls atomic.Int64
	server := newTestServer(t, &tokenCalls, http.StatusOK)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())

	first := client.FetchProducts(context.Background(), ListFilters{Page: 1, Size: 20})
	second := client.FetchProducts(context.Background(), ListFilters{Page: 2, Size: 20})

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestEnsureTokenReissuesAfterExpiry(t *testing.T) {
	var tokenCalls atomic.Int64
	server := newTestServer(t, &tokenCalls, http.StatusOK)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	assert.Equal(t, "tok-123", client.EnsureToken(context.Background()))
	assert.Equal(t, int64(1), tokenCalls.Load())

	// Jump the clock past the advertised expiry.
	client.now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	assert.Equal(t, "tok-123", client.EnsureToken(context.Background()))
	assert.Equal(t, int64(2), tokenCalls.Load())
}

func TestEnsureTokenMissingKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused.invalid"}, testLogger())
	assert.Equal(t, "", client.EnsureToken(context.Background()))
}

func TestEnsureTokenRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())

	// First attempt consumes the limiter token and fails; the immediate retry
	// is refused without touching the network.
	assert.Equal(t, "", client.EnsureToken(context.Background()))
	assert.Equal(t, "", client.EnsureToken(context.Background()))
}

func TestFetchProductsNilOnServerError(t *testing.T) {
	var tokenCalls atomic.Int64
	server := newTestServer(t, &tokenCalls, http.StatusInternalServerError)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())

	assert.Nil(t, client.FetchProducts(context.Background(), ListFilters{}))
}

func TestFetchProductByID(t *testing.T) {
	var tokenCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/getAccessToken":
			tokenCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"accessToken": "tok-123", "expiresIn": 7200},
			})
		case "/product/query":
			assert.Equal(t, "p-7", r.URL.Query().Get("pid"))
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"productId": "p-7"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())

	raw := client.FetchProductByID(context.Background(), "p-7")
	assert.NotNil(t, raw)

	rec := ExtractDetail(raw)
	assert.Equal(t, "p-7", rec["productId"])
}

func TestResolveExpiryLayouts(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, testLogger())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	rfc := client.resolveExpiry("2026-03-01T16:00:00Z", 0)
	assert.Equal(t, time.Date(2026, 3, 1, 15, 59, 0, 0, time.UTC), rfc)

	spaced := client.resolveExpiry("2026-03-01 16:00:00", 0)
	assert.Equal(t, time.Date(2026, 3, 1, 15, 59, 0, 0, time.UTC), spaced)

	ttl := client.resolveExpiry("", 3600)
	assert.Equal(t, now.Add(time.Hour-time.Minute), ttl)

	fallback := client.resolveExpiry("", 0)
	assert.Equal(t, now.Add(4*time.Hour), fallback)
}

func TestExtractListEnvelopeShapes(t *testing.T) {
	shapes := []string{
		`[{"productId":"a"}]`,
		`{"data":[{"productId":"a"}]}`,
		`{"data":{"list":[{"productId":"a"}]}}`,
		`{"data":{"content":[{"productList":[{"productId":"a"}]}]}}`,
		`{"list":[{"productId":"a"}]}`,
	}
	for _, shape := range shapes {
		records := ExtractList(json.RawMessage(shape))
		assert.Len(t, records, 1, "shape: %s", shape)
		assert.Equal(t, "a", records[0]["productId"], "shape: %s", shape)
	}

	assert.Empty(t, ExtractList(json.RawMessage(`{"unexpected":true}`)))
	assert.Empty(t, ExtractList(nil))
	assert.Empty(t, ExtractList(json.RawMessage(`not json`)))
}
