package classifier

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

	"github.com/posmatch/backend/internal/catalog"
	"github.com/posmatch/backend/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Product{
		{Identifier: "mini3", Name: "Clover Mini", PrimaryCategory: domain.CategoryPOS, Size: domain.SizeCompact, BestFor: []string{"cafes"}},
		{Identifier: "flex4", Name: "Clover Flex", PrimaryCategory: domain.CategoryMobile, Size: domain.SizeCompact},
	})
	require.NoError(t, err)
	return c
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(Config{BaseURL: url, APIKey: "test-api-key", Timeout: 2 * time.Second}, testCatalog(t), zaptest.NewLogger(t))
}

func contentServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(Response{Content: content})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://classifier.example.com/", APIKey: "k"}, testCatalog(t), nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://classifier.example.com", client.baseURL)
	assert.Equal(t, "k", client.apiKey)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestClassify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/recommend", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "coffee shop", req.Query)
		assert.Equal(t, MaxIdentifiers, req.MaxResults)
		if assert.Len(t, req.Catalog, 2) {
			assert.Equal(t, "mini3", req.Catalog[0].Identifier)
			assert.Equal(t, []string{"cafes"}, req.Catalog[0].BestFor)
		}

		json.NewEncoder(w).Encode(Response{Content: `["mini3","flex4"]`})
	}))
	defer server.Close()

	ids, err := newTestClient(t, server.URL).Classify(context.Background(), "coffee shop")

	require.NoError(t, err)
	assert.Equal(t, []string{"mini3", "flex4"}, ids)
}

func TestClassify_AcceptedEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"raw array", `["mini3"]`, []string{"mini3"}},
		{"identifier array", `{"identifier":["flex4","mini3"]}`, []string{"flex4", "mini3"}},
		{"recommendations array", `{"recommendations":["mini3"]}`, []string{"mini3"}},
		{"single identifier", `{"identifier":"flex4"}`, []string{"flex4"}},
		{"surrounding whitespace", "\n  [\"mini3\"]  \n", []string{"mini3"}},
		{"empty array", `[]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := contentServer(t, http.StatusOK, tt.content)

			ids, err := newTestClient(t, server.URL).Classify(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestClassify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		wantErr error
	}{
		{"invalid shape", http.StatusOK, `{"foo": 1}`, domain.ErrClassifierShape},
		{"array of numbers", http.StatusOK, `[1, 2]`, domain.ErrClassifierShape},
		{"identifier number", http.StatusOK, `{"identifier": 7}`, domain.ErrClassifierShape},
		{"plain text", http.StatusOK, `mini3 is best`, domain.ErrClassifierDecode},
		{"empty content", http.StatusOK, ``, domain.ErrClassifierDecode},
		{"blank content", http.StatusOK, "   ", domain.ErrClassifierDecode},
		{"server error", http.StatusInternalServerError, `["mini3"]`, domain.ErrClassifierStatus},
		{"bad request", http.StatusBadRequest, `["mini3"]`, domain.ErrClassifierStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := contentServer(t, tt.status, tt.content)

			ids, err := newTestClient(t, server.URL).Classify(context.Background(), "q")
			assert.Nil(t, ids)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, domain.IsTransportError(err))
		})
	}
}

func TestClassify_UnparsableEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Classify(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrClassifierDecode)
}

func TestClassify_NoRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Classify(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrClassifierStatus)
	assert.Equal(t, 1, attempts)
}

func TestClassify_TransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(t, url).Classify(context.Background(), "q")
		assert.True(t, domain.IsTransportError(err), "got %v", err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, testCatalog(t), zaptest.NewLogger(t))
		_, err := client.Classify(context.Background(), "q")
		assert.True(t, domain.IsTransportError(err), "got %v", err)
	})
}

func TestParseIdentifiers_PriorityOrder(t *testing.T) {
	ids, err := ParseIdentifiers(`{"identifier":["a"],"recommendations":["b"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	ids, err = ParseIdentifiers(`{"identifier":"a","recommendations":["b"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestMapToRequest(t *testing.T) {
	req := MapToRequest("bar", nil)
	assert.Equal(t, "bar", req.Query)
	assert.NotNil(t, req.Catalog)
	assert.Equal(t, 3, req.MaxResults)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"catalog":[]`)
}

func TestOffline(t *testing.T) {
	_, err := Offline{}.Classify(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrClassifierDisabled)
	assert.False(t, domain.IsTransportError(err))
}
