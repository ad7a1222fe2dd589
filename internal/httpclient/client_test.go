package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lslt/portal-services/internal/httpclient"
)

// tagTransport labels the chain so ordering tests can watch requests
// pass through.
func tagTransport(trace *[]string, label string) httpclient.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			*trace = append(*trace, label+" in")
			resp, err := next.RoundTrip(req)
			*trace = append(*trace, label+" out")

			return resp, err
		})
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func get(t *testing.T, client *httpclient.Client, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	client := httpclient.New()
	require.NotNil(t, client)
	require.NotNil(t, client.HTTPClient())
	assert.Equal(t, 30*time.Second, client.HTTPClient().Timeout)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		client := httpclient.New(httpclient.WithTimeout(10 * time.Second))
		assert.Equal(t, 10*time.Second, client.HTTPClient().Timeout)
	})

	t.Run("custom http client", func(t *testing.T) {
		t.Parallel()

		custom := &http.Client{Timeout: 5 * time.Second}
		client := httpclient.New(httpclient.WithHTTPClient(custom))
		assert.Same(t, custom, client.HTTPClient())
	})

	t.Run("custom transport", func(t *testing.T) {
		t.Parallel()

		transport := &http.Transport{}
		client := httpclient.New(httpclient.WithTransport(transport))
		assert.Same(t, transport, client.HTTPClient().Transport)
	})
}

func TestUserAgentDefaulting(t *testing.T) {
	t.Parallel()

	var gotAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(httpclient.WithUserAgent("LSLT-WiFi-Portal/1.0"))

	resp := get(t, client, server.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "LSLT-WiFi-Portal/1.0", gotAgent)

	// A header set on the request itself wins over the client default.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2.0")

	resp2, err := client.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()

	assert.Equal(t, "custom/2.0", gotAgent)
}

func TestMiddlewareOrdering(t *testing.T) {
	t.Parallel()

	var trace []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		trace = append(trace, "server")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(
		httpclient.WithMiddleware(
			tagTransport(&trace, "outer"),
			tagTransport(&trace, "inner"),
		),
	)

	get(t, client, server.URL)

	// The first middleware in the slice is the outermost layer.
	assert.Equal(t, []string{"outer in", "inner in", "server", "inner out", "outer out"}, trace)
}

func TestDoReturnsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	resp := get(t, httpclient.New(), server.URL)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(body))
}
