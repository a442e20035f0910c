package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "argus-cli/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "payload")
	}))
	defer srv.Close()

	f := New(Options{})
	body, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestGet_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer srv.Close()

	f := New(Options{MaxRetries: 3})
	body, err := f.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, 3, calls)
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Options{MaxRetries: 3})
	_, err := f.Get(context.Background(), srv.URL)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGet_CustomUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/2.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "custom/2.0"})
	_, err := f.Get(context.Background(), srv.URL)
	assert.NoError(t, err)
}

func TestLimiterFor_SharedPerHost(t *testing.T) {
	f := New(Options{})

	a := f.limiterFor("https://example.com/feed1")
	b := f.limiterFor("https://example.com/feed2")
	c := f.limiterFor("https://other.com/feed")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := New(Options{MaxRetries: 1})
	_, err := f.Get(ctx, srv.URL)
	assert.Error(t, err)
}
