package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(h http.HandlerFunc) (*Checker, func()) {
	srv := httptest.NewServer(h)
	return &Checker{BaseURL: srv.URL, Client: srv.Client()}, srv.Close
}

func TestLatestUpdateAvailable(t *testing.T) {
	c, done := newTestChecker(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/WSG23/overlayreview/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name": "v0.4.0"}`))
	})
	defer done()

	r, err := c.Latest(context.Background(), "v0.3.0", Repo)
	require.NoError(t, err)
	assert.Equal(t, "v0.4.0", r.Latest)
	assert.True(t, r.NeedsUpdate())
	assert.Contains(t, r.Install, "cmd/overlayreview@latest")
}

func TestLatestUpToDate(t *testing.T) {
	c, done := newTestChecker(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v0.3.0"}`))
	})
	defer done()

	r, err := c.Latest(context.Background(), "0.3.0", Repo)
	require.NoError(t, err)
	assert.False(t, r.NeedsUpdate())
}

func TestLatestDevSkips(t *testing.T) {
	c := &Checker{BaseURL: "http://127.0.0.1:1", Client: http.DefaultClient}
	r, err := c.Latest(context.Background(), "dev", Repo)
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestLatestErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
		"json":   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{nope`)) },
		"no tag": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c, done := newTestChecker(h)
			defer done()
			r, err := c.Latest(context.Background(), "v0.3.0", Repo)
			assert.Error(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestLatestTimeout(t *testing.T) {
	c, done := newTestChecker(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	defer done()
	c.Client.Timeout = 50 * time.Millisecond

	_, err := c.Latest(context.Background(), "v0.3.0", Repo)
	assert.Error(t, err)
}
