package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WSG23/overlayreview/internal/client"
	"github.com/WSG23/overlayreview/internal/types"
	"github.com/stretchr/testify/require"
)

func TestListSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects/p%201/overlay-suggestions", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":1,"code":"unit_space_A1","status":"PENDING"},{"id":"2","code":"x"}]}`))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	list, err := c.ListSuggestions(context.Background(), "p 1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(2), list[1].ID)
	require.Equal(t, "PENDING", list[0].Status)
}

func TestListSuggestionsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "project not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	_, err = c.ListSuggestions(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Contains(t, err.Error(), "project not found")
}

func TestDecide(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/projects/p1/overlay-suggestions/42/decision", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)
	require.NoError(t, c.Decide(context.Background(), "p1", 42, types.DecisionReject))
	require.Equal(t, "reject", got["decision"])
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, client.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = c.ListSuggestions(context.Background(), "p1")
	require.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := client.New("")
	require.Error(t, err)
	_, err = client.New("not a url")
	require.Error(t, err)
}

func TestDecodeSuggestions(t *testing.T) {
	list, err := client.DecodeSuggestions([]byte(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = client.DecodeSuggestions([]byte(`{"suggestions":[{"id":3}]}`))
	require.NoError(t, err)
	require.Equal(t, int64(3), list[0].ID)

	list, err = client.DecodeSuggestions([]byte(`  `))
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = client.DecodeSuggestions([]byte(`{broken`))
	require.Error(t, err)
}
