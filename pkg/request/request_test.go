package request

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "a=1", string(b))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	res, err := New(srv.Client(), slog.Default()).
		URL(srv.URL).
		Post().
		Headers(map[string]string{"Content-Type": "application/x-www-form-urlencoded"}).
		Body(strings.NewReader("a=1")).
		Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, `{"ok":true}`, string(res.Body))
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	_, err := New(srv.Client(), nil).URL(srv.URL).Fetch(context.Background())
	require.Error(t, err)

	res, err := New(srv.Client(), nil).URL(srv.URL).AnyStatus().Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "nope", string(res.Body))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(http.DefaultClient, nil).URL(url).Post().Fetch(context.Background())
	require.Error(t, err)
}
