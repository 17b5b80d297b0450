package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvp-sheets/rsvp/internal/config"
	"github.com/rsvp-sheets/rsvp/pkg/log"
)

type remoteCall struct {
	method      string
	contentType string
	body        string
}

func newRemote(t *testing.T, status int, contentType, reply string) (*httptest.Server, *[]remoteCall) {
	t.Helper()

	calls := new([]remoteCall)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*calls = append(*calls, remoteCall{method: r.Method, contentType: r.Header.Get("Content-Type"), body: string(b)})

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		} else {
			// suppress net/http content sniffing
			w.Header()["Content-Type"] = nil
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))

	t.Cleanup(srv.Close)

	return srv, calls
}

func newProxy(scriptURL string) *fiber.App {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg := config.NewAppConfig()
	if err := cfg.Set("script_url", scriptURL); err != nil {
		panic(err)
	}

	client := &http.Client{Timeout: time.Second * 2}

	return NewProxyAPI(NewApp(cfg, NewHTTPForwarder(client, slog.Default())))
}

func post(t *testing.T, api *fiber.App, path, contentType, body string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := api.Test(req, 5000)
	require.NoError(t, err)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(b)
}

func TestForwardJSON(t *testing.T) {
	srv, calls := newRemote(t, http.StatusOK, "application/json; charset=utf-8", `{"status":"success","rowsAppended":1}`)
	api := newProxy(srv.URL)

	resp, body := post(t, api, "/rsvp", fiber.MIMEApplicationJSON,
		`{"lastName":"Lee","firstName":"Ann","guests":["Bo","Cy"],"skip":null,"count":2.0,"message":"a&b c"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"status":"success","rowsAppended":1}`, body)
	assert.Equal(t, "http://127.0.0.1:5500", resp.Header.Get("Access-Control-Allow-Origin"))

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "application/x-www-form-urlencoded", c.contentType)
	assert.Equal(t, "lastName=Lee&firstName=Ann&guests=Bo&guests=Cy&skip=null&count=2&message=a%26b+c", c.body)
}

func TestForwardForm(t *testing.T) {
	srv, calls := newRemote(t, http.StatusOK, "text/plain", "ok")
	api := newProxy(srv.URL)

	resp, body := post(t, api, "/rsvp", fiber.MIMEApplicationForm, "side=bride&firstName=Ann&side=groom")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	require.Len(t, *calls, 1)
	assert.Equal(t, "side=bride&firstName=Ann&side=groom", (*calls)[0].body)
}

func TestRelayErrorStatus(t *testing.T) {
	srv, _ := newRemote(t, http.StatusBadRequest, "application/json", `{"error":"First name and last name are required."}`)
	api := newProxy(srv.URL)

	resp, body := post(t, api, "/rsvp", fiber.MIMEApplicationJSON, `{}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"error":"First name and last name are required."}`, body)
}

func TestDefaultContentType(t *testing.T) {
	srv, _ := newRemote(t, http.StatusOK, "", "done")
	api := newProxy(srv.URL)

	resp, body := post(t, api, "/rsvp", fiber.MIMEApplicationJSON, `{"a":"1"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "done", body)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	api := newProxy(url)

	resp, body := post(t, api, "/rsvp", fiber.MIMEApplicationJSON, `{"a":"1"}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, `"error":`)
	assert.Equal(t, "http://127.0.0.1:5500", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestProxyPreflight(t *testing.T) {
	api := newProxy("http://127.0.0.1:1")

	for _, path := range []string{"/rsvp", "/anything"} {
		req, err := http.NewRequest(http.MethodOptions, path, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://elsewhere.example")

		resp, err := api.Test(req)
		require.NoError(t, err)

		b, _ := io.ReadAll(resp.Body)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		require.Empty(t, b)
		require.Equal(t, "http://127.0.0.1:5500", resp.Header.Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	}
}

func TestProxyMetrics(t *testing.T) {
	srv, _ := newRemote(t, http.StatusAccepted, "text/plain", "ok")
	api := newProxy(srv.URL)

	resp, _ := post(t, api, "/rsvp", fiber.MIMEApplicationJSON, `{"a":"1"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, "/rsvp", nil)
	require.NoError(t, err)
	_, err = api.Test(req)
	require.NoError(t, err)

	req, err = http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)

	resp, err = log.NewMetricsAPI().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(b), `rsvp_proxy_forwards_total{code="202"} 1`)
	assert.Contains(t, string(b), `rsvp_http_requests_total{api="proxy_api",code="202",method="POST"`)
	assert.Contains(t, string(b), `rsvp_http_requests_total{api="proxy_api",code="204",method="OPTIONS"`)
}
