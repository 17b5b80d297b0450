package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Response is an upstream reply read fully into memory.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type Request struct {
	client    *http.Client
	url       string
	method    string
	body      io.Reader
	headers   map[string]string
	anyStatus bool
	logger    *slog.Logger
}

func New(c *http.Client, logger *slog.Logger) *Request {
	return &Request{client: c, method: http.MethodGet, logger: logger}
}

func (r *Request) URL(url string) *Request {
	r.url = url

	return r
}

func (r *Request) Post() *Request {
	r.method = http.MethodPost

	return r
}

func (r *Request) Headers(headers map[string]string) *Request {
	r.headers = headers

	return r
}

func (r *Request) Body(body io.Reader) *Request {
	r.body = body

	return r
}

// AnyStatus makes non-2xx replies a result instead of an error.
func (r *Request) AnyStatus() *Request {
	r.anyStatus = true

	return r
}

func (r *Request) DoRes(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, err
	}

	req.Header.Del("User-Agent")

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	res, err := r.client.Do(req)
	if err != nil {
		if r.logger != nil {
			r.logger.Info(fmt.Sprintf("%s %s - error %s", r.method, req.URL, err.Error()))
		}

		return res, err
	}

	if !r.anyStatus && (res.StatusCode < 200 || res.StatusCode > 299) {
		if r.logger != nil {
			r.logger.Warn(fmt.Sprintf("%s %s - %d", r.method, req.URL, res.StatusCode))
		}

		res.Body.Close()

		return nil, fmt.Errorf("status is %s", res.Status)
	}

	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf("%s %s - %d", r.method, req.URL, res.StatusCode))
	}

	return res, nil
}

// Fetch performs the request and reads the whole body.
func (r *Request) Fetch(ctx context.Context) (*Response, error) {
	res, err := r.DoRes(ctx)
	if err != nil {
		return nil, err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
