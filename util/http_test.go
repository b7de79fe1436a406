package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			<-release
		}
		w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

func newGet(url string) (*fasthttp.Request, *fasthttp.Response) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(url)
	return req, fasthttp.AcquireResponse()
}

func TestDoContext(t *testing.T) {
	server := slowServer(t)
	c := &fasthttp.Client{}

	req, resp := newGet(server.URL + "/fast")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, DoContext(ctx, c, req, resp, 5*time.Second))
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "ok", string(resp.Body()))

	resp.Reset()
	require.NoError(t, DoContext(context.Background(), c, req, resp, 5*time.Second))
	assert.Equal(t, "ok", string(resp.Body()))
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)
}

func TestDoContextCancel(t *testing.T) {
	server := slowServer(t)
	c := &fasthttp.Client{}

	req, resp := newGet(server.URL + "/slow")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err := DoContext(ctx, c, req, resp, 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)

	// Releasing right away must not disturb the request still in flight.
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	assert.ErrorIs(t, DoContext(ctx, c, fasthttp.AcquireRequest(), fasthttp.AcquireResponse(), time.Second), context.Canceled)
}

func TestDoContextDeadline(t *testing.T) {
	server := slowServer(t)
	c := &fasthttp.Client{}

	req, resp := newGet(server.URL + "/slow")
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.Error(t, DoContext(ctx, c, req, resp, 10*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)

	start = time.Now()
	assert.Error(t, DoContext(context.Background(), c, req, resp, 100*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)
}
