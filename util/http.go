package util

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// DoContext performs req within timeout and returns early when ctx is done.
// The earlier of ctx deadline and timeout bounds the request.
func DoContext(ctx context.Context, c *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if ctx.Done() == nil {
		return c.DoDeadline(req, resp, deadline)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// req and resp may be released by the caller once we return, the
	// request in flight works on its own copies.
	r := fasthttp.AcquireRequest()
	req.CopyTo(r)
	rs := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(r)
		fasthttp.ReleaseResponse(rs)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.DoDeadline(r, rs, deadline)
	}()

	select {
	case err := <-done:
		if err == nil {
			rs.CopyTo(resp)
		}
		release()
		return err
	case <-ctx.Done():
		go func() {
			<-done
			release()
		}()
		return ctx.Err()
	}
}
