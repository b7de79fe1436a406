package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"petcoin/log"
	"petcoin/metrics"
	"petcoin/util"
	"strconv"
	"sync"
	"time"

	eParser "github.com/go-errors/errors"
	"github.com/valyala/fasthttp"
)

// ErrNoServer is returned when every rpc server is unavailable.
var ErrNoServer = errors.New("no rpc server available")

// Config holds node client settings.
type Config struct {
	URLs    []string
	ChainID uint64
	// KAS node api credentials, optional for plain nodes.
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
	// MaxRetries is the attempts made for one request across servers.
	MaxRetries int
}

// Client is a klaytn node json-rpc client over several servers.
type Client struct {
	cfg        Config
	http       *fasthttp.Client
	authHeader string

	// servers stores all rpc urls with its height
	// For those (temporarily)unaccessable servers,
	// their height will be set to -1.
	// These servers' heights will be refreshed timely.
	servers map[string]int64
	sLock   sync.Mutex

	// BestHeight indicates current highest height.
	BestHeight util.SafeCounter
}

// Error is the error object of a json-rpc response.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// jsonRPCResponse returns rpc response data.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// NewClient creates a client, all servers are considered available
// until the first refresh.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.URLs) == 0 {
		return nil, errors.New("at least 1 rpc server url must be set")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	c := &Client{
		cfg:     cfg,
		http:    &fasthttp.Client{},
		servers: make(map[string]int64),
	}

	for _, url := range cfg.URLs {
		c.servers[url] = 0
	}

	if cfg.AccessKeyID != "" {
		credentials := cfg.AccessKeyID + ":" + cfg.SecretAccessKey
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	}

	return c, nil
}

func getRPCRequestBody(method string, params []interface{}) ([]byte, error) {
	if params == nil {
		params = []interface{}{}
	}

	return json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
}

func (c *Client) newRequest(body []byte) *fasthttp.Request {
	req := fasthttp.AcquireRequest()
	req.Header.SetMethod("POST")
	req.Header.SetContentType("application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("x-chain-id", strconv.FormatUint(c.cfg.ChainID, 10))
	}
	req.SetBody(body)
	return req
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	return util.DoContext(ctx, c.http, req, resp, c.cfg.Timeout)
}

// call sends a request to one of the servers not lower than minHeight
// and decodes the result into target.
func (c *Client) call(ctx context.Context, minHeight int64, method string, params []interface{}, target interface{}) (err error) {
	defer func() {
		metrics.RPCRequests.WithLabelValues(method, metrics.Status(err)).Inc()
	}()

	requestBody, err := getRPCRequestBody(method, params)
	if err != nil {
		return err
	}

	req := c.newRequest(requestBody)
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		url, ok := c.getServer(minHeight)
		if !ok {
			c.RefreshServers(ctx)
			if url, ok = c.getServer(minHeight); !ok {
				lastErr = fmt.Errorf("%w at height %d", ErrNoServer, minHeight)
				sleep(ctx, time.Second)
				continue
			}
		}

		req.SetRequestURI(url)
		if err := c.do(ctx, req, resp); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", method, err)
			}
			log.Errorln(err)
			c.serverUnavailable(url)
			lastErr = err
			sleep(ctx, 50*time.Millisecond)
			continue
		}

		status := resp.StatusCode()
		if status >= 500 {
			c.serverUnavailable(url)
			lastErr = fmt.Errorf("%s: http status %d", url, status)
			continue
		}
		if status != fasthttp.StatusOK {
			return fmt.Errorf("%s: http status %d: %s", url, status, resp.Body())
		}

		return decodeResponse(requestBody, resp.Body(), target)
	}

	return fmt.Errorf("%s: %w", method, lastErr)
}

func decodeResponse(requestBody []byte, bodyBytes []byte, target interface{}) error {
	var r jsonRPCResponse

	if err := json.Unmarshal(bodyBytes, &r); err != nil {
		log.Errorln(eParser.Wrap(err, 0).ErrorStack())
		log.Errorf("Request body: %v", string(requestBody))
		log.Errorf("Response: %v", string(bodyBytes))
		return err
	}

	if r.Error != nil {
		return r.Error
	}

	if target == nil || len(r.Result) == 0 {
		return nil
	}

	return json.Unmarshal(r.Result, target)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
