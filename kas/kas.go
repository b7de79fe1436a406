package kas

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
	"strings"
	"time"

	eParser "github.com/go-errors/errors"
	"github.com/valyala/fasthttp"
)

// Config holds KAS wallet api settings.
type Config struct {
	BaseURL         string
	ChainID         uint64
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
}

// Client calls the KAS wallet api.
type Client struct {
	cfg        Config
	http       *fasthttp.Client
	authHeader string
}

// APIError is a non 2xx wallet api response.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kas api error (http %d, code %d): %s", e.Status, e.Code, e.Message)
}

// NewClient creates a wallet api client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("kas wallet url cannot be empty")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("kas access key id and secret access key cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	credentials := cfg.AccessKeyID + ":" + cfg.SecretAccessKey
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		http:       &fasthttp.Client{},
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
	}, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, target interface{}) (err error) {
	defer func() {
		metrics.WalletRequests.WithLabelValues(endpoint(method, path), metrics.Status(err)).Inc()
	}()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.cfg.BaseURL + path)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("x-chain-id", strconv.FormatUint(c.cfg.ChainID, 10))

	var requestBody []byte
	if body != nil {
		requestBody, err = json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(requestBody)
	}

	if err = util.DoContext(ctx, c.http, req, resp, c.cfg.Timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	bodyBytes := resp.Body()
	status := resp.StatusCode()

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bodyBytes)
		}
		return apiErr
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		log.Errorln(eParser.Wrap(err, 0).ErrorStack())
		log.Errorf("Request body: %v", string(requestBody))
		log.Errorf("Response: %v", string(bodyBytes))
		return err
	}

	return nil
}

// endpoint strips path parameters for metric labels.
func endpoint(method string, path string) string {
	if strings.HasPrefix(path, "/v2/tx/0x") {
		return method + " /v2/tx/{hash}"
	}
	return method + " " + path
}
