package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"petcoin/log"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/valyala/fasthttp"
)

// ServerInfo is the struct to store rpc current height.
type ServerInfo struct {
	url    string
	height int64
}

// getServer randomly returns one of rpc servers whose height higher than minHeight.
func (c *Client) getServer(minHeight int64) (string, bool) {
	if minHeight < 0 {
		err := fmt.Errorf("minHeight(%d) cannot lower than zero", minHeight)
		panic(err)
	}

	c.sLock.Lock()
	defer c.sLock.Unlock()

	// Suppose all servers are qualified.
	candidates := []string{}

	for url, height := range c.servers {
		if height >= minHeight {
			// Local servers get twice the chance.
			if strings.Contains(url, "127.0.0.1") ||
				strings.Contains(url, "localhost") {
				candidates = append(candidates, url)
			}

			candidates = append(candidates, url)
		}
	}

	l := len(candidates)
	if l == 0 {
		return "", false
	}

	return candidates[rand.Intn(l)], true
}

func (c *Client) serverUnavailable(url string) {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	if _, ok := c.servers[url]; ok {
		c.servers[url] = -1
	}
}

// PrintServerStatus logs height of every server.
func (c *Client) PrintServerStatus() {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	for host, height := range c.servers {
		log.Printf("%s: %d", host, height)
	}
}

// TraceBestHeight refreshes server heights until ctx is done.
func (c *Client) TraceBestHeight(ctx context.Context, interval time.Duration) {
	for {
		c.RefreshServers(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// RefreshServers updates heights of all rpc servers.
func (c *Client) RefreshServers(ctx context.Context) int64 {
	// It takes time to get heights.
	serverInfos := c.getHeights(ctx)

	c.sLock.Lock()

	c.servers = serverInfos
	var bestHeight int64
	for _, height := range serverInfos {
		if bestHeight < height {
			bestHeight = height
		}
	}
	c.BestHeight.Set(bestHeight)

	c.sLock.Unlock()

	return bestHeight
}

// getHeights gets current height of all rpc servers.
func (c *Client) getHeights(ctx context.Context) map[string]int64 {
	ch := make(chan ServerInfo, len(c.cfg.URLs))

	for _, url := range c.cfg.URLs {
		go func(url string, ch chan<- ServerInfo) {
			height, err := c.getHeightFrom(ctx, url)
			if err != nil {
				log.Printf("Server %s unavailable: %v", url, err)
			}
			ch <- ServerInfo{
				url:    url,
				height: height,
			}
		}(url, ch)
	}

	serverInfos := make(map[string]int64)

	for range c.cfg.URLs {
		s := <-ch
		serverInfos[s.url] = s.height
	}

	close(ch)

	return serverInfos
}

// getHeightFrom returns current block number of the given rpc server.
func (c *Client) getHeightFrom(ctx context.Context, url string) (int64, error) {
	body, err := getRPCRequestBody("klay_blockNumber", nil)
	if err != nil {
		return -1, err
	}

	req := c.newRequest(body)
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	if err := c.do(ctx, req, resp); err != nil {
		return -1, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return -1, fmt.Errorf("http status %d", resp.StatusCode())
	}

	var respData jsonRPCResponse
	if err := json.Unmarshal(resp.Body(), &respData); err != nil {
		return -1, err
	}
	if respData.Error != nil {
		return -1, respData.Error
	}

	var height hexutil.Uint64
	if err := json.Unmarshal(respData.Result, &height); err != nil {
		return -1, err
	}

	return int64(height), nil
}
