// Package proxy forwards the backend endpoints unchanged, so browser clients
// can reach the recommendation backend through this service's origin.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent-advisor/internal/metrics"
	"agent-advisor/internal/utils"
	"agent-advisor/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds a forwarded request body.
const maxBodyBytes = 1 << 20

// forwardedHeaders are copied on the way in; the response only carries its
// Content-Type.
var forwardedHeaders = []string{"Content-Type", "Accept", "Accept-Language"}

type Proxy struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Recorder
}

// Response is an upstream answer as received.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func New(baseURL string, timeout time.Duration, rec *metrics.Recorder) *Proxy {
	return &Proxy{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  utils.NewHTTPClient(timeout),
		metrics: rec,
	}
}

// Forward POSTs body to path on the backend. Any HTTP answer, whatever its
// status, is returned as a Response; only transport failures are errors.
func (p *Proxy) Forward(ctx context.Context, path string, body []byte, header http.Header) (*Response, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	utils.CopyHeaders(req.Header, header, forwardedHeaders...)

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.ObserveBackend("proxy"+path, "transport_error", time.Since(start))
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.metrics.ObserveBackend("proxy"+path, "transport_error", time.Since(start))
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	result := "ok"
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result = "http_error"
	}
	p.metrics.ObserveBackend("proxy"+path, result, time.Since(start))

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Handle returns a gin handler forwarding requests to path.
func (p *Proxy) Handle(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}

		resp, err := p.Forward(c.Request.Context(), path, body, c.Request.Header)
		if err != nil {
			logger.Warnf("proxy %s: %v", path, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
	}
}
