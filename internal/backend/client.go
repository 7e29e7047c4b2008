package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent-advisor/internal/metrics"
	"agent-advisor/internal/model"
	"agent-advisor/internal/utils"
	"agent-advisor/pkg/logger"

	"github.com/tidwall/gjson"
)

const (
	UseCasesPath = "/use-cases"
	AgentPath    = "/agent"
)

// ErrTransport marks failures where no HTTP response was obtained.
var ErrTransport = errors.New("backend unreachable")

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client is the recommendation backend as seen by the orchestration flow.
// Both methods return the raw response body on success.
type Client interface {
	UseCases(ctx context.Context, req model.UseCaseRequest) ([]byte, error)
	Frameworks(ctx context.Context, req model.FrameworkRequest) ([]byte, error)
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Recorder
}

func NewHTTPClient(baseURL string, timeout time.Duration, rec *metrics.Recorder) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  utils.NewHTTPClient(timeout),
		metrics: rec,
	}
}

func (c *HTTPClient) UseCases(ctx context.Context, req model.UseCaseRequest) ([]byte, error) {
	return c.post(ctx, UseCasesPath, req)
}

func (c *HTTPClient) Frameworks(ctx context.Context, req model.FrameworkRequest) ([]byte, error) {
	return c.post(ctx, AgentPath, req)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, path, payload)

	result := "ok"
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		result = "http_error"
	case err != nil:
		result = "transport_error"
	}
	c.metrics.ObserveBackend(path, result, time.Since(start))

	if err != nil {
		logger.Warnf("backend %s failed: %v", path, err)
	} else {
		logger.Debugf("backend %s answered %d bytes in %s", path, len(body), time.Since(start))
	}
	return body, err
}

func (c *HTTPClient) do(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	return body, nil
}

// errorMessage prefers the backend's own explanation: "detail" (FastAPI
// style, possibly structured) and then "error".
func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"detail", "error"} {
			v := gjson.GetBytes(body, key)
			switch {
			case v.Type == gjson.String && strings.TrimSpace(v.Str) != "":
				return v.Str
			case v.IsArray() || v.IsObject():
				return v.Raw
			}
		}
	}
	return fmt.Sprintf("Backend-Anfrage fehlgeschlagen (HTTP %d)", status)
}

// UserMessage renders a backend failure for display.
func UserMessage(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return httpErr.Message
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTransport):
		return "Das Backend ist nicht erreichbar. Bitte versuche es später erneut."
	default:
		return "Unerwarteter Fehler: " + err.Error()
	}
}
