// Package remote calls an external classification endpoint over HTTP.
package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// Name identifies the remote backend in logs and metrics
const Name = "remote"

const (
	maxResponseBytes = 1 << 20
	maxErrorSnippet  = 256
)

// Client classifies images by POSTing { "image": ... } to a remote endpoint.
// Every call is made once; resilience is left to the caller's fallback.
type Client struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[*models.ClassificationResult]
	validate *validator.Validate
	known    map[string]bool
}

// NewClient creates a remote classifier for endpoint. timeout bounds a single
// HTTP exchange; callers usually impose a tighter context deadline.
func NewClient(endpoint string, timeout time.Duration, breaker BreakerSettings) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return newClient(endpoint, &http.Client{
		Transport: transport,
		Timeout:   timeout,

		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("too many redirects (limit: 3)")
			}
			return nil
		},
	}, breaker)
}

func newClient(endpoint string, httpClient *http.Client, breaker BreakerSettings) *Client {
	return &Client{
		endpoint: endpoint,
		client:   httpClient,
		breaker:  newBreaker(breaker),
		validate: validator.New(),
	}
}

// WithCatalog makes the client reject results naming records outside records
func (c *Client) WithCatalog(records []models.ClassificationRecord) *Client {
	c.known = make(map[string]bool, len(records))
	for _, r := range records {
		c.known[r.ID] = true
	}
	return c
}

// Name returns the backend name
func (c *Client) Name() string {
	return Name
}

// Classify sends the payload to the remote endpoint and validates the answer
func (c *Client) Classify(ctx context.Context, payload string) (*models.ClassificationResult, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, apperrors.NewInvalidInputError("image payload is empty", nil)
	}

	body, err := json.Marshal(models.AnalyzeRequest{Image: payload})
	if err != nil {
		return nil, apperrors.NewInternalAnalysisError("failed to encode remote request", err)
	}

	result, err := c.breaker.Execute(func() (*models.ClassificationResult, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewUpstreamUnavailableError("remote classifier unavailable", err)
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*models.ClassificationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewTransportError("invalid remote request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Recycling-Guide/1.0")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := apperrors.FromContext(ctx.Err(), "remote classification interrupted"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewTransportError("remote classification request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		appErr := apperrors.NewTransportError(
			fmt.Sprintf("remote classifier returned status %d", resp.StatusCode), nil)
		appErr.Details = strings.TrimSpace(string(snippet))
		return nil, appErr
	}

	var result models.ClassificationResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		if ctxErr := apperrors.FromContext(ctx.Err(), "remote classification interrupted"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewTransportError("malformed remote classification response", err)
	}
	if err := c.validate.Struct(&result); err != nil {
		return nil, apperrors.NewTransportError("invalid remote classification result", err)
	}
	if err := c.checkIDs(&result); err != nil {
		return nil, apperrors.NewTransportError("invalid remote classification result", err)
	}
	return &result, nil
}

// checkIDs rejects repeated ids and, once a catalog is known, unknown ones
func (c *Client) checkIDs(result *models.ClassificationResult) error {
	seen := make(map[string]bool, 1+len(result.Alternatives))
	ids := []string{result.Item.ID}
	for _, alt := range result.Alternatives {
		ids = append(ids, alt.ID)
	}
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("record %q listed more than once", id)
		}
		seen[id] = true
		if c.known != nil && !c.known[id] {
			return fmt.Errorf("unknown record %q", id)
		}
	}
	return nil
}

func isCallerCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled)
}
