package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public package index queried when no override
	// is configured.
	DefaultBaseURL = "https://pypi.org"

	defaultTimeout = 30 * time.Second

	// Outbound request ceiling toward the index.
	maxRequestsPerSecond = 10
	maxBurstSize         = 20
)

// Client fetches package metadata from a PyPI-style JSON index.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the index base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates an index client. Requests are rate limited and pass
// through a circuit breaker so a misbehaving index degrades fast instead of
// hanging every command.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(maxRequestsPerSecond), maxBurstSize),
		logger:  logrus.WithField("component", "index-client"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "package-index",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProject retrieves and decodes the index metadata for one package.
func (c *Client) FetchProject(ctx context.Context, pkg string) (*Project, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("index request canceled: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchProject(ctx, pkg)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Project), nil
}

func (c *Client) fetchProject(ctx context.Context, pkg string) (*Project, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, pkg)
	c.logger.WithFields(logrus.Fields{
		"package": pkg,
		"url":     url,
	}).Debug("Fetching package metadata")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create index request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Index request failed")
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("package %q not found in index", pkg)
	default:
		return nil, fmt.Errorf("index returned status %d for %s", resp.StatusCode, pkg)
	}

	var project Project
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		c.logger.WithError(err).Error("Failed to decode index response")
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", pkg, err)
	}

	c.logger.WithFields(logrus.Fields{
		"package":  project.Name(),
		"versions": len(project.Releases),
	}).Debug("Fetched package metadata")

	return &project, nil
}
