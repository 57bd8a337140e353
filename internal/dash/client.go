package dash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dashseek/internal/logger"
	"dashseek/internal/manifest"
)

// Client fetches manifests from an origin server.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	retries    int
	retryDelay time.Duration
}

// NewClient creates a new DASH client with a single attempt per fetch.
func NewClient(log logger.Logger) *Client {
	return NewClientWithRetries(log, 5*time.Second, 1)
}

// NewClientWithRetries creates a DASH client that tries each fetch up to
// attempts times, waiting at most timeout for response headers.
func NewClientWithRetries(log logger.Logger, timeout time.Duration, attempts int) *Client {
	if attempts < 1 {
		attempts = 1
	}
	transport := &http.Transport{
		ResponseHeaderTimeout: timeout,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:     log,
		retries:    attempts,
		retryDelay: 100 * time.Millisecond,
	}
}

// errPermanent marks failures that another attempt cannot fix.
var errPermanent = errors.New("permanent failure")

// FetchManifest downloads the manifest at manifestURL. It follows one
// redirect and returns the body together with the URL it was finally
// served from, which is the base for relative segment URLs.
func (c *Client) FetchManifest(ctx context.Context, manifestURL, userAgent string) (string, string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		c.logger.Debugf("Fetching MPD from URL: %s (Attempt %d/%d)", manifestURL, attempt, c.retries)

		body, finalURL, err := c.fetchOnce(ctx, manifestURL, userAgent)
		if err == nil {
			c.logger.Debugf("Fetched %d bytes of MPD from %s", len(body), finalURL)
			return body, finalURL, nil
		}
		if errors.Is(err, errPermanent) || ctx.Err() != nil {
			return "", "", err
		}

		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		c.logger.Warnf("Fetching MPD failed: %v", lastErr)

		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}

	return "", "", fmt.Errorf("failed to fetch MPD from %s after %d attempts: %w", manifestURL, c.retries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, manifestURL, userAgent string) (string, string, error) {
	resp, err := c.get(ctx, manifestURL, userAgent)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	finalURL := manifestURL
	if isRedirect(resp.StatusCode) {
		location, err := resp.Location()
		if err != nil {
			return "", "", fmt.Errorf("%w: redirect location error: %v", errPermanent, err)
		}
		finalURL = location.String()
		c.logger.Debugf("Redirected to: %s", finalURL)

		resp, err = c.get(ctx, finalURL, userAgent)
		if err != nil {
			return "", "", err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("received status code %d from %s", resp.StatusCode, finalURL)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			err = fmt.Errorf("%w: %v", errPermanent, err)
		}
		return "", "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read MPD response body: %w", err)
	}
	return string(data), finalURL, nil
}

func (c *Client) get(ctx context.Context, target, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request for MPD: %v", errPermanent, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch MPD from %s: %w", target, err)
	}
	return resp, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// resolveURL resolves a path against a base URL, handling potential errors.
func resolveURL(base *url.URL, path string) (*url.URL, error) {
	resolvedPath, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path '%s': %w", path, err)
	}
	return base.ResolveReference(resolvedPath), nil
}

// AbsoluteURL resolves a substituted media path against the manifest
// location, then the MPD BaseURL, then the Period BaseURL.
func AbsoluteURL(manifestURL string, tree *manifest.Tree, period manifest.NodeID, media string) (string, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse manifest URL '%s': %w", manifestURL, err)
	}

	for _, node := range []manifest.NodeID{tree.Root(), period} {
		if node == manifest.None {
			continue
		}
		baseURL := tree.FirstChild(node, "BaseURL")
		if baseURL == manifest.None || strings.TrimSpace(tree.Text(baseURL)) == "" {
			continue
		}
		base, err = resolveURL(base, tree.Text(baseURL))
		if err != nil {
			return "", fmt.Errorf("failed to resolve BaseURL: %w", err)
		}
	}

	final, err := resolveURL(base, media)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media path: %w", err)
	}
	return final.String(), nil
}
