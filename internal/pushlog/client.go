package pushlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// TokenEnv names the environment variable holding an optional bearer token
const TokenEnv = "PUSHLOG_TOKEN"

// maxResponseSize bounds a single pushlog response
const maxResponseSize = 256 << 20

// Fetcher issues one pushlog fetch protocol call
type Fetcher interface {
	FetchPushes(ctx context.Context, tree, uri string, firstPush int64) ([]Record, error)
}

// Client speaks the pushlog fetch protocol over HTTP
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a client whose calls give up after timeout.
// When PUSHLOG_TOKEN is set every request carries it as a bearer token.
func NewClient(ctx context.Context, timeout time.Duration) *Client {
	httpClient := http.DefaultClient
	if token := os.Getenv(TokenEnv); token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return NewClientWithHTTP(httpClient, timeout)
}

// NewClientWithHTTP creates a client on top of an existing http.Client
func NewClientWithHTTP(httpClient *http.Client, timeout time.Duration) *Client {
	return &Client{httpClient: httpClient, timeout: timeout}
}

// FetchURL returns the request URL asking uri for pushes from firstPush on
func FetchURL(uri string, firstPush int64) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cmd", "pushlog")
	q.Set("firstpush", strconv.FormatInt(firstPush, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPushes implements Fetcher
func (c *Client) FetchPushes(ctx context.Context, tree, uri string, firstPush int64) ([]Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target, err := FetchURL(uri, firstPush)
	if err != nil {
		return nil, pushlogerrors.NewProtocolError(tree, "invalid pushlog uri", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pushlogerrors.NewProtocolError(tree, "failed to build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, pushlogerrors.NewProtocolError(tree, fmt.Sprintf("timed out after %s", c.timeout), err)
		}
		return nil, pushlogerrors.NewProtocolError(tree, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pushlogerrors.NewProtocolError(tree, fmt.Sprintf("unexpected HTTP status %s", resp.Status), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, pushlogerrors.NewProtocolError(tree, "failed to read response", err)
	}

	records, err := ParseResponse(body)
	if err != nil {
		var perr *pushlogerrors.ProtocolError
		if errors.As(err, &perr) {
			perr.Tree = tree
		}
		return nil, err
	}
	return records, nil
}
