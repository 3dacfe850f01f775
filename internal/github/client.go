// Package github reads protocol sources from GitHub repositories.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/retry"
)

const service = "github"

// Options configures a Client.
type Options struct {
	// Token is optional. Anonymous access works for public repositories.
	Token string
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	Retry      retry.Config
}

// Client wraps go-github with retries and error classification.
type Client struct {
	gh     *gh.Client
	retry  retry.Config
	logger zerolog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options, logger zerolog.Logger) (*Client, error) {
	client := gh.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = u
	}

	cfg := opts.Retry
	if cfg.MaxAttempts == 0 {
		cfg = retry.DefaultConfig()
	}

	return &Client{
		gh:     client,
		retry:  cfg,
		logger: logger.With().Str("component", "github").Logger(),
	}, nil
}

// FetchFile downloads the content of path at ref.
func (c *Client) FetchFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	var content []byte
	op := fmt.Sprintf("get %s/%s/%s@%s", owner, repo, path, ref)

	err := retry.Do(ctx, c.retry, c.logger, op, func(ctx context.Context) error {
		file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
			&gh.RepositoryContentGetOptions{Ref: ref})
		if err != nil {
			return classify(op, resp, err)
		}
		if file == nil {
			return perrors.NewAPIError(service, http.StatusUnprocessableEntity, op+": path is a directory")
		}
		if file.GetEncoding() == "none" {
			// Files over 1 MB come back without inline content.
			body, err := c.download(ctx, op, owner, repo, ref, path)
			if err != nil {
				return err
			}
			content = body
			return nil
		}
		text, err := file.GetContent()
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		content = []byte(text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("op", op).Int("bytes", len(content)).Msg("fetched file")
	return content, nil
}

func (c *Client) download(ctx context.Context, op, owner, repo, ref, path string) ([]byte, error) {
	body, resp, err := c.gh.Repositories.DownloadContents(ctx, owner, repo, path,
		&gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, classify(op, resp, err)
	}
	defer body.Close()

	if resp != nil && resp.Response != nil && resp.StatusCode != http.StatusOK {
		return nil, perrors.NewAPIError(service, resp.StatusCode, op+": download failed")
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// ResolveCommit returns the commit SHA that ref currently points to.
func (c *Client) ResolveCommit(ctx context.Context, owner, repo, ref string) (string, error) {
	var sha string
	op := fmt.Sprintf("resolve %s/%s@%s", owner, repo, ref)

	err := retry.Do(ctx, c.retry, c.logger, op, func(ctx context.Context) error {
		s, resp, err := c.gh.Repositories.GetCommitSHA1(ctx, owner, repo, ref, "")
		if err != nil {
			return classify(op, resp, err)
		}
		sha = strings.TrimSpace(s)
		return nil
	})
	return sha, err
}

// classify turns a go-github failure into an APIError so retry.Do and
// callers can act on the status. A missing path upstream is a broken
// source, not a missing page, so 404 does not match ErrNotFound.
func classify(op string, resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return &perrors.APIError{Service: service, StatusCode: http.StatusTooManyRequests, Message: op, Err: perrors.ErrRateLimit}
	}

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	switch {
	case status != 0:
		return &perrors.APIError{Service: service, StatusCode: status, Message: op, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, perrors.ErrTimeout)
	}
	return &perrors.APIError{Service: service, StatusCode: http.StatusBadGateway, Message: op, Err: err}
}
