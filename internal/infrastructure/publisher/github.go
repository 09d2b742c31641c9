// Package publisher pushes merged configs to remote repositories.
package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"

	"singmerge/internal/application/convert/usecases"
	sharedConfig "singmerge/internal/shared/config"
	apperrors "singmerge/internal/shared/errors"
	"singmerge/internal/shared/logger"
)

const (
	githubAccept     = "application/vnd.github+json"
	githubAPIVersion = "2022-11-28"
)

// GitHubPublisher writes files through the GitHub contents API.
// A publish is a read of the current blob sha followed by a PUT; both are retried together
// so a 409 from a concurrent commit picks up the new sha.
type GitHubPublisher struct {
	client     *http.Client
	baseURL    string
	maxTries   uint
	newBackOff func() backoff.BackOff
	logger     logger.Interface
}

// NewGitHubPublisher creates a publisher authenticated with cfg.Token.
func NewGitHubPublisher(cfg sharedConfig.GitHubConfig, logger logger.Interface) *GitHubPublisher {
	var client *http.Client
	if cfg.Token != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	} else {
		client = &http.Client{}
	}
	if cfg.TimeoutSec > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &GitHubPublisher{
		client:     client,
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		maxTries:   cfg.MaxRetries + 1,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		logger: logger,
	}
}

type contentsResponse struct {
	SHA string `json:"sha"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type putContentsResponse struct {
	Content struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
	Commit struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// statusError is a non-2xx reply from the API
type statusError struct {
	Op     string
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Op, e.Status, e.Body)
}

// retryable reports whether a reply with this status may succeed on a later attempt.
func retryable(status int) bool {
	return status == http.StatusConflict ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

// Publish creates or updates target with content in a single commit.
func (p *GitHubPublisher) Publish(ctx context.Context, target usecases.PublishTarget, content []byte, message string) (*usecases.PublishReceipt, error) {
	attempt := 0
	operation := func() (*usecases.PublishReceipt, error) {
		attempt++
		receipt, err := p.publishOnce(ctx, target, content, message)
		if err == nil {
			return receipt, nil
		}

		var se *statusError
		if errors.As(err, &se) && !retryable(se.Status) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	receipt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(p.maxTries),
		backoff.WithNotify(func(err error, delay time.Duration) {
			p.logger.Warnw("publish attempt failed, retrying",
				"target", target.String(),
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
		}),
	)
	if err != nil {
		p.logger.Errorw("failed to publish to github",
			"target", target.String(),
			"attempts", attempt,
			"error", err,
		)
		return nil, apperrors.NewUpstreamError("failed to publish config to github", err.Error()).WithCause(err)
	}

	p.logger.Infow("published to github",
		"target", target.String(),
		"commit", receipt.CommitSHA,
		"created", receipt.Created,
	)
	return receipt, nil
}

func (p *GitHubPublisher) publishOnce(ctx context.Context, target usecases.PublishTarget, content []byte, message string) (*usecases.PublishReceipt, error) {
	sha, err := p.currentSHA(ctx, target)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(putContentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  target.Branch,
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPut, p.contentsURL(target, false), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to put contents: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &statusError{Op: "put contents", Status: resp.StatusCode, Body: string(body)}
	}

	var out putContentsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal put response: %w", err)
	}

	return &usecases.PublishReceipt{
		CommitSHA: out.Commit.SHA,
		HTMLURL:   out.Content.HTMLURL,
		Created:   sha == "",
	}, nil
}

// currentSHA returns the blob sha of the existing file, or "" when it does not exist yet.
func (p *GitHubPublisher) currentSHA(ctx context.Context, target usecases.PublishTarget) (string, error) {
	req, err := p.newRequest(ctx, http.MethodGet, p.contentsURL(target, true), nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get contents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{Op: "get contents", Status: resp.StatusCode, Body: string(body)}
	}

	var current contentsResponse
	if err := json.Unmarshal(body, &current); err != nil {
		return "", fmt.Errorf("failed to unmarshal contents: %w", err)
	}
	return current.SHA, nil
}

func (p *GitHubPublisher) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", githubAccept)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	return req, nil
}

func (p *GitHubPublisher) contentsURL(target usecases.PublishTarget, withRef bool) string {
	segments := strings.Split(strings.Trim(target.Path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		p.baseURL,
		url.PathEscape(target.Owner),
		url.PathEscape(target.Repo),
		strings.Join(segments, "/"),
	)
	if withRef && target.Branch != "" {
		u += "?ref=" + url.QueryEscape(target.Branch)
	}
	return u
}
