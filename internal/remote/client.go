// Package remote talks to the revision-addressed content API hosting the
// rule repository. Listing is cheap (revision and tree endpoints return
// hashes only); blob content is downloaded lazily, one file at a time.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"rulesync/internal/logger"
	"rulesync/internal/model"
	"rulesync/internal/util"

	"go.uber.org/zap"
)

// Fetcher is the engine's view of the remote. Tests substitute stubs.
type Fetcher interface {
	CurrentRevision(ctx context.Context) (string, error)
	FetchTree(ctx context.Context, revision string, include, exclude []string) (*model.RemoteSnapshot, error)
	FetchContent(ctx context.Context, revision, path string) ([]byte, error)
}

type Client struct {
	base  string
	owner string
	repo  string
	ref   string
	http  *http.Client
}

// NewClient builds a client for one repository. token may be empty for
// anonymous access; it is carried as an oauth2 bearer transport and never
// stored anywhere else.
func NewClient(base, owner, repo, ref, token string, timeout time.Duration) *Client {
	hc := &http.Client{}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), src)
	}
	hc.Timeout = timeout

	return &Client{
		base:  base,
		owner: owner,
		repo:  repo,
		ref:   ref,
		http:  hc,
	}
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
	}

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
	}

	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", model.ErrRemoteUnavailable, url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
	}

	return data, nil
}

// CurrentRevision resolves the configured ref to its current revision.
// Cheap; the scheduler uses it to short-circuit an unchanged cycle.
func (c *Client) CurrentRevision(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.base, c.owner, c.repo, c.ref)

	data, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return "", err
	}

	var commit struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(data, &commit); err != nil {
		return "", fmt.Errorf("%w: bad commit response: %v", model.ErrRemoteUnavailable, err)
	}

	if commit.SHA == "" {
		return "", fmt.Errorf("%w: empty revision for ref %s", model.ErrRemoteUnavailable, c.ref)
	}

	return commit.SHA, nil
}

// FetchTree lists the blobs at revision, filtered by the include/exclude
// patterns. Hashes and sizes only; no content is downloaded here.
func (c *Client) FetchTree(ctx context.Context, revision string, include, exclude []string) (*model.RemoteSnapshot, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.base, c.owner, c.repo, revision)

	data, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
			Size int64  `json:"size"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: bad tree response: %v", model.ErrRemoteUnavailable, err)
	}

	if tree.Truncated {
		logger.Log.Warn("remote tree listing truncated",
			zap.String("revision", revision))
	}

	snapshot := &model.RemoteSnapshot{
		Revision: revision,
		Files:    make(map[string]model.RemoteFile),
	}

	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}

		if !util.Selected(entry.Path, include, exclude) {
			continue
		}

		snapshot.Files[entry.Path] = model.RemoteFile{
			Hash: entry.SHA,
			Size: entry.Size,
		}
	}

	return snapshot, nil
}

// FetchContent downloads one blob's bytes at revision.
func (c *Client) FetchContent(ctx context.Context, revision, path string) ([]byte, error) {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.base, c.owner, c.repo, strings.Join(segments, "/"), url.QueryEscape(revision))

	return c.get(ctx, u, "application/vnd.github.raw+json")
}
