// Package relcheck queries GitHub for the latest published release of a
// repository.
package relcheck

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"
)

const (
	baseURL = "https://api.github.com"
)

type Client struct {
	client *resty.Client
}

func NewClient() *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         1 * time.Second,
		DialerKeepAlive:       1 * time.Second,
		IdleConnTimeout:       1 * time.Second,
		TLSHandshakeTimeout:   1 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 1 * time.Second,
	}).SetBaseURL(baseURL)

	return &Client{
		client: client,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

// https://docs.github.com/en/rest/releases/releases#get-the-latest-release
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
}

// Latest fetches the most recent non-draft, non-prerelease release of
// owner/repo.
func (c *Client) Latest(ctx context.Context, repo string) (*Release, error) {
	res, err := c.r(ctx).
		SetResult(&Release{}).
		Get(fmt.Sprintf("/repos/%s/releases/latest", repo))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("release lookup for %s: %s", repo, res.Status())
	}

	return res.Result().(*Release), nil
}
