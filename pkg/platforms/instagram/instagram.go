package instagram

import (
	"context"
	"net/url"
	"strings"

	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/tidwall/gjson"
)

const mediaFields = "caption,timestamp,like_count,comments_count,media_url"

// Client fetches account-level resources for Instagram business accounts.
type Client struct {
	graph *platforms.GraphClient
}

func NewClient(graph *platforms.GraphClient) *Client { return &Client{graph: graph} }

var _ platforms.Source = (*Client)(nil)

func (c *Client) Kind() platforms.Kind { return platforms.Instagram }

// ValidateID accepts any non-empty id that is safe to use as a path segment.
func (c *Client) ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &platforms.ValidationError{Field: "account id", Reason: "must not be empty"}
	}
	if url.PathEscape(id) != id || strings.Contains(id, ".") {
		return &platforms.ValidationError{Field: "account id", Reason: "contains invalid characters"}
	}
	return nil
}

func (c *Client) FetchProfile(ctx context.Context, id, token string) (gjson.Result, error) {
	if err := c.ValidateID(id); err != nil {
		return gjson.Result{}, err
	}
	return c.graph.Get(ctx, platforms.ResourceProfile, id, token, url.Values{
		"fields": {"followers_count"},
	})
}

func (c *Client) FetchInsights(ctx context.Context, id, token string) (gjson.Result, error) {
	if err := c.ValidateID(id); err != nil {
		return gjson.Result{}, err
	}
	return c.graph.Get(ctx, platforms.ResourceInsights, id+"/insights", token, url.Values{
		"metric": {strings.Join(insights.MetricNames(platforms.Instagram), ",")},
		"period": {"day"},
	})
}

func (c *Client) FetchPosts(ctx context.Context, id, token string) (gjson.Result, error) {
	if err := c.ValidateID(id); err != nil {
		return gjson.Result{}, err
	}
	return c.graph.Get(ctx, platforms.ResourcePosts, id+"/media", token, url.Values{
		"fields": {mediaFields},
	})
}
