package facebook

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/tidwall/gjson"
)

const postFields = "message,created_time,likes.summary(true),comments.summary(true),shares"

var pageIDPattern = regexp.MustCompile(`^\d+$`)

// Client fetches page-level resources for Facebook pages.
type Client struct {
	graph *platforms.GraphClient
}

func NewClient(graph *platforms.GraphClient) *Client { return &Client{graph: graph} }

var _ platforms.Source = (*Client)(nil)

func (c *Client) Kind() platforms.Kind { return platforms.Facebook }

// ValidateID accepts numeric page ids only.
func (c *Client) ValidateID(id string) error {
	if !pageIDPattern.MatchString(id) {
		return &platforms.ValidationError{Field: "page id", Reason: "must be numeric"}
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
		"metric": {strings.Join(insights.MetricNames(platforms.Facebook), ",")},
		"period": {"day"},
	})
}

func (c *Client) FetchPosts(ctx context.Context, id, token string) (gjson.Result, error) {
	if err := c.ValidateID(id); err != nil {
		return gjson.Result{}, err
	}
	return c.graph.Get(ctx, platforms.ResourcePosts, id+"/posts", token, url.Values{
		"fields": {postFields},
	})
}

// Accounts lists the pages a user token manages.
type Accounts struct {
	graph *platforms.GraphClient
	token string
}

func NewAccounts(graph *platforms.GraphClient, userToken string) *Accounts {
	return &Accounts{graph: graph, token: userToken}
}

// ListPages returns the managed pages in upstream order. An empty list is not an error here.
func (a *Accounts) ListPages(ctx context.Context) ([]insights.Page, error) {
	raw, err := a.graph.ListPages(ctx, a.token)
	if err != nil {
		return nil, err
	}
	return insights.NormalizePages(raw)
}
