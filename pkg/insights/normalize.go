package insights

import (
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/tidwall/gjson"
)

const (
	NoMessage = "No message"
	NoCaption = "No caption"
)

// metricBinding routes one upstream metric name into an Insights field.
type metricBinding struct {
	metric string
	set    func(*Insights, int64)
}

// The relabeling below is intentionally non-literal (e.g. Instagram
// "impressions" lands in Comments). Dashboards built on these numbers
// depend on it; keep it as is.
var metricTables = map[platforms.Kind][]metricBinding{
	platforms.Facebook: {
		{"page_impressions", func(in *Insights, v int64) { in.Reach = v }},
		{"page_engaged_users", func(in *Insights, v int64) { in.Engagement = v }},
		{"page_post_engagements", func(in *Insights, v int64) { in.Impressions = v }},
	},
	platforms.Instagram: {
		{"impressions", func(in *Insights, v int64) { in.Comments = v }},
		{"reach", func(in *Insights, v int64) { in.Likes = v }},
		{"profile_views", func(in *Insights, v int64) { in.Engagement = v }},
	},
}

// MetricNames returns the upstream metric names requested for kind, in request order.
func MetricNames(kind platforms.Kind) []string {
	table := metricTables[kind]
	names := make([]string, 0, len(table))
	for _, b := range table {
		names = append(names, b.metric)
	}
	return names
}

// RawInsights pairs the two upstream bodies an Insights snapshot is built from.
type RawInsights struct {
	Profile gjson.Result
	Metrics gjson.Result
}

// NormalizeInsights builds an Insights snapshot. Each metric takes the value
// of its first time bucket; a missing metric, bucket or value yields 0.
func NormalizeInsights(raw RawInsights, kind platforms.Kind) (Insights, error) {
	table, ok := metricTables[kind]
	if !ok {
		return Insights{}, &platforms.ValidationError{Field: "platform", Reason: "unsupported platform " + string(kind)}
	}
	if !raw.Profile.IsObject() {
		return Insights{}, &platforms.MalformedResponseError{Category: platforms.ResourceProfile, Reason: "profile is not an object"}
	}
	data, err := requireList(raw.Metrics, platforms.ResourceInsights)
	if err != nil {
		return Insights{}, err
	}

	out := Empty(kind)
	out.Followers = nonNegative(raw.Profile.Get("followers_count").Int())

	for _, b := range table {
		b.set(&out, firstBucketValue(data, b.metric))
	}
	return out, nil
}

func firstBucketValue(data []gjson.Result, metric string) int64 {
	for _, entry := range data {
		if entry.Get("name").String() != metric {
			continue
		}
		return nonNegative(entry.Get("values.0.value").Int())
	}
	return 0
}

// NormalizePosts converts a post/media listing into unified posts, in upstream order.
func NormalizePosts(raw gjson.Result, kind platforms.Kind) ([]Post, error) {
	data, err := requireList(raw, platforms.ResourcePosts)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(data))
	for _, item := range data {
		p, err := NormalizePost(item, kind)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// NormalizePost maps one platform-specific post object into a Post. The
// platform tag comes from kind and is never re-derived.
func NormalizePost(raw gjson.Result, kind platforms.Kind) (Post, error) {
	if !raw.IsObject() {
		return Post{}, &platforms.MalformedResponseError{Category: platforms.ResourcePosts, Reason: "post is not an object"}
	}

	p := Post{
		ID:       raw.Get("id").String(),
		Platform: kind,
	}
	switch kind {
	case platforms.Facebook:
		p.Message = orDefault(raw.Get("message").String(), NoMessage)
		p.CreatedTime = raw.Get("created_time").String()
		p.Likes = nonNegative(raw.Get("likes.summary.total_count").Int())
		p.Comments = nonNegative(raw.Get("comments.summary.total_count").Int())
		p.Shares = nonNegative(raw.Get("shares.count").Int())
	case platforms.Instagram:
		p.Message = orDefault(raw.Get("caption").String(), NoCaption)
		p.CreatedTime = raw.Get("timestamp").String()
		p.Likes = nonNegative(raw.Get("like_count").Int())
		p.Comments = nonNegative(raw.Get("comments_count").Int())
		p.MediaURL = raw.Get("media_url").String()
	default:
		return Post{}, &platforms.ValidationError{Field: "platform", Reason: "unsupported platform " + string(kind)}
	}
	return p, nil
}

// NormalizePages converts the page-list body. Entries must carry an id;
// the name falls back to it.
func NormalizePages(raw gjson.Result) ([]Page, error) {
	data, err := requireList(raw, platforms.ResourcePages)
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(data))
	for _, item := range data {
		if !item.IsObject() {
			return nil, &platforms.MalformedResponseError{Category: platforms.ResourcePages, Reason: "page is not an object"}
		}
		id := item.Get("id").String()
		if id == "" {
			return nil, &platforms.MalformedResponseError{Category: platforms.ResourcePages, Reason: "page without id"}
		}
		pages = append(pages, Page{
			ID:                 id,
			Name:               orDefault(item.Get("name").String(), id),
			AccessToken:        item.Get("access_token").String(),
			InstagramAccountID: item.Get("instagram_business_account.id").String(),
		})
	}
	return pages, nil
}

// requireList returns the "data" array of an object body.
func requireList(raw gjson.Result, category platforms.Resource) ([]gjson.Result, error) {
	if !raw.IsObject() {
		return nil, &platforms.MalformedResponseError{Category: category, Reason: "body is not an object"}
	}
	data := raw.Get("data")
	if !data.IsArray() {
		return nil, &platforms.MalformedResponseError{Category: category, Reason: "missing data list"}
	}
	return data.Array(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
