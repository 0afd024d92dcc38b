package insights

import (
	"sort"
	"time"

	"github.com/sw33tLie/metascope/pkg/platforms"
)

// createdTimeLayouts covers the Graph API format (numeric zone without colon),
// RFC 3339 and bare dates.
var createdTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCreatedTime parses a post timestamp. Unparseable input yields the zero
// time, which sorts as the earliest possible date.
func ParseCreatedTime(s string) time.Time {
	for _, layout := range createdTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// AggregateStats sums followers and engagement over both snapshots and
// likes and comments over both post lists.
func AggregateStats(fb, ig Insights, fbPosts, igPosts []Post) AggregatedStats {
	stats := AggregatedStats{
		TotalFollowers:  fb.Followers + ig.Followers,
		TotalEngagement: fb.Engagement + ig.Engagement,
	}
	for _, list := range [][]Post{fbPosts, igPosts} {
		for _, p := range list {
			stats.TotalLikes += p.Likes
			stats.TotalComments += p.Comments
		}
	}
	return stats
}

// CombinePosts concatenates fbPosts then igPosts and orders the result by
// creation time, most recent first. Equal timestamps keep concatenation order.
// The inputs are not modified.
func CombinePosts(fbPosts, igPosts []Post) []Post {
	type keyed struct {
		post Post
		at   time.Time
	}
	all := make([]keyed, 0, len(fbPosts)+len(igPosts))
	for _, list := range [][]Post{fbPosts, igPosts} {
		for _, p := range list {
			all = append(all, keyed{post: p, at: ParseCreatedTime(p.CreatedTime)})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].at.After(all[j].at)
	})

	out := make([]Post, len(all))
	for i, k := range all {
		out[i] = k.post
	}
	return out
}

// BuildComparison returns exactly one row per platform, Facebook first.
// Instagram has no reach of its own; its Likes field (fed by the "reach"
// metric) stands in.
func BuildComparison(fb, ig Insights) []PlatformComparisonRow {
	return []PlatformComparisonRow{
		{
			Name:       platforms.Facebook.DisplayName(),
			Followers:  fb.Followers,
			Engagement: fb.Engagement,
			Reach:      fb.Reach,
		},
		{
			Name:       platforms.Instagram.DisplayName(),
			Followers:  ig.Followers,
			Engagement: ig.Engagement,
			Reach:      ig.Likes,
		},
	}
}

// Recent returns at most n posts from the front of posts.
func Recent(posts []Post, n int) []Post {
	if n < 0 {
		n = 0
	}
	if len(posts) < n {
		n = len(posts)
	}
	return posts[:n]
}

// Timeline charts the first limit posts in the order given.
func Timeline(posts []Post, limit int) []TimelinePoint {
	posts = Recent(posts, limit)
	points := make([]TimelinePoint, 0, len(posts))
	for _, p := range posts {
		date := p.CreatedTime
		if t := ParseCreatedTime(p.CreatedTime); !t.IsZero() {
			date = t.Format("2006-01-02")
		}
		points = append(points, TimelinePoint{
			Date:     date,
			Likes:    p.Likes,
			Comments: p.Comments,
			Shares:   p.Shares,
		})
	}
	return points
}
