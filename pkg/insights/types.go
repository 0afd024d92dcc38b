package insights

import (
	"encoding/json"

	"github.com/sw33tLie/metascope/pkg/platforms"
)

// Page is a connected social identity. AccessToken is secret: it is never
// serialized by default and never printed by String.
type Page struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	AccessToken        string `json:"-"`
	InstagramAccountID string `json:"instagram_business_account,omitempty"`
}

// HasInstagram reports whether a secondary-platform account is linked.
func (p Page) HasInstagram() bool { return p.InstagramAccountID != "" }

func (p Page) String() string { return p.Name + " (" + p.ID + ")" }

// Insights is one platform's metric snapshot. Facebook fills Reach and
// Impressions, Instagram fills Likes and Comments; every field is zero when
// the upstream omitted it.
type Insights struct {
	Platform    platforms.Kind
	Followers   int64
	Engagement  int64
	Reach       int64
	Impressions int64
	Likes       int64
	Comments    int64
}

// Empty returns the all-zero snapshot a missing platform contributes.
func Empty(kind platforms.Kind) Insights { return Insights{Platform: kind} }

// MarshalJSON emits the platform-specific card shape.
func (in Insights) MarshalJSON() ([]byte, error) {
	if in.Platform == platforms.Instagram {
		return json.Marshal(struct {
			Followers  int64 `json:"followers"`
			Engagement int64 `json:"engagement"`
			Likes      int64 `json:"likes"`
			Comments   int64 `json:"comments"`
		}{in.Followers, in.Engagement, in.Likes, in.Comments})
	}
	return json.Marshal(struct {
		Followers   int64 `json:"followers"`
		Engagement  int64 `json:"engagement"`
		Reach       int64 `json:"reach"`
		Impressions int64 `json:"impressions"`
	}{in.Followers, in.Engagement, in.Reach, in.Impressions})
}

// Post is a content item from either platform.
type Post struct {
	ID          string         `json:"id"`
	Platform    platforms.Kind `json:"platform"`
	Message     string         `json:"message"`
	CreatedTime string         `json:"created_time"`
	Likes       int64          `json:"likes"`
	Comments    int64          `json:"comments"`
	Shares      int64          `json:"shares,omitempty"`
	MediaURL    string         `json:"media_url,omitempty"`
}

type AggregatedStats struct {
	TotalFollowers  int64 `json:"totalFollowers"`
	TotalEngagement int64 `json:"totalEngagement"`
	TotalLikes      int64 `json:"totalLikes"`
	TotalComments   int64 `json:"totalComments"`
}

type PlatformComparisonRow struct {
	Name       string `json:"name"`
	Followers  int64  `json:"followers"`
	Engagement int64  `json:"engagement"`
	Reach      int64  `json:"reach"`
}

// TimelinePoint is one post's counters keyed by its calendar date.
type TimelinePoint struct {
	Date     string `json:"date"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
	Shares   int64  `json:"shares"`
}
