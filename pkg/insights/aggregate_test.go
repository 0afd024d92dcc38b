package insights

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/sw33tLie/metascope/pkg/platforms"
)

func fbPost(id, created string, likes, comments int64) Post {
	return Post{ID: id, Platform: platforms.Facebook, Message: NoMessage, CreatedTime: created, Likes: likes, Comments: comments}
}

func igPost(id, created string, likes, comments int64) Post {
	return Post{ID: id, Platform: platforms.Instagram, Message: NoCaption, CreatedTime: created, Likes: likes, Comments: comments}
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestCombinePostsScenario(t *testing.T) {
	fb := []Post{fbPost("fb-02", "2024-01-02", 0, 0), fbPost("fb-01", "2024-01-01", 0, 0)}
	ig := []Post{igPost("ig-02", "2024-01-02", 0, 0)}

	got := ids(CombinePosts(fb, ig))
	want := []string{"fb-02", "ig-02", "fb-01"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCombinePostsMixedFormatsAndGarbage(t *testing.T) {
	fb := []Post{
		fbPost("bad", "not a date", 0, 0),
		fbPost("graph", "2024-03-01T09:00:00+0000", 0, 0),
	}
	ig := []Post{
		igPost("rfc", "2024-03-01T10:00:00Z", 0, 0),
		igPost("empty", "", 0, 0),
	}

	got := ids(CombinePosts(fb, ig))
	want := []string{"rfc", "graph", "bad", "empty"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCombinePostsDoesNotMutateInput(t *testing.T) {
	fb := []Post{fbPost("old", "2023-01-01", 0, 0), fbPost("new", "2024-01-01", 0, 0)}
	_ = CombinePosts(fb, nil)
	if fb[0].ID != "old" {
		t.Fatalf("input reordered: %v", ids(fb))
	}
}

func TestCombinePostsIsStableSortedPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	days := []string{"2024-01-01", "2024-01-02", "2024-01-03"}

	for round := 0; round < 50; round++ {
		var fb, ig []Post
		nfb, nig := r.Intn(8), r.Intn(8)
		for i := 0; i < nfb; i++ {
			fb = append(fb, fbPost("fb"+string(rune('a'+i)), days[r.Intn(len(days))], 0, 0))
		}
		for i := 0; i < nig; i++ {
			ig = append(ig, igPost("ig"+string(rune('a'+i)), days[r.Intn(len(days))], 0, 0))
		}

		out := CombinePosts(fb, ig)
		if len(out) != len(fb)+len(ig) {
			t.Fatalf("lost posts: %d vs %d", len(out), len(fb)+len(ig))
		}

		// Position of each post in the concatenated input.
		order := map[string]int{}
		for i, p := range append(append([]Post{}, fb...), ig...) {
			order[p.ID] = i
		}
		for i := 1; i < len(out); i++ {
			prev, cur := ParseCreatedTime(out[i-1].CreatedTime), ParseCreatedTime(out[i].CreatedTime)
			if prev.Before(cur) {
				t.Fatalf("not descending at %d: %v", i, ids(out))
			}
			if prev.Equal(cur) && order[out[i-1].ID] > order[out[i].ID] {
				t.Fatalf("tie not stable at %d: %v", i, ids(out))
			}
		}
	}
}

func TestAggregateStats(t *testing.T) {
	fb := Insights{Platform: platforms.Facebook, Followers: 1200, Engagement: 50, Reach: 300}
	ig := Insights{Platform: platforms.Instagram, Followers: 80, Engagement: 3, Likes: 5}
	fbPosts := []Post{fbPost("a", "2024-01-01", 10, 2), fbPost("b", "2024-01-02", 5, 1)}
	igPosts := []Post{igPost("c", "2024-01-01", 7, 4)}

	got := AggregateStats(fb, ig, fbPosts, igPosts)
	want := AggregatedStats{TotalFollowers: 1280, TotalEngagement: 53, TotalLikes: 22, TotalComments: 7}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if again := AggregateStats(fb, ig, fbPosts, igPosts); again != got {
		t.Fatalf("not idempotent: %+v vs %+v", again, got)
	}
}

func TestUnlinkedPlatformIsIdentity(t *testing.T) {
	fb := Insights{Platform: platforms.Facebook, Followers: 10, Engagement: 4}
	fbPosts := []Post{fbPost("a", "2024-01-01", 1, 1), fbPost("b", "2024-01-03", 2, 0)}

	withEmpty := AggregateStats(fb, Empty(platforms.Instagram), fbPosts, nil)
	alone := AggregatedStats{TotalFollowers: 10, TotalEngagement: 4, TotalLikes: 3, TotalComments: 1}
	if withEmpty != alone {
		t.Fatalf("got %+v, want %+v", withEmpty, alone)
	}

	combined := CombinePosts(fbPosts, []Post{})
	if !reflect.DeepEqual(ids(combined), []string{"b", "a"}) {
		t.Fatalf("unexpected order %v", ids(combined))
	}
}

func TestBuildComparison(t *testing.T) {
	fb := Insights{Platform: platforms.Facebook, Followers: 1, Engagement: 2, Reach: 3, Impressions: 4}
	ig := Insights{Platform: platforms.Instagram, Followers: 5, Engagement: 6, Likes: 7, Comments: 8}

	got := BuildComparison(fb, ig)
	want := []PlatformComparisonRow{
		{Name: "Facebook", Followers: 1, Engagement: 2, Reach: 3},
		{Name: "Instagram", Followers: 5, Engagement: 6, Reach: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTimelineAndRecent(t *testing.T) {
	posts := []Post{
		{ID: "1", CreatedTime: "2024-01-03T10:00:00+0000", Likes: 3, Comments: 1, Shares: 2},
		{ID: "2", CreatedTime: "garbage", Likes: 1},
		{ID: "3", CreatedTime: "2024-01-01T10:00:00+0000"},
	}
	got := Timeline(posts, 2)
	want := []TimelinePoint{
		{Date: "2024-01-03", Likes: 3, Comments: 1, Shares: 2},
		{Date: "garbage", Likes: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if len(Recent(posts, 10)) != 3 || len(Recent(posts, 0)) != 0 {
		t.Fatalf("Recent did not clamp")
	}
}

func TestParseCreatedTime(t *testing.T) {
	want := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-01-02T10:00:00+0000", "2024-01-02T10:00:00Z", "2024-01-02T12:00:00+02:00"} {
		if got := ParseCreatedTime(s); !got.Equal(want) {
			t.Fatalf("ParseCreatedTime(%q) = %v", s, got)
		}
	}
	if !ParseCreatedTime("nope").IsZero() {
		t.Fatalf("expected zero time for garbage")
	}
}

func TestInsightsJSONShape(t *testing.T) {
	fb, _ := json.Marshal(Insights{Platform: platforms.Facebook, Followers: 1, Reach: 2})
	if string(fb) != `{"followers":1,"engagement":0,"reach":2,"impressions":0}` {
		t.Fatalf("unexpected facebook json: %s", fb)
	}
	ig, _ := json.Marshal(Insights{Platform: platforms.Instagram, Likes: 3})
	if string(ig) != `{"followers":0,"engagement":0,"likes":3,"comments":0}` {
		t.Fatalf("unexpected instagram json: %s", ig)
	}
}

func TestPageStringOmitsToken(t *testing.T) {
	p := Page{ID: "1", Name: "Shop", AccessToken: "secret"}
	if s := p.String(); s != "Shop (1)" {
		t.Fatalf("unexpected String: %q", s)
	}
	b, _ := json.Marshal(p)
	if string(b) != `{"id":"1","name":"Shop"}` {
		t.Fatalf("token leaked into json: %s", b)
	}
}
