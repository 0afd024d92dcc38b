package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/sw33tLie/metascope/pkg/whttp"
)

func newGraph(t *testing.T, h http.HandlerFunc) *platforms.GraphClient {
	t.Helper()
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)
	client, err := whttp.NewClient(whttp.Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return platforms.NewGraphClient(s.URL, client)
}

func TestValidateID(t *testing.T) {
	c := NewClient(nil)
	for _, id := range []string{"123", "000987"} {
		if err := c.ValidateID(id); err != nil {
			t.Fatalf("ValidateID(%q): %v", id, err)
		}
	}
	for _, id := range []string{"", "12a", "../me", "1 2"} {
		var valErr *platforms.ValidationError
		if err := c.ValidateID(id); !errors.As(err, &valErr) {
			t.Fatalf("ValidateID(%q) expected ValidationError, got %v", id, err)
		}
	}
}

func TestFetchRejectsBeforeNetwork(t *testing.T) {
	c := NewClient(newGraph(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	if _, err := c.FetchPosts(context.Background(), "abc", "tok"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFetchInsightsRequest(t *testing.T) {
	c := NewClient(newGraph(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/123/insights" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("metric") != "page_impressions,page_engaged_users,page_post_engagements" || q.Get("period") != "day" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	body, err := c.FetchInsights(context.Background(), "123", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.Get("data").IsArray() {
		t.Fatalf("unexpected body %s", body.Raw)
	}
}

func TestAccountsListPages(t *testing.T) {
	g := newGraph(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/accounts" || r.URL.Query().Get("access_token") != "user-token" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"One","access_token":"p1","instagram_business_account":{"id":"17"}}]}`))
	})

	pages, err := NewAccounts(g, "user-token").ListPages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0].AccessToken != "p1" || pages[0].InstagramAccountID != "17" {
		t.Fatalf("unexpected pages %+v", pages)
	}
}
