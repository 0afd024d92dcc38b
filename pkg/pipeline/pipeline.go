package pipeline

import (
	"context"
	"errors"

	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"golang.org/x/sync/errgroup"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Contribution is one platform's normalized share of an invocation. An
// unlinked or unavailable platform contributes zero insights and no posts.
type Contribution struct {
	Kind     platforms.Kind
	Linked   bool
	Insights insights.Insights
	Posts    []insights.Post
}

func emptyContribution(kind platforms.Kind, linked bool) Contribution {
	return Contribution{Kind: kind, Linked: linked, Insights: insights.Empty(kind), Posts: []insights.Post{}}
}

// Result is the aggregated output of one invocation.
type Result struct {
	Facebook   Contribution
	Instagram  Contribution
	Stats      insights.AggregatedStats
	Posts      []insights.Post
	Comparison []insights.PlatformComparisonRow
}

// FetchInsights fetches the profile and metric bodies for id concurrently
// and normalizes them.
func FetchInsights(ctx context.Context, src platforms.Source, id, token string) (insights.Insights, error) {
	if err := src.ValidateID(id); err != nil {
		return insights.Insights{}, err
	}

	var raw insights.RawInsights
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw.Profile, err = src.FetchProfile(gctx, id, token)
		return err
	})
	g.Go(func() error {
		var err error
		raw.Metrics, err = src.FetchInsights(gctx, id, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return insights.Insights{}, err
	}
	return insights.NormalizeInsights(raw, src.Kind())
}

// FetchPosts fetches and normalizes the post listing for id.
func FetchPosts(ctx context.Context, src platforms.Source, id, token string) ([]insights.Post, error) {
	raw, err := src.FetchPosts(ctx, id, token)
	if err != nil {
		return nil, err
	}
	return insights.NormalizePosts(raw, src.Kind())
}

// Fetch runs one invocation for page: both platforms' insights and posts are
// fetched concurrently and joined, and the first Facebook failure fails the
// whole invocation. Instagram failures for which the upstream answered
// (non-2xx, malformed body, rejected id) are replaced by an empty
// contribution; transport failures on either side are returned.
func Fetch(ctx context.Context, fb, ig platforms.Source, page insights.Page, log Logger) (Result, error) {
	if log == nil {
		log = nopLogger{}
	}

	fbPart := emptyContribution(platforms.Facebook, true)
	igPart := emptyContribution(platforms.Instagram, page.HasInstagram())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := FetchInsights(gctx, fb, page.ID, page.AccessToken)
		if err != nil {
			return err
		}
		fbPart.Insights = in
		return nil
	})
	g.Go(func() error {
		posts, err := FetchPosts(gctx, fb, page.ID, page.AccessToken)
		if err != nil {
			return err
		}
		fbPart.Posts = posts
		return nil
	})

	if page.HasInstagram() {
		g.Go(func() error {
			in, err := FetchInsights(gctx, ig, page.InstagramAccountID, page.AccessToken)
			if err != nil {
				return substitute(err, page, log)
			}
			igPart.Insights = in
			return nil
		})
		g.Go(func() error {
			posts, err := FetchPosts(gctx, ig, page.InstagramAccountID, page.AccessToken)
			if err != nil {
				return substitute(err, page, log)
			}
			igPart.Posts = posts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Facebook:   fbPart,
		Instagram:  igPart,
		Stats:      insights.AggregateStats(fbPart.Insights, igPart.Insights, fbPart.Posts, igPart.Posts),
		Posts:      insights.CombinePosts(fbPart.Posts, igPart.Posts),
		Comparison: insights.BuildComparison(fbPart.Insights, igPart.Insights),
	}, nil
}

// substitute swallows Instagram errors the upstream answered for, leaving
// the zero contribution in place, and passes everything else through.
func substitute(err error, page insights.Page, log Logger) error {
	var (
		upErr  *platforms.UpstreamFetchError
		malErr *platforms.MalformedResponseError
		valErr *platforms.ValidationError
	)
	switch {
	case errors.As(err, &upErr) && upErr.Responded(),
		errors.As(err, &malErr),
		errors.As(err, &valErr):
		log.Warnf("Instagram %s unavailable for page %s, counting it as empty: %v", platforms.Category(err), page.ID, err)
		return nil
	default:
		return err
	}
}
