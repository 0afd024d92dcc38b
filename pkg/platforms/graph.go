package platforms

import (
	"context"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/whttp"
	"github.com/tidwall/gjson"
)

const (
	DefaultGraphURL = "https://graph.facebook.com/v22.0"

	maxPayloadLen = 512
)

// GraphClient talks to the upstream gateway. Credentials travel as the
// access_token query parameter and are redacted from every error it returns.
type GraphClient struct {
	BaseURL string
	HTTP    *retryablehttp.Client
}

func NewGraphClient(baseURL string, httpClient *retryablehttp.Client) *GraphClient {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	return &GraphClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// Get fetches path with params for the given resource category. The returned
// result is guaranteed to be a JSON object.
func (g *GraphClient) Get(ctx context.Context, category Resource, path, token string, params url.Values) (gjson.Result, error) {
	if strings.TrimSpace(token) == "" {
		return gjson.Result{}, &ValidationError{Field: "access_token", Reason: "must not be empty"}
	}

	query := url.Values{}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("access_token", token)

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    g.BaseURL + "/" + strings.TrimLeft(path, "/"),
		Query:  query,
	}, g.HTTP)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gjson.Result{}, &UpstreamFetchError{Category: category, Err: ctxErr}
		}
		return gjson.Result{}, &UpstreamFetchError{Category: category, Err: redactedError{utils.Redact(err.Error(), token, url.QueryEscape(token))}}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return gjson.Result{}, &UpstreamFetchError{
			Category: category,
			Status:   res.StatusCode,
			Payload:  utils.Redact(errorPayload(res.BodyString), token),
		}
	}

	if !gjson.Valid(res.BodyString) {
		return gjson.Result{}, &UpstreamFetchError{Category: category, Status: res.StatusCode, Err: ErrInvalidBody}
	}
	body := gjson.Parse(res.BodyString)
	if !body.IsObject() {
		return gjson.Result{}, &UpstreamFetchError{Category: category, Status: res.StatusCode, Err: ErrInvalidBody}
	}
	return body, nil
}

// ListPages fetches the pages the user token can manage.
func (g *GraphClient) ListPages(ctx context.Context, userToken string) (gjson.Result, error) {
	return g.Get(ctx, ResourcePages, "me/accounts", userToken, url.Values{
		"fields": {"name,access_token,instagram_business_account"},
	})
}

// errorPayload extracts the most useful error text from an upstream body:
// the Graph API nests it under error.message, the gateway uses a flat error string.
func errorPayload(body string) string {
	if gjson.Valid(body) {
		if msg := gjson.Get(body, "error.message"); msg.Exists() {
			return msg.String()
		}
		if msg := gjson.Get(body, "error"); msg.Exists() && msg.Type == gjson.String {
			return msg.String()
		}
	}
	body = strings.TrimSpace(body)
	if len(body) > maxPayloadLen {
		body = body[:maxPayloadLen]
	}
	return body
}

type redactedError struct{ msg string }

func (e redactedError) Error() string { return e.msg }
