package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind tags one of the two supported upstream platform families.
type Kind string

const (
	Facebook  Kind = "facebook"
	Instagram Kind = "instagram"
)

// Kinds lists the supported kinds in their fixed display order.
var Kinds = []Kind{Facebook, Instagram}

// DisplayName is the label used in comparison rows and CLI output.
func (k Kind) DisplayName() string {
	switch k {
	case Facebook:
		return "Facebook"
	case Instagram:
		return "Instagram"
	default:
		return string(k)
	}
}

// ParseKind accepts "facebook"/"fb" and "instagram"/"ig", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facebook", "fb":
		return Facebook, nil
	case "instagram", "ig":
		return Instagram, nil
	default:
		return "", &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", s)}
	}
}

// Resource is a category of upstream call. It is carried by errors and logs
// in place of anything credential-bearing.
type Resource string

const (
	ResourcePages    Resource = "pages"
	ResourceProfile  Resource = "profile"
	ResourceInsights Resource = "insights"
	ResourcePosts    Resource = "posts"
)

// Source issues one upstream call per resource category for a single
// platform kind and returns the validated JSON body.
type Source interface {
	Kind() Kind
	// ValidateID rejects identifiers this platform would never accept,
	// before any network call is made.
	ValidateID(id string) error
	FetchProfile(ctx context.Context, id, token string) (gjson.Result, error)
	FetchInsights(ctx context.Context, id, token string) (gjson.Result, error)
	FetchPosts(ctx context.Context, id, token string) (gjson.Result, error)
}
