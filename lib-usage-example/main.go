package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/sw33tLie/metascope/pkg/platforms/facebook"
	"github.com/sw33tLie/metascope/pkg/platforms/instagram"
	"github.com/sw33tLie/metascope/pkg/whttp"
)

func main() {
	// Usage: go run *.go -token "your_user_token"

	tokenFlag := flag.String("token", "", "Facebook user access token")

	// Parse the command-line flags
	flag.Parse()

	if *tokenFlag == "" {
		fmt.Println("Token is required. Please provide the token using -token flag.")
		return
	}

	client, err := whttp.NewClient(whttp.Options{Timeout: 30 * time.Second})
	if err != nil {
		fmt.Println(err)
		return
	}
	graph := platforms.NewGraphClient(platforms.DefaultGraphURL, client)

	ctx := context.Background()
	pages, err := facebook.NewAccounts(graph, *tokenFlag).ListPages(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Both platforms share the same Graph client
	for _, page := range pages {
		res, err := pipeline.Fetch(ctx, facebook.NewClient(graph), instagram.NewClient(graph), page, nil)
		if err != nil {
			fmt.Println(page, err)
			continue
		}
		fmt.Println(page, res.Stats.TotalFollowers, res.Stats.TotalEngagement, len(res.Posts))
	}
}
