package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/platforms"
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights <id>",
	Short: "Show follower and engagement metrics for one page or Instagram account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newGraphRuntime(cmd)
		if err != nil {
			return err
		}
		kind, token, err := platformAndToken(ctx, cmd, rt, args[0])
		if err != nil {
			return err
		}

		in, err := pipeline.FetchInsights(ctx, rt.source(kind), args[0], token)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, in)
		}
		fmt.Printf("%s insights for %s\n\n", kind.DisplayName(), args[0])
		return printCards(os.Stdout, cardsFor(in))
	},
}

// platformAndToken reads --platform and --token. Without --token the page
// token is looked up through the page list.
func platformAndToken(ctx context.Context, cmd *cobra.Command, rt *graphRuntime, id string) (platforms.Kind, string, error) {
	name, _ := cmd.Flags().GetString("platform")
	kind, err := platforms.ParseKind(name)
	if err != nil {
		return "", "", err
	}
	token, _ := cmd.Flags().GetString("token")
	if token != "" {
		return kind, token, nil
	}
	page, err := rt.resolvePage(ctx, kind, id)
	if err != nil {
		return "", "", err
	}
	return kind, page.AccessToken, nil
}

type card struct {
	label string
	value int64
}

// cardsFor returns the four headline numbers for one platform.
func cardsFor(in insights.Insights) []card {
	if in.Platform == platforms.Instagram {
		return []card{
			{"Followers", in.Followers},
			{"Engagement", in.Engagement},
			{"Likes", in.Likes},
			{"Comments", in.Comments},
		}
	}
	return []card{
		{"Followers", in.Followers},
		{"Engagement", in.Engagement},
		{"Reach", in.Reach},
		{"Impressions", in.Impressions},
	}
}

func printCards(out io.Writer, cards []card) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%d\t\n", c.label, c.value)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addPlatformFlags(c *cobra.Command) {
	c.Flags().StringP("platform", "p", string(platforms.Facebook), "Platform: facebook (fb) or instagram (ig)")
	c.Flags().StringP("token", "t", "", "Page access token (looked up from your page list when empty)")
	c.Flags().Bool("json", false, "Print JSON instead of a table")
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	addPlatformFlags(insightsCmd)
}
