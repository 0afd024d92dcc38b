package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/platforms"
)

const timelineLength = 7

// postsCmd represents the posts command
var postsCmd = &cobra.Command{
	Use:   "posts <id>",
	Short: "List recent posts for one page or Instagram account",
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
		src := rt.source(kind)
		if err := src.ValidateID(args[0]); err != nil {
			return err
		}

		posts, err := pipeline.FetchPosts(ctx, src, args[0], token)
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			posts = insights.Recent(posts, limit)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, posts)
		}
		if len(posts) == 0 {
			fmt.Println("No posts found")
			return nil
		}
		if err := printPosts(os.Stdout, posts); err != nil {
			return err
		}

		if kind == platforms.Facebook {
			fmt.Println()
			fmt.Println("Timeline")
			return printTimeline(os.Stdout, insights.Timeline(posts, timelineLength))
		}
		return nil
	},
}

func printPosts(out io.Writer, posts []insights.Post) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tCREATED\tLIKES\tCOMMENTS\tMESSAGE\t")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t\n", p.Platform.DisplayName(), p.CreatedTime, p.Likes, p.Comments, truncate(p.Message, 60))
	}
	return w.Flush()
}

func printTimeline(out io.Writer, points []insights.TimelinePoint) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DATE\tLIKES\tCOMMENTS\tSHARES\t")
	for _, pt := range points {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", pt.Date, pt.Likes, pt.Comments, pt.Shares)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(postsCmd)
	addPlatformFlags(postsCmd)
	postsCmd.Flags().IntP("limit", "n", 0, "Show only the first N posts (0 = all)")
}
