package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/selection"
)

const recentPostsOnDashboard = 5

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard [page-id]",
	Short: "Combined Facebook and Instagram overview for one page",
	Long:  "Combined Facebook and Instagram overview for one page. Without a page id the first page in your page list is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rt, err := newGraphRuntime(cmd)
		if err != nil {
			return err
		}
		accounts, err := rt.accounts()
		if err != nil {
			return err
		}

		store := selection.New()
		if snap := store.Init(ctx, accounts); snap.State == selection.Failed {
			return errors.New(snap.Err)
		}
		if len(args) == 1 {
			if err := store.SelectByID(args[0]); err != nil {
				return fmt.Errorf("page %s: %w", args[0], err)
			}
		}

		cfg := pipeline.Config{
			Facebook:  rt.facebook,
			Instagram: rt.instagram,
			Selection: store,
			Log:       utils.Log,
		}
		if noRunLog, _ := cmd.Flags().GetBool("no-runlog"); !noRunLog {
			db, rec, err := openRunLog(cmd)
			if err != nil {
				utils.Log.Warnf("Run log disabled: %v", err)
			} else {
				defer db.Close()
				cfg.Runs = rec
			}
		}

		dash := pipeline.New(cfg)
		if err := dash.Load(ctx, store.Snapshot()); err != nil {
			return err
		}
		view, _ := dash.View()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, view)
		}
		return printDashboard(os.Stdout, view)
	},
}

func printDashboard(out io.Writer, v pipeline.View) error {
	linked := "not linked"
	if v.InstagramLinked {
		linked = "linked"
	}
	fmt.Fprintf(out, "%s (%s), Instagram %s\n\n", v.PageName, v.PageID, linked)

	if err := printCards(out, []card{
		{"Total Followers", v.Stats.TotalFollowers},
		{"Total Engagement", v.Stats.TotalEngagement},
		{"Total Likes", v.Stats.TotalLikes},
		{"Total Comments", v.Stats.TotalComments},
	}); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PLATFORM\tFOLLOWERS\tENGAGEMENT\tREACH\t")
	for _, row := range v.Comparison {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", row.Name, row.Followers, row.Engagement, row.Reach)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	recent := insights.Recent(v.Posts, recentPostsOnDashboard)
	if len(recent) == 0 {
		fmt.Fprintln(out, "No recent posts")
		return nil
	}
	return printPosts(out, recent)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().Bool("json", false, "Print JSON instead of tables")
	dashboardCmd.Flags().Bool("no-runlog", false, "Do not record this run in the run log")
	dashboardCmd.Flags().String("dbpath", "", "Path to the run log SQLite file (default ~/.config/metascope/metascope.sqlite)")
}
