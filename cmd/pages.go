package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/metascope/internal/utils"
)

// pagesCmd represents the pages command
var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the Facebook pages you manage",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newGraphRuntime(cmd)
		if err != nil {
			return err
		}
		accounts, err := rt.accounts()
		if err != nil {
			return err
		}
		pages, err := accounts.ListPages(context.Background())
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			fmt.Println("No pages found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tINSTAGRAM\tTOKEN\t")
		for _, p := range pages {
			ig := p.InstagramAccountID
			if ig == "" {
				ig = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", p.ID, p.Name, ig, utils.MaskToken(p.AccessToken))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
