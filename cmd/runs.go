package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/metascope/internal/utils"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent dashboard runs from the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openRunLog(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STARTED\tPAGE\tGEN\tSTATUS\tCATEGORY\tDURATION\tID\t")
		for _, r := range runs {
			category := r.Category
			if category == "" {
				category = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
				r.StartedAt.Local().Format(time.DateTime), r.PageID, r.Generation, r.Status, category,
				r.Duration().Round(time.Millisecond), r.ID)
		}
		return w.Flush()
	},
}

// runsStatsCmd represents the runs stats command
var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints run counts per status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openRunLog(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetRunStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the run log to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "STATUS\tRUNS\tLAST\t")

		var total int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", s.Status, s.Count, s.Last.Local().Format(time.DateTime))
			total += s.Count
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t \t\n", total)

		return w.Flush()
	},
}

// runsPruneCmd represents the runs prune command
var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		db, rec, err := openRunLog(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := rec.lock.Lock(); err != nil {
			return err
		}
		defer rec.lock.Unlock()

		n, err := db.PruneRuns(context.Background(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		utils.Log.Infof("Pruned %d runs", n)
		return nil
	},
}

// runsShellCmd represents the runs shell command
var runsShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive sqlite3 shell on the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("dbpath")
		if path == "" {
			path = viper.GetString("db.path")
		}
		dbPath, err := utils.GetAbsDBPath(path)
		if err != nil {
			return err
		}

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsPruneCmd)
	runsCmd.AddCommand(runsShellCmd)
	runsCmd.PersistentFlags().String("dbpath", "", "Path to the run log SQLite file (default ~/.config/metascope/metascope.sqlite)")
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete runs started longer ago than this")
}
