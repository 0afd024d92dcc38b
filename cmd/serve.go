package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/metascope/internal/server"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/selection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metascope HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
		cfg := pipeline.Config{
			Facebook:  rt.facebook,
			Instagram: rt.instagram,
			Selection: store,
			Log:       utils.Log,
		}
		db, rec, err := openRunLog(cmd)
		if err != nil {
			utils.Log.Warnf("Run log disabled: %v", err)
		} else {
			defer db.Close()
			cfg.Runs = rec
		}
		dash := pipeline.New(cfg)

		unwatch := dash.Watch(ctx)
		defer unwatch()
		go func() {
			if snap := store.Init(ctx, accounts); snap.State == selection.Failed {
				utils.Log.Errorf("Could not load pages: %s", snap.Err)
			}
		}()

		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = viper.GetString("server.listen")
		}
		srv := server.New(accounts, rt.sources(), store, dash,
			viper.GetString("server.username"), viper.GetString("server.password"))

		err = srv.Start(ctx, listenAddr)
		dash.Wait()
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default from server.listen, :3000)")
	serveCmd.Flags().String("dbpath", "", "Path to the run log SQLite file (default ~/.config/metascope/metascope.sqlite)")
}
