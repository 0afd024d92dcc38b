package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/sw33tLie/metascope/pkg/platforms/facebook"
	"github.com/sw33tLie/metascope/pkg/platforms/instagram"
	"github.com/sw33tLie/metascope/pkg/storage"
	"github.com/sw33tLie/metascope/pkg/whttp"
)

// FACEBOOK_TOKEN maps to facebook.token and so on.
var envKeyReplacer = strings.NewReplacer(".", "_")

var errNoUserToken = errors.New("facebook.token is not set: add it to ~/.metascope.yaml or export FACEBOOK_TOKEN")

// graphRuntime bundles the upstream clients every command needs.
type graphRuntime struct {
	graph     *platforms.GraphClient
	facebook  *facebook.Client
	instagram *instagram.Client
	userToken string
}

func newGraphRuntime(cmd *cobra.Command) (*graphRuntime, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	client, err := whttp.NewClient(whttp.Options{
		Proxy:   proxy,
		Timeout: viper.GetDuration("http.timeout"),
	})
	if err != nil {
		return nil, err
	}
	graph := platforms.NewGraphClient(viper.GetString("graph.baseurl"), client)
	return &graphRuntime{
		graph:     graph,
		facebook:  facebook.NewClient(graph),
		instagram: instagram.NewClient(graph),
		userToken: viper.GetString("facebook.token"),
	}, nil
}

func (rt *graphRuntime) source(kind platforms.Kind) platforms.Source {
	if kind == platforms.Instagram {
		return rt.instagram
	}
	return rt.facebook
}

func (rt *graphRuntime) sources() map[platforms.Kind]platforms.Source {
	return map[platforms.Kind]platforms.Source{
		platforms.Facebook:  rt.facebook,
		platforms.Instagram: rt.instagram,
	}
}

func (rt *graphRuntime) accounts() (*facebook.Accounts, error) {
	if rt.userToken == "" {
		return nil, errNoUserToken
	}
	return facebook.NewAccounts(rt.graph, rt.userToken), nil
}

// resolvePage finds the page that owns id on the given platform. For
// Instagram, id is the linked business account id.
func (rt *graphRuntime) resolvePage(ctx context.Context, kind platforms.Kind, id string) (insights.Page, error) {
	accounts, err := rt.accounts()
	if err != nil {
		return insights.Page{}, err
	}
	pages, err := accounts.ListPages(ctx)
	if err != nil {
		return insights.Page{}, err
	}
	if len(pages) == 0 {
		return insights.Page{}, platforms.ErrNoPages
	}
	for _, p := range pages {
		if (kind == platforms.Facebook && p.ID == id) || (kind == platforms.Instagram && p.InstagramAccountID == id) {
			return p, nil
		}
	}
	return insights.Page{}, fmt.Errorf("no %s account with id %s among your pages", kind.DisplayName(), id)
}

// lockedRecorder serialises run-log writes across metascope processes.
type lockedRecorder struct {
	db   *storage.DB
	lock *utils.DBLock
}

func (r *lockedRecorder) RecordRun(ctx context.Context, run storage.Run) error {
	if err := r.lock.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			utils.Log.Warnf("Could not release run log lock: %v", err)
		}
	}()
	return r.db.RecordRun(ctx, run)
}

// openRunLog opens the run log configured by --dbpath or db.path.
func openRunLog(cmd *cobra.Command) (*storage.DB, *lockedRecorder, error) {
	path, _ := cmd.Flags().GetString("dbpath")
	if path == "" {
		path = viper.GetString("db.path")
	}
	lock, err := utils.NewDBLock(path)
	if err != nil {
		return nil, nil, err
	}
	absPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open run log %s: %w", absPath, err)
	}
	return db, &lockedRecorder{db: db, lock: lock}, nil
}
