package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/sw33tLie/metascope/pkg/selection"
	"github.com/sw33tLie/metascope/pkg/storage"
)

// ErrStale is returned by Load when the selection changed while the
// invocation was in flight and its results were discarded.
var ErrStale = errors.New("selection changed while loading, results discarded")

// RunRecorder persists one record per invocation.
type RunRecorder interface {
	RecordRun(ctx context.Context, run storage.Run) error
}

// Config holds everything a Dashboard needs.
type Config struct {
	Facebook  platforms.Source
	Instagram platforms.Source
	Selection *selection.Store // optional; nil = only generation ordering is enforced
	Runs      RunRecorder      // optional; nil = runs are not recorded
	Log       Logger           // optional; nil = no logging
	Now       func() time.Time // optional; defaults to time.Now
}

// View is the last committed dashboard state.
type View struct {
	RunID           string                           `json:"run_id"`
	PageID          string                           `json:"page_id"`
	PageName        string                           `json:"page_name"`
	Generation      uint64                           `json:"generation"`
	Facebook        insights.Insights                `json:"facebook"`
	Instagram       insights.Insights                `json:"instagram"`
	InstagramLinked bool                             `json:"instagram_linked"`
	Stats           insights.AggregatedStats         `json:"stats"`
	Posts           []insights.Post                  `json:"posts"`
	Comparison      []insights.PlatformComparisonRow `json:"comparison"`
	UpdatedAt       time.Time                        `json:"updated_at"`
}

// Dashboard runs invocations for the selected page and keeps the most
// recent successful result. A failed invocation leaves the previous view
// in place.
type Dashboard struct {
	cfg Config
	log Logger
	now func() time.Time

	mu       sync.RWMutex
	view     View
	loaded   bool
	inflight int

	wg sync.WaitGroup
}

func New(cfg Config) *Dashboard {
	d := &Dashboard{cfg: cfg, log: cfg.Log, now: cfg.Now}
	if d.log == nil {
		d.log = nopLogger{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// View returns the committed view and whether one exists yet.
func (d *Dashboard) View() (View, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v := d.view
	v.Posts = append([]insights.Post(nil), d.view.Posts...)
	v.Comparison = append([]insights.PlatformComparisonRow(nil), d.view.Comparison...)
	return v, d.loaded
}

// Loading reports whether any invocation is in flight.
func (d *Dashboard) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inflight > 0
}

// Load runs one invocation for the page selected in snap and commits the
// result if snap's generation is still current.
func (d *Dashboard) Load(ctx context.Context, snap selection.Snapshot) error {
	if snap.Page == nil {
		return selection.ErrNotReady
	}
	page := *snap.Page

	run := storage.Run{
		ID:         uuid.NewString(),
		PageID:     page.ID,
		Generation: snap.Generation,
		StartedAt:  d.now(),
	}

	d.setInflight(1)
	defer d.setInflight(-1)

	d.log.Debugf("Run %s: loading insights for page %s (generation %d)", run.ID, page.ID, snap.Generation)
	res, err := Fetch(ctx, d.cfg.Facebook, d.cfg.Instagram, page, d.log)
	run.FinishedAt = d.now()
	if err != nil {
		run.Status = storage.StatusFailed
		run.Category = platforms.Category(err)
		run.Error = err.Error()
		d.log.Errorf("Run %s: loading %s failed: %v", run.ID, page, err)
		d.record(ctx, run)
		return err
	}

	if !d.commit(run, page, snap.Generation, res) {
		run.Status = storage.StatusStale
		d.log.Debugf("Run %s: selection moved past generation %d, discarding", run.ID, snap.Generation)
		d.record(ctx, run)
		return ErrStale
	}

	run.Status = storage.StatusOK
	d.log.Infof("Run %s: dashboard updated for %s", run.ID, page)
	d.record(ctx, run)
	return nil
}

// Watch subscribes to the selection store and starts an invocation each
// time a new page is selected, including the current one. The returned
// function stops watching; call Wait to drain in-flight invocations.
func (d *Dashboard) Watch(ctx context.Context) (stop func()) {
	if d.cfg.Selection == nil {
		return func() {}
	}

	var (
		mu      sync.Mutex
		started bool
		last    uint64
	)
	trigger := func(snap selection.Snapshot) {
		if snap.State != selection.Ready || snap.Page == nil {
			return
		}
		mu.Lock()
		if started && snap.Generation <= last {
			mu.Unlock()
			return
		}
		started, last = true, snap.Generation
		mu.Unlock()

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			// Failures are logged and recorded by Load.
			_ = d.Load(ctx, snap)
		}()
	}

	unsubscribe := d.cfg.Selection.Subscribe(trigger)
	trigger(d.cfg.Selection.Snapshot())
	return unsubscribe
}

// Wait blocks until every invocation started by Watch has returned.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

func (d *Dashboard) commit(run storage.Run, page insights.Page, gen uint64, res Result) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.Selection != nil && !d.cfg.Selection.IsCurrent(gen) {
		return false
	}
	if d.loaded && gen < d.view.Generation {
		return false
	}

	d.view = View{
		RunID:           run.ID,
		PageID:          page.ID,
		PageName:        page.Name,
		Generation:      gen,
		Facebook:        res.Facebook.Insights,
		Instagram:       res.Instagram.Insights,
		InstagramLinked: res.Instagram.Linked,
		Stats:           res.Stats,
		Posts:           res.Posts,
		Comparison:      res.Comparison,
		UpdatedAt:       run.FinishedAt,
	}
	d.loaded = true
	return true
}

func (d *Dashboard) setInflight(delta int) {
	d.mu.Lock()
	d.inflight += delta
	d.mu.Unlock()
}

func (d *Dashboard) record(ctx context.Context, run storage.Run) {
	if d.cfg.Runs == nil {
		return
	}
	if err := d.cfg.Runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		d.log.Warnf("Could not record run %s: %v", run.ID, err)
	}
}
