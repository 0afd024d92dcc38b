package selection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sw33tLie/metascope/pkg/insights"
)

type fakeLister struct {
	pages []insights.Page
	err   error
}

func (f fakeLister) ListPages(ctx context.Context) ([]insights.Page, error) {
	return f.pages, f.err
}

var (
	pageA = insights.Page{ID: "1", Name: "A", AccessToken: "ta"}
	pageB = insights.Page{ID: "2", Name: "B", AccessToken: "tb", InstagramAccountID: "17"}
)

func TestInitSelectsFirstPage(t *testing.T) {
	s := New()
	if got := s.Snapshot().State; got != Uninitialized {
		t.Fatalf("expected uninitialized, got %v", got)
	}

	var mu sync.Mutex
	var states []State
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	})

	snap := s.Init(context.Background(), fakeLister{pages: []insights.Page{pageA, pageB}})
	if snap.State != Ready || snap.Page == nil || snap.Page.ID != "1" || snap.Generation != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(states) != 2 || states[0] != Loading || states[1] != Ready {
		t.Fatalf("unexpected transitions %v", states)
	}
}

func TestInitNoPages(t *testing.T) {
	s := New()
	snap := s.Init(context.Background(), fakeLister{pages: []insights.Page{}})
	if snap.State != Failed || snap.Err != "No pages found" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if s.SelectedPage() != nil {
		t.Fatalf("expected no selection")
	}
	if snap.State.String() != "error" {
		t.Fatalf("unexpected state string %q", snap.State)
	}
}

func TestInitFetchFailure(t *testing.T) {
	s := New()
	snap := s.Init(context.Background(), fakeLister{err: errors.New("upstream fetch error (pages): status 500")})
	if snap.State != Failed || snap.Err != "upstream fetch error (pages): status 500" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Page != nil {
		t.Fatalf("expected no selection")
	}
}

func TestSetSelectedPage(t *testing.T) {
	s := New()
	if err := s.SetSelectedPage(pageA); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	s.Init(context.Background(), fakeLister{pages: []insights.Page{pageA, pageB}})

	var notified []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) { notified = append(notified, snap.Generation) })

	if err := s.SetSelectedPage(pageB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetSelectedPage(pageB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notified) != 1 || notified[0] != 2 {
		t.Fatalf("expected one notification for generation 2, got %v", notified)
	}
	if !s.IsCurrent(2) || s.IsCurrent(1) {
		t.Fatalf("generation bookkeeping wrong")
	}

	unsubscribe()
	if err := s.SelectByID("1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notified) != 1 {
		t.Fatalf("listener called after unsubscribe")
	}
	if got := s.SelectedPage(); got == nil || got.ID != "1" {
		t.Fatalf("unexpected selection %+v", got)
	}
	if err := s.SelectByID("nope"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Init(context.Background(), fakeLister{pages: []insights.Page{pageA}})
	snap := s.Snapshot()
	snap.Page.Name = "mutated"
	snap.Pages[0].Name = "mutated"
	if s.SelectedPage().Name != "A" || s.Snapshot().Pages[0].Name != "A" {
		t.Fatalf("snapshot shares memory with the store")
	}
}
