package selection

import (
	"context"
	"errors"
	"sync"

	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/platforms"
)

// State is the lifecycle of a Store.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrNotReady is returned when selecting a page outside the ready state.
	ErrNotReady = errors.New("page selection is not ready")
	// ErrUnknownPage is returned when selecting an id missing from the page list.
	ErrUnknownPage = errors.New("page not found in page list")
)

// PageLister fetches the list of selectable pages.
type PageLister interface {
	ListPages(ctx context.Context) ([]insights.Page, error)
}

// Snapshot is an immutable view of a Store. Generation increases by one
// every time the selected page changes.
type Snapshot struct {
	State      State
	Page       *insights.Page
	Pages      []insights.Page
	Err        string
	Generation uint64
}

func (s Snapshot) Loading() bool { return s.State == Loading }

// Listener is called after every state transition, outside the store lock.
type Listener func(Snapshot)

// Store owns the current page selection and notifies subscribers of changes.
type Store struct {
	mu        sync.Mutex
	state     State
	pages     []insights.Page
	selected  *insights.Page
	errMsg    string
	gen       uint64
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{listeners: map[int]Listener{}}
}

// Init loads the page list and auto-selects its first entry. Failures are
// never returned: they move the store to the Failed state with a message.
func (s *Store) Init(ctx context.Context, lister PageLister) Snapshot {
	s.update(func() {
		s.state = Loading
		s.errMsg = ""
	})

	pages, err := lister.ListPages(ctx)

	var snap Snapshot
	s.update(func() {
		switch {
		case err != nil:
			s.state = Failed
			s.errMsg = err.Error()
		case len(pages) == 0:
			s.state = Failed
			s.errMsg = platforms.ErrNoPages.Error()
		default:
			s.state = Ready
			s.pages = append([]insights.Page(nil), pages...)
			if s.selected == nil || indexOf(s.pages, s.selected.ID) < 0 {
				s.setSelectedLocked(s.pages[0])
			}
		}
		snap = s.snapshotLocked()
	})
	return snap
}

// SetSelectedPage makes page the current selection. Selecting the page
// that is already selected is a no-op.
func (s *Store) SetSelectedPage(page insights.Page) error {
	var err error
	s.update(func() {
		if s.state != Ready {
			err = ErrNotReady
			return
		}
		if s.selected != nil && s.selected.ID == page.ID {
			return
		}
		s.setSelectedLocked(page)
	})
	return err
}

// SelectByID selects a page from the loaded page list.
func (s *Store) SelectByID(id string) error {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	i := indexOf(s.pages, id)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownPage
	}
	page := s.pages[i]
	s.mu.Unlock()
	return s.SetSelectedPage(page)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SelectedPage returns a copy of the current selection, or nil.
func (s *Store) SelectedPage() *insights.Page {
	return s.Snapshot().Page
}

// IsCurrent reports whether gen is still the active selection generation.
func (s *Store) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) setSelectedLocked(page insights.Page) {
	p := page
	s.selected = &p
	s.gen++
}

// update applies fn under the lock and then notifies listeners with the
// resulting snapshot.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	before := s.snapshotLocked()
	fn()
	after := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if before.State == after.State && before.Generation == after.Generation && before.Err == after.Err {
		return
	}
	for _, l := range listeners {
		l(after)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Pages:      append([]insights.Page(nil), s.pages...),
		Err:        s.errMsg,
		Generation: s.gen,
	}
	if s.selected != nil {
		p := *s.selected
		snap.Page = &p
	}
	return snap
}

func indexOf(pages []insights.Page, id string) int {
	for i, p := range pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}
