package selector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

// ErrNotLoaded is returned by selection calls made before Load succeeds.
var ErrNotLoaded = errors.New("session has no table loaded")

// State is the lifecycle stage of a Session.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Selection is what one viewer currently has picked.
type Selection struct {
	Group   string    `json:"group"`
	Range   DateRange `json:"range"`
	Columns []string  `json:"columns"`
	X       string    `json:"x"`
	Y       string    `json:"y"`
}

// View is a derived sub-table ready for plotting.
type View struct {
	Selection Selection
	Table     *dataset.Table
	Points    []Point
}

// Empty reports whether the view has nothing to draw.
func (v *View) Empty() bool {
	if v.Points != nil {
		return len(v.Points) == 0
	}
	return v.Table == nil || v.Table.Len() == 0
}

// Session holds one viewer's selection over a shared cached table.
// The table itself is never modified; every change just recomputes views.
type Session struct {
	mu    sync.Mutex
	cache *Cache
	path  string

	state State
	snap  *Snapshot
	sel   Selection
}

// NewSession creates an unloaded session for the table at path.
func NewSession(cache *Cache, path string) *Session {
	return &Session{cache: cache, path: path}
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches the table through the cache and installs the default
// selection: the first pump, the whole date span and the default pair.
func (s *Session) Load(ctx context.Context) error {
	snap, err := s.cache.Load(ctx, s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.state = StateLoaded
	if rng, err := FullRange(snap.Table); err == nil {
		s.sel.Range = rng
	}
	return s.selectGroupLocked(Groups()[0])
}

// Snapshot returns the loaded table metadata.
func (s *Session) Snapshot() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return nil, ErrNotLoaded
	}
	return s.snap, nil
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySelection()
}

// SelectGroup switches pump and resets the columns and pair to its defaults.
func (s *Session) SelectGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}
	return s.selectGroupLocked(name)
}

func (s *Session) selectGroupLocked(name string) error {
	cols, err := SelectGroup(name)
	if err != nil {
		return err
	}
	x, y, err := SelectColumnPair(cols, "", "")
	if err != nil {
		return err
	}
	s.sel.Group = name
	s.sel.Columns = cols
	s.sel.X, s.sel.Y = x, y
	return nil
}

// SetRange changes the inclusive date range.
func (s *Session) SetRange(start, end time.Time) error {
	rng := DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}
	s.sel.Range = rng
	return nil
}

// SetColumns narrows the series view to a subset of the group. An empty
// list restores the whole group.
func (s *Session) SetColumns(cols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}

	group, _ := SelectGroup(s.sel.Group)
	if len(cols) == 0 {
		s.sel.Columns = group
		return nil
	}
	for _, c := range cols {
		if !contains(group, c) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
	}
	s.sel.Columns = append([]string(nil), cols...)
	return nil
}

// SetPair changes the comparison columns. Empty values are defaulted.
func (s *Session) SetPair(x, y string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}

	group, _ := SelectGroup(s.sel.Group)
	x, y, err := SelectColumnPair(group, x, y)
	if err != nil {
		return err
	}
	s.sel.X, s.sel.Y = x, y
	return nil
}

// Series derives the time series view for the current selection.
func (s *Session) Series() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return nil, ErrNotLoaded
	}

	sub, err := FilterByDateRange(s.snap.Table, s.sel.Columns, s.sel.Range.Start, s.sel.Range.End)
	if err != nil {
		return nil, err
	}
	return &View{Selection: s.copySelection(), Table: CoerceForPlotting(sub)}, nil
}

// Scatter derives the paired view for the current x and y.
func (s *Session) Scatter() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return nil, ErrNotLoaded
	}

	sub, err := FilterByDateRange(s.snap.Table, []string{s.sel.X, s.sel.Y}, s.sel.Range.Start, s.sel.Range.End)
	if err != nil {
		return nil, err
	}
	points, err := PairwiseDropNull(sub, s.sel.X, s.sel.Y)
	if err != nil {
		return nil, err
	}
	return &View{Selection: s.copySelection(), Table: sub, Points: points}, nil
}

func (s *Session) copySelection() Selection {
	sel := s.sel
	sel.Columns = append([]string(nil), s.sel.Columns...)
	return sel
}
