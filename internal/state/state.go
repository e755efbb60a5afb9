// Package state tracks what the dashboard is showing: the active tab, the
// current view, the search query and whether a fetch is in flight.
//
// Fetches are sequenced by generation. Every Begin issues a new ticket, and
// Resolve applies a result only when its ticket is the latest one issued, so
// a slow response for an old tab can never replace a newer one.
package state

import (
	"sync"
	"time"

	"github.com/school1992-cyber/website/internal/filter"
	"github.com/school1992-cyber/website/internal/reshape"
	"go.uber.org/zap"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Ticket identifies one issued fetch.
type Ticket struct {
	Tab        string
	Generation uint64
	IssuedAt   time.Time
}

// Snapshot is a copy of the holder's state.
type Snapshot struct {
	Phase      Phase
	Tab        string
	Generation uint64
	Query      string
	// View is the last view applied for Tab. HasView is false until one
	// arrives. In PhaseFailed and PhaseLoading it is the previous, stale view.
	View      reshape.View
	HasView   bool
	Err       error
	UpdatedAt time.Time
}

// Visible returns the view narrowed by the current query.
func (s Snapshot) Visible() reshape.View {
	return filter.View(s.View, filter.New(s.Query))
}

// Holder is safe for concurrent use.
type Holder struct {
	mu      sync.Mutex
	gen     uint64
	tab     string
	phase   Phase
	view    reshape.View
	hasView bool
	err     error
	query   string
	updated time.Time

	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{logger: logger, now: time.Now}
}

// Begin moves to PhaseLoading for tab and returns the ticket the result must
// be resolved with. Switching to a different tab clears the query and drops
// the previous tab's view.
func (h *Holder) Begin(tab string) Ticket {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tab != h.tab {
		h.query = ""
		h.view = reshape.View{}
		h.hasView = false
	}
	h.gen++
	h.tab = tab
	h.phase = PhaseLoading
	h.err = nil
	h.updated = h.now()

	return Ticket{Tab: tab, Generation: h.gen, IssuedAt: h.updated}
}

// Resolve applies the outcome of the fetch identified by t. It reports false,
// and changes nothing, when a newer fetch has been issued since.
func (h *Holder) Resolve(t Ticket, v reshape.View, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t.Generation != h.gen || t.Tab != h.tab {
		h.logger.Debug("dropping stale result",
			zap.String("tab", t.Tab),
			zap.Uint64("generation", t.Generation),
			zap.Uint64("latest", h.gen))
		return false
	}

	h.updated = h.now()
	if err != nil {
		h.phase = PhaseFailed
		h.err = err
		return true
	}
	h.phase = PhaseReady
	h.view = v
	h.hasView = true
	h.err = nil
	return true
}

// Reset returns to PhaseIdle, e.g. when the home screen is shown. Any
// in-flight fetch becomes stale.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gen++
	h.tab = ""
	h.phase = PhaseIdle
	h.view = reshape.View{}
	h.hasView = false
	h.err = nil
	h.query = ""
	h.updated = h.now()
}

func (h *Holder) SetQuery(q string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query = q
}

func (h *Holder) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Phase:      h.phase,
		Tab:        h.tab,
		Generation: h.gen,
		Query:      h.query,
		View:       h.view,
		HasView:    h.hasView,
		Err:        h.err,
		UpdatedAt:  h.updated,
	}
}
