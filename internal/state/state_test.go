package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/school1992-cyber/website/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableView(labels ...string) reshape.View {
	records := make([][]string, len(labels))
	for i, l := range labels {
		records[i] = []string{l, "http://x/" + l}
	}
	v, _ := reshape.Reshape(reshape.KindTable, sheet.NewTable([]string{"Label", "Link"}, nil, records...))
	return v
}

func TestLifecycle(t *testing.T) {
	h := New(nil)
	assert.Equal(t, PhaseIdle, h.Snapshot().Phase)

	ticket := h.Begin("society")
	snap := h.Snapshot()
	assert.Equal(t, PhaseLoading, snap.Phase)
	assert.Equal(t, "society", snap.Tab)
	assert.False(t, snap.HasView)

	applied := h.Resolve(ticket, tableView("a", "b"), nil)
	require.True(t, applied)

	snap = h.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.True(t, snap.HasView)
	assert.Equal(t, 2, snap.View.Len())
	assert.NoError(t, snap.Err)
}

func TestStaleResponseIsDropped(t *testing.T) {
	h := New(nil)

	slow := h.Begin("society")
	fast := h.Begin("master")

	require.True(t, h.Resolve(fast, tableView("m1"), nil))
	// The society response arrives after the master request was issued.
	assert.False(t, h.Resolve(slow, tableView("s1", "s2", "s3"), nil))

	snap := h.Snapshot()
	assert.Equal(t, "master", snap.Tab)
	assert.Equal(t, 1, snap.View.Len())
}

func TestStaleResponseBeforeLatestIsDropped(t *testing.T) {
	h := New(nil)

	old := h.Begin("society")
	latest := h.Begin("society")

	assert.False(t, h.Resolve(old, tableView("old"), nil))
	assert.Equal(t, PhaseLoading, h.Snapshot().Phase)

	assert.True(t, h.Resolve(latest, tableView("new"), nil))
	assert.Equal(t, PhaseReady, h.Snapshot().Phase)
}

func TestFailureIsVisibleAndKeepsStaleView(t *testing.T) {
	h := New(nil)

	first := h.Begin("cbse")
	require.True(t, h.Resolve(first, tableView("a"), nil))

	refresh := h.Begin("cbse")
	boom := errors.New("network down")
	require.True(t, h.Resolve(refresh, reshape.View{}, boom))

	snap := h.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.ErrorIs(t, snap.Err, boom)
	assert.True(t, snap.HasView, "previous view should remain available")
	assert.Equal(t, 1, snap.View.Len())

	// Next fetch clears the error.
	h.Begin("cbse")
	assert.NoError(t, h.Snapshot().Err)
}

func TestTabSwitchClearsQueryAndView(t *testing.T) {
	h := New(nil)
	tk := h.Begin("society")
	h.Resolve(tk, tableView("a"), nil)
	h.SetQuery("abc")

	h.Begin("society")
	assert.Equal(t, "abc", h.Snapshot().Query, "refreshing the same tab keeps the query")

	h.Begin("master")
	snap := h.Snapshot()
	assert.Empty(t, snap.Query)
	assert.False(t, snap.HasView)
}

func TestResetInvalidatesInFlight(t *testing.T) {
	h := New(nil)
	tk := h.Begin("society")
	h.Reset()

	assert.False(t, h.Resolve(tk, tableView("a"), nil))
	assert.Equal(t, PhaseIdle, h.Snapshot().Phase)
}

func TestVisibleAppliesQuery(t *testing.T) {
	h := New(nil)
	tk := h.Begin("cbse")
	h.Resolve(tk, tableView("alpha", "beta", "alphabet"), nil)

	h.SetQuery("ALPHA")
	assert.Equal(t, 2, h.Snapshot().Visible().Len())

	h.SetQuery("")
	assert.Equal(t, 3, h.Snapshot().Visible().Len())
}

func TestConcurrentResolveAppliesOnlyLatest(t *testing.T) {
	h := New(nil)

	var tickets []Ticket
	for i := 0; i < 20; i++ {
		tickets = append(tickets, h.Begin("society"))
	}
	latest := tickets[len(tickets)-1]

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied []uint64
	)
	for _, tk := range tickets {
		wg.Add(1)
		go func(tk Ticket) {
			defer wg.Done()
			if h.Resolve(tk, tableView("x"), nil) {
				mu.Lock()
				applied = append(applied, tk.Generation)
				mu.Unlock()
			}
		}(tk)
	}
	wg.Wait()

	assert.Equal(t, []uint64{latest.Generation}, applied)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}
