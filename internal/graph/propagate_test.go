package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds A <- B <- C: B depends on A, C depends on B, all pending.
func chain() *memStore {
	return newMemStore().
		add("A", StatusPending).
		add("B", StatusPending).
		add("C", StatusPending).
		link("C", "B").
		link("B", "A")
}

func TestCascadeCompletion(t *testing.T) {
	store := chain()
	obs := &recorder{}
	p := NewPropagator(store, obs)

	res, err := p.SetStatusExplicit("A", StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, store.status("A"))
	assert.Equal(t, StatusInProgress, store.status("B"))
	assert.Equal(t, StatusPending, store.status("C"))

	require.Len(t, res.Changes, 2)
	assert.Equal(t, Change{TaskID: "A", From: StatusPending, To: StatusCompleted}, res.Changes[0])
	assert.Equal(t, Change{TaskID: "B", From: StatusPending, To: StatusInProgress, Depth: 1}, res.Changes[1])
	assert.Equal(t, 2, res.Visited)
	assert.Equal(t, []string{"A=completed(user)", "B=in_progress(cascade)"}, store.writes)

	// One step for A, one for B, one for C which did not change.
	require.Len(t, obs.steps, 3)
	assert.Equal(t, "C", obs.steps[2].TaskID)
	assert.False(t, obs.steps[2].Changed)
	assert.Equal(t, 2, obs.steps[2].Depth)
}

func TestCascadeBlocking(t *testing.T) {
	store := chain()
	p := NewPropagator(store, nil)

	res, err := p.SetStatusExplicit("A", StatusBlocked)
	require.NoError(t, err)

	assert.Equal(t, StatusBlocked, store.status("A"))
	assert.Equal(t, StatusBlocked, store.status("B"))
	assert.Equal(t, StatusBlocked, store.status("C"))
	assert.Len(t, res.Changes, 3)
}

func TestCascadeUnblocking(t *testing.T) {
	store := chain()
	p := NewPropagator(store, nil)

	_, err := p.SetStatusExplicit("A", StatusBlocked)
	require.NoError(t, err)
	_, err = p.SetStatusExplicit("A", StatusPending)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, store.status("A"))
	assert.Equal(t, StatusPending, store.status("B"))
	assert.Equal(t, StatusPending, store.status("C"))
}

func TestCompletedIsNeverRevertedByCascade(t *testing.T) {
	store := chain()
	store.tasks["B"].Status = StatusCompleted
	p := NewPropagator(store, nil)

	_, err := p.SetStatusExplicit("A", StatusBlocked)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, store.status("B"))
	// C depends on completed B only.
	assert.Equal(t, StatusPending, store.status("C"))
}

func TestExplicitWriteAlwaysCascades(t *testing.T) {
	// A is already completed but B was never recomputed.
	store := chain()
	store.tasks["A"].Status = StatusCompleted
	p := NewPropagator(store, nil)

	res, err := p.SetStatusExplicit("A", StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, store.status("B"))
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "B", res.Changes[0].TaskID)
}

func TestExplicitWriteBypassesDerivation(t *testing.T) {
	// B depends on pending A, yet the caller may still say B is in progress.
	store := chain()
	p := NewPropagator(store, nil)

	_, err := p.SetStatusExplicit("B", StatusInProgress)
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, store.status("B"))
}

func TestCascadeDiamondVisitsSharedDependentPerChange(t *testing.T) {
	// D depends on B and C; B and C depend on A.
	store := newMemStore().
		add("A", StatusPending).
		add("B", StatusPending).
		add("C", StatusPending).
		add("D", StatusPending).
		link("B", "A").
		link("C", "A").
		link("D", "B").
		link("D", "C")
	p := NewPropagator(store, nil)

	res, err := p.SetStatusExplicit("A", StatusBlocked)
	require.NoError(t, err)

	assert.Equal(t, StatusBlocked, store.status("D"))
	// D changes once; the second visit finds it already blocked.
	var dChanges int
	for _, c := range res.Changes {
		if c.TaskID == "D" {
			dChanges++
		}
	}
	assert.Equal(t, 1, dChanges)
	assert.Equal(t, 4, res.Visited)
}

func TestRecomputeStatus(t *testing.T) {
	t.Run("no dependencies derives in progress", func(t *testing.T) {
		store := newMemStore().add("X", StatusPending)
		res, err := NewPropagator(store, nil).RecomputeStatus("X")
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, store.status("X"))
		assert.True(t, res.Changed())
	})

	t.Run("unchanged does not cascade", func(t *testing.T) {
		store := chain()
		res, err := NewPropagator(store, nil).RecomputeStatus("B")
		require.NoError(t, err)
		assert.False(t, res.Changed())
		assert.Equal(t, 1, res.Visited)
		assert.Empty(t, store.writes)
	})

	t.Run("edge added to blocked task", func(t *testing.T) {
		store := chain().add("Z", StatusBlocked)
		store.link("A", "Z")
		res, err := NewPropagator(store, nil).RecomputeStatus("A")
		require.NoError(t, err)
		assert.Equal(t, StatusBlocked, store.status("A"))
		assert.Equal(t, StatusBlocked, store.status("B"))
		assert.Equal(t, StatusBlocked, store.status("C"))
		assert.Len(t, res.Changes, 3)
	})

	t.Run("edge removed", func(t *testing.T) {
		store := chain()
		store.unlink("B", "A")
		_, err := NewPropagator(store, nil).RecomputeStatus("B")
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, store.status("B"))
		assert.Equal(t, StatusPending, store.status("C"))
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := NewPropagator(newMemStore(), nil).RecomputeStatus("nope")
		assert.True(t, errors.Is(err, ErrTaskNotFound))
	})
}

func TestDeriveIsReadOnlyAndIdempotent(t *testing.T) {
	store := chain()
	store.tasks["A"].Status = StatusCompleted
	p := NewPropagator(store, nil)

	first, err := p.Derive("B")
	require.NoError(t, err)
	second, err := p.Derive("B")
	require.NoError(t, err)

	assert.Equal(t, StatusInProgress, first)
	assert.Equal(t, first, second)
	assert.Equal(t, StatusPending, store.status("B"))
	assert.Empty(t, store.writes)
}

func TestCascadeWriteFailureAborts(t *testing.T) {
	store := chain()
	store.failOn = "B"
	p := NewPropagator(store, nil)

	res, err := p.SetStatusExplicit("A", StatusBlocked)
	require.Error(t, err)

	var cerr *CascadeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "B", cerr.TaskID)
	assert.Len(t, cerr.Changes, 1)
	assert.Contains(t, err.Error(), "disk full")

	// The explicit write stands; the subtree below B was never visited.
	assert.Equal(t, StatusBlocked, store.status("A"))
	assert.Equal(t, StatusPending, store.status("C"))
	assert.Len(t, res.Changes, 1)
}

func TestSetStatusExplicitRejectsInvalid(t *testing.T) {
	store := chain()
	_, err := NewPropagator(store, nil).SetStatusExplicit("A", Status("done"))
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Empty(t, store.writes)
}
