// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padron-digital/testigo/models"
)

// fakeVoteSource replays a fixed sequence of vote counts.
type fakeVoteSource struct {
	counts []int
	calls  int
	err    error
}

func (f *fakeVoteSource) CurrentVoteCount(ctx context.Context, mesaID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.counts) {
		return f.counts[len(f.counts)-1], nil
	}
	c := f.counts[f.calls]
	f.calls++
	return c, nil
}

// fakeStore keeps samples in memory and can be told to fail writes.
type fakeStore struct {
	samples     map[string]*models.Sample
	nextID      int
	finalizeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{samples: map[string]*models.Sample{}}
}

func (f *fakeStore) InsertOpen(ctx context.Context, s *models.Sample) (string, error) {
	for _, existing := range f.samples {
		if existing.MesaID == s.MesaID && existing.OperatorID == s.OperatorID && !existing.Finalized() {
			return "", &ConflictError{Message: "ya hay una muestra abierta para esta mesa y operador"}
		}
	}
	f.nextID++
	id := fmt.Sprintf("sample-%d", f.nextID)
	cp := *s
	cp.ID = id
	f.samples[id] = &cp
	return id, nil
}

func (f *fakeStore) FindOpen(ctx context.Context, mesaID, operatorID string) (*models.Sample, error) {
	for _, s := range f.samples {
		if s.MesaID == mesaID && s.OperatorID == operatorID && !s.Finalized() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Finalize(ctx context.Context, id string, fin SampleFinalization) (*models.Sample, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	s, ok := f.samples[id]
	if !ok {
		return nil, ErrSampleNotFound
	}
	if s.Finalized() {
		return nil, &StateError{Message: "la muestra no está abierta"}
	}
	s.PileAtEnd = &fin.PileAtEnd
	s.VotesAtEnd = &fin.VotesAtEnd
	s.BallotsConsumed = &fin.BallotsConsumed
	s.VotesDelta = &fin.VotesDelta
	s.IsValid = true
	s.FinalizedAt = &fin.FinalizedAt
	cp := *s
	return &cp, nil
}

func (f *fakeStore) SetValidity(ctx context.Context, id string, isValid bool) error {
	s, ok := f.samples[id]
	if !ok {
		return ErrSampleNotFound
	}
	if !s.Finalized() {
		return &StateError{Message: "la muestra aún está abierta"}
	}
	s.IsValid = isValid
	return nil
}

func (f *fakeStore) DeleteOpen(ctx context.Context, id string) error {
	s, ok := f.samples[id]
	if !ok {
		return ErrSampleNotFound
	}
	if s.Finalized() {
		return &StateError{Message: "la muestra ya fue finalizada"}
	}
	delete(f.samples, id)
	return nil
}

func (f *fakeStore) ListByMesa(ctx context.Context, mesaID string) ([]models.Sample, error) {
	out := []models.Sample{}
	for _, s := range f.samples {
		if s.MesaID == mesaID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func TestStartCapturesBaseline(t *testing.T) {
	store := newFakeStore()
	votes := &fakeVoteSource{counts: []int{37}}
	ctl := NewController("mesa-1", "op-1", store, votes)

	sample, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	assert.True(t, ctl.Open())
	assert.Equal(t, 100, sample.PileAtStart)
	assert.Equal(t, 37, sample.VotesAtStart)
	assert.False(t, sample.Finalized())
	assert.NotEmpty(t, sample.ID)
}

func TestStartRejectsInvalidPile(t *testing.T) {
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{counts: []int{0}})

	for _, pile := range []int{0, -5} {
		_, err := ctl.Start(context.Background(), pile)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "pile_at_start=%d", pile)
	}
	assert.False(t, ctl.Open())
}

func TestDoubleStartConflicts(t *testing.T) {
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{counts: []int{10}})

	_, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	_, err = ctl.Start(context.Background(), 80)
	var cerr *ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestStartSurfacesSourceFailure(t *testing.T) {
	srcErr := &SourceUnavailableError{Err: errors.New("timeout")}
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{err: srcErr})

	_, err := ctl.Start(context.Background(), 100)
	var uerr *SourceUnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.False(t, ctl.Open(), "failed start must not transition to Open")
}

func TestFinalizeRoundTrip(t *testing.T) {
	store := newFakeStore()
	votes := &fakeVoteSource{counts: []int{50, 55}}
	ctl := NewController("mesa-1", "op-1", store, votes)

	_, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	sample, pct, err := ctl.Finalize(context.Background(), 40)
	require.NoError(t, err)

	assert.False(t, ctl.Open())
	assert.Equal(t, 60, *sample.BallotsConsumed)
	assert.Equal(t, 5, *sample.VotesDelta)
	assert.Equal(t, 55, *sample.VotesAtEnd)
	assert.True(t, sample.IsValid)
	assert.Equal(t, 1200.0, pct)
	assert.Equal(t, models.TierPoor, Classify(pct).Tier)
}

func TestFinalizeRejectsPileLargerThanStart(t *testing.T) {
	votes := &fakeVoteSource{counts: []int{50, 55, 58}}
	ctl := NewController("mesa-1", "op-1", newFakeStore(), votes)

	_, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	_, _, err = ctl.Finalize(context.Background(), 120)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, ctl.Open(), "sample must stay open after a rejected finalize")

	// A corrected finalize still succeeds.
	sample, _, err := ctl.Finalize(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, 10, *sample.BallotsConsumed)
	assert.False(t, ctl.Open())
}

func TestFinalizeRejectsNegativePile(t *testing.T) {
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{counts: []int{10}})

	_, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	_, _, err = ctl.Finalize(context.Background(), -1)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.True(t, ctl.Open())
}

func TestFinalizeDecreasedVoteCountIsInvariantError(t *testing.T) {
	store := newFakeStore()
	votes := &fakeVoteSource{counts: []int{50, 45}}
	ctl := NewController("mesa-1", "op-1", store, votes)

	started, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	_, _, err = ctl.Finalize(context.Background(), 40)
	var ierr *InvariantError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, ctl.Open())

	// Nothing was persisted: the stored sample is still open.
	stored := store.samples[started.ID]
	require.NotNil(t, stored)
	assert.False(t, stored.Finalized())
}

func TestFinalizePersistenceFailureLeavesOpen(t *testing.T) {
	store := newFakeStore()
	store.finalizeErr = &PersistenceError{Op: "finalize", Err: errors.New("connection reset")}
	votes := &fakeVoteSource{counts: []int{50, 55}}
	ctl := NewController("mesa-1", "op-1", store, votes)

	_, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	_, _, err = ctl.Finalize(context.Background(), 40)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, ctl.Open(), "in-memory state must not transition on a failed write")

	store.finalizeErr = nil
	_, _, err = ctl.Finalize(context.Background(), 40)
	assert.NoError(t, err)
}

func TestFinalizeWithoutOpenSample(t *testing.T) {
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{counts: []int{10}})

	_, _, err := ctl.Finalize(context.Background(), 10)
	var serr *StateError
	assert.ErrorAs(t, err, &serr)
}

func TestCancelDeletesOpenSample(t *testing.T) {
	store := newFakeStore()
	ctl := NewController("mesa-1", "op-1", store, &fakeVoteSource{counts: []int{10}})

	started, err := ctl.Start(context.Background(), 100)
	require.NoError(t, err)

	require.NoError(t, ctl.Cancel(context.Background()))
	assert.False(t, ctl.Open())
	assert.Nil(t, store.samples[started.ID])

	var serr *StateError
	assert.ErrorAs(t, ctl.Cancel(context.Background()), &serr)
}

func TestToggleValidity(t *testing.T) {
	store := newFakeStore()
	votes := &fakeVoteSource{counts: []int{0, 100}}
	ctl := NewController("mesa-1", "op-1", store, votes)

	_, err := ctl.Start(context.Background(), 110)
	require.NoError(t, err)
	sample, _, err := ctl.Finalize(context.Background(), 10)
	require.NoError(t, err)

	require.NoError(t, ctl.ToggleValidity(context.Background(), sample.ID, false))
	assert.False(t, store.samples[sample.ID].IsValid)
	// Everything else untouched.
	assert.Equal(t, 100, *store.samples[sample.ID].BallotsConsumed)

	require.NoError(t, ctl.ToggleValidity(context.Background(), sample.ID, true))
	assert.True(t, store.samples[sample.ID].IsValid)
}

func TestResumeReattachesOpenSample(t *testing.T) {
	store := newFakeStore()
	votes := &fakeVoteSource{counts: []int{20, 26}}

	first := NewController("mesa-1", "op-1", store, votes)
	started, err := first.Start(context.Background(), 80)
	require.NoError(t, err)

	// A fresh session for the same pair picks the open sample back up.
	second := NewController("mesa-1", "op-1", store, votes)
	require.NoError(t, second.Resume(context.Background()))
	require.True(t, second.Open())
	assert.Equal(t, started.ID, second.ActiveSample().ID)

	sample, _, err := second.Finalize(context.Background(), 74)
	require.NoError(t, err)
	assert.Equal(t, 6, *sample.BallotsConsumed)
	assert.Equal(t, 6, *sample.VotesDelta)
}

func TestResumeIdleWhenNothingOpen(t *testing.T) {
	ctl := NewController("mesa-1", "op-1", newFakeStore(), &fakeVoteSource{counts: []int{0}})
	require.NoError(t, ctl.Resume(context.Background()))
	assert.False(t, ctl.Open())
}
