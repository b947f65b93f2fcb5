// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"context"
	"time"

	"github.com/padron-digital/testigo/models"
)

// VoteCountSource reports the current fiscalized vote count at a mesa.
type VoteCountSource interface {
	CurrentVoteCount(ctx context.Context, mesaID string) (int, error)
}

// SampleFinalization carries the end-of-window fields written atomically
// by Finalize.
type SampleFinalization struct {
	PileAtEnd       int
	VotesAtEnd      int
	BallotsConsumed int
	VotesDelta      int
	FinalizedAt     time.Time
}

// SampleStore persists samples. Implementations translate backend failures
// into *PersistenceError and the double-open guard into *ConflictError.
type SampleStore interface {
	InsertOpen(ctx context.Context, s *models.Sample) (string, error)
	FindOpen(ctx context.Context, mesaID, operatorID string) (*models.Sample, error)
	Finalize(ctx context.Context, id string, fin SampleFinalization) (*models.Sample, error)
	SetValidity(ctx context.Context, id string, isValid bool) error
	DeleteOpen(ctx context.Context, id string) error
	ListByMesa(ctx context.Context, mesaID string) ([]models.Sample, error)
}

// Controller drives the lifecycle of one mesa/operator measurement session:
// Idle → Open (Start) → Idle (Finalize or Cancel). Its only domain state is
// the reference to the active open sample, and it transitions to Idle
// strictly after persistence succeeds, so a failed finalize leaves the
// sample open for correction or cancellation.
//
// The controller does not lock; it is built for a single session and the
// caller is responsible for serializing user-initiated transitions.
type Controller struct {
	mesaID     string
	operatorID string
	store      SampleStore
	votes      VoteCountSource

	active *models.Sample
	now    func() time.Time
}

// NewController creates an Idle controller for one mesa/operator session.
func NewController(mesaID, operatorID string, store SampleStore, votes VoteCountSource) *Controller {
	return &Controller{
		mesaID:     mesaID,
		operatorID: operatorID,
		store:      store,
		votes:      votes,
		now:        time.Now,
	}
}

// Resume reattaches to a previously opened sample, if any, with a single
// targeted query. Called once at session start.
func (c *Controller) Resume(ctx context.Context) error {
	open, err := c.store.FindOpen(ctx, c.mesaID, c.operatorID)
	if err != nil {
		return err
	}
	c.active = open
	return nil
}

// Open reports whether a sample is currently in progress.
func (c *Controller) Open() bool {
	return c.active != nil
}

// ActiveSample returns the currently open sample, or nil when Idle.
func (c *Controller) ActiveSample() *models.Sample {
	return c.active
}

// Start opens a new sample: captures the baseline vote count from the
// external source and persists the open record.
func (c *Controller) Start(ctx context.Context, pileAtStart int) (*models.Sample, error) {
	if pileAtStart <= 0 {
		return nil, &ValidationError{Field: "pile_at_start", Message: "la pila inicial debe ser mayor a cero"}
	}
	if c.active != nil {
		return nil, &ConflictError{Message: "ya hay una muestra abierta para esta mesa y operador"}
	}

	votesAtStart, err := c.votes.CurrentVoteCount(ctx, c.mesaID)
	if err != nil {
		return nil, err
	}

	sample := &models.Sample{
		MesaID:       c.mesaID,
		OperatorID:   c.operatorID,
		StartedAt:    c.now(),
		PileAtStart:  pileAtStart,
		VotesAtStart: votesAtStart,
		IsValid:      true,
	}

	id, err := c.store.InsertOpen(ctx, sample)
	if err != nil {
		return nil, err
	}
	sample.ID = id
	c.active = sample

	return sample, nil
}

// Finalize closes the open sample: captures the final vote count, derives
// ballotsConsumed and votesDelta, and persists all end fields as one atomic
// update. The efficiency percentage of the finalized window is returned.
//
// Validation and invariant failures leave the sample open and persist
// nothing.
func (c *Controller) Finalize(ctx context.Context, pileAtEnd int) (*models.Sample, float64, error) {
	if c.active == nil {
		return nil, 0, &StateError{Message: "no hay una muestra abierta para finalizar"}
	}
	if pileAtEnd < 0 {
		return nil, 0, &ValidationError{Field: "pile_at_end", Message: "la pila final no puede ser negativa"}
	}
	if pileAtEnd > c.active.PileAtStart {
		return nil, 0, &ValidationError{Field: "pile_at_end", Message: "pila retirada no puede ser mayor a la inicial"}
	}

	votesAtEnd, err := c.votes.CurrentVoteCount(ctx, c.mesaID)
	if err != nil {
		return nil, 0, err
	}

	votesDelta := votesAtEnd - c.active.VotesAtStart
	if votesDelta < 0 {
		return nil, 0, &InvariantError{Message: "el conteo de votos disminuyó durante la muestra"}
	}

	fin := SampleFinalization{
		PileAtEnd:       pileAtEnd,
		VotesAtEnd:      votesAtEnd,
		BallotsConsumed: c.active.PileAtStart - pileAtEnd,
		VotesDelta:      votesDelta,
		FinalizedAt:     c.now(),
	}

	finalized, err := c.store.Finalize(ctx, c.active.ID, fin)
	if err != nil {
		// Still Open: the transition happens only after a successful write.
		return nil, 0, err
	}
	c.active = nil

	return finalized, EfficiencyPercentage(fin.BallotsConsumed, fin.VotesDelta), nil
}

// Cancel discards the open sample entirely (hard delete, only legal while
// open).
func (c *Controller) Cancel(ctx context.Context) error {
	if c.active == nil {
		return &StateError{Message: "no hay una muestra abierta para cancelar"}
	}
	if err := c.store.DeleteOpen(ctx, c.active.ID); err != nil {
		return err
	}
	c.active = nil
	return nil
}

// ToggleValidity flips the isValid flag of an already-finalized sample. It
// may target any finalized sample, not just this session's, and does not
// affect the Open/Idle state.
func (c *Controller) ToggleValidity(ctx context.Context, sampleID string, isValid bool) error {
	return c.store.SetValidity(ctx, sampleID, isValid)
}
