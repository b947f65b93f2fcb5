// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Quality tier constants for a single sample's efficiency percentage.
const (
	TierExcellent  = "excellent"
	TierGood       = "good"
	TierAcceptable = "acceptable"
	TierPoor       = "poor"
)

// Confidence tier constants for an aggregate of samples.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Recommendation severity constants
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// Request types

type RegisterOperatorRequest struct {
	Name string `json:"name"`
}

type CreateMesaRequest struct {
	Number int    `json:"number"`
	School string `json:"school"`
}

type AssignFiscalRequest struct {
	OperatorID string `json:"operator_id"`
}

type AddVoterRequest struct {
	Document string `json:"document"`
	FullName string `json:"full_name"`
}

type StartSampleRequest struct {
	PileAtStart int `json:"pile_at_start"`
}

type FinalizeSampleRequest struct {
	PileAtEnd int `json:"pile_at_end"`
}

// Pointer so an absent field is distinguishable from false
type ToggleValidityRequest struct {
	IsValid *bool `json:"is_valid"`
}

// Response types

type RegisterOperatorResponse struct {
	OperatorID  string `json:"operator_id"`
	OperatorKey string `json:"operator_key"`
}

type CreateMesaResponse struct {
	MesaID string `json:"mesa_id"`
}

type AddVoterResponse struct {
	VoterID string `json:"voter_id"`
}

type MarkVoteResponse struct {
	VoterID   string     `json:"voter_id"`
	VoteCount int        `json:"vote_count"`
	VotedAt   *time.Time `json:"voted_at,omitempty"`
}

type FinalizeSampleResponse struct {
	Sample               Sample         `json:"sample"`
	EfficiencyPercentage float64        `json:"efficiency_percentage"`
	Classification       Classification `json:"classification"`
}

type MesaStatsResponse struct {
	MesaID          string              `json:"mesa_id"`
	Stats           AggregateStatistics `json:"stats"`
	Recommendations []Recommendation    `json:"recommendations"`
}

// Domain types

type Operator struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Mesa struct {
	ID         string  `json:"id"`
	Number     int     `json:"number"`
	School     string  `json:"school"`
	FiscalID   *string `json:"fiscal_id,omitempty"`
	VoterCount int     `json:"voter_count"`
	VoteCount  int     `json:"vote_count"`
}

type Voter struct {
	ID       string     `json:"id"`
	MesaID   string     `json:"mesa_id"`
	Document string     `json:"document"`
	FullName string     `json:"full_name"`
	Voted    bool       `json:"voted"`
	VotedAt  *time.Time `json:"voted_at,omitempty"`
}

// Sample is one witness-table measurement cycle. A sample is open while
// PileAtEnd is nil and finalized once the end fields are set, always
// together. After finalization only IsValid may change.
type Sample struct {
	ID              string     `json:"id"`
	MesaID          string     `json:"mesa_id"`
	OperatorID      string     `json:"operator_id"`
	StartedAt       time.Time  `json:"started_at"`
	PileAtStart     int        `json:"pile_at_start"`
	VotesAtStart    int        `json:"votes_at_start"`
	PileAtEnd       *int       `json:"pile_at_end,omitempty"`
	VotesAtEnd      *int       `json:"votes_at_end,omitempty"`
	BallotsConsumed *int       `json:"ballots_consumed,omitempty"`
	VotesDelta      *int       `json:"votes_delta,omitempty"`
	IsValid         bool       `json:"is_valid"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
}

// Finalized reports whether the sample has been closed.
func (s *Sample) Finalized() bool {
	return s.PileAtEnd != nil
}

// Classification is the quality bucket for a single efficiency percentage.
type Classification struct {
	Tier        string `json:"tier"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Recommendation is an advisory message derived from aggregate statistics.
type Recommendation struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// AggregateStatistics is the on-demand summary over a mesa's samples.
// It is never persisted; every query recomputes it from scratch.
type AggregateStatistics struct {
	AveragePercentage     float64        `json:"average_percentage"`
	MedianPercentage      float64        `json:"median_percentage"`
	StandardDeviation     float64        `json:"standard_deviation"`
	ConfidenceTier        string         `json:"confidence_tier"`
	ValidSampleCount      int            `json:"valid_sample_count"`
	TotalSampleCount      int            `json:"total_sample_count"`
	QualityDistribution   map[string]int `json:"quality_distribution"`
	ParticipationEstimate int            `json:"participation_estimate"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
