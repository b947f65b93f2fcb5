// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padron-digital/testigo/models"
)

// finalizedSample builds a valid finalized sample whose efficiency
// percentage is ballotsConsumed/votesDelta*100.
func finalizedSample(ballotsConsumed, votesDelta int) models.Sample {
	pileAtStart := ballotsConsumed + 10
	pileAtEnd := 10
	votesAtEnd := votesDelta
	now := time.Now()
	return models.Sample{
		ID:              "s",
		MesaID:          "mesa-1",
		OperatorID:      "op-1",
		StartedAt:       now.Add(-time.Hour),
		PileAtStart:     pileAtStart,
		VotesAtStart:    0,
		PileAtEnd:       &pileAtEnd,
		VotesAtEnd:      &votesAtEnd,
		BallotsConsumed: &ballotsConsumed,
		VotesDelta:      &votesDelta,
		IsValid:         true,
		FinalizedAt:     &now,
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)

	assert.Zero(t, agg.ValidSampleCount)
	assert.Zero(t, agg.TotalSampleCount)
	assert.Zero(t, agg.AveragePercentage)
	assert.Zero(t, agg.MedianPercentage)
	assert.Equal(t, models.ConfidenceLow, agg.ConfidenceTier)
}

func TestAggregateSkipsInvalidAndOpenSamples(t *testing.T) {
	invalid := finalizedSample(100, 100)
	invalid.IsValid = false

	zeroDelta := finalizedSample(100, 100)
	zero := 0
	zeroDelta.VotesDelta = &zero

	open := models.Sample{
		ID: "open", MesaID: "mesa-1", OperatorID: "op-1",
		StartedAt: time.Now(), PileAtStart: 50, VotesAtStart: 10, IsValid: true,
	}

	agg := Aggregate([]models.Sample{invalid, zeroDelta, open})

	assert.Equal(t, 3, agg.TotalSampleCount)
	assert.Zero(t, agg.ValidSampleCount)
	assert.Equal(t, models.ConfidenceLow, agg.ConfidenceTier)
}

func TestAggregateTenPerfectSamples(t *testing.T) {
	samples := make([]models.Sample, 10)
	for i := range samples {
		samples[i] = finalizedSample(100, 100)
	}

	agg := Aggregate(samples)

	assert.Equal(t, 10, agg.ValidSampleCount)
	assert.Equal(t, 100.0, agg.AveragePercentage)
	assert.Equal(t, 100.0, agg.MedianPercentage)
	assert.Equal(t, 0.0, agg.StandardDeviation)
	assert.Equal(t, models.ConfidenceHigh, agg.ConfidenceTier)
	assert.Equal(t, 100, agg.ParticipationEstimate)
	assert.Equal(t, 10, agg.QualityDistribution[models.TierExcellent])
}

func TestAggregateUpperMedianForEvenCount(t *testing.T) {
	// Percentages 80, 90, 110, 120: the upper of the two middle values
	// wins, not their average.
	samples := []models.Sample{
		finalizedSample(80, 100),
		finalizedSample(90, 100),
		finalizedSample(110, 100),
		finalizedSample(120, 100),
	}

	agg := Aggregate(samples)

	assert.Equal(t, 110.0, agg.MedianPercentage)
	assert.Equal(t, 100.0, agg.AveragePercentage)
}

func TestAggregateRoundsToOneDecimal(t *testing.T) {
	// Percentages 100, 100, 50 → mean 83.333…, population stddev 23.570…
	samples := []models.Sample{
		finalizedSample(100, 100),
		finalizedSample(100, 100),
		finalizedSample(50, 100),
	}

	agg := Aggregate(samples)

	assert.Equal(t, 83.3, agg.AveragePercentage)
	assert.Equal(t, 23.6, agg.StandardDeviation)
	assert.Equal(t, 83, agg.ParticipationEstimate)
}

func TestAggregateConfidenceTiers(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  string
	}{
		{"ten tight samples", 10, models.ConfidenceHigh},
		{"five tight samples", 5, models.ConfidenceMedium},
		{"four tight samples", 4, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]models.Sample, tt.count)
			for i := range samples {
				samples[i] = finalizedSample(100, 100)
			}
			agg := Aggregate(samples)
			assert.Equal(t, tt.want, agg.ConfidenceTier)
		})
	}
}

func TestAggregateHighDispersionDowngradesConfidence(t *testing.T) {
	// Ten samples alternating 40% and 160%: population stddev is 60,
	// well past both gates.
	samples := make([]models.Sample, 10)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = finalizedSample(40, 100)
		} else {
			samples[i] = finalizedSample(160, 100)
		}
	}

	agg := Aggregate(samples)

	require.Equal(t, 10, agg.ValidSampleCount)
	assert.Equal(t, 60.0, agg.StandardDeviation)
	assert.Equal(t, models.ConfidenceLow, agg.ConfidenceTier)
}

func TestAggregateQualityDistribution(t *testing.T) {
	samples := []models.Sample{
		finalizedSample(100, 100), // excellent
		finalizedSample(88, 100),  // good
		finalizedSample(75, 100),  // acceptable
		finalizedSample(160, 100), // poor
	}

	agg := Aggregate(samples)

	assert.Equal(t, 1, agg.QualityDistribution[models.TierExcellent])
	assert.Equal(t, 1, agg.QualityDistribution[models.TierGood])
	assert.Equal(t, 1, agg.QualityDistribution[models.TierAcceptable])
	assert.Equal(t, 1, agg.QualityDistribution[models.TierPoor])
}

func TestAggregateToggleValidityRecomputes(t *testing.T) {
	outlier := finalizedSample(500, 100)
	samples := []models.Sample{
		finalizedSample(100, 100),
		finalizedSample(100, 100),
		outlier,
	}

	before := Aggregate(samples)
	require.Equal(t, 3, before.ValidSampleCount)
	assert.Equal(t, 233.3, before.AveragePercentage)

	samples[2].IsValid = false
	after := Aggregate(samples)

	assert.Equal(t, 2, after.ValidSampleCount)
	assert.Equal(t, 3, after.TotalSampleCount)
	assert.Equal(t, 100.0, after.AveragePercentage)
	assert.Equal(t, 0.0, after.StandardDeviation)
}
