// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"math"
	"sort"

	"github.com/padron-digital/testigo/models"
)

// Confidence gating: a tier requires both enough valid samples and a
// bounded dispersion.
const (
	highConfidenceSamples = 10
	highConfidenceStdDev  = 20
	medConfidenceSamples  = 5
	medConfidenceStdDev   = 35
)

// Aggregate computes summary statistics over a collection of samples.
// Only finalized samples with isValid set and a positive votes delta
// participate; an empty valid set yields a zeroed, low-confidence result
// rather than an error.
func Aggregate(samples []models.Sample) models.AggregateStatistics {
	agg := models.AggregateStatistics{
		ConfidenceTier:   models.ConfidenceLow,
		TotalSampleCount: len(samples),
		QualityDistribution: map[string]int{
			models.TierExcellent:  0,
			models.TierGood:       0,
			models.TierAcceptable: 0,
			models.TierPoor:       0,
		},
	}

	percentages := make([]float64, 0, len(samples))
	for i := range samples {
		s := &samples[i]
		if !s.IsValid || !s.Finalized() || *s.VotesDelta <= 0 {
			continue
		}
		percentages = append(percentages, EfficiencyPercentage(*s.BallotsConsumed, *s.VotesDelta))
	}

	if len(percentages) == 0 {
		return agg
	}

	sort.Float64s(percentages)
	n := len(percentages)

	sum := 0.0
	for _, p := range percentages {
		sum += p
	}
	avg := sum / float64(n)

	variance := 0.0
	for _, p := range percentages {
		variance += (p - avg) * (p - avg)
	}
	// Population variance (divide by n, not n-1).
	stdDev := math.Sqrt(variance / float64(n))

	agg.ValidSampleCount = n
	agg.AveragePercentage = round1(avg)
	// Upper median: for even n this is the higher of the two middle
	// values, not their average. Intentional, do not "fix".
	agg.MedianPercentage = round1(percentages[n/2])
	agg.StandardDeviation = round1(stdDev)
	agg.ParticipationEstimate = int(math.Round(agg.AveragePercentage))

	switch {
	case n >= highConfidenceSamples && agg.StandardDeviation <= highConfidenceStdDev:
		agg.ConfidenceTier = models.ConfidenceHigh
	case n >= medConfidenceSamples && agg.StandardDeviation <= medConfidenceStdDev:
		agg.ConfidenceTier = models.ConfidenceMedium
	default:
		agg.ConfidenceTier = models.ConfidenceLow
	}

	for _, p := range percentages {
		agg.QualityDistribution[Classify(p).Tier]++
	}

	return agg
}

// round1 rounds to one decimal place
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
