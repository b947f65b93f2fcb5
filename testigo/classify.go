// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/padron-digital/testigo/models"
)

// Deviation thresholds from the 100% (1:1 ballots-to-votes) baseline.
// Bounds are inclusive; first match wins.
const (
	deviationExcellent  = 5
	deviationGood       = 15
	deviationAcceptable = 30
)

// Aggregate thresholds used by Recommend.
const (
	minReliableSamples = 5
	maxHealthyStdDev   = 40
	lowUsageThreshold  = 70
	highUsageThreshold = 130
)

// EfficiencyPercentage is the ratio of ballots physically consumed to votes
// registered during a sample window, as a percentage. 100 means every vote
// cast corresponds to exactly one ballot removed. A votesDelta of zero or
// less makes the ratio undefined and yields 0; the function never fails.
func EfficiencyPercentage(ballotsConsumed, votesDelta int) float64 {
	if votesDelta <= 0 {
		return 0
	}
	return float64(ballotsConsumed) / float64(votesDelta) * 100
}

// Classify maps a single efficiency percentage to a quality tier by its
// absolute deviation from the 100% baseline.
func Classify(percentage float64) models.Classification {
	deviation := math.Abs(percentage - 100)

	switch {
	case deviation <= deviationExcellent:
		return models.Classification{
			Tier:        models.TierExcellent,
			Label:       "Excelente",
			Description: "El consumo de boletas coincide con los votos registrados (±5%)",
		}
	case deviation <= deviationGood:
		return models.Classification{
			Tier:        models.TierGood,
			Label:       "Bueno",
			Description: "Desviación leve respecto de la relación 1:1 esperada (±15%)",
		}
	case deviation <= deviationAcceptable:
		return models.Classification{
			Tier:        models.TierAcceptable,
			Label:       "Aceptable",
			Description: "Desviación apreciable; conviene revisar el procedimiento (±30%)",
		}
	default:
		return models.Classification{
			Tier:        models.TierPoor,
			Label:       "Deficiente",
			Description: "La muestra se aparta fuertemente de la relación 1:1 esperada",
		}
	}
}

// Recommend derives advisory messages from an aggregate. All applicable
// messages are returned together; only the low/high usage pair is mutually
// exclusive.
func Recommend(agg models.AggregateStatistics) []models.Recommendation {
	recs := []models.Recommendation{}

	if agg.ValidSampleCount < minReliableSamples {
		recs = append(recs, models.Recommendation{
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf(
				"Hay %s muestras válidas; se necesitan al menos %d para una estimación confiable",
				humanize.Comma(int64(agg.ValidSampleCount)), minReliableSamples),
		})
	}

	if agg.StandardDeviation > maxHealthyStdDev {
		recs = append(recs, models.Recommendation{
			Severity: models.SeverityError,
			Message:  "La dispersión entre muestras es demasiado alta; revisar los procedimientos de medición",
		})
	}

	if agg.AveragePercentage < lowUsageThreshold {
		recs = append(recs, models.Recommendation{
			Severity: models.SeverityInfo,
			Message:  "El consumo de boletas es menor al esperado; posible baja participación",
		})
	} else if agg.AveragePercentage > highUsageThreshold {
		recs = append(recs, models.Recommendation{
			Severity: models.SeverityWarning,
			Message:  "El consumo de boletas supera los votos registrados; posible error de conteo",
		})
	}

	if agg.ConfidenceTier == models.ConfidenceHigh {
		recs = append(recs, models.Recommendation{
			Severity: models.SeveritySuccess,
			Message:  "Los datos son confiables para una proyección tipo boca de urna",
		})
	}

	return recs
}
