// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterOperatorRequest: name
  - CreateMesaRequest: number, school
  - AssignFiscalRequest: operator_id
  - AddVoterRequest: document, full_name
  - StartSampleRequest: pile_at_start
  - FinalizeSampleRequest: pile_at_end
  - ToggleValidityRequest: is_valid

# Response Types

Types for JSON responses:

  - RegisterOperatorResponse: operator_id, operator_key
  - CreateMesaResponse: mesa_id
  - AddVoterResponse: voter_id
  - MarkVoteResponse: voter_id, vote_count, voted_at
  - FinalizeSampleResponse: sample, efficiency_percentage, classification
  - MesaStatsResponse: mesa_id, stats, recommendations
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Mesa: a physical voting table with its fiscal assignment
  - Voter: one padrón entry with its fiscalized-vote mark
  - Operator: a poll worker with HMAC-derived credentials
  - Sample: one mesa-testigo measurement cycle (open or finalized)
  - Classification: quality tier for one efficiency percentage
  - AggregateStatistics: summary over a mesa's finalized samples
  - Recommendation: advisory message derived from the aggregate

# Constants

Quality tiers:

	TierExcellent  = "excellent"
	TierGood       = "good"
	TierAcceptable = "acceptable"
	TierPoor       = "poor"

Confidence tiers:

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"

Recommendation severities:

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
*/
package models
