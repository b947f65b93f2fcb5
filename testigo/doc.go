// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testigo implements the mesa-testigo sampling and estimation engine:
witness-table measurements that bound a ballot-pile count and a vote count
at both ends of a window to estimate how faithfully votes are being
reported.

# Classification

Pure functions over a single measurement:

	pct := testigo.EfficiencyPercentage(ballotsConsumed, votesDelta)
	cls := testigo.Classify(pct)

100% is the idealized 1:1 baseline (one ballot removed per vote cast);
tiers are excellent/good/acceptable/poor by deviation from it.

# Aggregation

	agg := testigo.Aggregate(samples)
	recs := testigo.Recommend(agg)

Aggregate filters to valid finalized samples, computes mean, upper median,
population standard deviation and a confidence tier, and buckets samples by
quality. Recommend turns the aggregate into advisory messages. Both are
pure, synchronous and safe to call concurrently.

# Sample Lifecycle

Controller drives one mesa/operator measurement session:

	ctl := testigo.NewController(mesaID, operatorID, store, votes)
	ctl.Resume(ctx)                       // reattach to an open sample, if any
	sample, err := ctl.Start(ctx, pile)   // Idle → Open
	sample, pct, err := ctl.Finalize(ctx, pileEnd) // Open → Idle
	err = ctl.Cancel(ctx)                 // Open → Idle, hard delete

The in-memory transition to Idle happens only after persistence succeeds;
a failed finalize leaves the sample open for correction. The controller
does not lock or retry; callers serialize transitions and own retry
policy.

# Errors

Every failure mode is a distinct type dispatched with errors.As:
ValidationError (caller input), ConflictError (double start),
InvariantError (vote count decreased), StateError (operation invalid for
the current state), SourceUnavailableError and PersistenceError
(collaborator failures, the ones worth retrying).
*/
package testigo
