// Package schedule computes the future execution instants of a recurring
// workflow definition.
//
// # Overview
//
// A Schedule composes three kinds of pure primitives:
//
//   - Clocks generate raw ascending candidate instants from a recurrence
//     rule (fixed interval, cron expression, or a single one-time instant).
//   - Filters gate candidates: required filters (all must match), or-filters
//     (at least one must match, vacuous when empty), and not-filters (none
//     may match).
//   - Adjustments transform accepted candidates into the instants that are
//     actually returned (e.g. add a fixed offset).
//
// Schedule.Next(n, after) merges the candidate streams of every clock in
// ascending order, deduplicates instants produced by more than one clock,
// gates each raw candidate, and applies adjustments to the survivors.
// Filters always see the raw clock instant, never an adjusted one.
//
// # Purity
//
// Every value in this package is immutable after construction and Next is a
// pure function of (schedule, n, after): no cursor state is retained between
// calls, so the same Schedule may be evaluated concurrently without
// coordination and repeated calls return identical results. Nothing here
// reads the wall clock.
//
// # Errors
//
// Malformed construction input (non-positive interval, bad cron expression,
// end before start) fails eagerly with an error wrapping ErrValidation.
// Next never fails: a bounded schedule that runs out of candidates simply
// returns fewer than n results.
package schedule
