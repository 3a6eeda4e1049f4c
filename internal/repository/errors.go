// Package repository defines sentinel errors shared across the data
// access layer. Higher layers compare against these values with
// errors.Is to decide the HTTP status and machine-readable code of a
// failure: conflicts and expiry map to 409, business-rule violations to
// 422 and everything else to a generic 500.
package repository

import "errors"

// ErrSlotNotFound is returned when a referenced slot does not exist.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotAlreadyBooked is returned by the hold path when a requested
// slot already carries a confirmed booking.
var ErrSlotAlreadyBooked = errors.New("slot already booked")

// ErrSlotHeldByOther is returned by the hold path when another holder
// has an unexpired reservation on a requested slot.
var ErrSlotHeldByOther = errors.New("slot held by another user")

// ErrSlotUnavailable is returned by checkout when a slot was booked by
// a competing transaction between hold and commit.  The whole batch is
// rolled back; no partial success is ever reported.
var ErrSlotUnavailable = errors.New("slot no longer available")

// ErrReservationExpired is returned when a checkout references a
// reservation token that no longer covers every requested slot.  The
// client should re-hold and retry.
var ErrReservationExpired = errors.New("reservation expired")

// ErrPackageExhausted is returned when a consumption would push
// sessions_booked past total_sessions.
var ErrPackageExhausted = errors.New("package sessions exhausted")

// ErrPackageNotEligible is returned when a package cannot fund a
// booking with the requested coach, either because it is tied to a
// different coach or the coach is not an active member of the
// package's academy, or because the package is not active.
var ErrPackageNotEligible = errors.New("package not eligible for this coach")

// ErrPlanNotApplicable is returned when a pricing plan's eligibility
// conditions (first-time, seasonal window, required session count) are
// not met by the current checkout.
var ErrPlanNotApplicable = errors.New("pricing plan not applicable")

// ErrMissingProof is returned when checkout lacks a required payment
// proof reference.
var ErrMissingProof = errors.New("missing required payment proof")

// ErrMixedBatch is returned when one checkout references slots that
// span more than one court or more than one coach.
var ErrMixedBatch = errors.New("slots must share one coach and one court")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as deleting a booked slot or approving a
// package that is not pending.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotFound is the generic not-found sentinel for entities without a
// dedicated sentinel of their own.
var ErrNotFound = errors.New("not found")
