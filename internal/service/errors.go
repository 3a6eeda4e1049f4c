// Package service implements the booking core: slot holds, price
// computation, the package ledger and the checkout transaction.  All
// persistence goes through the repository.Store unit-of-work boundary.
package service

import "fmt"

// SlotConflictError wraps one of the repository conflict sentinels with
// the specific slot IDs that caused the failure, so handlers can report
// exactly which slots the client should pick differently.
type SlotConflictError struct {
    Reason  error
    SlotIDs []uint64
}

func (e *SlotConflictError) Error() string {
    return fmt.Sprintf("%v: slots %v", e.Reason, e.SlotIDs)
}

// Unwrap lets errors.Is match the underlying sentinel, e.g.
// repository.ErrSlotUnavailable.
func (e *SlotConflictError) Unwrap() error { return e.Reason }

func slotConflict(reason error, slotIDs []uint64) error {
    return &SlotConflictError{Reason: reason, SlotIDs: slotIDs}
}
