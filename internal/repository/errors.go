// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict indicates that an operation collided with
// existing state, while ErrStale signals that a conditional status
// update found the row no longer in the expected prior state.
package repository

import "errors"

// ErrConflict is returned when an operation cannot proceed because
// of conflicting state, such as granting a co-ownership that
// already exists. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrStale is returned by conditional status updates when zero rows
// matched, meaning a concurrent transition won the race. Callers
// should re-read the row and map this to the StaleState outcome.
var ErrStale = errors.New("stale state")

// ErrAlreadyCredited is returned when a ledger credit hits the
// unique reservation key, i.e. the checkout credit was already
// recorded. The settlement amount must never be applied twice.
var ErrAlreadyCredited = errors.New("reservation already credited")
