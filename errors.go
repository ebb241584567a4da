// errors.go: sentinel errors
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eventqueue

import "errors"

// Construct-time and programmer-error sentinels. Hot-path operations
// (Push, Pop, ReserveRange) never return these — they signal failure with
// a plain bool because reservation contention and an empty ring are both
// expected, non-exceptional outcomes a caller retries or tolerates.
var (
	// ErrInvalidCapacity is returned when a configured ring capacity is
	// too small to hold anything (capacity must leave at least one free
	// slot to disambiguate full from empty).
	ErrInvalidCapacity = errors.New("eventqueue: capacity must be at least 2")

	// ErrInvalidTableSize is returned when a configured reservation table
	// size is less than 1.
	ErrInvalidTableSize = errors.New("eventqueue: table size must be at least 1")

	// ErrInvalidWriterCount is returned when a configured writer budget is
	// negative.
	ErrInvalidWriterCount = errors.New("eventqueue: writer count must not be negative")

	// ErrInvalidHandle is reported (via OnProgrammerError, or returned by
	// Commit) when a reservation handle does not refer to a live
	// reservation — double-commit, stale handle, or a handle from another
	// Processor instance.
	ErrInvalidHandle = errors.New("eventqueue: invalid or already-released reservation handle")

	// ErrCommitOverflow is reported when Commit is asked to publish more
	// events than the reservation it was given actually grants.
	ErrCommitOverflow = errors.New("eventqueue: commit count exceeds reserved count")

	// ErrEmplaceOutOfRange is reported when EmplaceAt is called with an
	// index outside the reservation's granted count.
	ErrEmplaceOutOfRange = errors.New("eventqueue: emplace index out of reservation range")

	// ErrWriterBudgetExceeded is reported when RegisterWriter brings the
	// number of currently active writers above the configured WriterCount.
	ErrWriterBudgetExceeded = errors.New("eventqueue: writer budget exceeded")

	// ErrReservationTableOverlap is reported when the round-robin
	// reservation table allocator lands on a slot that is still occupied
	// by a live reservation — it means producers have outrun the table's
	// size relative to how slowly reservations are being committed.
	ErrReservationTableOverlap = errors.New("eventqueue: reservation table slot still occupied")
)
