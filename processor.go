// processor.go: the public façade — reserve, commit, process, terminate
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eventqueue

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// Stats is a point-in-time snapshot of a Processor's counters, intended
// for periodic logging or metrics export rather than tight polling loops.
type Stats struct {
	Capacity            uint64
	FreeSpace           uint64
	ActiveWriters       int64
	Committed           uint64
	Processed           uint64
	ReservationFailures uint64
	AvgCommitLatencyNs  uint64
	SampledAt           time.Time
}

// Processor owns a Ring and its ReservationTable, and coordinates the
// multi-producer / single-consumer handoff between them: producers call
// ReserveRange/EmplaceAt/Commit, the single consumer calls ProcessEvents.
//
// Termination is cooperative, not signaled through a channel close: each
// producer registers with RegisterWriter before it starts and calls
// SignalWriterDone when it has committed its last event; ProcessEvents
// returns once the active-writer count reaches zero and the ring has
// drained, mirroring the original EventProcessor's
// ProcessEvents(active_writers) polling loop rather than introducing a
// condition variable the original never had.
type Processor[T Processable] struct {
	ring  *Ring[T]
	table *ReservationTable[T]

	activeWriters atomic.Int64
	maxWriters    int64
	writerBudget  bool // true once WriterCount > 0, i.e. the budget is enforced

	committed            atomic.Uint64
	processed            atomic.Uint64
	reservationFailures  atomic.Uint64
	commitLatencyTotalNs atomic.Uint64
	commitLatencyCount   atomic.Uint64

	timeCache *timecache.TimeCache

	strictMode        bool
	onProgrammerError func(op string, err error)

	closeOnce sync.Once
}

// NewProcessor constructs a Processor with default sizing (capacity
// DefaultCapacity, table size DefaultTableSize) and the given writer
// budget. A writerCount of 0 leaves the writer budget unenforced.
func NewProcessor[T Processable](writerCount int) (*Processor[T], error) {
	return NewProcessorWithConfig[T](Config{WriterCount: writerCount})
}

// NewProcessorWithConfig constructs a Processor under full control of cfg.
func NewProcessorWithConfig[T Processable](cfg Config) (*Processor[T], error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	p := &Processor[T]{
		ring:              NewRing[T](uint64(resolved.Capacity)),
		table:             newReservationTable[T](resolved.TableSize, resolved.StrictMode, resolved.OnProgrammerError),
		maxWriters:        int64(resolved.WriterCount),
		writerBudget:      resolved.WriterCount > 0,
		strictMode:        resolved.StrictMode,
		onProgrammerError: resolved.OnProgrammerError,
		timeCache:         timecache.NewWithResolution(time.Millisecond),
	}
	return p, nil
}

// RegisterWriter records one more active producer. It must be called once
// per producer goroutine before that goroutine reserves any ranges, and
// balanced with exactly one SignalWriterDone call when the goroutine has
// committed its last event.
//
// If the Processor was constructed with a nonzero WriterCount and more
// writers register than that budget allows, it is a programmer error
// reported via OnProgrammerError/StrictMode; RegisterWriter still
// succeeds (the budget is advisory capacity planning, not a hard cap on
// correctness) so a non-strict caller keeps running.
func (p *Processor[T]) RegisterWriter() {
	n := p.activeWriters.Add(1)
	if p.writerBudget && n > p.maxWriters {
		p.reportError("register_writer", ErrWriterBudgetExceeded)
	}
}

// SignalWriterDone marks one producer goroutine as finished. Once every
// registered writer has called SignalWriterDone and the ring has drained,
// a concurrent ProcessEvents call returns.
func (p *Processor[T]) SignalWriterDone() {
	p.activeWriters.Add(-1)
}

// ReserveRange claims up to n contiguous ring slots for the calling
// producer. On success it returns a handle to pass to ReservedEvents and
// Commit; on failure (gate contention or insufficient free space) it
// returns ok == false and the caller should retry, typically after a
// short backoff.
//
// The grant may be smaller than n (see Ring.TryReserveSpace); callers
// that need an exact count should inspect ReservedEvents(handle).Count()
// and issue a follow-up ReserveRange for the remainder if it is short.
func (p *Processor[T]) ReserveRange(n uint64) (handle int, ok bool) {
	granted, start, reserved := p.ring.TryReserveSpace(n)
	if !reserved {
		p.reservationFailures.Add(1)
		return 0, false
	}
	return p.table.allocate(start, granted), true
}

// ReservedEvents returns the staging record for handle, or nil if handle
// does not refer to a live reservation.
func (p *Processor[T]) ReservedEvents(handle int) *ReservationRecord[T] {
	return p.table.get(handle)
}

// Commit publishes the first count slots of the reservation identified by
// handle, making them visible to ProcessEvents, and releases the
// reservation. sequenceNumber must match the reservation's
// SequenceNumber(); it is accepted explicitly (rather than re-read from
// the table) so a caller that cached it alongside its staged events
// cannot be confused by a handle recycled out from under it.
//
// count may be less than the reservation's full Count() to commit a
// partial write; it must never exceed it, which is a programmer error
// reported via OnProgrammerError/StrictMode and returned as
// ErrCommitOverflow.
func (p *Processor[T]) Commit(handle int, sequenceNumber uint64, count int) error {
	rec := p.table.get(handle)
	if rec == nil || rec.sequenceNumber != sequenceNumber {
		p.reportError("commit", ErrInvalidHandle)
		return ErrInvalidHandle
	}
	if count > rec.count {
		p.reportError("commit", ErrCommitOverflow)
		return fmt.Errorf("eventqueue: commit count %d exceeds reserved count %d: %w", count, rec.count, ErrCommitOverflow)
	}

	start := p.timeCache.CachedTime()
	for i := 0; i < count; i++ {
		p.ring.publishAt(sequenceNumber+uint64(i), rec.cells[i])
	}
	p.table.release(handle)

	p.committed.Add(uint64(count))
	p.commitLatencyTotalNs.Add(uint64(p.timeCache.CachedTime().Sub(start).Nanoseconds()))
	p.commitLatencyCount.Add(1)

	return nil
}

// ProcessEvents drains the ring on the calling goroutine, invoking
// Process() on each event as it is dequeued, until ctx is canceled or
// every registered writer has called SignalWriterDone and the ring is
// empty. It must only ever be called from one goroutine at a time for a
// given Processor.
func (p *Processor[T]) ProcessEvents(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev, ok := p.ring.Pop()
		if ok {
			ev.Process()
			p.processed.Add(1)
			continue
		}
		if p.activeWriters.Load() <= 0 && p.ring.IsEmpty() {
			return
		}
		runtime.Gosched()
	}
}

// Stats returns a snapshot of the Processor's counters.
func (p *Processor[T]) Stats() Stats {
	var avg uint64
	if n := p.commitLatencyCount.Load(); n > 0 {
		avg = p.commitLatencyTotalNs.Load() / n
	}
	return Stats{
		Capacity:            p.ring.Capacity(),
		FreeSpace:           p.ring.FreeSpace(),
		ActiveWriters:       p.activeWriters.Load(),
		Committed:           p.committed.Load(),
		Processed:           p.processed.Load(),
		ReservationFailures: p.reservationFailures.Load(),
		AvgCommitLatencyNs:  avg,
		SampledAt:           p.timeCache.CachedTime(),
	}
}

// Close releases resources held by the Processor (currently, its internal
// time cache's background ticker). It is idempotent and safe to call more
// than once.
func (p *Processor[T]) Close() error {
	p.closeOnce.Do(func() {
		p.timeCache.Stop()
	})
	return nil
}

func (p *Processor[T]) reportError(op string, err error) {
	if p.onProgrammerError != nil {
		p.onProgrammerError(op, err)
	}
	if p.strictMode {
		panic(err)
	}
}
