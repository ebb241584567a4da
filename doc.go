// doc.go: package overview
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package eventqueue provides a bounded, lock-free, multi-producer
// single-consumer event queue for high-throughput event dispatch.
//
// Producers reserve contiguous ranges of slots in a shared ring, populate
// them with event values in place, and then commit the range to the
// consumer, which dequeues events and invokes Process() on each.
//
// # Quick Start
//
// Basic usage with a single producer:
//
//	proc, err := eventqueue.NewProcessor[*Event](1)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer proc.Close()
//
//	proc.RegisterWriter()
//	handle, ok := proc.ReserveRange(10)
//	if !ok {
//		// ring temporarily full or gate contended; retry
//	}
//	rec := proc.ReservedEvents(handle)
//	for i := 0; i < rec.Count(); i++ {
//		rec.EmplaceAt(i, NewEvent(i))
//	}
//	proc.Commit(handle, rec.SequenceNumber(), rec.Count())
//	proc.SignalWriterDone()
//
//	ctx := context.Background()
//	proc.ProcessEvents(ctx) // drains until writers are done and the ring is empty
//
// # Configuration
//
// Two constructor tiers, mirroring the rest of this library's family of
// constructors elsewhere in the AGILira fragment series:
//
//	// Positional constructor with safe defaults (capacity 4096, table size 32)
//	proc, err := eventqueue.NewProcessor[*Event](writerCount)
//
//	// Full control
//	proc, err := eventqueue.NewProcessorWithConfig[*Event](eventqueue.Config{
//		WriterCount: 8,
//		CapacityStr: "8Ki",
//		TableSize:   64,
//	})
//
// # Thread Safety
//
// Many goroutines may call ReserveRange/Commit concurrently (producers).
// Exactly one goroutine may call ProcessEvents (the consumer). Violating
// the single-consumer constraint causes data races and undefined behavior,
// same as any lock-free SPSC/MPSC ring buffer.
//
// # Performance Characteristics
//
//   - Push/Pop are lock-free, bounded-retry operations.
//   - ReserveRange is lock-free but serialized by a single-owner gate;
//     under contention producers retry (see Ring.TryReserveSpace).
//   - The ring's slot array is allocated once at construction. Each
//     ReserveRange allocates a record and its cell slice, and each
//     published event is stored behind its own heap pointer; EmplaceAt
//     itself never allocates on the queue's behalf.
//
// # Error Handling
//
// Hot-path operations (Push, Pop, ReserveRange) signal failure with a
// boolean, never an error — reservation failure and empty-pop are both
// normal, non-exceptional conditions the caller is expected to retry or
// tolerate. Programmer errors (oversized Commit, out-of-range EmplaceAt,
// exceeding the configured writer budget) are reported through the
// optional Config.OnProgrammerError callback, with StrictMode available
// to panic instead for debug builds.
package eventqueue
