// main.go: eventbench, a throughput benchmark driver
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Command eventbench drives a Processor with a configurable number of
// writer goroutines and one reader goroutine, reporting total wall-clock
// time and throughput. It is a direct port of the original C++ benchmark
// driver's shape: each writer loops ReserveRange/Emplace/Commit until it
// has produced its share of events, then decrements the active-writer
// count; the single reader runs ProcessEvents until every writer is done
// and the ring has drained.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/flowgate-labs/eventqueue"
)

// benchEvent is a minimal Processable whose Process is a no-op, so the
// run measures the queue's own overhead.
type benchEvent struct {
	seq int
}

func (benchEvent) Process() {}

func main() {
	var (
		eventsPerWriter = flag.Int("events", 1_000_000, "events produced by each writer")
		writers         = flag.Int("writers", 16, "number of concurrent writer goroutines")
		capacity        = flag.String("capacity", "4Ki", "ring capacity (accepts K/Ki/M/Mi suffixes)")
		tableSize       = flag.Int("table-size", 64, "reservation table size")
	)
	flag.Parse()

	proc, err := eventqueue.NewProcessorWithConfig[benchEvent](eventqueue.Config{
		WriterCount: *writers,
		CapacityStr: *capacity,
		TableSize:   *tableSize,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "eventbench: ", err)
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("EventProcessor start (writers=%d events/writer=%d capacity=%s table-size=%d)\n",
		*writers, *eventsPerWriter, *capacity, *tableSize)

	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(*writers)
	for i := 0; i < *writers; i++ {
		proc.RegisterWriter()
		go func() {
			defer wg.Done()
			runWriter(proc, *eventsPerWriter)
		}()
	}

	ctx := context.Background()
	readerDone := make(chan struct{})
	go func() {
		proc.ProcessEvents(ctx)
		close(readerDone)
	}()

	wg.Wait()
	<-readerDone

	elapsed := time.Since(start)
	total := uint64(*writers) * uint64(*eventsPerWriter)
	stats := proc.Stats()

	fmt.Printf("done in %s (%.0f events/sec)\n", elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("committed=%d processed=%d reservation_failures=%d avg_commit_latency=%s\n",
		stats.Committed, stats.Processed, stats.ReservationFailures,
		time.Duration(stats.AvgCommitLatencyNs))
}

func runWriter(proc *eventqueue.Processor[benchEvent], remaining int) {
	defer proc.SignalWriterDone()

	seq := 0
	for remaining > 0 {
		handle, ok := proc.ReserveRange(uint64(remaining))
		if !ok {
			continue
		}
		rec := proc.ReservedEvents(handle)
		n := rec.Count()
		for i := 0; i < n; i++ {
			rec.EmplaceAt(i, benchEvent{seq: seq})
			seq++
		}
		if err := proc.Commit(handle, rec.SequenceNumber(), n); err != nil {
			fmt.Fprintln(os.Stderr, "eventbench: commit:", err)
			continue
		}
		remaining -= n
	}
}
