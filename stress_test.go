// stress_test.go: concurrency and race-oriented tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eventqueue

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// seqEvent records its writer and that writer's own sequence number so
// the consumer can verify that each writer's events are processed in the
// order the writer committed them.
type seqEvent struct {
	writer int
	seq    int
	out    *[]int
	mu     *sync.Mutex
}

func (e seqEvent) Process() {
	e.mu.Lock()
	*e.out = append(*e.out, e.writer*1_000_000+e.seq)
	e.mu.Unlock()
}

// TestStress_ManyWritersOneReader exercises the full producer/consumer
// protocol with many concurrent writers racing ReserveRange against a
// single ProcessEvents consumer, run with -race in CI.
func TestStress_ManyWritersOneReader(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}

	const (
		writerCount     = 12
		eventsPerWriter = 2000
	)

	proc, err := NewProcessorWithConfig[seqEvent](Config{
		Capacity:    256,
		TableSize:   64,
		WriterCount: writerCount,
	})
	if err != nil {
		t.Fatalf("NewProcessorWithConfig: %v", err)
	}
	defer proc.Close()

	var (
		mu  sync.Mutex
		out []int
	)

	var wg sync.WaitGroup
	wg.Add(writerCount)
	for w := 0; w < writerCount; w++ {
		proc.RegisterWriter()
		go func(writer int) {
			defer wg.Done()
			defer proc.SignalWriterDone()

			remaining := eventsPerWriter
			seq := 0
			for remaining > 0 {
				handle, ok := proc.ReserveRange(uint64(remaining))
				if !ok {
					continue
				}
				rec := proc.ReservedEvents(handle)
				n := rec.Count()
				for i := 0; i < n; i++ {
					rec.EmplaceAt(i, seqEvent{writer: writer, seq: seq, out: &out, mu: &mu})
					seq++
				}
				if err := proc.Commit(handle, rec.SequenceNumber(), n); err != nil {
					t.Errorf("writer %d: Commit: %v", writer, err)
					return
				}
				remaining -= n
			}
		}(w)
	}

	readerDone := make(chan struct{})
	go func() {
		proc.ProcessEvents(context.Background())
		close(readerDone)
	}()

	wg.Wait()
	select {
	case <-readerDone:
	case <-time.After(10 * time.Second):
		t.Fatalf("ProcessEvents did not terminate after all writers finished")
	}

	want := writerCount * eventsPerWriter
	if len(out) != want {
		t.Fatalf("processed %d events, want %d", len(out), want)
	}

	perWriter := make(map[int][]int)
	for _, code := range out {
		w := code / 1_000_000
		seq := code % 1_000_000
		perWriter[w] = append(perWriter[w], seq)
	}
	for w, seqs := range perWriter {
		if !sort.IntsAreSorted(seqs) {
			t.Fatalf("writer %d: events committed out of order: %v", w, seqs)
		}
		if len(seqs) != eventsPerWriter {
			t.Fatalf("writer %d: got %d events, want %d", w, len(seqs), eventsPerWriter)
		}
	}
}

// TestStress_RingNeverOverCommits pushes from many goroutines
// concurrently against a ring much smaller than the total event volume,
// verifying that every pushed event is popped exactly once in total and
// that FreeSpace, once drained, has not wrapped past capacity-1 (a
// negative count would show up as a huge unsigned value).
func TestStress_RingNeverOverCommits(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}

	r := NewRing[testEvent](32)
	const writers = 8
	const perWriter = 5000

	var popped atomic.Int64
	stop := make(chan struct{})
	var consumerWg sync.WaitGroup
	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		for {
			if _, ok := r.Pop(); ok {
				popped.Add(1)
				continue
			}
			select {
			case <-stop:
				if r.IsEmpty() {
					return
				}
			default:
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for n := 0; n < perWriter; n++ {
				for !r.Push(testEvent{n: n}) {
					// ring momentarily full; retry
				}
			}
		}()
	}
	wg.Wait()
	close(stop)
	consumerWg.Wait()

	if got := popped.Load(); got != writers*perWriter {
		t.Fatalf("popped %d events, want %d", got, writers*perWriter)
	}
	if free := r.FreeSpace(); free > r.Capacity()-1 {
		t.Fatalf("FreeSpace() = %d overflowed past capacity-1 (%d)", free, r.Capacity()-1)
	}
}
