package buffer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

func newBuffer[T any](t *testing.T, capacity int, strategy buffer.Strategy) buffer.Buffer[T] {
	t.Helper()
	b, err := New[T](capacity, strategy)
	if err != nil {
		t.Fatalf("New(%d, %s) error = %v", capacity, strategy, err)
	}
	return b
}

// forEachStrategy runs fn as a subtest once per strategy.
func forEachStrategy(t *testing.T, fn func(t *testing.T, strategy buffer.Strategy)) {
	for _, strategy := range buffer.Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			fn(t, strategy)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		strategy buffer.Strategy
		wantErr  error
	}{
		{"monitor", 4, buffer.StrategyMonitor, nil},
		{"semaphore", 4, buffer.StrategySemaphore, nil},
		{"zero capacity", 0, buffer.StrategyMonitor, errs.ErrInvalidCapacity},
		{"negative capacity", -3, buffer.StrategySemaphore, errs.ErrInvalidCapacity},
		{"unknown strategy", 4, buffer.Strategy("spinlock"), errs.ErrUnknownStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New[int](tt.capacity, tt.strategy)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if b.Cap() != tt.capacity {
				t.Errorf("Cap() = %d, want %d", b.Cap(), tt.capacity)
			}
			if b.Len() != 0 {
				t.Errorf("Len() = %d, want 0", b.Len())
			}
		})
	}
}

func TestBuffer_CapacityOneScenario(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		ctx := context.Background()
		b := newBuffer[string](t, 1, strategy)

		if err := b.Insert(ctx, "A"); err != nil {
			t.Fatalf("Insert(A) error = %v", err)
		}
		if b.TryInsert("B") {
			t.Fatal("TryInsert(B) = true while A is buffered")
		}
		got, err := b.Extract(ctx)
		if err != nil || got != "A" {
			t.Fatalf("Extract() = (%q, %v), want (A, nil)", got, err)
		}
		if !b.TryInsert("B") {
			t.Fatal("TryInsert(B) = false after A was extracted")
		}
		got, err = b.Extract(ctx)
		if err != nil || got != "B" {
			t.Fatalf("Extract() = (%q, %v), want (B, nil)", got, err)
		}
	})
}

func TestBuffer_FIFO(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		ctx := context.Background()
		const n = 64
		b := newBuffer[int](t, n, strategy)

		for i := 0; i < n; i++ {
			if err := b.Insert(ctx, i); err != nil {
				t.Fatalf("Insert(%d) error = %v", i, err)
			}
		}
		for i := 0; i < n; i++ {
			got, err := b.Extract(ctx)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != i {
				t.Fatalf("Extract() #%d = %d, want %d", i, got, i)
			}
		}
	})
}

func TestBuffer_CapacityInvariant(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const capacity = 3
		b := newBuffer[int](t, capacity, strategy)

		for i := 0; i < capacity; i++ {
			if !b.TryInsert(i) {
				t.Fatalf("TryInsert(%d) = false with Len()=%d", i, b.Len())
			}
		}
		if b.Len() != capacity {
			t.Fatalf("Len() = %d, want %d", b.Len(), capacity)
		}
		if b.TryInsert(99) {
			t.Fatal("TryInsert() = true on full buffer")
		}
		if b.Len() != capacity {
			t.Fatalf("Len() = %d after rejected insert, want %d", b.Len(), capacity)
		}

		for i := 0; i < capacity; i++ {
			if _, ok := b.TryExtract(); !ok {
				t.Fatalf("TryExtract() #%d = false", i)
			}
		}
		if v, ok := b.TryExtract(); ok {
			t.Fatalf("TryExtract() on empty buffer = (%d, true)", v)
		}
		if b.Len() != 0 {
			t.Fatalf("Len() = %d, want 0", b.Len())
		}
	})
}

func TestBuffer_InsertTimedTimeout(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		b := newBuffer[int](t, 1, strategy)
		b.TryInsert(1)

		start := time.Now()
		ok, err := b.InsertTimed(context.Background(), 2, start.Add(100*time.Millisecond))
		elapsed := time.Since(start)

		if err != nil {
			t.Fatalf("InsertTimed() error = %v", err)
		}
		if ok {
			t.Fatal("InsertTimed() = true on full buffer")
		}
		if elapsed < 90*time.Millisecond {
			t.Errorf("InsertTimed() returned after %v, want about 100ms", elapsed)
		}
		if elapsed > 2*time.Second {
			t.Errorf("InsertTimed() returned after %v, want about 100ms", elapsed)
		}
		if got, _ := b.TryExtract(); got != 1 {
			t.Errorf("buffer content = %d after timeout, want 1", got)
		}
	})
}

func TestBuffer_ExtractTimedTimeout(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		b := newBuffer[int](t, 2, strategy)

		start := time.Now()
		_, ok, err := b.ExtractTimed(context.Background(), start.Add(100*time.Millisecond))
		elapsed := time.Since(start)

		if err != nil {
			t.Fatalf("ExtractTimed() error = %v", err)
		}
		if ok {
			t.Fatal("ExtractTimed() = true on empty buffer")
		}
		if elapsed < 90*time.Millisecond || elapsed > 2*time.Second {
			t.Errorf("ExtractTimed() returned after %v, want about 100ms", elapsed)
		}
	})
}

func TestBuffer_TimedPastDeadline(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		ctx := context.Background()
		b := newBuffer[int](t, 1, strategy)
		past := time.Now().Add(-time.Second)

		// Behaves like TryInsert / TryExtract: succeeds when possible...
		ok, err := b.InsertTimed(ctx, 7, past)
		if err != nil || !ok {
			t.Fatalf("InsertTimed(past) on empty buffer = (%v, %v), want (true, nil)", ok, err)
		}

		// ...and fails immediately when not.
		start := time.Now()
		ok, err = b.InsertTimed(ctx, 8, past)
		if err != nil || ok {
			t.Fatalf("InsertTimed(past) on full buffer = (%v, %v), want (false, nil)", ok, err)
		}
		if time.Since(start) > 50*time.Millisecond {
			t.Errorf("InsertTimed(past) waited %v", time.Since(start))
		}

		v, ok, err := b.ExtractTimed(ctx, past)
		if err != nil || !ok || v != 7 {
			t.Fatalf("ExtractTimed(past) = (%d, %v, %v), want (7, true, nil)", v, ok, err)
		}
		_, ok, err = b.ExtractTimed(ctx, past)
		if err != nil || ok {
			t.Fatalf("ExtractTimed(past) on empty buffer = (%v, %v), want (false, nil)", ok, err)
		}
	})
}

func TestBuffer_TimedSucceedsBeforeDeadline(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		ctx := context.Background()
		b := newBuffer[int](t, 1, strategy)
		b.TryInsert(1)

		go func() {
			time.Sleep(20 * time.Millisecond)
			b.TryExtract()
		}()

		ok, err := b.InsertTimed(ctx, 2, time.Now().Add(5*time.Second))
		if err != nil || !ok {
			t.Fatalf("InsertTimed() = (%v, %v), want (true, nil)", ok, err)
		}

		if v, ok := b.TryExtract(); !ok || v != 2 {
			t.Fatalf("TryExtract() = (%d, %v), want (2, true)", v, ok)
		}
		go func() {
			time.Sleep(20 * time.Millisecond)
			b.TryInsert(3)
		}()

		v, ok, err := b.ExtractTimed(ctx, time.Now().Add(5*time.Second))
		if err != nil || !ok || v != 3 {
			t.Fatalf("ExtractTimed() = (%d, %v, %v), want (3, true, nil)", v, ok, err)
		}
	})
}

func TestBuffer_InsertInterrupted(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const capacity = 2
		b := newBuffer[int](t, capacity, strategy)
		b.TryInsert(1)
		b.TryInsert(2)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		err := b.Insert(ctx, 3)
		if !errors.Is(err, errs.ErrInterrupted) {
			t.Fatalf("Insert() error = %v, want ErrInterrupted", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Insert() error = %v, want it to wrap context.Canceled", err)
		}

		assertContents(t, b, []int{1, 2})
		assertFreeSlots(t, b, capacity)
	})
}

func TestBuffer_ExtractInterrupted(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const capacity = 3
		b := newBuffer[int](t, capacity, strategy)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		if _, err := b.Extract(ctx); !errors.Is(err, errs.ErrInterrupted) {
			t.Fatalf("Extract() error = %v, want ErrInterrupted", err)
		}

		assertFreeSlots(t, b, capacity)
	})
}

func TestBuffer_TimedInterruptedIsNotTimeout(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		b := newBuffer[int](t, 1, strategy)
		b.TryInsert(1)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		ok, err := b.InsertTimed(ctx, 2, time.Now().Add(5*time.Second))
		if ok {
			t.Fatal("InsertTimed() = true on full buffer")
		}
		if !errs.IsInterrupted(err) {
			t.Fatalf("InsertTimed() error = %v, want ErrInterrupted", err)
		}
		if got := buffer.OutcomeOf(ok, err); got != buffer.Cancelled {
			t.Errorf("OutcomeOf() = %v, want cancelled", got)
		}

		b.TryExtract()
		ctx2, cancel2 := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel2)
		_, ok, err = b.ExtractTimed(ctx2, time.Now().Add(5*time.Second))
		if ok || !errs.IsInterrupted(err) {
			t.Fatalf("ExtractTimed() = (%v, %v), want (false, ErrInterrupted)", ok, err)
		}
	})
}

func TestBuffer_CancelledContextStillTransfersWhenPossible(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := newBuffer[int](t, 1, strategy)

		if err := b.Insert(ctx, 1); err != nil {
			t.Fatalf("Insert() with free slot error = %v", err)
		}
		if err := b.Insert(ctx, 2); !errs.IsInterrupted(err) {
			t.Fatalf("Insert() on full buffer error = %v, want ErrInterrupted", err)
		}
		v, err := b.Extract(ctx)
		if err != nil || v != 1 {
			t.Fatalf("Extract() = (%d, %v), want (1, nil)", v, err)
		}
	})
}

func TestBuffer_NoLostWakeup(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const trials = 500
		rng := rand.New(rand.NewSource(1))

		for trial := 0; trial < trials; trial++ {
			b := newBuffer[int](t, 1, strategy)
			done := make(chan int, 1)

			go func() {
				v, err := b.Extract(context.Background())
				if err != nil {
					v = -1
				}
				done <- v
			}()

			// Zero to ~200µs so the insert races the consumer's suspension.
			if d := rng.Intn(200); d > 0 {
				time.Sleep(time.Duration(d) * time.Microsecond)
			}
			if err := b.Insert(context.Background(), trial); err != nil {
				t.Fatalf("trial %d: Insert() error = %v", trial, err)
			}

			select {
			case v := <-done:
				if v != trial {
					t.Fatalf("trial %d: Extract() = %d", trial, v)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("trial %d: blocked consumer was never woken", trial)
			}
		}
	})
}

func TestBuffer_SeveralBlockedConsumersAllWake(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const consumers = 4
		b := newBuffer[int](t, 2, strategy)
		results := make(chan int, consumers)

		for i := 0; i < consumers; i++ {
			go func() {
				v, err := b.Extract(context.Background())
				if err != nil {
					v = -1
				}
				results <- v
			}()
		}
		time.Sleep(20 * time.Millisecond)

		// Back-to-back inserts: the second one finds the buffer non-empty.
		for i := 0; i < consumers; i++ {
			if err := b.Insert(context.Background(), i); err != nil {
				t.Fatalf("Insert(%d) error = %v", i, err)
			}
		}

		seen := make(map[int]bool)
		for i := 0; i < consumers; i++ {
			select {
			case v := <-results:
				if v < 0 || seen[v] {
					t.Fatalf("unexpected value %d (seen %v)", v, seen)
				}
				seen[v] = true
			case <-time.After(5 * time.Second):
				t.Fatalf("only %d of %d consumers woke up", i, consumers)
			}
		}
	})
}

func TestBuffer_ProducerConsumerStress(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, strategy buffer.Strategy) {
		const (
			capacity    = 8
			producers   = 4
			consumers   = 4
			perProducer = 1000
			total       = producers * perProducer
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		b := newBuffer[string](t, capacity, strategy)

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					if err := b.Insert(ctx, fmt.Sprintf("p%d-%d", p, i)); err != nil {
						t.Errorf("producer %d: Insert() error = %v", p, err)
						return
					}
				}
			}(p)
		}

		var claimed atomic.Int64
		var mu sync.Mutex
		seen := make(map[string]int, total)
		var cwg sync.WaitGroup
		for c := 0; c < consumers; c++ {
			cwg.Add(1)
			go func(c int) {
				defer cwg.Done()
				for claimed.Add(1) <= total {
					v, err := b.Extract(ctx)
					if err != nil {
						t.Errorf("consumer %d: Extract() error = %v", c, err)
						return
					}
					mu.Lock()
					seen[v]++
					mu.Unlock()
				}
			}(c)
		}

		wg.Wait()
		cwg.Wait()

		if len(seen) != total {
			t.Fatalf("extracted %d distinct values, want %d", len(seen), total)
		}
		for p := 0; p < producers; p++ {
			for i := 0; i < perProducer; i++ {
				key := fmt.Sprintf("p%d-%d", p, i)
				if seen[key] != 1 {
					t.Fatalf("value %s extracted %d times", key, seen[key])
				}
			}
		}
		if b.Len() != 0 {
			t.Errorf("Len() = %d after run, want 0", b.Len())
		}
	})
}

func TestBuffer_StrategyEquivalence(t *testing.T) {
	type step struct {
		insert bool
		value  int
	}
	rng := rand.New(rand.NewSource(42))
	steps := make([]step, 2000)
	for i := range steps {
		steps[i] = step{insert: rng.Intn(100) < 55, value: i}
	}

	run := func(strategy buffer.Strategy) []string {
		b := newBuffer[int](t, 5, strategy)
		trace := make([]string, 0, len(steps))
		for _, s := range steps {
			if s.insert {
				trace = append(trace, fmt.Sprintf("ins %d %v", s.value, b.TryInsert(s.value)))
				continue
			}
			v, ok := b.TryExtract()
			trace = append(trace, fmt.Sprintf("ext %d %v", v, ok))
		}
		for {
			v, ok := b.TryExtract()
			if !ok {
				break
			}
			trace = append(trace, fmt.Sprintf("drain %d", v))
		}
		return trace
	}

	monitor := run(buffer.StrategyMonitor)
	sem := run(buffer.StrategySemaphore)

	if len(monitor) != len(sem) {
		t.Fatalf("trace lengths differ: monitor=%d semaphore=%d", len(monitor), len(sem))
	}
	for i := range monitor {
		if monitor[i] != sem[i] {
			t.Fatalf("step %d: monitor=%q semaphore=%q", i, monitor[i], sem[i])
		}
	}
}

// assertContents drains b without blocking and compares against want.
func assertContents(t *testing.T, b buffer.Buffer[int], want []int) {
	t.Helper()
	for i, w := range want {
		got, ok := b.TryExtract()
		if !ok {
			t.Fatalf("TryExtract() #%d = false, want %d", i, w)
		}
		if got != w {
			t.Fatalf("TryExtract() #%d = %d, want %d", i, got, w)
		}
	}
	if v, ok := b.TryExtract(); ok {
		t.Fatalf("unexpected extra element %d", v)
	}
}

// assertFreeSlots checks that an empty b accepts exactly capacity inserts,
// which catches leaked or duplicated permits.
func assertFreeSlots(t *testing.T, b buffer.Buffer[int], capacity int) {
	t.Helper()
	for i := 0; i < capacity; i++ {
		if !b.TryInsert(i) {
			t.Fatalf("TryInsert() #%d = false, want %d free slots", i, capacity)
		}
	}
	if b.TryInsert(capacity) {
		t.Fatalf("TryInsert() accepted more than %d elements", capacity)
	}
	for i := 0; i < capacity; i++ {
		if _, ok := b.TryExtract(); !ok {
			t.Fatalf("TryExtract() #%d = false", i)
		}
	}
}
