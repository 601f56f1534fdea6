// Package buffer implements the two bounded buffer strategies.
//
// # Strategies
//
// Monitor guards a ring store with one mutex and two condition queues. A
// producer waits on "slot freed" while the store is full; a consumer waits on
// "item available" while it is empty. Every successful transfer wakes one
// goroutine waiting on the opposite queue, and every waiter re-checks its
// predicate in a loop, so spurious or stolen wakeups are harmless.
//
// Semaphore keeps two counting semaphores, emptySlots and fullSlots. A
// transfer first takes a permit, then runs a short critical section on the
// store, then releases a permit of the other kind:
//
//	emptySlots.Acquire -> lock; push; unlock -> fullSlots.Release
//	fullSlots.Acquire  -> lock; pop;  unlock -> emptySlots.Release
//
// # Usage
//
//	buf, err := buffer.New[string](8, pkgbuffer.StrategySemaphore)
//	if err != nil {
//	    return err
//	}
//
//	// Producer
//	if err := buf.Insert(ctx, "hello"); err != nil {
//	    // ctx ended while the buffer was full
//	}
//
//	// Consumer, giving up after 100ms
//	v, ok, err := buf.ExtractTimed(ctx, time.Now().Add(100*time.Millisecond))
//
// # Deadlines and cancellation
//
// Timed variants take an absolute deadline. A deadline at or before now makes
// the call behave exactly like the corresponding Try variant. Expiry is a
// normal false result. Cancellation of ctx during a wait is an error wrapping
// errors.ErrInterrupted and leaves the buffer unchanged.
//
// # Thread Safety
//
// Both implementations are safe for any number of concurrent producers and
// consumers. No lock is held while a goroutine is suspended, and neither
// implementation logs.
package buffer
