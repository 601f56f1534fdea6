package buffer_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jittakal/boundedbuffer/internal/buffer"
	pkgbuffer "github.com/jittakal/boundedbuffer/pkg/buffer"
)

func Example_monitor() {
	ctx := context.Background()
	buf, err := buffer.New[string](1, pkgbuffer.StrategyMonitor)
	if err != nil {
		fmt.Println("Error creating buffer:", err)
		return
	}

	_ = buf.Insert(ctx, "A")
	fmt.Printf("TryInsert(B) while full: %v\n", buf.TryInsert("B"))

	v, _ := buf.Extract(ctx)
	fmt.Printf("Extracted: %s\n", v)
	fmt.Printf("TryInsert(B) after extract: %v\n", buf.TryInsert("B"))

	// Output:
	// TryInsert(B) while full: false
	// Extracted: A
	// TryInsert(B) after extract: true
}

func Example_semaphoreTimed() {
	ctx := context.Background()
	buf, err := buffer.New[int](2, pkgbuffer.StrategySemaphore)
	if err != nil {
		fmt.Println("Error creating buffer:", err)
		return
	}

	_, ok, _ := buf.ExtractTimed(ctx, time.Now().Add(10*time.Millisecond))
	fmt.Printf("Extract from empty buffer: ok=%v\n", ok)

	ok, _ = buf.InsertTimed(ctx, 42, time.Now().Add(10*time.Millisecond))
	fmt.Printf("Insert into empty buffer: ok=%v\n", ok)

	v, ok, _ := buf.ExtractTimed(ctx, time.Now())
	fmt.Printf("Extract with expired deadline: %d ok=%v\n", v, ok)

	// Output:
	// Extract from empty buffer: ok=false
	// Insert into empty buffer: ok=true
	// Extract with expired deadline: 42 ok=true
}
