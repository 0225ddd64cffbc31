package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDeduper()

	if d.SeenAndRecord(ctx, "session-1") {
		t.Fatal("first sighting must not be reported as seen")
	}
	if !d.SeenAndRecord(ctx, "session-1") {
		t.Fatal("second sighting must be reported as seen")
	}
	if d.SeenAndRecord(ctx, "session-2") {
		t.Fatal("distinct id must not be reported as seen")
	}
	if d.Size() != 2 {
		t.Fatalf("expected size 2, got %d", d.Size())
	}
}

func TestUnrecord(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDeduper()

	d.SeenAndRecord(ctx, "session-1")
	d.Unrecord(ctx, "session-1")

	if d.SeenAndRecord(ctx, "session-1") {
		t.Fatal("unrecorded id must be recordable again")
	}

	// Unrecording an unknown id is a no-op.
	d.Unrecord(ctx, "never-seen")
	if d.Size() != 1 {
		t.Fatalf("expected size 1, got %d", d.Size())
	}
}

func TestBoundedEviction(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDeduper(WithMaxSize(3))

	for i := 0; i < 5; i++ {
		d.SeenAndRecord(ctx, fmt.Sprintf("session-%d", i))
	}

	if d.Size() != 3 {
		t.Fatalf("expected bounded size 3, got %d", d.Size())
	}
	// Oldest ids were evicted and can be recorded again.
	if d.SeenAndRecord(ctx, "session-0") {
		t.Error("evicted id still reported as seen")
	}
	// Newest ids are still tracked.
	if !d.SeenAndRecord(ctx, "session-4") {
		t.Error("recent id not reported as seen")
	}
}

func TestUnboundedMode(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDeduper(WithMaxSize(0))

	for i := 0; i < 1000; i++ {
		d.SeenAndRecord(ctx, fmt.Sprintf("session-%d", i))
	}
	if d.Size() != 1000 {
		t.Fatalf("expected unbounded growth, got %d", d.Size())
	}
	if d.SeenAndRecord(ctx, "session-0") != true {
		t.Error("unbounded mode must never evict")
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	d := NewInMemoryDeduper(WithMaxSize(128))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("g%d-s%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	if d.Size() > 128 {
		t.Fatalf("bound violated under concurrency: %d", d.Size())
	}
}
