package manager

import (
	"context"
	"testing"
	"time"

	"meshassist/config"
)

func TestAcquireRelease(t *testing.T) {
	cm := NewConcurrencyManager([]config.ModelLimit{{Name: "m", Size: 1}}, 4, 50*time.Millisecond)
	defer cm.Shutdown()

	release, ok := cm.Acquire(context.Background(), "m")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	if _, processing := cm.Snapshot("m"); processing != 1 {
		t.Errorf("processing = %d, want 1", processing)
	}

	if _, ok := cm.Acquire(context.Background(), "m"); ok {
		t.Fatal("second acquire should time out while the slot is held")
	}
	if queued, _ := cm.Snapshot("m"); queued != 0 {
		t.Errorf("queued = %d after timeout, want 0", queued)
	}

	release()
	release() // second call is a no-op

	release2, ok := cm.Acquire(context.Background(), "m")
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
	release2()

	if queued, processing := cm.Snapshot("m"); queued != 0 || processing != 0 {
		t.Errorf("snapshot = (%d, %d), want (0, 0)", queued, processing)
	}
}

func TestAcquireUnknownModelUsesDefault(t *testing.T) {
	cm := NewConcurrencyManager(nil, 1, 20*time.Millisecond)
	defer cm.Shutdown()

	release, ok := cm.Acquire(context.Background(), "unlisted")
	if !ok {
		t.Fatal("acquire should succeed")
	}
	defer release()

	if _, processing := cm.Snapshot(DefaultModel); processing != 1 {
		t.Errorf("default processing = %d, want 1", processing)
	}
	if _, ok := cm.Acquire(context.Background(), "other"); ok {
		t.Error("unlisted models share the default bucket")
	}
}

func TestAcquireContextCanceled(t *testing.T) {
	cm := NewConcurrencyManager([]config.ModelLimit{{Name: "m", Size: 1}}, 1, time.Minute)
	defer cm.Shutdown()

	release, ok := cm.Acquire(context.Background(), "m")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, ok := cm.Acquire(ctx, "m"); ok {
		t.Fatal("acquire should fail once ctx is done")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("acquire ignored ctx cancellation")
	}
}

func TestInvalidSizeFallsBack(t *testing.T) {
	cm := NewConcurrencyManager([]config.ModelLimit{{Name: "m", Size: 0}}, 1, 20*time.Millisecond)
	defer cm.Shutdown()

	var releases []func()
	for i := 0; i < 10; i++ {
		release, ok := cm.Acquire(context.Background(), "m")
		if !ok {
			t.Fatalf("acquire %d failed; invalid size should fall back to 10", i)
		}
		releases = append(releases, release)
	}
	for _, r := range releases {
		r()
	}
}
