package tex2yaml

import (
	"context"
	"sync"
	"testing"
)

func TestServicePoolAcquireRelease(t *testing.T) {
	pool := NewServicePool(2)
	if pool.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", pool.Size())
	}

	a, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	b, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if a == b {
		t.Error("two outstanding acquires returned the same service")
	}

	pool.Release(a)
	c, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	if c != a {
		t.Error("released service was not reused")
	}

	pool.Release(b)
	pool.Release(c)
	pool.Release(nil) // must not panic or occupy a slot
}

func TestServicePoolMinimumSize(t *testing.T) {
	pool := NewServicePool(0)
	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1", pool.Size())
	}
}

func TestServicePoolBadOptions(t *testing.T) {
	pool := NewServicePool(1, WithAssetPath("/nonexistent/assets"))
	if _, err := pool.Acquire(); err == nil {
		t.Error("expected error from service construction")
	}
	// The failed slot must be reclaimable.
	if _, err := pool.Acquire(); err == nil {
		t.Error("expected error on retry as well")
	}
}

func TestServicePoolConcurrentUse(t *testing.T) {
	pool := NewServicePool(4)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc, err := pool.Acquire()
			if err != nil {
				errs <- err
				return
			}
			defer pool.Release(svc)
			if _, err := svc.Parse(context.Background(), documentFixture); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("worker error: %v", err)
	}
}

func TestResolvePoolSize(t *testing.T) {
	if got := ResolvePoolSize(8); got != 8 {
		t.Errorf("explicit workers: got %d, want 8", got)
	}
	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("auto size %d outside [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
}
