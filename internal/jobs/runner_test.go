package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestRunner(t *testing.T, cfg Config, handlers ...Handler) *Runner {
	t.Helper()
	reg := NewRegistry()
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return NewRunner(cfg, reg, zap.NewNop())
}

func TestRegistry_DuplicateType(t *testing.T) {
	reg := NewRegistry()
	h := HandlerFunc{JobType: "purge", Fn: func(context.Context, Job) error { return nil }}
	if err := reg.Register(h); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(h); err == nil {
		t.Fatal("expected error on duplicate type")
	}
	if err := reg.Register(HandlerFunc{}); err == nil {
		t.Fatal("expected error on empty type")
	}
}

func TestSync_RunsInline(t *testing.T) {
	var got string
	r := newTestRunner(t, Config{Sync: true}, HandlerFunc{JobType: "rename", Fn: func(_ context.Context, j Job) error {
		var p struct{ From, To string }
		if err := j.Decode(&p); err != nil {
			return err
		}
		got = p.From + "->" + p.To
		return nil
	}})

	job, err := NewJob("rename", "Pies/Flavor->Taste", map[string]string{"From": "Flavor", "To": "Taste"})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := r.Enqueue(context.Background(), job)
	if err != nil || !ok {
		t.Fatalf("Enqueue = %v %v", ok, err)
	}
	if got != "Flavor->Taste" {
		t.Errorf("handler saw %q", got)
	}
}

func TestSync_RetriesThenFails(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	r := newTestRunner(t, Config{Sync: true, MaxAttempts: 3}, HandlerFunc{JobType: "x", Fn: func(context.Context, Job) error {
		calls++
		return boom
	}})

	_, err := r.Enqueue(context.Background(), Job{Type: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSync_RecoversPanic(t *testing.T) {
	r := newTestRunner(t, Config{Sync: true}, HandlerFunc{JobType: "x", Fn: func(context.Context, Job) error {
		panic("kaboom")
	}})
	if _, err := r.Enqueue(context.Background(), Job{Type: "x"}); err == nil {
		t.Fatal("expected error from panicking handler")
	}
}

func TestEnqueue_UnknownType(t *testing.T) {
	r := newTestRunner(t, Config{Sync: true})
	if _, err := r.Enqueue(context.Background(), Job{Type: "nope"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestAsync_FailureIsIsolated(t *testing.T) {
	var ok atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	r := newTestRunner(t, Config{Workers: 2, QueueSize: 8},
		HandlerFunc{JobType: "good", Fn: func(context.Context, Job) error {
			defer wg.Done()
			ok.Add(1)
			return nil
		}},
		HandlerFunc{JobType: "bad", Fn: func(context.Context, Job) error {
			defer wg.Done()
			panic("bad job")
		}},
	)
	r.Start(context.Background())

	for _, typ := range []string{"good", "bad", "good"} {
		if _, err := r.Enqueue(context.Background(), Job{Type: typ}); err != nil {
			t.Fatalf("Enqueue %s: %v", typ, err)
		}
	}
	wg.Wait()
	r.Stop()

	if ok.Load() != 2 {
		t.Errorf("good jobs = %d, want 2", ok.Load())
	}
	if _, err := r.Enqueue(context.Background(), Job{Type: "good"}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestAsync_DeduplicatesPendingKeys(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var runs atomic.Int32
	r := newTestRunner(t, Config{Workers: 1, QueueSize: 8},
		HandlerFunc{JobType: "block", Fn: func(context.Context, Job) error {
			started <- struct{}{}
			<-release
			return nil
		}},
		HandlerFunc{JobType: "rename", Fn: func(context.Context, Job) error {
			runs.Add(1)
			return nil
		}},
	)
	r.Start(context.Background())
	ctx := context.Background()

	// Occupy the only worker so rename jobs stay pending.
	if _, err := r.Enqueue(ctx, Job{Type: "block"}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("blocking job did not start")
	}

	first, err := r.Enqueue(ctx, Job{Type: "rename", Key: "Pies/a->b"})
	if err != nil || !first {
		t.Fatalf("first Enqueue = %v %v", first, err)
	}
	second, err := r.Enqueue(ctx, Job{Type: "rename", Key: "Pies/a->b"})
	if err != nil || second {
		t.Fatalf("duplicate Enqueue = %v %v", second, err)
	}
	other, _ := r.Enqueue(ctx, Job{Type: "rename", Key: "Pies/c->d"})
	if !other {
		t.Fatal("distinct key should be queued")
	}

	close(release)
	r.Stop()

	if runs.Load() != 2 {
		t.Errorf("rename runs = %d, want 2", runs.Load())
	}
}

func TestAsync_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := newTestRunner(t, Config{Workers: 1, QueueSize: 1},
		HandlerFunc{JobType: "block", Fn: func(context.Context, Job) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			return nil
		}},
	)
	r.Start(context.Background())
	defer func() {
		close(release)
		r.Stop()
	}()
	ctx := context.Background()

	if _, err := r.Enqueue(ctx, Job{Type: "block"}); err != nil {
		t.Fatal(err)
	}
	<-started
	if _, err := r.Enqueue(ctx, Job{Type: "block"}); err != nil {
		t.Fatalf("second Enqueue: %v", err)
	}
	if _, err := r.Enqueue(ctx, Job{Type: "block"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestHealthy(t *testing.T) {
	r := newTestRunner(t, Config{Workers: 1, QueueSize: 4})
	r.Start(context.Background())
	if err := r.Healthy(); err != nil {
		t.Fatalf("running runner: %v", err)
	}
	r.Stop()
	if err := r.Healthy(); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
