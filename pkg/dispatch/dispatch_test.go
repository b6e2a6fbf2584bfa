package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFIFO(t *testing.T) {
	l := New(nil)
	var got []string
	for _, name := range []string{"redraw", "export", "redraw"} {
		name := name
		if err := l.Post(name, func(context.Context) error {
			got = append(got, name)
			return nil
		}, nil); err != nil {
			t.Fatal(err)
		}
	}
	l.Close()
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"redraw", "export", "redraw"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestTaskPostedFromTask(t *testing.T) {
	l := New(nil)
	var got []string
	l.Post("first", func(context.Context) error {
		got = append(got, "first")
		return l.Post("second", func(context.Context) error {
			got = append(got, "second")
			l.Close()
			return nil
		}, nil)
	}, nil)
	l.Post("between", func(context.Context) error {
		got = append(got, "between")
		return nil
	}, nil)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "between", "second"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestDoneReceivesError(t *testing.T) {
	l := New(nil)
	boom := errors.New("boom")
	var got error
	l.Post("fail", func(context.Context) error { return boom }, func(err error) { got = err })
	l.Drain(context.Background())
	if !errors.Is(got, boom) {
		t.Errorf("done err = %v, want %v", got, boom)
	}
}

func TestPostAfterClose(t *testing.T) {
	l := New(nil)
	l.Close()
	l.Close()
	if err := l.Post("late", func(context.Context) error { return nil }, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Post after Close = %v, want ErrClosed", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentPost(t *testing.T) {
	l := New(nil)
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post("inc", func(context.Context) error {
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			}, nil)
		}()
	}
	wg.Wait()
	if l.Pending() != 50 {
		t.Fatalf("pending = %d, want 50", l.Pending())
	}
	l.Close()
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if count != 50 {
		t.Errorf("ran %d tasks, want 50", count)
	}
}
