package feed_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"goldengate/internal/feed"
)

type recorder struct {
	mu  sync.Mutex
	got []feed.Change
}

func (r *recorder) handle(ch feed.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ch)
}

func (r *recorder) waitLen(t *testing.T, n int) []feed.Change {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.got) >= n {
			out := append([]feed.Change(nil), r.got...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d changes", n)
	return nil
}

func TestBusDeliversInOrderPerKey(t *testing.T) {
	bus := feed.NewBus()
	defer bus.Close()

	var inv, fin recorder
	if _, err := bus.Subscribe("inventoryItems", inv.handle); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Subscribe("financingRecords", fin.handle); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, v := range []string{"[1]", "[2]", "[3]"} {
		if err := bus.Publish(ctx, feed.Change{Key: "inventoryItems", Value: feed.Value(v), Origin: "a"}); err != nil {
			t.Fatal(err)
		}
	}

	got := inv.waitLen(t, 3)
	for i, want := range []string{"[1]", "[2]", "[3]"} {
		if *got[i].Value != want {
			t.Fatalf("change %d: want %s got %s", i, want, *got[i].Value)
		}
	}
	fin.mu.Lock()
	defer fin.mu.Unlock()
	if len(fin.got) != 0 {
		t.Fatalf("financing subscriber saw inventory changes: %+v", fin.got)
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := feed.NewBus()
	defer bus.Close()

	var rec recorder
	cancel, _ := bus.Subscribe("user", rec.handle)
	cancel()
	cancel() // idempotent

	if err := bus.Publish(context.Background(), feed.Change{Key: "user", Origin: "a"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.got) != 0 {
		t.Fatalf("cancelled subscriber received %d changes", len(rec.got))
	}
}

func TestBusCloseReleasesBlockedPublisher(t *testing.T) {
	bus := feed.NewBus()
	release := make(chan struct{})
	defer close(release)
	if _, err := bus.Subscribe("financingRecords", func(feed.Change) { <-release }); err != nil {
		t.Fatal(err)
	}

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 200; i++ {
			_ = bus.Publish(context.Background(), feed.Change{Key: "financingRecords", Origin: "a"})
		}
	}()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		_ = bus.Close()
		close(closed)
	}()
	for _, c := range []chan struct{}{closed, published} {
		select {
		case <-c:
		case <-time.After(2 * time.Second):
			t.Fatal("close did not release a publisher stuck on a full queue")
		}
	}
}

func TestRedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	n := feed.NewRedis(rdb, "test", nil)
	defer n.Close()

	var rec recorder
	cancel, err := n.Subscribe("financingRecords", rec.handle)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	ctx := context.Background()
	if err := n.Publish(ctx, feed.Change{Key: "financingRecords", Value: feed.Value(`[]`), Origin: "tab-a"}); err != nil {
		t.Fatal(err)
	}
	if err := n.Publish(ctx, feed.Change{Key: "financingRecords", Origin: "tab-a"}); err != nil {
		t.Fatal(err)
	}

	got := rec.waitLen(t, 2)
	if got[0].Origin != "tab-a" || got[0].Value == nil || *got[0].Value != "[]" {
		t.Fatalf("unexpected first change: %+v", got[0])
	}
	if !got[1].Removed() {
		t.Fatalf("second change should be a removal: %+v", got[1])
	}
}
