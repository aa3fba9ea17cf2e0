package workspace

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"goldengate/internal/domain"
	"goldengate/internal/feed"
	"goldengate/internal/repos"
	"goldengate/internal/services"
)

func open(t *testing.T, slots repos.SlotStore, n feed.Notifier) *Workspace {
	t.Helper()
	ws, err := New(Options{Slots: slots, Feed: n})
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ws.Close)
	return ws
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type trace struct {
	mu    sync.Mutex
	calls []string
}

func (tr *trace) add(s string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.calls = append(tr.calls, s)
}

type tracedSlots struct {
	repos.SlotStore
	tr *trace
}

func (s tracedSlots) Get(ctx context.Context, key string) (string, bool, error) {
	s.tr.add("get " + key)
	return s.SlotStore.Get(ctx, key)
}

type tracedFeed struct {
	feed.Notifier
	tr *trace
}

func (f tracedFeed) Subscribe(key string, h feed.Handler) (func(), error) {
	f.tr.add("subscribe " + key)
	return f.Notifier.Subscribe(key, h)
}

func TestOpenFollowsBeforeReading(t *testing.T) {
	bus := feed.NewBus()
	defer bus.Close()
	tr := &trace{}

	open(t, tracedSlots{repos.NewMemorySlots(), tr}, tracedFeed{bus, tr})

	for _, key := range []string{services.InventorySlot, services.FinancingSlot} {
		sub := slices.Index(tr.calls, "subscribe "+key)
		get := slices.Index(tr.calls, "get "+key)
		if sub < 0 || get < 0 || sub > get {
			t.Fatalf("%s: subscribe must precede the first read, calls %v", key, tr.calls)
		}
	}
}

func TestSessionSharedAcrossContexts(t *testing.T) {
	slots := repos.NewMemorySlots()
	bus := feed.NewBus()
	defer bus.Close()

	a := open(t, slots, bus)
	if _, _, err := a.Gate.Login(context.Background(), "admin@goldengate.com", "1234"); err != nil {
		t.Fatal(err)
	}

	b := open(t, slots, bus)
	if a.Origin == b.Origin {
		t.Fatal("contexts must have distinct origins")
	}
	if s := b.Gate.Current(); s == nil || s.Role != domain.RoleAdmin {
		t.Fatalf("second context did not restore the session: %+v", s)
	}
}

func TestChangesReachOtherContexts(t *testing.T) {
	slots := repos.NewMemorySlots()
	bus := feed.NewBus()
	defer bus.Close()
	ctx := context.Background()

	a := open(t, slots, bus)
	b := open(t, slots, bus)

	rec, err := a.Financing.Create(ctx, services.FinancingFields{
		Customer: "Lucía Torres", Item: "Pulsera", TotalPrice: 1000, Paid: 0,
		DueDate: "2024-12-01", Status: domain.StatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		_, ok := b.Financing.Get(rec.ID)
		return ok
	})

	if _, err := b.Inventory.Delete(ctx, "inv-005"); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		_, ok := a.Inventory.Get("inv-005")
		return !ok
	})

	if got := b.Dashboard.Summary().InventoryItems; got != 4 {
		t.Fatalf("dashboard out of date: %d items", got)
	}
}

func TestCloseStopsFollowing(t *testing.T) {
	slots := repos.NewMemorySlots()
	bus := feed.NewBus()
	defer bus.Close()
	ctx := context.Background()

	a := open(t, slots, bus)
	b := open(t, slots, bus)
	b.Close()

	if _, err := a.Inventory.Delete(ctx, "inv-005"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok := b.Inventory.Get("inv-005"); !ok {
		t.Fatal("closed context still follows changes")
	}
}

func TestRedisBackedContexts(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	slots := repos.NewRedisSlotRepo(rdb, "gg")
	n := feed.NewRedis(rdb, "gg", nil)
	defer n.Close()
	ctx := context.Background()

	a := open(t, slots, n)
	b := open(t, slots, n)

	if _, err := a.Financing.Delete(ctx, "fin-003"); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		_, ok := b.Financing.Get("fin-003")
		return !ok
	})
	if raw, err := mr.Get("gg:" + services.FinancingSlot); err != nil || raw == "" {
		t.Fatalf("financing not persisted in redis: %v", err)
	}
}
