package bus

import (
	"errors"
	"sync"
	"testing"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("segment.appended", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("segment.appended", "window", 1, nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err = b.Publish(NewEvent("segment.evicted", "window", 2, nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestWildcardAndOrder(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a1"); return nil })
	_, _ = b.Subscribe(Wildcard, func(e Event) error { order = append(order, "*"+e.Type()); return nil })
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a2"); return nil })

	_ = b.Publish(NewEvent("a", "src", nil, nil))
	_ = b.Publish(NewEvent("b", "src", nil, nil))

	want := []string{"a1", "a2", "*a", "*b"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("x", "src", nil, nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	_ = b.Publish(NewEvent("x", "src", nil, nil))
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.PublishBatch(NewEvent("x", "src", nil, nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestObserverMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	_ = b.Publish(NewEvent("x", "src", nil, nil))
	m := b.GetMetrics()
	if m.Published != 1 || m.DeliveredHandlers != 2 || m.SubscribersActive != 2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 2 {
		t.Fatalf("observer saw %d/%d", obs.publishCount, obs.deliveredCount)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("x", "src", nil, nil))
	if b.GetMetrics().Published != 1 {
		t.Fatal("metrics collected without observers")
	}
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	if _, err := b.Subscribe("", func(Event) error { return nil }); err == nil {
		t.Fatal("expected error for empty type")
	}
	if _, err := b.Subscribe("x", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
