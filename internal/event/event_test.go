package event

import (
	"io"
	"log"
	"testing"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus[string](log.New(io.Discard, "", 0))
	var got []string
	bus.Subscribe(1, func(kind Kind, payload string) { got = append(got, "a:"+payload) })
	bus.Subscribe(1, func(kind Kind, payload string) { got = append(got, "b:"+payload) })
	bus.Subscribe(2, func(kind Kind, payload string) { got = append(got, "other") })

	bus.Publish(1, "x")
	bus.Publish(1, "y")

	want := []string{"a:x", "b:x", "a:y", "b:y"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBusRecoversPanics(t *testing.T) {
	bus := NewBus[int](log.New(io.Discard, "", 0))
	called := false
	bus.Subscribe(0, func(Kind, int) { panic("boom") })
	bus.Subscribe(0, func(Kind, int) { called = true })

	bus.Publish(0, 1)
	if !called {
		t.Fatalf("second handler should run after the first panicked")
	}
}

func TestBusHandlerMaySubscribe(t *testing.T) {
	bus := NewBus[int](nil)
	count := 0
	bus.Subscribe(0, func(Kind, int) {
		count++
		bus.Subscribe(0, func(Kind, int) { count++ })
	})
	bus.Publish(0, 1)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
