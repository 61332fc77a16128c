package opsfeed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Shutdown()

	a := &Connection{Send: make(chan []byte, 4)}
	b := &Connection{Send: make(chan []byte, 4)}
	h.Register(a)
	h.Register(b)

	h.Publish(map[string]string{"status": "completed"})

	for _, c := range []*Connection{a, b} {
		select {
		case data := <-c.Send:
			var got map[string]string
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("bad payload: %v", err)
			}
			if got["status"] != "completed" {
				t.Errorf("unexpected event: %v", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Shutdown()

	c := &Connection{Send: make(chan []byte, 4)}
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}

	if h.Count() != 0 {
		t.Errorf("expected 0 connections, got %d", h.Count())
	}
}

func TestHubShutdownUnblocksRegistration(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Connection{Send: make(chan []byte, 4)}
	h.Register(c)

	h.Shutdown()

	// With the Run loop gone, both calls must return instead of blocking
	// on the unbuffered channels.
	finished := make(chan struct{})
	go func() {
		h.Unregister(c)
		h.Register(&Connection{Send: make(chan []byte, 4)})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("register/unregister blocked after shutdown")
	}
}
