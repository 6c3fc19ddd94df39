package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterDeliverUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10), UserID: "m1"}
	other := &Client{Send: make(chan []byte, 10), UserID: "m2"}
	hub.register <- client
	hub.register <- other

	hub.Deliver("m1", []byte(`{"title":"hello"}`))

	select {
	case got := <-client.Send:
		if string(got) != `{"title":"hello"}` {
			t.Fatalf("unexpected payload %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}
	select {
	case got := <-other.Send:
		t.Fatalf("m2 should not receive %s", got)
	default:
	}

	hub.unregister <- client
	if _, ok := <-client.Send; ok {
		t.Fatal("send channel should be closed after unregister")
	}
	if n := hub.Online("m1"); n != 0 {
		t.Fatalf("expected m1 offline, got %d", n)
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	client := &Client{Send: make(chan []byte, 1), UserID: "m1"}
	hub.Register(client)
	hub.Stop()
	hub.Stop()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.Send; ok {
		t.Fatal("send channel should be closed on stop")
	}
	hub.Deliver("m1", []byte("late"))
}

func TestLocalFansOutPerRecipient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 1), UserID: "a"}
	b := &Client{Send: make(chan []byte, 1), UserID: "b"}
	hub.Register(a)
	hub.Register(b)

	meta := map[string]string{"itinerary_id": "it-1", "day_number": "2"}
	if err := (Local{Hub: hub}).Send(context.Background(), []string{"a", "b"}, "Stop added", "Pho added", meta); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var n Notification
			if err := json.Unmarshal(raw, &n); err != nil {
				t.Fatal(err)
			}
			if n.RecipientID != c.UserID || n.Type != TypeJourneyUpdate || n.Metadata["itinerary_id"] != "it-1" {
				t.Fatalf("unexpected notification %+v", n)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for %s", c.UserID)
		}
	}
}
