package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBrokerPublishToSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("player-1")
	defer b.Unsubscribe("player-1", ch)

	b.Publish("player-1", ProgressEvent{
		Type:          "waypoint_completed",
		TrailID:       "trail-1",
		WaypointID:    "wp-2",
		SequenceOrder: 2,
	})

	select {
	case data := <-ch:
		var ev ProgressEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshaling event: %v", err)
		}
		if ev.Type != "waypoint_completed" || ev.WaypointID != "wp-2" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestBrokerIsolatesPlayers(t *testing.T) {
	b := NewBroker()
	mine := b.Subscribe("player-1")
	theirs := b.Subscribe("player-2")
	defer b.Unsubscribe("player-1", mine)
	defer b.Unsubscribe("player-2", theirs)

	b.Publish("player-1", ProgressEvent{Type: "trail_completed", TrailID: "trail-1"})

	if len(mine) != 1 {
		t.Errorf("expected own event delivered, got %d", len(mine))
	}
	if len(theirs) != 0 {
		t.Errorf("expected no cross-player delivery, got %d", len(theirs))
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("player-1")
	defer b.Unsubscribe("player-1", ch)

	// Overflow the buffer; Publish must not block.
	for i := 0; i < 64; i++ {
		b.Publish("player-1", ProgressEvent{Type: "waypoint_completed", SequenceOrder: i})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected a full buffer, got %d of %d", len(ch), cap(ch))
	}
}

func TestEventsRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/events?token=forged", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}
}
