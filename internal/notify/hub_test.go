package notify

import "testing"

func TestHub(t *testing.T) {
	h := NewHub(2)

	events, cancel := h.Subscribe("g1")
	other, cancelOther := h.Subscribe("g2")
	defer cancelOther()

	h.Publish(Event{Type: EventRequestSubmitted, GameID: "g1", RequestID: "r1"})

	select {
	case e := <-events:
		if e.RequestID != "r1" {
			t.Errorf("RequestID = %s, want r1", e.RequestID)
		}
	default:
		t.Fatal("expected event for g1 subscriber")
	}

	select {
	case e := <-other:
		t.Errorf("g2 subscriber received %+v", e)
	default:
	}

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			h.Publish(Event{Type: EventCheckoutChanged, GameID: "g1"})
		}
		if len(events) != 2 {
			t.Errorf("buffered events = %d, want 2", len(events))
		}
	})

	t.Run("cancel closes and unregisters", func(t *testing.T) {
		cancel()
		cancel()
		if n := h.SubscriberCount("g1"); n != 0 {
			t.Errorf("SubscriberCount = %d, want 0", n)
		}
		for range events {
		}
		h.Publish(Event{Type: EventGameClosed, GameID: "g1"})
	})
}
