package hub

import (
	"testing"
)

func TestHubQueueOverflowCounted(t *testing.T) {
	h := New("test") // no Run, so the queue fills at its capacity

	for i := 0; i < 300; i++ {
		h.Broadcast([]byte("{}"))
	}

	st := h.Stats()
	if st.Discarded != 44 { // 300 sends into a 256-slot queue
		t.Errorf("Discarded = %d, want 44", st.Discarded)
	}
	if st.Clients != 0 || st.Dropped != 0 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestHubBroadcastJSONError(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected a marshal error for an unencodable value")
	}
}

func TestHubStartsIdle(t *testing.T) {
	h := New("test")
	if h.IsRunning() {
		t.Error("hub reports running before Run")
	}
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", h.ClientCount())
	}
}
