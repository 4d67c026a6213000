package debug

import (
	"strings"
	"testing"

	"github.com/emtee40/retrowars/internal/transport"
)

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add("net", "connected")
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	if m.Entries[0].Kind != "net" {
		t.Errorf("expected kind 'net', got %q", m.Entries[0].Kind)
	}
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add("net", "msg")
	}
	if len(m.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(m.Entries))
	}
}

func TestScrollUpDown(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Add("net", "msg")
	}
	if m.Offset != 0 {
		t.Fatal("expected offset 0 after adds")
	}

	m.ScrollUp(5)
	if m.Offset != 5 {
		t.Errorf("expected offset 5, got %d", m.Offset)
	}

	m.ScrollDown(3)
	if m.Offset != 2 {
		t.Errorf("expected offset 2, got %d", m.Offset)
	}

	m.ScrollDown(10) // shouldn't go below 0
	if m.Offset != 0 {
		t.Errorf("expected offset 0, got %d", m.Offset)
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Add("net", "msg")
	}
	m.ScrollUp(5)
	m.Add("net", "new")
	if m.Offset != 0 {
		t.Error("adding entry should reset scroll to 0")
	}
}

func TestViewShowsFrameCounters(t *testing.T) {
	m := New()
	m.SetNetStats(transport.Stats{FramesIn: 42, FramesOut: 7, SendsDropped: 1})
	v := m.View(80, 20)
	if !strings.Contains(v, "in 42") {
		t.Error("view should contain inbound frame count")
	}
	if !strings.Contains(v, "out 7") {
		t.Error("view should contain outbound frame count")
	}
	if !strings.Contains(v, "dropped 1") {
		t.Error("view should contain dropped count")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add("net", "connected")
	m.Add("err", "timeout")
	v := m.View(80, 20)
	if !strings.Contains(v, "connected") {
		t.Error("view should contain 'connected'")
	}
	if !strings.Contains(v, "timeout") {
		t.Error("view should contain 'timeout'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
