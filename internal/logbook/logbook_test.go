package logbook

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func TestLogbookRecordsJSONLines(t *testing.T) {
	lb, err := New(filepath.Join(t.TempDir(), "logs", "slcsp.log"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lb.now = func() time.Time { return fixed }

	lb.Info("loaded %d plans", 3)
	lb.Record(LevelWarn, "  blank rows  ", Fields{"blank": 2})
	lb.Error("write failed")

	lines := lb.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", entry["level"])
	}
	if entry["message"] != "blank rows" {
		t.Fatalf("expected trimmed message, got %v", entry["message"])
	}
	if entry["blank"] != float64(2) {
		t.Fatalf("expected blank field, got %v", entry["blank"])
	}
	if entry["time"] != fixed.Format(time.RFC3339) {
		t.Fatalf("unexpected time %v", entry["time"])
	}
}

func TestLogbookTailLimits(t *testing.T) {
	lb, err := New(filepath.Join(t.TempDir(), "slcsp.log"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		lb.Info("entry %d", i)
	}
	lines := lb.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatal(err)
	}
	if last["message"] != "entry 4" {
		t.Fatalf("expected most recent entry last, got %v", last["message"])
	}
	if lb.Tail(0) != nil {
		t.Fatalf("expected nil for non-positive limit")
	}
}

func TestNilLogbookIsNoop(t *testing.T) {
	var lb *Logbook
	lb.Info("ignored")
	if lb.Path() != "" || lb.Tail(1) != nil {
		t.Fatalf("nil logbook should be inert")
	}
}
