package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
)

func TestNewHashState(t *testing.T) {
	hs := NewHashState()

	if hs.SchemaVersion != SchemaVersion {
		t.Errorf("expected SchemaVersion=%d, got %d", SchemaVersion, hs.SchemaVersion)
	}
	if hs.Entries == nil {
		t.Error("expected Entries to be initialized")
	}
}

func TestEntry_Matches(t *testing.T) {
	mtime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{Size: 10, MTime: mtime, Digest: digest.FromString("x")}

	tests := []struct {
		name  string
		size  int64
		mtime time.Time
		want  bool
	}{
		{"same", 10, mtime, true},
		{"same instant other zone", 10, mtime.In(time.FixedZone("X", 3600)), true},
		{"size changed", 11, mtime, false},
		{"touched", 10, mtime.Add(time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Matches(tt.size, tt.mtime); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashState_JSONFieldNames(t *testing.T) {
	hs := NewHashState()
	hs.Entries["data/raw.csv"] = Entry{Size: 3, Digest: digest.FromString("abc")}

	data, err := json.Marshal(hs)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"schemaVersion", "entries"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
}
