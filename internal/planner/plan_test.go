package planner

import (
	"testing"

	"github.com/danieljhkim/dsync/internal/hash"
	"github.com/danieljhkim/dsync/internal/targets"
)

func TestObjects(t *testing.T) {
	a := hash.FromBytes([]byte("a"))
	b := hash.FromBytes([]byte("b"))

	outputs := []targets.Output{
		{Path: "x/a.csv", Digest: a, Size: 1},
		{Path: "b.csv", Digest: b, Size: 2},
		{Path: "y/a-copy.csv", Digest: a, Size: 1},
		{Path: "x/a.csv", Digest: a, Size: 1},
	}

	objects := Objects(outputs)
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}
	if objects[0].Digest != a || objects[1].Digest != b {
		t.Errorf("objects not in first-seen order: %v", objects)
	}
	if len(objects[0].Paths) != 2 || objects[0].Paths[0] != "x/a.csv" || objects[0].Paths[1] != "y/a-copy.csv" {
		t.Errorf("unexpected paths for shared object: %v", objects[0].Paths)
	}
}

func TestObject_Label(t *testing.T) {
	d := hash.FromBytes([]byte("a"))

	tests := []struct {
		name          string
		obj           Object
		showChecksums bool
		want          string
	}{
		{name: "path", obj: Object{Digest: d, Paths: []string{"data.csv"}}, want: "data.csv"},
		{name: "checksum", obj: Object{Digest: d, Paths: []string{"data.csv"}}, showChecksums: true, want: d.String()},
		{name: "no paths", obj: Object{Digest: d}, want: d.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.Label(tt.showChecksums); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTransferPlan_Bytes(t *testing.T) {
	plan := NewTransferPlan()
	plan.Transfers = append(plan.Transfers, Object{Size: 10}, Object{Size: 32})
	plan.Missing = append(plan.Missing, Object{Size: 1000})

	if got := plan.Bytes(); got != 42 {
		t.Errorf("expected 42 bytes, got %d", got)
	}
}

func TestCheckoutPlan_HasConflicts(t *testing.T) {
	tests := []struct {
		name      string
		conflicts []Conflict
		wantHas   bool
	}{
		{
			name:      "no conflicts",
			conflicts: []Conflict{},
			wantHas:   false,
		},
		{
			name: "has conflicts",
			conflicts: []Conflict{
				{Path: "data.csv", Reason: "modified"},
			},
			wantHas: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewCheckoutPlan()
			for _, c := range tt.conflicts {
				plan.AddConflict(c)
			}
			if got := plan.HasConflicts(); got != tt.wantHas {
				t.Errorf("HasConflicts() = %v, want %v", got, tt.wantHas)
			}
			if len(plan.ConflictPaths()) != len(tt.conflicts) {
				t.Errorf("expected %d conflict paths, got %v", len(tt.conflicts), plan.ConflictPaths())
			}
		})
	}
}
