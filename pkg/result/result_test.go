package result

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestTableSummaryAndOrdering(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Finding{Name: "b", Match: false, Mismatch: "diff"})
	tbl.Add(Finding{Name: "a", Match: true})

	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	findings := tbl.Findings()
	if findings[0].Name != "a" || findings[1].Name != "b" {
		t.Fatalf("Findings() not sorted by name: %+v", findings)
	}
	matched, mismatched := tbl.Summary()
	if matched != 1 || mismatched != 1 {
		t.Fatalf("Summary = %d/%d, want 1/1", matched, mismatched)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	findings := []Finding{
		{Name: "x", Match: true, Bytes: 3},
		{Name: "y", Match: false, Mismatch: "boom"},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, findings); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(got) != 2 || got[0].Name != "x" || got[1].Mismatch != "boom" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ckpt.gob")

	ckpt := &Checkpoint{
		Findings:  []Finding{{Name: "a", Match: true}},
		Completed: 1,
		Total:     5,
	}
	if err := SaveCheckpoint(path, ckpt); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if loaded.Completed != 1 || loaded.Total != 5 || len(loaded.Findings) != 1 {
		t.Fatalf("loaded checkpoint mismatch: %+v", loaded)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("checkpoint file missing: %v", err)
	}
}
