package result

import (
	"encoding/gob"
	"os"
)

// Checkpoint holds state for resuming a batch verification run.
type Checkpoint struct {
	Findings  []Finding
	Completed int // number of programs fully checked
	Total     int
}

func init() {
	gob.Register(Finding{})
}

// SaveCheckpoint writes batch-run state to a file.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint loads batch-run state from a file.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
