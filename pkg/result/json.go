package result

import (
	"encoding/json"
	"io"
)

// WriteJSON writes findings to w as an indented JSON array, the format
// verify-batch's --json flag produces.
func WriteJSON(w io.Writer, findings []Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// ReadJSON reads a findings array previously written by WriteJSON.
func ReadJSON(r io.Reader) ([]Finding, error) {
	var findings []Finding
	if err := json.NewDecoder(r).Decode(&findings); err != nil {
		return nil, err
	}
	return findings, nil
}
