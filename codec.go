package itree

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes the index transparently as its flat record array,
// including the max-end augmentation of every record, so no header beyond
// the array length is needed and a decoded index reproduces the records
// verbatim.
func (ix *Index[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(ix.records)
}

// UnmarshalJSON decodes a record array produced by MarshalJSON. The
// augmentation is restored as stored, never recomputed, so decoding
// records that did not come from a prior build has NewUnchecked semantics:
// safe, but queries silently degrade.
func (ix *Index[K, V]) UnmarshalJSON(data []byte) error {
	var records []Record[K, V]
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode interval index: %w", err)
	}

	ix.records = records

	return nil
}
