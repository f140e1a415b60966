package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/kintree/pkg/outline"
)

// WriteRows encodes outline rows as an indented JSON array.
func WriteRows(rows []outline.Row, w io.Writer) error {
	if rows == nil {
		rows = []outline.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}

// ReadRows decodes a JSON array of outline rows.
func ReadRows(r io.Reader) ([]outline.Row, error) {
	var rows []outline.Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
