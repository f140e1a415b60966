// Package sheet writes outlines as CSV spreadsheets.
//
// The sheet has one column per generation, generation_0 through the deepest
// column used, followed by a members column. Each row's value sits in the
// column of its generation, so spreadsheet tools show the outline indented.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/kintree/pkg/outline"
)

// MembersColumn is the name of the trailing column listing member ids.
const MembersColumn = "members"

// Options configures Write.
type Options struct {
	// Plain strips color markers from values.
	Plain bool
	// SkipSeparators drops the blank rows between root subtrees.
	SkipSeparators bool
	// IDSeparator joins the member ids of a row. Empty means ";".
	IDSeparator string
}

// Header returns the column names for a sheet whose deepest column is maxCol.
func Header(maxCol int) []string {
	h := make([]string, 0, maxCol+2)
	for i := 0; i <= maxCol; i++ {
		h = append(h, fmt.Sprintf("generation_%d", i))
	}
	return append(h, MembersColumn)
}

// Records converts rows to CSV records, header first.
func Records(rows []outline.Row, opts Options) [][]string {
	sep := opts.IDSeparator
	if sep == "" {
		sep = ";"
	}
	maxCol := outline.MaxColumn(rows)
	out := [][]string{Header(maxCol)}

	for _, r := range rows {
		if r.IsSeparator() && opts.SkipSeparators {
			continue
		}
		rec := make([]string, maxCol+2)
		value := r.Value
		if opts.Plain {
			value = outline.PlainValue(r)
		}
		rec[max(r.Column, 0)] = value

		ids := make([]string, len(r.MemberIDs))
		for i, ref := range r.MemberIDs {
			ids[i] = ref.ID
		}
		rec[maxCol+1] = strings.Join(ids, sep)
		out = append(out, rec)
	}
	return out
}

// Write writes rows as CSV to w.
func Write(w io.Writer, rows []outline.Row, opts Options) error {
	writer := csv.NewWriter(w)
	for _, rec := range Records(rows, opts) {
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
