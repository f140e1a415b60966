package outline

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

// Section headers emitted by the driver.
const (
	HeaderNoHierarchy = "=== All Family Members (No Clear Hierarchy) ==="
	HeaderAdditional  = "=== Additional Family Members ==="
)

// MemberRef identifies a member shown on a row.
type MemberRef struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Gender       string   `json:"gender"`
	Color        string   `json:"color"`
	ParentColors []string `json:"parentColors"`
}

// Row is one flattened line of the outline.
//
// Column is the generation level the row is indented to. Separator rows have
// an empty Value and header rows carry no members.
type Row struct {
	Column    int         `json:"column"`
	Value     string      `json:"value"`
	MemberIDs []MemberRef `json:"memberIds"`
}

// IsSeparator reports whether r is a blank row between root subtrees.
func (r Row) IsSeparator() bool { return r.Value == "" && len(r.MemberIDs) == 0 }

// IsHeader reports whether r is a section header.
func (r Row) IsHeader() bool { return r.Value == HeaderNoHierarchy || r.Value == HeaderAdditional }

// refOf builds the reference for m. ParentColors is never nil so the JSON
// contract always carries an array.
func refOf(m *family.Member) MemberRef {
	pc := slices.Clone(m.ParentColors)
	if pc == nil {
		pc = []string{}
	}
	return MemberRef{
		ID:           m.ID,
		Name:         m.Name,
		Gender:       string(m.Gender.Normalized()),
		Color:        m.Color,
		ParentColors: pc,
	}
}

// MemberIDs returns the ids of every member placed in rows, in row order.
func MemberIDs(rows []Row) []string {
	var ids []string
	for _, r := range rows {
		for _, ref := range r.MemberIDs {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// MaxColumn returns the deepest column used by rows, or 0 when rows is empty.
func MaxColumn(rows []Row) int {
	maxCol := 0
	for _, r := range rows {
		maxCol = max(maxCol, r.Column)
	}
	return maxCol
}
