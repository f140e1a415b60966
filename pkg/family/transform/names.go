package transform

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/kintree/pkg/family"
)

// Collator orders member names with locale-aware rules.
//
// A Collator is not safe for concurrent use; create one per build.
type Collator struct {
	c *collate.Collator
}

// NewCollator returns a collator for the given language. Use language.Und for
// the root collation order.
func NewCollator(tag language.Tag) *Collator {
	return &Collator{c: collate.New(tag)}
}

// ParseCollator returns a collator for a BCP 47 locale string such as "de" or
// "sv-SE". An empty or malformed locale yields the root collation order.
func ParseCollator(locale string) *Collator {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.Und
	}
	return NewCollator(tag)
}

// Compare returns -1, 0 or +1 comparing a and b. Empty names sort first.
func (c *Collator) Compare(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	if r := c.c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// CompareMembers orders by name, then by id so distinct members never tie.
func (c *Collator) CompareMembers(a, b *family.Member) int {
	if r := c.Compare(a.Name, b.Name); r != 0 {
		return r
	}
	return strings.Compare(a.ID, b.ID)
}

func collatorOrDefault(c *Collator) *Collator {
	if c == nil {
		return NewCollator(language.Und)
	}
	return c
}
