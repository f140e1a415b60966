package family

import (
	"slices"
	"strings"
)

// Gender is the recorded gender of a member. It only drives display glyphs
// and the root representative policy.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

// ParseGender normalizes a raw gender string. Matching is case-insensitive;
// anything unrecognised (including the empty string) becomes GenderUnknown.
func ParseGender(s string) Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MALE", "M":
		return GenderMale
	case "FEMALE", "F":
		return GenderFemale
	case "OTHER", "O":
		return GenderOther
	default:
		return GenderUnknown
	}
}

// Normalized returns g if it is one of the known genders, else GenderUnknown.
func (g Gender) Normalized() Gender { return ParseGender(string(g)) }

// IsMale reports whether g is GenderMale after normalization.
func (g Gender) IsMale() bool { return g.Normalized() == GenderMale }

// Stub is a shallow reference to another member as stored on a relationship
// list. Only ID is required; the remaining fields are informational.
type Stub struct {
	ID           string   `json:"id" toml:"id" bson:"id" dynamodbav:"id" validate:"required"`
	Name         string   `json:"name" toml:"name" bson:"name" dynamodbav:"name"`
	Gender       Gender   `json:"gender,omitempty" toml:"gender" bson:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Status       string   `json:"status,omitempty" toml:"status" bson:"status,omitempty" dynamodbav:"status,omitempty"`
	Color        string   `json:"color,omitempty" toml:"color" bson:"color,omitempty" dynamodbav:"color,omitempty"`
	ParentColors []string `json:"parentColors,omitempty" toml:"parent_colors" bson:"parentColors,omitempty" dynamodbav:"parentColors,omitempty"`
}

// Member is the working record for one person.
//
// Generation is recomputed by every tree build; values supplied on input are
// only used for ordering before that happens. Color is assigned once and then
// kept, while ParentColors is recomputed whenever colors are (re)assigned.
type Member struct {
	ID           string         `json:"id" toml:"id" bson:"_id" dynamodbav:"id" validate:"required"`
	Name         string         `json:"name" toml:"name" bson:"name" dynamodbav:"name"`
	Gender       Gender         `json:"gender,omitempty" toml:"gender" bson:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Status       string         `json:"status,omitempty" toml:"status" bson:"status,omitempty" dynamodbav:"status,omitempty"`
	Parents      []Stub         `json:"parents,omitempty" toml:"parents" bson:"parents,omitempty" dynamodbav:"parents,omitempty" validate:"dive"`
	Children     []Stub         `json:"children,omitempty" toml:"children" bson:"children,omitempty" dynamodbav:"children,omitempty" validate:"dive"`
	Spouses      []Stub         `json:"spouses,omitempty" toml:"spouses" bson:"spouses,omitempty" dynamodbav:"spouses,omitempty" validate:"dive"`
	Generation   int            `json:"generation" toml:"generation" bson:"generation" dynamodbav:"generation"`
	Color        string         `json:"color,omitempty" toml:"color" bson:"color,omitempty" dynamodbav:"color,omitempty" validate:"omitempty,hexcolor"`
	ParentColors []string       `json:"parentColors,omitempty" toml:"parent_colors" bson:"parentColors,omitempty" dynamodbav:"parentColors,omitempty"`
	Info         map[string]any `json:"info,omitempty" toml:"info" bson:"info,omitempty" dynamodbav:"info,omitempty"`
}

// Stub returns the shallow reference other members use to point at m.
func (m *Member) Stub() Stub {
	return Stub{
		ID:           m.ID,
		Name:         m.Name,
		Gender:       m.Gender,
		Status:       m.Status,
		Color:        m.Color,
		ParentColors: slices.Clone(m.ParentColors),
	}
}

// HasSpouse reports whether m lists id as a spouse.
func (m *Member) HasSpouse(id string) bool { return containsID(m.Spouses, id) }

// HasParent reports whether m lists id as a parent.
func (m *Member) HasParent(id string) bool { return containsID(m.Parents, id) }

// HasChild reports whether m lists id as a child.
func (m *Member) HasChild(id string) bool { return containsID(m.Children, id) }

// Clone returns a deep copy of m. Info values are copied shallowly.
func (m *Member) Clone() *Member {
	c := *m
	c.Parents = cloneStubs(m.Parents)
	c.Children = cloneStubs(m.Children)
	c.Spouses = cloneStubs(m.Spouses)
	c.ParentColors = slices.Clone(m.ParentColors)
	if m.Info != nil {
		c.Info = make(map[string]any, len(m.Info))
		for k, v := range m.Info {
			c.Info[k] = v
		}
	}
	return &c
}

func containsID(stubs []Stub, id string) bool {
	return slices.ContainsFunc(stubs, func(s Stub) bool { return s.ID == id })
}

func cloneStubs(stubs []Stub) []Stub {
	if stubs == nil {
		return nil
	}
	out := make([]Stub, len(stubs))
	for i, s := range stubs {
		out[i] = s
		out[i].ParentColors = slices.Clone(s.ParentColors)
	}
	return out
}
