package family

import "slices"

// Membership roles. Stores may carry other values; roles are not interpreted
// by tree computations.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleViewer = "VIEWER"
)

// Membership enrolls a member in a family with a role.
type Membership struct {
	Member *Member `json:"member" toml:"member" bson:"member" dynamodbav:"member" validate:"required"`
	Role   string  `json:"role,omitempty" toml:"role" bson:"role,omitempty" dynamodbav:"role,omitempty"`
}

// Family is a named group of members. ParentID links a sub-family branch to
// the family it was split from.
type Family struct {
	ID          string       `json:"id" toml:"id" bson:"_id" dynamodbav:"id" validate:"required"`
	Name        string       `json:"name" toml:"name" bson:"name" dynamodbav:"name"`
	ParentID    string       `json:"parentId,omitempty" toml:"parent_id" bson:"parentId,omitempty" dynamodbav:"parentId,omitempty"`
	Memberships []Membership `json:"memberships" toml:"memberships" bson:"memberships" dynamodbav:"memberships" validate:"dive"`
}

// Members returns the enrolled members in membership order, skipping nil
// entries.
func (f *Family) Members() []*Member {
	out := make([]*Member, 0, len(f.Memberships))
	for _, ms := range f.Memberships {
		if ms.Member != nil {
			out = append(out, ms.Member)
		}
	}
	return out
}

// Role returns the role of memberID in f and whether the member is enrolled.
func (f *Family) Role(memberID string) (string, bool) {
	for _, ms := range f.Memberships {
		if ms.Member != nil && ms.Member.ID == memberID {
			return ms.Role, true
		}
	}
	return "", false
}

// IsMember reports whether memberID is enrolled in f.
func (f *Family) IsMember(memberID string) bool {
	_, ok := f.Role(memberID)
	return ok
}

// Clone returns a deep copy of f.
func (f *Family) Clone() *Family {
	c := *f
	c.Memberships = slices.Clone(f.Memberships)
	for i, ms := range c.Memberships {
		if ms.Member != nil {
			c.Memberships[i].Member = ms.Member.Clone()
		}
	}
	return &c
}

// Branches returns the families in all whose ParentID is f.ID, in input order.
func (f *Family) Branches(all []*Family) []*Family {
	var out []*Family
	for _, other := range all {
		if other != nil && other.ParentID == f.ID && other.ID != f.ID {
			out = append(out, other)
		}
	}
	return out
}
