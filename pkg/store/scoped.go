package store

import (
	"context"

	"github.com/matzehuels/kintree/pkg/family"
)

// scoped limits a Store to the families a viewer is enrolled in.
type scoped struct {
	inner  Store
	viewer string
}

// Scoped returns a Store that only serves families in which viewerID holds
// a membership. Other families are reported as not found. An empty viewerID
// returns inner unchanged.
func Scoped(inner Store, viewerID string) Store {
	if viewerID == "" {
		return inner
	}
	return &scoped{inner: inner, viewer: viewerID}
}

func (s *scoped) Family(ctx context.Context, id string) (*family.Family, error) {
	f, err := s.inner.Family(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsMember(s.viewer) {
		return nil, NotFound(id)
	}
	return f, nil
}

func (s *scoped) Families(ctx context.Context) ([]*family.Family, error) {
	all, err := s.inner.Families(ctx)
	if err != nil {
		return nil, err
	}
	var out []*family.Family
	for _, f := range all {
		if f.IsMember(s.viewer) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *scoped) Close() error { return s.inner.Close() }
