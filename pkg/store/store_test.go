package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

func fam(id string, memberIDs ...string) *family.Family {
	f := &family.Family{ID: id, Name: id}
	for _, m := range memberIDs {
		f.Memberships = append(f.Memberships, family.Membership{
			Member: &family.Member{ID: m, Name: m},
			Role:   family.RoleMember,
		})
	}
	return f
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(fam("smith", "john"), nil, fam("doe", "jane"))

	f, err := s.Family(ctx, "doe")
	require.NoError(t, err)
	assert.Equal(t, "doe", f.ID)

	_, err = s.Family(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFamilyNotFound))

	all, err := s.Families(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "smith", all[0].ID)
	assert.Equal(t, "doe", all[1].ID)

	s.Put(fam("smith", "john", "jane"))
	all, _ = s.Families(ctx)
	require.Len(t, all, 2, "Put with an existing id replaces")
	assert.Len(t, all[0].Memberships, 2)
}

func TestMemory_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().Families(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory(fam("smith", "john", "jane"), fam("doe", "jane"), fam("roe", "rick"))

	t.Run("member", func(t *testing.T) {
		f, err := Scoped(inner, "john").Family(ctx, "smith")
		require.NoError(t, err)
		assert.Equal(t, "smith", f.ID)
	})

	t.Run("not a member", func(t *testing.T) {
		_, err := Scoped(inner, "john").Family(ctx, "doe")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeFamilyNotFound, errors.GetCode(err))
	})

	t.Run("denied and missing look alike", func(t *testing.T) {
		_, denied := Scoped(inner, "john").Family(ctx, "roe")
		_, missing := Scoped(inner, "john").Family(ctx, "nope")
		assert.Equal(t, errors.GetCode(denied), errors.GetCode(missing))
	})

	t.Run("list", func(t *testing.T) {
		all, err := Scoped(inner, "jane").Families(ctx)
		require.NoError(t, err)
		var ids []string
		for _, f := range all {
			ids = append(ids, f.ID)
		}
		assert.Equal(t, []string{"smith", "doe"}, ids)
	})

	t.Run("empty viewer", func(t *testing.T) {
		assert.Same(t, inner, Scoped(inner, "").(*Memory))
	})
}

const snapshotJSON = `{"families": [
  {"id": "smith", "name": "Smith", "memberships": [
    {"role": "ADMIN", "member": {"id": "john", "name": "John", "gender": "m"}},
    {"member": {"id": "jane", "name": "Jane", "gender": "f"}}
  ]}
]}`

func TestFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "families.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	defer s.Close()

	f, err := s.Family(ctx, "smith")
	require.NoError(t, err)
	assert.Equal(t, "Smith", f.Name)
	assert.Equal(t, family.GenderMale, f.Members()[0].Gender)

	// Rewriting the snapshot is picked up.
	updated := `{"families": [{"id": "doe", "name": "Doe", "memberships": []}]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	all, err := s.Families(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "doe", all[0].ID)
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))

	_, err = OpenFile("")
	assert.Equal(t, errors.ErrCodeInvalidPath, errors.GetCode(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = OpenFile(bad)
	assert.Equal(t, errors.ErrCodeInvalidSnapshot, errors.GetCode(err))
}

type countingStore struct {
	Store
	calls int
}

func (c *countingStore) Family(ctx context.Context, id string) (*family.Family, error) {
	c.calls++
	return c.Store.Family(ctx, id)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	inner := &countingStore{Store: NewMemory(fam("smith", "john"))}
	s := Cached(inner, fc, CacheOptions{Source: "memory"})

	for range 3 {
		f, err := s.Family(ctx, "smith")
		require.NoError(t, err)
		assert.Equal(t, "john", f.Members()[0].ID)
	}
	assert.Equal(t, 1, inner.calls, "later loads are served from the cache")

	_, err = s.Family(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestCached_NullCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemory(fam("smith"))}
	s := Cached(inner, cache.NewNullCache(), CacheOptions{})

	for range 2 {
		_, err := s.Family(ctx, "smith")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}
