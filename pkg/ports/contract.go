package ports

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/njchilds90/termwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	eng := termwise.NewEngine()

	newSession := func(t *testing.T) *termwise.Session {
		t.Helper()
		s, err := termwise.NewGame(rand.New(rand.NewPCG(11, 29)), 2)
		require.NoError(t, err)
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		s := newSession(t)
		_, err := s.ApplyTerm(eng, 1, termwise.OpMul, "2")
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, s.Variables, loaded.Variables)
		assert.Equal(t, s.NextID, loaded.NextID)
		require.Len(t, loaded.Equations, len(s.Equations))
		for i := range s.Equations {
			assert.True(t, s.Equations[i].Equal(loaded.Equations[i]), "equation %d", s.Equations[i].ID)
		}
		require.Len(t, loaded.Solution, len(s.Solution))
		for name, v := range s.Solution {
			assert.True(t, v.Equal(loaded.Solution[name]), name)
		}
	})

	t.Run("Load returns an independent copy", func(t *testing.T) {
		s := newSession(t)
		require.NoError(t, store.Save(ctx, s))

		first, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		require.NoError(t, first.Remove(1))
		first.Variables[0] = "changed"

		second, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, second.Equations, 2)
		assert.Equal(t, "x", second.Variables[0])
	})

	t.Run("Save overwrites", func(t *testing.T) {
		s := newSession(t)
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, s.Remove(2))
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Equations, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-session")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newSession(t)
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, s.ID))

		_, err := store.Load(ctx, s.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, s.ID), "deleting twice")
	})

	t.Run("List", func(t *testing.T) {
		a, b := newSession(t), newSession(t)
		require.NoError(t, store.Save(ctx, a))
		require.NoError(t, store.Save(ctx, b))
		defer func() {
			_ = store.Delete(ctx, a.ID)
			_ = store.Delete(ctx, b.ID)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, a.ID)
		assert.Contains(t, ids, b.ID)
	})
}
