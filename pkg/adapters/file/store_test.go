package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/adapters/file"
	"github.com/njchilds90/termwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSessionStoreContract(t, store)
}

func TestFileStore_ReadableDocument(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	s := termwise.NewSession([]string{"x"})
	s.Solution = map[string]termwise.Rational{"x": termwise.R(-4)}
	s.Add(termwise.MustParse("1/2x - 3"), termwise.N(-5))
	require.NoError(t, store.Save(context.Background(), s))

	data, err := os.ReadFile(filepath.Join(dir, s.ID+".yaml"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "next_id: 2")
	assert.Contains(t, text, `x: "-4"`)
	assert.Contains(t, text, "type: sub")

	loaded, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, s.Equations[0].Equal(loaded.Equations[0]))
	assert.True(t, loaded.Solution["x"].Equal(termwise.R(-4)))
}

func TestFileStore_ListSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-abc-1.yaml"), []byte("{}"), 0o644))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)

	missing, err := file.New(filepath.Join(dir, "nope")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "sessions")
	store := file.New(dir)
	ctx := context.Background()

	outside := filepath.Join(root, "x.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("id: x\n"), 0o644))

	for _, id := range []string{"", "../x", "a/b", `a\b`, "..", "../../etc/passwd"} {
		t.Run(id, func(t *testing.T) {
			_, err := store.Load(ctx, id)
			assert.ErrorIs(t, err, ports.ErrInvalidSessionID)

			s := termwise.NewSession([]string{"x"})
			s.ID = id
			assert.ErrorIs(t, store.Save(ctx, s), ports.ErrInvalidSessionID)
			assert.ErrorIs(t, store.Delete(ctx, id), ports.ErrInvalidSessionID)
		})
	}

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the store survives")
}
