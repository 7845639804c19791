package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-rate-monitor/internal/domain/model"
	"exchange-rate-monitor/internal/domain/ports"
	"exchange-rate-monitor/pkg/logger"
)

func testDoc(t *testing.T) *model.Document {
	t.Helper()
	min, err := model.NewRate("700")
	require.NoError(t, err)
	max, err := model.NewRate("750.25")
	require.NoError(t, err)

	return &model.Document{
		Currencies: []*model.Currency{
			{
				Name: "US Dollar",
				Code: "USD",
				Conditions: map[model.RateType]*model.Threshold{
					model.SpotBuying: {Min: &min, Max: &max},
				},
			},
			{
				Name: "Japanese Yen",
				Code: "JPY",
			},
		},
		Processed: []string{"<first@mail>", "<second@mail>"},
	}
}

func TestGitStore_MissingFileLoadsEmpty(t *testing.T) {
	s := NewGitStore(t.TempDir(), "conditions.yaml", logger.NewLogger("debug"))

	doc, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, doc.Currencies)
	assert.Empty(t, doc.Processed)
}

func TestGitStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug"))
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testDoc(t)))

	reloaded, err := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug")).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testDoc(t), reloaded)
}

func TestGitStore_SaveIsStable(t *testing.T) {
	dir := t.TempDir()
	s := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug"))
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testDoc(t)))
	first, err := os.ReadFile(filepath.Join(dir, "conditions.yaml"))
	require.NoError(t, err)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, doc))
	second, err := os.ReadFile(filepath.Join(dir, "conditions.yaml"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestGitStore_ConflictingEditRejectsSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conditions.yaml")
	s := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug"))
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testDoc(t)))

	_, err = s.Load(ctx)
	require.NoError(t, err)

	// A human edits the file between our Load and Save.
	require.NoError(t, os.WriteFile(path, []byte("currencies: []\n"), 0o644))

	err = s.Save(ctx, testDoc(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConflict)

	// The concurrent edit survives.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "currencies: []\n", string(raw))
}

func TestGitStore_ConflictWhenFileAppearsAfterLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug"))
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "conditions.yaml"), []byte("currencies: []\n"), 0o644))

	err = s.Save(ctx, testDoc(t))
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestGitStore_CommitsIntoRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	s := NewGitStore(dir, "conditions.yaml", logger.NewLogger("debug"))
	ctx := context.Background()

	_, err = s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testDoc(t)))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Contains(t, commit.Message, "Update conditions")
	assert.Equal(t, "exchange-rate-monitor", commit.Author.Name)
}
