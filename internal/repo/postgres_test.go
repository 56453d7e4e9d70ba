package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/internal/repo"
	"github.com/lbc24/quest-calendar/testutil"
)

func newTestRepo(t *testing.T) repo.PostgresDatasetRepo {
	t.Helper()
	return repo.NewPostgresDatasetRepo(testutil.NewTx(t))
}

func TestPostgresDatasetRepo_Load_Empty(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresDatasetRepo_SaveThenLoad(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ds := sampleDataset()

	id, err := r.Save(ctx, ds)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := r.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestPostgresDatasetRepo_LoadReturnsLatestSnapshot(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Save(ctx, sampleDataset())
	require.NoError(t, err)

	second := domain.Dataset{
		Volunteers: []domain.RawVolunteer{{ID: "9", Pseudo: "Zoé"}},
		Places:     []domain.RawPlace{},
		QuestTypes: []domain.RawQuestType{},
		Quests:     []domain.RawQuest{},
	}
	_, err = r.Save(ctx, second)
	require.NoError(t, err)

	got, err := r.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestPostgresDatasetRepo_KeepsDuplicateVolunteerRows(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ds := domain.Dataset{
		Volunteers: []domain.RawVolunteer{{ID: "1", Pseudo: "Alice"}, {ID: "1", Pseudo: "Alicia"}},
		Places:     []domain.RawPlace{},
		QuestTypes: []domain.RawQuestType{},
		Quests:     []domain.RawQuest{},
	}

	_, err := r.Save(ctx, ds)
	require.NoError(t, err)
	got, err := r.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, ds.Volunteers, got.Volunteers, "rows are stored verbatim; dedup happens in the view model")
}
