package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/internal/repo"
	"github.com/lbc24/quest-calendar/internal/service"
)

// ---- mock repos ------------------------------------------------------------

// mockDatasetRepo is a read-only source.
type mockDatasetRepo struct {
	load  func(ctx context.Context) (domain.Dataset, error)
	calls int
}

func (m *mockDatasetRepo) Load(ctx context.Context) (domain.Dataset, error) {
	m.calls++
	return m.load(ctx)
}

// mockWritableRepo also accepts imports.
type mockWritableRepo struct {
	mockDatasetRepo
	save func(ctx context.Context, ds domain.Dataset) (uuid.UUID, error)
}

func (m *mockWritableRepo) Save(ctx context.Context, ds domain.Dataset) (uuid.UUID, error) {
	return m.save(ctx, ds)
}

var (
	_ repo.DatasetRepo         = (*mockDatasetRepo)(nil)
	_ repo.PostgresDatasetRepo = (*mockWritableRepo)(nil)
)

// ---- helpers ---------------------------------------------------------------

func festival() domain.Dataset {
	return domain.Dataset{
		Volunteers: []domain.RawVolunteer{{ID: "1", Pseudo: "Alice"}, {ID: "2", Pseudo: "Bob"}},
		Places:     []domain.RawPlace{{ID: "1", Name: "Hall"}},
		QuestTypes: []domain.RawQuestType{{ID: "1", Name: "Setup"}},
		Quests: []domain.RawQuest{
			{ID: "1", Name: "Task", Start: "2024-07-03T09:00", End: "2024-07-03T11:00",
				Place: "1", Types: []domain.RawID{"1"}, Volunteers: []domain.RawID{"1"}},
			{ID: "2", Name: "Night bar", Start: "2024-07-04T01:00", End: "2024-07-04T03:00",
				Place: "1", Volunteers: []domain.RawID{"2"}},
			{ID: "3", Name: "Cleanup", Start: "2024-07-04T10:00", End: "2024-07-04T12:00",
				Place: "1", Volunteers: []domain.RawID{"1", "2"}},
		},
	}
}

func staticRepo(ds domain.Dataset) *mockDatasetRepo {
	return &mockDatasetRepo{load: func(context.Context) (domain.Dataset, error) { return ds, nil }}
}

var fixedNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func newService(r repo.DatasetRepo) *service.CalendarService {
	return service.NewCalendarService(r, service.Settings{
		Location:     time.UTC,
		DayStartHour: 4,
		Now:          func() time.Time { return fixedNow },
	})
}

func eventIDs(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID.String()
	}
	return out
}

// ---- Options ---------------------------------------------------------------

func TestCalendarService_Options_NoFilter(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Options(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, "timeGridWeek", got.View)
	assert.Equal(t, time.Date(2024, 7, 3, 9, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, 2, got.Duration.Days)
	assert.Equal(t, []string{"q_1", "q_2", "q_3"}, eventIDs(got.Events))
	require.Len(t, got.Resources, 3, "grouped: volunteers, places, types")
	assert.Len(t, got.Resources[0].Children, 2)
	assert.True(t, got.FilterEventsWithResources)
}

func TestCalendarService_Options_FilteredKeepsFullDateRange(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Options(context.Background(), "v_2", "resourceTimelineDay")

	require.NoError(t, err)
	assert.Equal(t, []string{"q_2", "q_3"}, eventIDs(got.Events))
	assert.Equal(t, time.Date(2024, 7, 3, 9, 0, 0, 0, time.UTC), got.Date, "range spans all events, not the filtered ones")
	require.Len(t, got.Resources[0].Children, 1)
	assert.Equal(t, "Bob", got.Resources[0].Children[0].Title)
}

func TestCalendarService_Options_FlatGridFlattens(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Options(context.Background(), domain.NoVolunteer, "resourceTimeGridDay")

	require.NoError(t, err)
	assert.Equal(t, "resourceTimeGridDay", got.View)
	assert.Len(t, got.Resources, 4)
	for _, r := range got.Resources {
		assert.Nil(t, r.Children)
	}
}

func TestCalendarService_Options_UnknownView(t *testing.T) {
	svc := newService(staticRepo(festival()))

	_, err := svc.Options(context.Background(), "", "dayGridMonth")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCalendarService_Options_UnknownVolunteer(t *testing.T) {
	svc := newService(staticRepo(festival()))

	_, err := svc.Options(context.Background(), "v_42", "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCalendarService_Options_EmptyDatasetFallsBackToToday(t *testing.T) {
	svc := newService(staticRepo(domain.Dataset{}))

	got, err := svc.Options(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, service.DefaultWindowDays, got.Duration.Days)
	assert.NotNil(t, got.Events)
	assert.Empty(t, got.Events)
}

func TestCalendarService_Options_FallbackUsesConfiguredZone(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	svc := service.NewCalendarService(staticRepo(domain.Dataset{}), service.Settings{
		Location: paris,
		Now:      func() time.Time { return time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC) },
	})

	got, err := svc.Options(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, paris), got.Date)
}

func TestCalendarService_Options_LoadError(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := newService(&mockDatasetRepo{load: func(context.Context) (domain.Dataset, error) {
		return domain.Dataset{}, boom
	}})

	_, err := svc.Options(context.Background(), "", "")

	assert.ErrorIs(t, err, boom)
}

func TestCalendarService_Options_BadTimestamp(t *testing.T) {
	ds := festival()
	ds.Quests[0].Start = "yesterday"
	svc := newService(staticRepo(ds))

	_, err := svc.Options(context.Background(), "", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- caching ---------------------------------------------------------------

func TestCalendarService_LoadsOnce(t *testing.T) {
	r := staticRepo(festival())
	svc := newService(r)
	ctx := context.Background()

	_, err := svc.Options(ctx, "", "")
	require.NoError(t, err)
	_, err = svc.Selector(ctx)
	require.NoError(t, err)
	_, err = svc.Days(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 1, r.calls)
}

func TestCalendarService_FailedLoadIsRetried(t *testing.T) {
	fail := true
	r := &mockDatasetRepo{load: func(context.Context) (domain.Dataset, error) {
		if fail {
			return domain.Dataset{}, domain.ErrNotFound
		}
		return festival(), nil
	}}
	svc := newService(r)

	_, err := svc.Selector(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)

	fail = false
	opts, err := svc.Selector(context.Background())

	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestCalendarService_Reload(t *testing.T) {
	ds := festival()
	r := &mockDatasetRepo{load: func(context.Context) (domain.Dataset, error) { return ds, nil }}
	svc := newService(r)
	ctx := context.Background()

	_, err := svc.Selector(ctx)
	require.NoError(t, err)

	ds.Volunteers = append(ds.Volunteers, domain.RawVolunteer{ID: "3", Pseudo: "Chloé"})
	require.NoError(t, svc.Reload(ctx))
	opts, err := svc.Selector(ctx)

	require.NoError(t, err)
	assert.Len(t, opts, 4)
	assert.Equal(t, 2, r.calls)
}

func TestCalendarService_Reload_FailureKeepsCache(t *testing.T) {
	fail := false
	r := &mockDatasetRepo{load: func(context.Context) (domain.Dataset, error) {
		if fail {
			return domain.Dataset{}, errors.New("bucket unreachable")
		}
		return festival(), nil
	}}
	svc := newService(r)
	ctx := context.Background()
	_, err := svc.Selector(ctx)
	require.NoError(t, err)

	fail = true
	require.Error(t, svc.Reload(ctx))
	opts, err := svc.Selector(ctx)

	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

// ---- Selector / Schedule / Events / Days -----------------------------------

func TestCalendarService_Selector(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Selector(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.SelectorOption{
		{Value: "none", Label: "—"},
		{Value: "v_1", Label: "Alice"},
		{Value: "v_2", Label: "Bob"},
	}, got)
}

func TestCalendarService_Schedule(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Schedule(context.Background(), "v_1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Volunteer.Title)
	assert.Equal(t, []string{"q_1", "q_3"}, eventIDs(got.Events))
	assert.Equal(t, 4*time.Hour, got.Workload)
	assert.Empty(t, got.Conflicts)
}

func TestCalendarService_Schedule_NotAVolunteer(t *testing.T) {
	svc := newService(staticRepo(festival()))

	for _, id := range []string{"v_9", "p_1", "none", ""} {
		_, err := svc.Schedule(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestCalendarService_Events(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Events(context.Background(), "v_2")

	require.NoError(t, err)
	assert.Equal(t, []string{"q_2", "q_3"}, eventIDs(got))
}

func TestCalendarService_Days(t *testing.T) {
	svc := newService(staticRepo(festival()))

	got, err := svc.Days(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, []string{"q_1", "q_2"}, eventIDs(got[0].Events), "1 am belongs to the previous festival day")
	assert.Equal(t, []string{"q_3"}, eventIDs(got[1].Events))
}

func TestCalendarService_Days_UTCTimestampsGroupedInConfiguredZone(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	ds := domain.Dataset{
		Volunteers: []domain.RawVolunteer{{ID: "1", Pseudo: "Alice"}},
		Quests: []domain.RawQuest{
			{ID: "1", Name: "Night bar", Start: "2024-07-04T01:30:00Z", End: "2024-07-04T02:30:00Z", Place: "1"},
			{ID: "2", Name: "Barriers", Start: "2024-07-04T03:30:00Z", End: "2024-07-04T06:00:00Z", Place: "1"},
		},
	}
	svc := service.NewCalendarService(staticRepo(ds), service.Settings{Location: paris, DayStartHour: 4})

	got, err := svc.Days(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, time.Date(2024, 7, 3, 0, 0, 0, 0, paris).Equal(got[0].Date))
	assert.Equal(t, []string{"q_1"}, eventIDs(got[0].Events), "03:30 in Paris is still the previous night")
	assert.True(t, time.Date(2024, 7, 4, 0, 0, 0, 0, paris).Equal(got[1].Date))
	assert.Equal(t, []string{"q_2"}, eventIDs(got[1].Events), "05:30 in Paris starts the new day")
}

// ---- Import ----------------------------------------------------------------

func TestCalendarService_Import(t *testing.T) {
	var saved domain.Dataset
	snapshot := uuid.New()
	r := &mockWritableRepo{
		mockDatasetRepo: *staticRepo(domain.Dataset{}),
		save: func(_ context.Context, ds domain.Dataset) (uuid.UUID, error) {
			saved = ds
			return snapshot, nil
		},
	}
	svc := newService(r)

	id, err := svc.Import(context.Background(), festival())

	require.NoError(t, err)
	assert.Equal(t, snapshot, id)
	assert.Equal(t, festival(), saved)

	opts, err := svc.Selector(context.Background())
	require.NoError(t, err)
	assert.Len(t, opts, 3, "imported dataset is served without reloading")
	assert.Zero(t, r.calls)
}

func TestCalendarService_Import_ReadOnlySource(t *testing.T) {
	svc := newService(staticRepo(festival()))

	_, err := svc.Import(context.Background(), festival())

	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestCalendarService_Import_InvalidDatasetNotSaved(t *testing.T) {
	ds := festival()
	ds.Quests[1].End = "soon"
	r := &mockWritableRepo{
		mockDatasetRepo: *staticRepo(domain.Dataset{}),
		save: func(context.Context, domain.Dataset) (uuid.UUID, error) {
			t.Fatal("Save must not be called for an invalid dataset")
			return uuid.Nil, nil
		},
	}
	svc := newService(r)

	_, err := svc.Import(context.Background(), ds)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
