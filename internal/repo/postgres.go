package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDatasetRepo stores every imported export as an immutable snapshot.
// Load always returns the most recent snapshot.
type PostgresDatasetRepo interface {
	DatasetRepo
	DatasetWriter
}

// pgDatasetRepo is the Postgres implementation of PostgresDatasetRepo.
type pgDatasetRepo struct {
	db db
}

// NewPostgresDatasetRepo constructs a PostgresDatasetRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresDatasetRepo(db db) PostgresDatasetRepo {
	return &pgDatasetRepo{db: db}
}

// Save writes ds as a new snapshot inside one transaction.
// Row order is kept through a position column so Load returns entities in
// the order they were exported.
func (r *pgDatasetRepo) Save(ctx context.Context, ds domain.Dataset) (uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.PostgresDatasetRepo.Save: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	id := uuid.New()
	const q = `INSERT INTO dataset_snapshots (id) VALUES (@id)`
	if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return uuid.Nil, fmt.Errorf("repo.PostgresDatasetRepo.Save: snapshot: %w", err)
	}

	copies := []struct {
		table string
		cols  []string
		n     int
		row   func(i int) []any
	}{
		{"volunteers", []string{"snapshot_id", "position", "raw_id", "pseudo"}, len(ds.Volunteers),
			func(i int) []any {
				v := ds.Volunteers[i]
				return []any{id, i, string(v.ID), v.Pseudo}
			}},
		{"places", []string{"snapshot_id", "position", "raw_id", "name"}, len(ds.Places),
			func(i int) []any {
				p := ds.Places[i]
				return []any{id, i, string(p.ID), p.Name}
			}},
		{"quest_types", []string{"snapshot_id", "position", "raw_id", "name"}, len(ds.QuestTypes),
			func(i int) []any {
				qt := ds.QuestTypes[i]
				return []any{id, i, string(qt.ID), qt.Name}
			}},
		{"quests", []string{"snapshot_id", "position", "raw_id", "name", "starts_at", "ends_at", "place_id", "type_ids", "volunteer_ids"}, len(ds.Quests),
			func(i int) []any {
				q := ds.Quests[i]
				return []any{id, i, string(q.ID), q.Name, q.Start, q.End, string(q.Place), rawIDStrings(q.Types), rawIDStrings(q.Volunteers)}
			}},
	}
	for _, c := range copies {
		src := pgx.CopyFromSlice(c.n, func(i int) ([]any, error) { return c.row(i), nil })
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.cols, src); err != nil {
			return uuid.Nil, fmt.Errorf("repo.PostgresDatasetRepo.Save: copy %s: %w", c.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("repo.PostgresDatasetRepo.Save: commit: %w", err)
	}
	return id, nil
}

// Load returns the most recently imported snapshot.
func (r *pgDatasetRepo) Load(ctx context.Context) (domain.Dataset, error) {
	id, err := r.latestSnapshot(ctx)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.PostgresDatasetRepo.Load: %w", err)
	}

	var ds domain.Dataset
	if ds.Volunteers, err = r.listVolunteers(ctx, id); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.PostgresDatasetRepo.Load: %w", err)
	}
	if ds.Places, err = r.listPlaces(ctx, id); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.PostgresDatasetRepo.Load: %w", err)
	}
	if ds.QuestTypes, err = r.listQuestTypes(ctx, id); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.PostgresDatasetRepo.Load: %w", err)
	}
	if ds.Quests, err = r.listQuests(ctx, id); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.PostgresDatasetRepo.Load: %w", err)
	}
	return ds, nil
}

func (r *pgDatasetRepo) latestSnapshot(ctx context.Context) (uuid.UUID, error) {
	const q = `
		SELECT id
		FROM dataset_snapshots
		ORDER BY imported_at DESC, seq DESC
		LIMIT 1`

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, domain.ErrNotFound
		}
		return uuid.Nil, err
	}
	return uuid.UUID(id.Bytes), nil
}

func (r *pgDatasetRepo) listVolunteers(ctx context.Context, snapshot uuid.UUID) ([]domain.RawVolunteer, error) {
	const q = `
		SELECT raw_id, pseudo
		FROM volunteers
		WHERE snapshot_id = @snapshot_id
		ORDER BY position`

	return collect(ctx, r.db, "volunteers", q, snapshot, func(s scanner) (domain.RawVolunteer, error) {
		var id, pseudo string
		err := s.Scan(&id, &pseudo)
		return domain.RawVolunteer{ID: domain.RawID(id), Pseudo: pseudo}, err
	})
}

func (r *pgDatasetRepo) listPlaces(ctx context.Context, snapshot uuid.UUID) ([]domain.RawPlace, error) {
	const q = `
		SELECT raw_id, name
		FROM places
		WHERE snapshot_id = @snapshot_id
		ORDER BY position`

	return collect(ctx, r.db, "places", q, snapshot, func(s scanner) (domain.RawPlace, error) {
		var id, name string
		err := s.Scan(&id, &name)
		return domain.RawPlace{ID: domain.RawID(id), Name: name}, err
	})
}

func (r *pgDatasetRepo) listQuestTypes(ctx context.Context, snapshot uuid.UUID) ([]domain.RawQuestType, error) {
	const q = `
		SELECT raw_id, name
		FROM quest_types
		WHERE snapshot_id = @snapshot_id
		ORDER BY position`

	return collect(ctx, r.db, "quest_types", q, snapshot, func(s scanner) (domain.RawQuestType, error) {
		var id, name string
		err := s.Scan(&id, &name)
		return domain.RawQuestType{ID: domain.RawID(id), Name: name}, err
	})
}

func (r *pgDatasetRepo) listQuests(ctx context.Context, snapshot uuid.UUID) ([]domain.RawQuest, error) {
	const q = `
		SELECT raw_id, name, starts_at, ends_at, place_id, type_ids, volunteer_ids
		FROM quests
		WHERE snapshot_id = @snapshot_id
		ORDER BY position`

	return collect(ctx, r.db, "quests", q, snapshot, scanQuest)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanQuest maps a single quests row into a domain.RawQuest.
func scanQuest(s scanner) (domain.RawQuest, error) {
	var (
		q             domain.RawQuest
		id, place     string
		types, people []string
	)
	if err := s.Scan(&id, &q.Name, &q.Start, &q.End, &place, &types, &people); err != nil {
		return domain.RawQuest{}, err
	}
	q.ID = domain.RawID(id)
	q.Place = domain.RawID(place)
	q.Types = toRawIDs(types)
	q.Volunteers = toRawIDs(people)
	return q, nil
}

// collect runs a snapshot-scoped query and scans every row with scan.
func collect[T any](ctx context.Context, db db, table, q string, snapshot uuid.UUID, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, q, pgx.NamedArgs{"snapshot_id": snapshot})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", table, err)
	}
	return out, nil
}

func rawIDStrings(ids []domain.RawID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func toRawIDs(ss []string) []domain.RawID {
	out := make([]domain.RawID, len(ss))
	for i, s := range ss {
		out[i] = domain.RawID(s)
	}
	return out
}
