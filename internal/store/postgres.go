package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

// schema is the disaster_records table. Identifier is the primary key;
// the insert-if-absent contract rides on the PK constraint.
const schema = `
CREATE TABLE IF NOT EXISTS disaster_records (
	id                          TEXT PRIMARY KEY,
	lat_code                    TEXT NOT NULL,
	lng_code                    TEXT NOT NULL,
	event_time                  TIMESTAMPTZ NOT NULL,
	source_code                 TEXT NOT NULL,
	carrier_code                TEXT NOT NULL,
	disaster_category_code      TEXT NOT NULL,
	disaster_sub_category_code  TEXT NOT NULL,
	indicator_code              TEXT NOT NULL,
	value                       DOUBLE PRECISION,
	unit                        TEXT NOT NULL DEFAULT '',
	media_path                  TEXT NOT NULL DEFAULT '',
	raw_payload                 TEXT NOT NULL DEFAULT '',
	state                       TEXT NOT NULL DEFAULT 'active',
	created_at                  TIMESTAMPTZ NOT NULL,
	updated_at                  TIMESTAMPTZ NOT NULL,
	last_accessed_at            TIMESTAMPTZ NOT NULL,
	archived_at                 TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS disaster_records_state_idx ON disaster_records (state);
CREATE INDEX IF NOT EXISTS disaster_records_created_at_idx ON disaster_records (created_at);
`

const recordColumns = `id, lat_code, lng_code, event_time, source_code, carrier_code,
	disaster_category_code, disaster_sub_category_code, indicator_code,
	value, unit, media_path, raw_payload, state,
	created_at, updated_at, last_accessed_at, archived_at`

// PostgresStore is a pgx-backed RecordStore.
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string, clock clockwork.Clock) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool, clock: clock}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Insert(ctx context.Context, record domain.DisasterRecord) (domain.DisasterRecord, error) {
	now := s.clock.Now().UTC()
	record.State = domain.StateActive
	record.CreatedAt = now
	record.UpdatedAt = now
	record.LastAccessedAt = now
	record.ArchivedAt = nil

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO disaster_records (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO NOTHING`,
		record.ID, record.LatCode, record.LngCode, record.EventTime.UTC(),
		record.SourceCode, record.CarrierCode,
		record.DisasterCategoryCode, record.DisasterSubCategoryCode, record.IndicatorCode,
		record.Value, record.Unit, record.MediaPath, record.RawPayload,
		string(record.State), record.CreatedAt, record.UpdatedAt, record.LastAccessedAt, record.ArchivedAt,
	)
	if err != nil {
		return domain.DisasterRecord{}, fmt.Errorf("insert record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.DisasterRecord{}, ErrDuplicateIdentifier
	}
	return record, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.DisasterRecord, error) {
	// Touch and read in one statement so last_accessed_at is updated
	// atomically with the read.
	row := s.pool.QueryRow(ctx, `
		UPDATE disaster_records
		SET last_accessed_at = $2
		WHERE id = $1
		RETURNING `+recordColumns,
		id, s.clock.Now().UTC(),
	)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DisasterRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.DisasterRecord{}, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) (int, []domain.DisasterRecord, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM disaster_records`).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count records: %w", err)
	}

	if limit <= 0 {
		limit = total
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM disaster_records
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []domain.DisasterRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("list records: %w", err)
	}
	return total, records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM disaster_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TransitionState(ctx context.Context, id string, from, to domain.State) error {
	if !domain.ValidTransition(from, to) {
		return ErrStateConflict
	}

	var tagErr error
	var affected int64
	now := s.clock.Now().UTC()

	if to == domain.StatePurged {
		tag, err := s.pool.Exec(ctx, `
			DELETE FROM disaster_records WHERE id = $1 AND state = $2`,
			id, string(from),
		)
		tagErr, affected = err, tag.RowsAffected()
	} else {
		tag, err := s.pool.Exec(ctx, `
			UPDATE disaster_records
			SET state = $3, updated_at = $4,
			    archived_at = CASE WHEN $3 = 'archived' THEN $4 ELSE archived_at END
			WHERE id = $1 AND state = $2`,
			id, string(from), string(to), now,
		)
		tagErr, affected = err, tag.RowsAffected()
	}
	if tagErr != nil {
		return fmt.Errorf("transition record state: %w", tagErr)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: distinguish a missing record from a state conflict.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM disaster_records WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("transition record state: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStateConflict
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]domain.DisasterRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM disaster_records`)
	if err != nil {
		return nil, fmt.Errorf("snapshot records: %w", err)
	}
	defer rows.Close()

	var records []domain.DisasterRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (domain.DisasterRecord, error) {
	var r domain.DisasterRecord
	var state string
	err := row.Scan(
		&r.ID, &r.LatCode, &r.LngCode, &r.EventTime,
		&r.SourceCode, &r.CarrierCode,
		&r.DisasterCategoryCode, &r.DisasterSubCategoryCode, &r.IndicatorCode,
		&r.Value, &r.Unit, &r.MediaPath, &r.RawPayload, &state,
		&r.CreatedAt, &r.UpdatedAt, &r.LastAccessedAt, &r.ArchivedAt,
	)
	if err != nil {
		return domain.DisasterRecord{}, err
	}
	r.State = domain.State(state)
	return r, nil
}
