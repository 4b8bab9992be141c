package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/record"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS recordings (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	title             TEXT NOT NULL,
	date              TEXT NOT NULL DEFAULT '',
	start_time        TEXT NOT NULL DEFAULT '',
	duration          TEXT NOT NULL DEFAULT '',
	transcript        TEXT NOT NULL DEFAULT '',
	summary           TEXT NOT NULL DEFAULT '',
	keywords          TEXT NOT NULL DEFAULT '[]',
	audio_url         TEXT NOT NULL DEFAULT '',
	audio_chunks      TEXT NOT NULL DEFAULT '[]',
	processing_status TEXT NOT NULL DEFAULT '',
	timestamp         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_recordings_user_id ON recordings(user_id);
`

// RecordingDB implements record.Store on PostgreSQL.
type RecordingDB struct {
	db *sql.DB
}

// NewRecordingDB connects to PostgreSQL with the given DSN and initializes
// the schema.
func NewRecordingDB(dsn string) (*RecordingDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &RecordingDB{db: db}, nil
}

// NewRecordingDBWithConn wraps an existing connection, used by tests.
func NewRecordingDBWithConn(db *sql.DB) *RecordingDB {
	return &RecordingDB{db: db}
}

func (r *RecordingDB) Put(ctx context.Context, rec model.FinishedRecording) error {
	keywords, err := json.Marshal(rec.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	chunks, err := json.Marshal(rec.AudioChunks)
	if err != nil {
		return fmt.Errorf("failed to encode audio chunks: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO recordings
	(id, user_id, title, date, start_time, duration, transcript, summary, keywords, audio_url, audio_chunks, processing_status, timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	user_id = EXCLUDED.user_id,
	title = EXCLUDED.title,
	date = EXCLUDED.date,
	start_time = EXCLUDED.start_time,
	duration = EXCLUDED.duration,
	transcript = EXCLUDED.transcript,
	summary = EXCLUDED.summary,
	keywords = EXCLUDED.keywords,
	audio_url = EXCLUDED.audio_url,
	audio_chunks = EXCLUDED.audio_chunks,
	processing_status = EXCLUDED.processing_status,
	timestamp = EXCLUDED.timestamp`,
		rec.ID, rec.UserID, rec.Title, rec.Date, rec.StartTime, rec.Duration,
		rec.Transcript, rec.Summary, string(keywords), rec.AudioURL, string(chunks),
		rec.ProcessingStatus, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert recording %s: %w", rec.ID, err)
	}
	return nil
}

func (r *RecordingDB) Get(ctx context.Context, id string) (model.FinishedRecording, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, date, start_time, duration, transcript, summary, keywords, audio_url, audio_chunks, processing_status, timestamp
FROM recordings WHERE id = $1`, id)
	return scanRecording(row)
}

func (r *RecordingDB) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", id, err)
	}
	return nil
}

func (r *RecordingDB) ListByUser(ctx context.Context, userID string) ([]model.FinishedRecording, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, date, start_time, duration, transcript, summary, keywords, audio_url, audio_chunks, processing_status, timestamp
FROM recordings WHERE user_id = $1 ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings for user %s: %w", userID, err)
	}
	defer rows.Close()

	var recordings []model.FinishedRecording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

func (r *RecordingDB) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecording(row rowScanner) (model.FinishedRecording, error) {
	var rec model.FinishedRecording
	var keywords, chunks string

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Date, &rec.StartTime,
		&rec.Duration, &rec.Transcript, &rec.Summary, &keywords, &rec.AudioURL,
		&chunks, &rec.ProcessingStatus, &rec.Timestamp)
	if err == sql.ErrNoRows {
		return model.FinishedRecording{}, record.ErrNotFound
	}
	if err != nil {
		return model.FinishedRecording{}, fmt.Errorf("failed to scan recording: %w", err)
	}

	if err := json.Unmarshal([]byte(keywords), &rec.Keywords); err != nil {
		return model.FinishedRecording{}, fmt.Errorf("failed to decode keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(chunks), &rec.AudioChunks); err != nil {
		return model.FinishedRecording{}, fmt.Errorf("failed to decode audio chunks: %w", err)
	}
	return rec, nil
}
