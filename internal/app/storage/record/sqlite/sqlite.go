package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

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

// RecordingDB implements record.Store on SQLite.
type RecordingDB struct {
	db *sql.DB
}

// NewRecordingDB opens (and initializes) a SQLite database at dbPath.
func NewRecordingDB(dbPath string) (*RecordingDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &RecordingDB{db: db}, nil
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
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	user_id = excluded.user_id,
	title = excluded.title,
	date = excluded.date,
	start_time = excluded.start_time,
	duration = excluded.duration,
	transcript = excluded.transcript,
	summary = excluded.summary,
	keywords = excluded.keywords,
	audio_url = excluded.audio_url,
	audio_chunks = excluded.audio_chunks,
	processing_status = excluded.processing_status,
	timestamp = excluded.timestamp`,
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
FROM recordings WHERE id = ?`, id)
	return scanRecording(row)
}

func (r *RecordingDB) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", id, err)
	}
	return nil
}

func (r *RecordingDB) ListByUser(ctx context.Context, userID string) ([]model.FinishedRecording, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, date, start_time, duration, transcript, summary, keywords, audio_url, audio_chunks, processing_status, timestamp
FROM recordings WHERE user_id = ? ORDER BY timestamp DESC`, userID)
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
