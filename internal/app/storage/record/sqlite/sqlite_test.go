package sqlite

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koenote-pipeline/internal/app/model"
	"koenote-pipeline/internal/app/storage/record"
)

func newTestDB(t *testing.T) *RecordingDB {
	t.Helper()
	db, err := NewRecordingDB(filepath.Join(t.TempDir(), "recordings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecording(id, userID string) model.FinishedRecording {
	return model.FinishedRecording{
		ID:               id,
		UserID:           userID,
		Title:            "打ち合わせの録音",
		Date:             "2026-08-30",
		StartTime:        "10:00:00",
		Duration:         "00:12:34",
		Transcript:       "本日の議題はリリース日程です。",
		Summary:          "リリース日程を確認した。",
		Keywords:         []string{"リリース", "日程"},
		AudioChunks:      []string{"chunks/0.webm", "chunks/1.webm"},
		ProcessingStatus: "COMPLETED",
		Timestamp:        "2026-08-30T10:00:00Z",
	}
}

func TestPutAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	want := sampleRecording("rec-1", "user-1")
	require.NoError(t, db.Put(ctx, want))

	got, err := db.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Get(context.Background(), "missing")

	assert.True(t, stderrors.Is(err, record.ErrNotFound))
}

func TestPutUpserts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := sampleRecording("rec-1", "user-1")
	require.NoError(t, db.Put(ctx, rec))

	rec.Title = "更新後のタイトル"
	rec.Summary = "更新後の要約。"
	require.NoError(t, db.Put(ctx, rec))

	got, err := db.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "更新後のタイトル", got.Title)
	assert.Equal(t, "更新後の要約。", got.Summary)

	recordings, err := db.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recordings, 1)
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, sampleRecording("rec-1", "user-1")))
	require.NoError(t, db.Put(ctx, sampleRecording("rec-2", "user-1")))
	require.NoError(t, db.Put(ctx, sampleRecording("rec-3", "user-2")))

	recordings, err := db.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recordings, 2)

	recordings, err = db.ListByUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, recordings)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, sampleRecording("rec-1", "user-1")))
	require.NoError(t, db.Delete(ctx, "rec-1"))

	_, err := db.Get(ctx, "rec-1")
	assert.True(t, stderrors.Is(err, record.ErrNotFound))
}
