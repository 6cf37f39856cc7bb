package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/faceid/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

const upsertPattern = `(?s)INSERT INTO face_records.+ON CONFLICT \(face_id\) DO UPDATE`

func TestUpsertRecord_Idempotent(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	rec := models.FaceRecord{
		FaceID:     "face-1",
		UserID:     "user-1",
		BlobKey:    "register/user-1/1700000000000.jpg",
		EnrolledAt: 1700000000000,
	}

	// Writing the identical record twice conflicts on face_id and resolves
	// to an update, leaving a single logical row.
	mock.ExpectExec(upsertPattern).
		WithArgs(rec.FaceID, rec.UserID, rec.BlobKey, rec.EnrolledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertPattern).
		WithArgs(rec.FaceID, rec.UserID, rec.BlobKey, rec.EnrolledAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records WHERE face_id`).
		WithArgs(rec.FaceID).
		WillReturnRows(pgxmock.NewRows([]string{"face_id", "user_id", "blob_key", "enrolled_at_ms"}).
			AddRow(rec.FaceID, rec.UserID, rec.BlobKey, rec.EnrolledAt))

	require.NoError(t, store.UpsertRecord(ctx, rec))
	require.NoError(t, store.UpsertRecord(ctx, rec))

	got, err := store.GetRecordByFaceID(ctx, rec.FaceID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByFaceID_Absent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records WHERE face_id`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"face_id", "user_id", "blob_key", "enrolled_at_ms"}))

	rec, err := store.GetRecordByFaceID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListRecords_ClampsPagination(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM face_records`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records`).
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"face_id", "user_id", "blob_key", "enrolled_at_ms"}))

	_, _, err := store.ListRecords(context.Background(), "", -1, -5)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecords_IterationError(t *testing.T) {
	store, mock := newMockStore(t)
	broken := errors.New("connection reset")

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM face_records`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records`).
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"face_id", "user_id", "blob_key", "enrolled_at_ms"}).
			AddRow("face-1", "u1", "register/u1/1.jpg", int64(1)).
			AddRow("face-2", "u2", "register/u2/2.jpg", int64(2)).
			RowError(1, broken))

	// A connection failure mid-iteration must not surface as a truncated
	// but successful result.
	_, _, err := store.ListRecords(context.Background(), "", 50, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
}
