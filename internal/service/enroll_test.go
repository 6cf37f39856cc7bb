package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/pkg/dto"
)

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

type mockSignatureService struct {
	mock.Mock
}

func (m *mockSignatureService) Enroll(ctx context.Context, img models.Image, externalID string) (*models.FaceSignature, error) {
	args := m.Called(ctx, img, externalID)
	if sig := args.Get(0); sig != nil {
		return sig.(*models.FaceSignature), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignatureService) Match(ctx context.Context, img models.Image, minSimilarity float64) ([]models.MatchCandidate, error) {
	args := m.Called(ctx, img, minSimilarity)
	if c := args.Get(0); c != nil {
		return c.([]models.MatchCandidate), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) UpsertRecord(ctx context.Context, rec models.FaceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecordRepository) GetRecordByFaceID(ctx context.Context, faceID string) (*models.FaceRecord, error) {
	args := m.Called(ctx, faceID)
	if rec := args.Get(0); rec != nil {
		return rec.(*models.FaceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PublishEnrollment(ctx context.Context, ev models.EnrollmentEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

var testClock = time.UnixMilli(1700000000000)

func newTestEnroller(blobs *mockBlobStore, faces *mockSignatureService, records *mockRecordRepository, notifier *mockNotifier) *Enroller {
	e := NewEnroller(blobs, faces, records, notifier)
	e.now = func() time.Time { return testClock }
	return e
}

func TestEnroller_Enroll_Success(t *testing.T) {
	ctx := context.Background()
	imgBytes := []byte("jpeg-bytes")
	req := dto.EnrollRequest{
		UserID:      "user-1",
		ImageBase64: base64.StdEncoding.EncodeToString(imgBytes),
	}
	wantKey := "register/user-1/1700000000000.jpg"

	blobs := &mockBlobStore{}
	faces := &mockSignatureService{}
	records := &mockRecordRepository{}
	notifier := &mockNotifier{}

	blobs.On("Put", ctx, wantKey, imgBytes, "image/jpeg").Return(nil)
	faces.On("Enroll", ctx, models.Image{Data: imgBytes, Key: wantKey}, "user-1").
		Return(&models.FaceSignature{ID: "face-1", Collection: "default"}, nil)
	records.On("UpsertRecord", ctx, models.FaceRecord{
		FaceID:     "face-1",
		UserID:     "user-1",
		BlobKey:    wantKey,
		EnrolledAt: 1700000000000,
	}).Return(nil)
	notifier.On("PublishEnrollment", ctx, models.EnrollmentEvent{
		FaceID:     "face-1",
		UserID:     "user-1",
		EnrolledAt: 1700000000000,
	}).Return(nil)

	resp, err := newTestEnroller(blobs, faces, records, notifier).Enroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "face-1", resp.FaceID)
	assert.Equal(t, "Face registered successfully", resp.Message)
	assert.Empty(t, resp.Warning)

	blobs.AssertExpectations(t)
	faces.AssertExpectations(t)
	records.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestEnroller_Enroll_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  dto.EnrollRequest
	}{
		{"missing userId", dto.EnrollRequest{ImageBase64: "aGVsbG8="}},
		{"missing imageBase64", dto.EnrollRequest{UserID: "user-1"}},
		{"missing both", dto.EnrollRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &mockBlobStore{}
			faces := &mockSignatureService{}
			records := &mockRecordRepository{}
			notifier := &mockNotifier{}

			_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)

			// Validation runs before any adapter call
			blobs.AssertNotCalled(t, "Put")
			faces.AssertNotCalled(t, "Enroll")
			records.AssertNotCalled(t, "UpsertRecord")
			notifier.AssertNotCalled(t, "PublishEnrollment")
		})
	}
}

func TestEnroller_Enroll_InvalidBase64(t *testing.T) {
	blobs := &mockBlobStore{}
	faces := &mockSignatureService{}
	records := &mockRecordRepository{}
	notifier := &mockNotifier{}

	req := dto.EnrollRequest{UserID: "user-1", ImageBase64: "not base64!!"}
	_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	blobs.AssertNotCalled(t, "Put")
}

func TestEnroller_Enroll_NoFaceDetected(t *testing.T) {
	ctx := context.Background()
	imgBytes := []byte("jpeg-bytes")
	req := dto.EnrollRequest{UserID: "user-1", ImageBase64: base64.StdEncoding.EncodeToString(imgBytes)}

	blobs := &mockBlobStore{}
	faces := &mockSignatureService{}
	records := &mockRecordRepository{}
	notifier := &mockNotifier{}

	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	faces.On("Enroll", mock.Anything, mock.Anything, "user-1").Return(nil, nil)

	_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(ctx, req)
	require.ErrorIs(t, err, ErrNoFaceDetected)

	// No metadata record and no announcement on a zero-face rejection
	records.AssertNotCalled(t, "UpsertRecord")
	notifier.AssertNotCalled(t, "PublishEnrollment")
}

func TestEnroller_Enroll_AdapterFailures(t *testing.T) {
	imgBytes := []byte("jpeg-bytes")
	req := dto.EnrollRequest{UserID: "user-1", ImageBase64: base64.StdEncoding.EncodeToString(imgBytes)}
	boom := errors.New("boom")

	t.Run("blob store failure aborts before signature service", func(t *testing.T) {
		blobs := &mockBlobStore{}
		faces := &mockSignatureService{}
		records := &mockRecordRepository{}
		notifier := &mockNotifier{}

		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

		_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), req)

		var aErr *AdapterError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, SubsystemBlobStore, aErr.Subsystem)
		assert.ErrorIs(t, err, boom)
		faces.AssertNotCalled(t, "Enroll")
	})

	t.Run("signature service failure aborts before metadata write", func(t *testing.T) {
		blobs := &mockBlobStore{}
		faces := &mockSignatureService{}
		records := &mockRecordRepository{}
		notifier := &mockNotifier{}

		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		faces.On("Enroll", mock.Anything, mock.Anything, "user-1").Return(nil, boom)

		_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), req)

		var aErr *AdapterError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, SubsystemSignature, aErr.Subsystem)
		records.AssertNotCalled(t, "UpsertRecord")
	})

	t.Run("metadata failure aborts before notification", func(t *testing.T) {
		blobs := &mockBlobStore{}
		faces := &mockSignatureService{}
		records := &mockRecordRepository{}
		notifier := &mockNotifier{}

		blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		faces.On("Enroll", mock.Anything, mock.Anything, "user-1").
			Return(&models.FaceSignature{ID: "face-1"}, nil)
		records.On("UpsertRecord", mock.Anything, mock.Anything).Return(boom)

		_, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), req)

		var aErr *AdapterError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, SubsystemMetadata, aErr.Subsystem)
		notifier.AssertNotCalled(t, "PublishEnrollment")
	})
}

func TestEnroller_Enroll_NotificationFailureIsNonFatal(t *testing.T) {
	imgBytes := []byte("jpeg-bytes")
	req := dto.EnrollRequest{UserID: "user-1", ImageBase64: base64.StdEncoding.EncodeToString(imgBytes)}

	blobs := &mockBlobStore{}
	faces := &mockSignatureService{}
	records := &mockRecordRepository{}
	notifier := &mockNotifier{}

	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	faces.On("Enroll", mock.Anything, mock.Anything, "user-1").
		Return(&models.FaceSignature{ID: "face-1"}, nil)
	records.On("UpsertRecord", mock.Anything, mock.Anything).Return(nil)
	notifier.On("PublishEnrollment", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	resp, err := newTestEnroller(blobs, faces, records, notifier).Enroll(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "face-1", resp.FaceID)
	assert.NotEmpty(t, resp.Warning)
}
