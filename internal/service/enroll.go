package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/storage"
	"github.com/your-org/faceid/pkg/dto"
)

// Enroller runs the enrollment workflow:
// validate → persist image → register signature → record metadata → notify.
type Enroller struct {
	blobs    BlobStore
	faces    SignatureService
	records  RecordRepository
	notifier Notifier
	now      func() time.Time
}

func NewEnroller(blobs BlobStore, faces SignatureService, records RecordRepository, notifier Notifier) *Enroller {
	return &Enroller{
		blobs:    blobs,
		faces:    faces,
		records:  records,
		notifier: notifier,
		now:      time.Now,
	}
}

func (e *Enroller) Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResponse, error) {
	if req.UserID == "" || req.ImageBase64 == "" {
		return nil, &ValidationError{Reason: "Missing userId or imageBase64"}
	}

	imgBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, &ValidationError{Reason: "imageBase64 is not valid base64"}
	}

	ts := e.now().UnixMilli()
	key := storage.ObjectKey(storage.PurposeRegister, req.UserID, ts)

	start := time.Now()
	if err := e.blobs.Put(ctx, key, imgBytes, imageContentType); err != nil {
		return nil, &AdapterError{Subsystem: SubsystemBlobStore, Err: err}
	}
	observability.StageDuration.WithLabelValues("enroll", "persist").Observe(time.Since(start).Seconds())

	start = time.Now()
	sig, err := e.faces.Enroll(ctx, models.Image{Data: imgBytes, Key: key}, req.UserID)
	observability.StageDuration.WithLabelValues("enroll", "detect").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &AdapterError{Subsystem: SubsystemSignature, Err: err}
	}
	if sig == nil {
		// The image is already persisted; that is fine, orphaned blobs are
		// an accepted operational cost.
		return nil, ErrNoFaceDetected
	}

	rec := models.FaceRecord{
		FaceID:     sig.ID,
		UserID:     req.UserID,
		BlobKey:    key,
		EnrolledAt: ts,
	}

	start = time.Now()
	if err := e.records.UpsertRecord(ctx, rec); err != nil {
		return nil, &AdapterError{Subsystem: SubsystemMetadata, Err: err}
	}
	observability.StageDuration.WithLabelValues("enroll", "record").Observe(time.Since(start).Seconds())

	resp := &dto.EnrollResponse{
		FaceID:  sig.ID,
		Message: "Face registered successfully",
	}

	// Notification is best-effort: the enrollment is already durable, so a
	// publish failure is surfaced as a warning rather than failing the
	// request.
	start = time.Now()
	ev := models.EnrollmentEvent{FaceID: sig.ID, UserID: req.UserID, EnrolledAt: ts}
	if err := e.notifier.PublishEnrollment(ctx, ev); err != nil {
		slog.Warn("publish enrollment event", "face_id", sig.ID, "user_id", req.UserID, "error", err)
		resp.Warning = "enrollment recorded but notification failed"
	}
	observability.StageDuration.WithLabelValues("enroll", "notify").Observe(time.Since(start).Seconds())

	slog.Info("face enrolled", "face_id", sig.ID, "user_id", req.UserID, "blob_key", key)

	return resp, nil
}
