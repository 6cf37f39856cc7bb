package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/storage"
	"github.com/your-org/faceid/pkg/dto"
)

// Recognizer runs the recognition workflow:
// validate → persist probe → match → resolve identity.
type Recognizer struct {
	blobs     BlobStore
	faces     SignatureService
	records   RecordRepository
	threshold float64
	now       func() time.Time
}

func NewRecognizer(blobs BlobStore, faces SignatureService, records RecordRepository, threshold float64) *Recognizer {
	return &Recognizer{
		blobs:     blobs,
		faces:     faces,
		records:   records,
		threshold: threshold,
		now:       time.Now,
	}
}

func (r *Recognizer) Recognize(ctx context.Context, req dto.RecognizeRequest) (*dto.RecognizeResponse, error) {
	wallStart := time.Now()

	if req.ImageBase64 == "" {
		return nil, &ValidationError{Reason: "Missing imageBase64"}
	}

	imgBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, &ValidationError{Reason: "imageBase64 is not valid base64"}
	}

	// Probe images are not tied to a known user, so the key gets an opaque
	// hint instead of a user id.
	ts := r.now().UnixMilli()
	key := storage.ObjectKey(storage.PurposeRecognize, uuid.NewString(), ts)

	start := time.Now()
	if err := r.blobs.Put(ctx, key, imgBytes, imageContentType); err != nil {
		return nil, &AdapterError{Subsystem: SubsystemBlobStore, Err: err}
	}
	observability.StageDuration.WithLabelValues("recognize", "persist").Observe(time.Since(start).Seconds())

	start = time.Now()
	matches, err := r.faces.Match(ctx, models.Image{Data: imgBytes, Key: key}, r.threshold)
	observability.StageDuration.WithLabelValues("recognize", "match").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &AdapterError{Subsystem: SubsystemSignature, Err: err}
	}

	resp := &dto.RecognizeResponse{Recognized: false}
	if len(matches) == 0 {
		resp.Message = "No matching face found"
	} else {
		// Candidates arrive ranked by descending similarity; only the top
		// one matters. Tie order below the top is unspecified by the
		// signature service.
		top := matches[0]

		rec, err := r.records.GetRecordByFaceID(ctx, top.FaceID)
		if err != nil {
			return nil, &AdapterError{Subsystem: SubsystemMetadata, Err: err}
		}

		resp.Recognized = true
		resp.FaceID = top.FaceID
		resp.Confidence = top.Similarity
		if rec != nil {
			resp.UserID = &rec.UserID
		}
		// A match without a metadata row still counts as recognized; the
		// caller just gets no user id.
	}

	// Latency is diagnostic only, it never alters control flow.
	latency := time.Since(wallStart)
	observability.RecognitionLatency.Observe(latency.Seconds())
	slog.Info("recognition completed", "latency_ms", latency.Milliseconds(), "matched", resp.Recognized)

	return resp, nil
}
