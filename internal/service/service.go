// Package service contains the enrollment and recognition workflows. Each
// workflow runs its stages strictly sequentially against
// dependency-injected adapters; durable state lives entirely behind those
// adapters, so requests share no in-process mutable state.
package service

import (
	"context"

	"github.com/your-org/faceid/internal/models"
)

// BlobStore persists raw images durably. Put confirms the write before
// returning.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// SignatureService wraps the face-analysis capability. Enroll returns nil
// (not an error) when the image contains no detectable face; Match returns
// candidates ordered by descending similarity, already filtered by the
// minimum similarity threshold.
type SignatureService interface {
	Enroll(ctx context.Context, img models.Image, externalID string) (*models.FaceSignature, error)
	Match(ctx context.Context, img models.Image, minSimilarity float64) ([]models.MatchCandidate, error)
}

// RecordRepository is the durable face-id to user mapping. Lookup of an
// unknown face id returns nil, not an error.
type RecordRepository interface {
	UpsertRecord(ctx context.Context, rec models.FaceRecord) error
	GetRecordByFaceID(ctx context.Context, faceID string) (*models.FaceRecord, error)
}

// Notifier announces enrollment outcomes to subscribers, best-effort.
type Notifier interface {
	PublishEnrollment(ctx context.Context, ev models.EnrollmentEvent) error
}

const imageContentType = "image/jpeg"
