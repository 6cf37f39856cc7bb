package signature

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/faceid/internal/config"
	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/storage"
)

// Index persists and searches registered face signatures.
type Index interface {
	AddSignature(ctx context.Context, id uuid.UUID, collection, externalID string, embedding []float32) error
	SearchSignatures(ctx context.Context, collection string, embedding []float32, minSimilarity float64, limit int) ([]storage.SignatureMatch, error)
}

// ObjectGetter sources image bytes for locator-only inputs.
type ObjectGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Engine is the face signature service: it extracts a biometric encoding
// from an image and registers or searches it within a collection.
type Engine struct {
	det        *detector
	emb        *embedder
	index      Index
	blobs      ObjectGetter
	collection string
}

// NewEngine loads the ONNX models and returns a ready engine.
func NewEngine(cfg config.RecognitionConfig, index Index, blobs ObjectGetter) (*Engine, error) {
	detPath := filepath.Join(cfg.ModelsDir, "det_10g.onnx")
	embPath := filepath.Join(cfg.ModelsDir, "w600k_r50.onnx")

	slog.Info("loading detection model", "path", detPath)
	det, err := newDetector(detPath, float32(cfg.DetectionThreshold))
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	slog.Info("loading embedding model", "path", embPath)
	emb, err := newEmbedder(embPath)
	if err != nil {
		det.close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	slog.Info("signature engine ready", "collection", cfg.Collection)

	return &Engine{
		det:        det,
		emb:        emb,
		index:      index,
		blobs:      blobs,
		collection: cfg.Collection,
	}, nil
}

// Enroll registers the primary face of an image under the engine's
// collection and returns its signature. A nil signature with a nil error
// means no face was detected; that is a normal outcome, not a fault.
func (e *Engine) Enroll(ctx context.Context, img models.Image, externalID string) (*models.FaceSignature, error) {
	embedding, found, err := e.embedPrimaryFace(ctx, img)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	id := uuid.New()
	if err := e.index.AddSignature(ctx, id, e.collection, externalID, embedding); err != nil {
		return nil, fmt.Errorf("register signature: %w", err)
	}

	return &models.FaceSignature{ID: id.String(), Collection: e.collection}, nil
}

// Match searches the collection for signatures closest to the probe image,
// ordered by descending similarity. Candidates below minSimilarity are
// excluded by the index query. An image with no detectable face yields an
// empty result.
func (e *Engine) Match(ctx context.Context, img models.Image, minSimilarity float64) ([]models.MatchCandidate, error) {
	embedding, found, err := e.embedPrimaryFace(ctx, img)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	start := time.Now()
	matches, err := e.index.SearchSignatures(ctx, e.collection, embedding, minSimilarity, 5)
	observability.InferenceDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search signatures: %w", err)
	}

	candidates := make([]models.MatchCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, models.MatchCandidate{
			FaceID:     m.ID.String(),
			Similarity: m.Similarity,
		})
	}
	return candidates, nil
}

// embedPrimaryFace detects faces and embeds the highest-confidence one.
// found is false when the image contains no detectable face.
func (e *Engine) embedPrimaryFace(ctx context.Context, img models.Image) ([]float32, bool, error) {
	data := img.Data
	if len(data) == 0 {
		var err error
		data, err = e.blobs.Get(ctx, img.Key)
		if err != nil {
			return nil, false, fmt.Errorf("load image %s: %w", img.Key, err)
		}
	}

	decoded, err := decodeImage(data)
	if err != nil {
		return nil, false, err
	}

	bounds := decoded.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()

	start := time.Now()
	detInput := preprocessForDetection(decoded, e.det.inputW, e.det.inputH)
	observability.InferenceDuration.WithLabelValues("preprocess").Observe(time.Since(start).Seconds())

	start = time.Now()
	detections, err := e.det.detect(detInput, origW, origH)
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("detect: %w", err)
	}
	if len(detections) == 0 {
		return nil, false, nil
	}

	best := detections[0]
	for _, d := range detections[1:] {
		if d.confidence > best.confidence {
			best = d
		}
	}

	crop := cropFace(decoded, best.bbox)
	if crop == nil {
		return nil, false, fmt.Errorf("crop face: degenerate bounding box")
	}

	start = time.Now()
	embInput := preprocessForEmbedding(crop, e.emb.inputW, e.emb.inputH)
	embedding, err := e.emb.extract(embInput)
	observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("embed: %w", err)
	}

	return embedding, true, nil
}

// Close releases the ONNX sessions.
func (e *Engine) Close() {
	if e.det != nil {
		e.det.close()
	}
	if e.emb != nil {
		e.emb.close()
	}
}
