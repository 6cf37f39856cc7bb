package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/pkg/dto"
)

type RecordStore interface {
	ListRecords(ctx context.Context, userID string, limit, offset int) ([]models.FaceRecord, int, error)
	GetRecordByFaceID(ctx context.Context, faceID string) (*models.FaceRecord, error)
}

type BlobGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// RecordHandler exposes read-only access to enrollment metadata and the
// stored source images.
type RecordHandler struct {
	db    RecordStore
	blobs BlobGetter
}

func NewRecordHandler(db RecordStore, blobs BlobGetter) *RecordHandler {
	return &RecordHandler{db: db, blobs: blobs}
}

func (h *RecordHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	userID := c.Query("user_id")

	records, total, err := h.db.ListRecords(c.Request.Context(), userID, limit, offset)
	if err != nil {
		slog.Error("list records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	resp := make([]dto.RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, recordResponse(rec))
	}

	c.JSON(http.StatusOK, dto.RecordListResponse{Records: resp, Total: total})
}

func (h *RecordHandler) Get(c *gin.Context) {
	rec, err := h.db.GetRecordByFaceID(c.Request.Context(), c.Param("faceId"))
	if err != nil {
		slog.Error("get record", "face_id", c.Param("faceId"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, recordResponse(*rec))
}

// Image proxies the enrolled source image from the blob store.
func (h *RecordHandler) Image(c *gin.Context) {
	rec, err := h.db.GetRecordByFaceID(c.Request.Context(), c.Param("faceId"))
	if err != nil {
		slog.Error("get record", "face_id", c.Param("faceId"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	data, err := h.blobs.Get(c.Request.Context(), rec.BlobKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

func recordResponse(rec models.FaceRecord) dto.RecordResponse {
	return dto.RecordResponse{
		FaceID:     rec.FaceID,
		UserID:     rec.UserID,
		BlobKey:    rec.BlobKey,
		EnrolledAt: rec.EnrolledAt,
		ImageURL:   "/v1/records/" + rec.FaceID + "/image",
	}
}
