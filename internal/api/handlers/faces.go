package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/service"
	"github.com/your-org/faceid/pkg/dto"
)

// EnrollService and RecognizeService are the workflow entry points. They
// are injected so handlers can be tested without live adapters.
type EnrollService interface {
	Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResponse, error)
}

type RecognizeService interface {
	Recognize(ctx context.Context, req dto.RecognizeRequest) (*dto.RecognizeResponse, error)
}

type FaceHandler struct {
	enroller   EnrollService
	recognizer RecognizeService
}

func NewFaceHandler(enroller EnrollService, recognizer RecognizeService) *FaceHandler {
	return &FaceHandler{enroller: enroller, recognizer: recognizer}
}

func (h *FaceHandler) Enroll(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		observability.Enrollments.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "unable to read request body"})
		return
	}

	var req dto.EnrollRequest
	if err := dto.DecodeBody(body, &req); err != nil {
		observability.Enrollments.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	resp, err := h.enroller.Enroll(c.Request.Context(), req)
	if err != nil {
		observability.Enrollments.WithLabelValues(respondWorkflowError(c, "enroll", err)).Inc()
		return
	}

	observability.Enrollments.WithLabelValues("enrolled").Inc()
	c.JSON(http.StatusOK, resp)
}

func (h *FaceHandler) Recognize(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		observability.Recognitions.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "unable to read request body"})
		return
	}

	var req dto.RecognizeRequest
	if err := dto.DecodeBody(body, &req); err != nil {
		observability.Recognitions.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	resp, err := h.recognizer.Recognize(c.Request.Context(), req)
	if err != nil {
		observability.Recognitions.WithLabelValues(respondWorkflowError(c, "recognize", err)).Inc()
		return
	}

	outcome := "unmatched"
	if resp.Recognized {
		outcome = "matched"
	}
	observability.Recognitions.WithLabelValues(outcome).Inc()
	c.JSON(http.StatusOK, resp)
}

// respondWorkflowError maps workflow errors onto the public contract:
// validation and zero-face rejections are 400 with their reason,
// infrastructure faults are 500 with a generic message and the detail
// logged, never returned to the caller. Returns the metrics outcome label.
func respondWorkflowError(c *gin.Context, workflow string, err error) string {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Reason})
		return "rejected"
	}

	if errors.Is(err, service.ErrNoFaceDetected) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No face detected in image"})
		return "rejected"
	}

	slog.Error("workflow failed", "workflow", workflow, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	return "failed"
}
