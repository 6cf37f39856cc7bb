package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/faceid/internal/api/handlers"
	"github.com/your-org/faceid/internal/api/ws"
	"github.com/your-org/faceid/internal/auth"
)

type RouterConfig struct {
	APIKey     string
	Enroller   handlers.EnrollService
	Recognizer handlers.RecognizeService
	Records    handlers.RecordStore
	Blobs      handlers.BlobGetter
	Checks     map[string]handlers.Pinger
	Hub        *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Checks)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// Enrollment & recognition
	faceH := handlers.NewFaceHandler(cfg.Enroller, cfg.Recognizer)
	v1.POST("/enroll", faceH.Enroll)
	v1.POST("/recognize", faceH.Recognize)

	// Enrollment metadata
	recordH := handlers.NewRecordHandler(cfg.Records, cfg.Blobs)
	v1.GET("/records", recordH.List)
	v1.GET("/records/:faceId", recordH.Get)
	v1.GET("/records/:faceId/image", recordH.Image)

	// Live enrollment feed
	if cfg.Hub != nil {
		v1.GET("/ws", cfg.Hub.HandleWS)
	}

	return r
}
