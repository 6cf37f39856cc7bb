package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/faceid/internal/api"
	"github.com/your-org/faceid/internal/api/handlers"
	"github.com/your-org/faceid/internal/api/ws"
	"github.com/your-org/faceid/internal/config"
	"github.com/your-org/faceid/internal/models"
	"github.com/your-org/faceid/internal/notify"
	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/service"
	"github.com/your-org/faceid/internal/signature"
	"github.com/your-org/faceid/internal/storage"
	"github.com/your-org/faceid/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting faceid API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("migrate schema", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	blobs, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := blobs.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	publisher, err := notify.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	if err := publisher.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure nats stream", "error", err)
	}

	// WebSocket hub feeding enrollment announcements to subscribers
	hub := ws.NewHub()
	go hub.Run()

	consumer, err := notify.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create enrollment consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeEnrollments(ctx, "api-enrollments", func(ctx context.Context, msg jetstream.Msg) error {
		var ev models.EnrollmentEvent
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			return err
		}

		hub.BroadcastEvent(&dto.WSEvent{
			Type:   "face_enrolled",
			UserID: ev.UserID,
			Data: dto.EnrollmentNotice{
				FaceID:     ev.FaceID,
				UserID:     ev.UserID,
				EnrolledAt: ev.EnrolledAt,
			},
		})
		return nil
	})
	if err != nil {
		slog.Warn("start enrollment consumer", "error", err)
	}

	// Initialize ONNX Runtime and the signature engine
	ort.SetSharedLibraryPath(getONNXLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Error("onnx runtime init", "error", err)
		os.Exit(1)
	}
	defer ort.DestroyEnvironment()

	engine, err := signature.NewEngine(cfg.Recognition, db, blobs)
	if err != nil {
		slog.Error("signature engine init", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Workflows
	enroller := service.NewEnroller(blobs, engine, db, publisher)
	recognizer := service.NewRecognizer(blobs, engine, db, cfg.Recognition.MatchThreshold)

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:     cfg.Server.APIKey,
		Enroller:   enroller,
		Recognizer: recognizer,
		Records:    db,
		Blobs:      blobs,
		Checks: map[string]handlers.Pinger{
			"postgres": db.Ping,
			"minio":    blobs.Ping,
			"nats":     func(context.Context) error { return publisher.Ping() },
		},
		Hub: hub,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

// getONNXLibPath returns the ONNX Runtime shared library path.
func getONNXLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}
