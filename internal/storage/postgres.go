package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/faceid/internal/config"
	"github.com/your-org/faceid/internal/models"
)

// pgxPool is the subset of pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type PostgresStore struct {
	pool pgxPool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS face_records (
			id              BIGSERIAL PRIMARY KEY,
			face_id         TEXT NOT NULL UNIQUE,
			user_id         TEXT NOT NULL,
			blob_key        TEXT NOT NULL,
			enrolled_at_ms  BIGINT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_face_records_user ON face_records (user_id)`,
		`CREATE TABLE IF NOT EXISTS face_signatures (
			id          UUID PRIMARY KEY,
			collection  TEXT NOT NULL,
			external_id TEXT NOT NULL,
			embedding   vector(512) NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_face_signatures_collection ON face_signatures (collection)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- Face records (metadata repository) ---

// UpsertRecord writes a face record keyed by face_id. Writing the same
// record twice is a no-op in effect.
func (s *PostgresStore) UpsertRecord(ctx context.Context, rec models.FaceRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO face_records (face_id, user_id, blob_key, enrolled_at_ms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (face_id) DO UPDATE
		 SET user_id = EXCLUDED.user_id,
		     blob_key = EXCLUDED.blob_key,
		     enrolled_at_ms = EXCLUDED.enrolled_at_ms`,
		rec.FaceID, rec.UserID, rec.BlobKey, rec.EnrolledAt)
	if err != nil {
		return fmt.Errorf("upsert face record: %w", err)
	}
	return nil
}

// GetRecordByFaceID returns the record for a face id, or nil when no record
// exists.
func (s *PostgresStore) GetRecordByFaceID(ctx context.Context, faceID string) (*models.FaceRecord, error) {
	rec := &models.FaceRecord{}
	err := s.pool.QueryRow(ctx,
		`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records WHERE face_id = $1`,
		faceID,
	).Scan(&rec.FaceID, &rec.UserID, &rec.BlobKey, &rec.EnrolledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get face record: %w", err)
	}
	return rec, nil
}

// ListRecords returns a page of face records, newest first, plus the total
// count.
func (s *PostgresStore) ListRecords(ctx context.Context, userID string, limit, offset int) ([]models.FaceRecord, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []interface{}{}
	if userID != "" {
		where = "WHERE user_id = $1"
		args = append(args, userID)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_records "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count face records: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT face_id, user_id, blob_key, enrolled_at_ms FROM face_records %s
		 ORDER BY enrolled_at_ms DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list face records: %w", err)
	}
	defer rows.Close()

	var records []models.FaceRecord
	for rows.Next() {
		var rec models.FaceRecord
		if err := rows.Scan(&rec.FaceID, &rec.UserID, &rec.BlobKey, &rec.EnrolledAt); err != nil {
			return nil, 0, fmt.Errorf("scan face record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list face records: %w", err)
	}
	return records, total, nil
}

// --- Face signatures (signature engine index) ---

// AddSignature registers an embedding in a collection under a new signature id.
func (s *PostgresStore) AddSignature(ctx context.Context, id uuid.UUID, collection, externalID string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO face_signatures (id, collection, external_id, embedding) VALUES ($1, $2, $3, $4)`,
		id, collection, externalID, vec)
	if err != nil {
		return fmt.Errorf("add face signature: %w", err)
	}
	return nil
}

// SignatureMatch is one scored row from a signature search.
type SignatureMatch struct {
	ID         uuid.UUID
	Similarity float64
}

// SearchSignatures finds the closest signatures in a collection for the
// given embedding. Similarity is cosine-based, scaled to [0,100];
// rows below minSimilarity are filtered out by the query itself.
func (s *PostgresStore) SearchSignatures(ctx context.Context, collection string, embedding []float32, minSimilarity float64, limit int) ([]SignatureMatch, error) {
	if limit <= 0 {
		limit = 5
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx,
		`SELECT id, (1 - (embedding <=> $1)) * 100 AS similarity
		 FROM face_signatures
		 WHERE collection = $2
		   AND (1 - (embedding <=> $1)) * 100 >= $3
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		vec, collection, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("search face signatures: %w", err)
	}
	defer rows.Close()

	var matches []SignatureMatch
	for rows.Next() {
		var m SignatureMatch
		if err := rows.Scan(&m.ID, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan signature match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search face signatures: %w", err)
	}
	return matches, nil
}
