package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/opscart/k8s-risk-advisor/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		dsn: dsn,
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveRecommendationState upserts the interaction state for a
// recommendation id.
func (s *PostgresStore) SaveRecommendationState(ctx context.Context, rec *models.Recommendation) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	query := `
		INSERT INTO recommendation_states (
			id, risk_type, severity, resource, cluster,
			reason, metric, confidence, source, state,
			snoozed_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			severity = EXCLUDED.severity,
			reason = EXCLUDED.reason,
			metric = EXCLUDED.metric,
			confidence = EXCLUDED.confidence,
			source = EXCLUDED.source,
			state = EXCLUDED.state,
			snoozed_until = EXCLUDED.snoozed_until,
			updated_at = EXCLUDED.updated_at
	`

	var snoozedUntil *time.Time
	if rec.SnoozedUntil != nil {
		snoozedUntil = rec.SnoozedUntil
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Type, rec.Severity, rec.Name, rec.Cluster,
		rec.Reason, rec.Metric, rec.Confidence, rec.Source, rec.State,
		snoozedUntil, rec.CreatedAt, rec.UpdatedAt,
	)

	return err
}

// ListRecommendationStates retrieves all persisted recommendation states
func (s *PostgresStore) ListRecommendationStates(ctx context.Context) ([]*models.Recommendation, error) {
	query := `
		SELECT id, risk_type, severity, resource, cluster,
			reason, metric, confidence, source, state,
			snoozed_until, created_at, updated_at
		FROM recommendation_states
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recommendations []*models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var cluster, reason, metric sql.NullString
		var snoozedUntil sql.NullTime

		err := rows.Scan(
			&rec.ID, &rec.Type, &rec.Severity, &rec.Name, &cluster,
			&reason, &metric, &rec.Confidence, &rec.Source, &rec.State,
			&snoozedUntil, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		rec.Cluster = cluster.String
		rec.Reason = reason.String
		rec.Metric = metric.String
		if snoozedUntil.Valid {
			rec.SnoozedUntil = &snoozedUntil.Time
		}

		recommendations = append(recommendations, &rec)
	}

	return recommendations, rows.Err()
}

// DeleteRecommendationState removes a garbage-collected recommendation
func (s *PostgresStore) DeleteRecommendationState(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recommendation_states WHERE id = $1`, id)
	return err
}

// AppendFeedback appends one feedback record to the log
func (s *PostgresStore) AppendFeedback(ctx context.Context, record *models.FeedbackRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO feedback (id, recommendation_id, provider, accurate, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RecommendationID, record.Provider, record.Accurate, record.CreatedAt,
	)
	return err
}

// ListFeedback retrieves the full feedback log
func (s *PostgresStore) ListFeedback(ctx context.Context) ([]*models.FeedbackRecord, error) {
	query := `
		SELECT id, recommendation_id, provider, accurate, created_at
		FROM feedback
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.FeedbackRecord
	for rows.Next() {
		var record models.FeedbackRecord
		if err := rows.Scan(
			&record.ID, &record.RecommendationID, &record.Provider,
			&record.Accurate, &record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// ClearFeedback bulk-deletes the feedback log
func (s *PostgresStore) ClearFeedback(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM feedback`)
	return err
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
