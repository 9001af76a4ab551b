package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"supportbot/internal/logging"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Business is a registered tenant.
type Business struct {
	ID    int64
	Name  string
	Email string
	Tone  string
}

// FAQEntry is one question/answer pair. Embedding is nil when the entry was
// stored without one.
type FAQEntry struct {
	ID         int64
	BusinessID int64
	Question   string
	Answer     string
	Embedding  []float32
}

// FAQStore persists businesses and their FAQ entries.
type FAQStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// DriverFor picks the database/sql driver for a DSN: postgres for
// postgres:// URLs, sqlite for everything else.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// OpenFAQStore opens the database named by dsn and creates the schema.
func OpenFAQStore(ctx context.Context, dsn string, logger *zap.Logger) (*FAQStore, error) {
	driver := DriverFor(dsn)

	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
	}

	s := &FAQStore{db: db, driver: driver, logger: logging.For(logger, logging.CategoryStore)}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("FAQ store ready", zap.String("driver", driver))
	return s, nil
}

// initialize creates the required tables.
func (s *FAQStore) initialize(ctx context.Context) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		idCol = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS businesses (
		id %s,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		tone TEXT NOT NULL DEFAULT 'friendly'
	)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS faqs (
		id %s,
		business_id BIGINT NOT NULL REFERENCES businesses(id),
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		embedding TEXT
	)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_faqs_business ON faqs(business_id)`,
	}
	if s.driver == "sqlite" {
		stmts = append([]string{`PRAGMA foreign_keys = ON`}, stmts...)
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *FAQStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *FAQStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Onboard stores a business and its FAQ entries in one transaction and
// returns the new business id.
func (s *FAQStore) Onboard(ctx context.Context, b Business, entries []FAQEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if b.Tone == "" {
		b.Tone = "friendly"
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		s.rebind(`INSERT INTO businesses (name, email, tone) VALUES (?, ?, ?) RETURNING id`),
		b.Name, b.Email, b.Tone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert business: %w", err)
	}

	insert := s.rebind(`INSERT INTO faqs (business_id, question, answer, embedding) VALUES (?, ?, ?, ?)`)
	for _, e := range entries {
		emb, err := encodeEmbedding(e.Embedding)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, insert, id, e.Question, e.Answer, emb); err != nil {
			return 0, fmt.Errorf("failed to insert faq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit onboarding: %w", err)
	}

	s.logger.Debug("Business stored", zap.Int64("business_id", id), zap.Int("faqs", len(entries)))
	return id, nil
}

// FAQs returns a business's entries in insertion order. An unknown business
// has no entries.
func (s *FAQStore) FAQs(ctx context.Context, businessID int64) ([]FAQEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, business_id, question, answer, embedding FROM faqs WHERE business_id = ? ORDER BY id`),
		businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query faqs: %w", err)
	}
	defer rows.Close()

	var out []FAQEntry
	for rows.Next() {
		var (
			e   FAQEntry
			emb sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Question, &e.Answer, &emb); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		if emb.Valid && emb.String != "" {
			if err := json.Unmarshal([]byte(emb.String), &e.Embedding); err != nil {
				s.logger.Warn("Skipping unreadable embedding", zap.Int64("faq_id", e.ID), zap.Error(err))
				e.Embedding = nil
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *FAQStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func encodeEmbedding(v []float32) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode embedding: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
