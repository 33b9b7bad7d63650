package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samhitalabs/sync/internal/analysis"
)

// UploadRecord is one row of a user's upload history.
type UploadRecord struct {
	ID          uuid.UUID `json:"id"`
	UserEmail   string    `json:"userEmail"`
	FileName    string    `json:"fileName"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	MemoryBytes int64     `json:"memoryBytes"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EnsureSchema creates the upload history table when missing.
func (s *Service) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS uploads (
			id           UUID PRIMARY KEY,
			user_email   TEXT NOT NULL,
			file_name    TEXT NOT NULL,
			row_count    INTEGER NOT NULL,
			col_count    INTEGER NOT NULL,
			memory_bytes BIGINT NOT NULL,
			ip_address   TEXT,
			user_agent   TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating uploads table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS uploads_user_created_idx
		ON uploads (user_email, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("indexing uploads table: %w", err)
	}
	return nil
}

// recordUpload writes one history row. Request metadata comes from the
// context when the web layer has attached it.
func (s *Service) recordUpload(ctx context.Context, userEmail, fileName string, ov analysis.Overview) error {
	if s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO uploads (id, user_email, file_name, row_count, col_count, memory_bytes, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), userEmail, fileName, ov.Rows, ov.Cols, ov.MemoryBytes,
		GetIPAddressFromContext(ctx), GetUserAgentFromContext(ctx))
	if err != nil {
		return fmt.Errorf("inserting upload record: %w", err)
	}
	return nil
}

const maxHistoryLimit = 200

// History lists a user's uploads, newest first.
func (s *Service) History(ctx context.Context, userEmail string, limit int) ([]UploadRecord, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = 50
	}

	// History is best effort, like recording itself.
	if s.pool == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_email, file_name, row_count, col_count, memory_bytes,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM uploads
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upload history: %w", err)
	}
	defer rows.Close()

	var out []UploadRecord
	for rows.Next() {
		var r UploadRecord
		if err := rows.Scan(&r.ID, &r.UserEmail, &r.FileName, &r.Rows, &r.Cols,
			&r.MemoryBytes, &r.IPAddress, &r.UserAgent, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning upload record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading upload history: %w", err)
	}
	return out, nil
}
