package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultKind = "inject"

// Record stores a render and moves the head for its path. If the content hash
// hasn't changed since the last render of that path, the record is skipped.
func Record(ctx context.Context, db *sql.DB, input RenderInput) (RenderResult, error) {
	if db == nil {
		return RenderResult{}, errors.New("ledger: db is nil")
	}
	if input.Path == "" {
		return RenderResult{}, errors.New("ledger: path is required")
	}
	if len(input.Content) == 0 {
		return RenderResult{}, errors.New("ledger: content is required")
	}

	kind := input.Kind
	if kind == "" {
		kind = defaultKind
	}

	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	hash := hashContent(input.Content)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return RenderResult{}, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	var previousID sql.NullString
	var previousHash sql.NullString
	row := tx.QueryRowContext(ctx, `
		SELECT current_render_id, content_hash
		FROM render_heads
		WHERE path = ?
	`, input.Path)
	if err := row.Scan(&previousID, &previousHash); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return RenderResult{}, fmt.Errorf("ledger: query head: %w", err)
	}

	if previousHash.Valid && previousHash.String == hash {
		return RenderResult{
			Path:     input.Path,
			RenderID: previousID.String,
			Hash:     hash,
			Skipped:  true,
			Reason:   "content unchanged",
		}, nil
	}

	renderID := uuid.NewString()
	var previous any
	if previousID.Valid {
		previous = previousID.String
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO renders (
			id, path, kind, source_path, content_hash,
			image_count, size_bytes, previous_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, renderID, input.Path, kind, nullIfEmpty(input.SourcePath), hash,
		input.Images, len(input.Content), previous, timestamp)
	if err != nil {
		return RenderResult{}, fmt.Errorf("ledger: insert render: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO render_heads (path, current_render_id, content_hash, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			current_render_id = excluded.current_render_id,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`, input.Path, renderID, hash, timestamp)
	if err != nil {
		return RenderResult{}, fmt.Errorf("ledger: upsert head: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return RenderResult{}, fmt.Errorf("ledger: commit: %w", err)
	}

	return RenderResult{
		Path:       input.Path,
		RenderID:   renderID,
		Hash:       hash,
		Created:    !previousID.Valid,
		Updated:    previousID.Valid,
		PreviousID: previousID.String,
	}, nil
}

// List returns the most recent renders, newest first. limit <= 0 returns all.
func List(ctx context.Context, db *sql.DB, limit int) ([]Render, error) {
	if db == nil {
		return nil, errors.New("ledger: db is nil")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, path, kind, COALESCE(source_path, ''), content_hash,
			image_count, size_bytes, COALESCE(previous_id, ''), created_at
		FROM renders
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: query renders: %w", err)
	}
	defer rows.Close()

	var out []Render
	for rows.Next() {
		var r Render
		if err := rows.Scan(&r.ID, &r.Path, &r.Kind, &r.SourcePath, &r.Hash,
			&r.Images, &r.Size, &r.PreviousID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan render: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
