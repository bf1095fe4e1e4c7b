package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/resume"
	"github.com/bhanmrinal/cf-project/internal/versions"
)

// VersionBackend implements versions.Backend with one row per version and a
// head row holding the current pointer.
type VersionBackend struct {
	pool *pgxpool.Pool
}

var _ versions.Backend = (*VersionBackend)(nil)

func (b *VersionBackend) Load(ctx context.Context, resumeID string) (*resume.History, error) {
	var currentSeq, nextSeq int
	err := b.pool.QueryRow(ctx,
		`SELECT current_seq, next_seq FROM resume_heads WHERE resume_id = $1`,
		resumeID,
	).Scan(&currentSeq, &nextSeq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("resume", resumeID)
		}
		return nil, fmt.Errorf("get resume head %s: %w", resumeID, err)
	}

	rows, err := b.pool.Query(ctx,
		`SELECT seq, label, agent, content, created_at
		 FROM resume_versions WHERE resume_id = $1 ORDER BY seq`,
		resumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query versions of resume %s: %w", resumeID, err)
	}
	defer rows.Close()

	h := &resume.History{ResumeID: resumeID, NextSeq: nextSeq, Current: -1}
	for rows.Next() {
		var (
			v       = resume.Version{ResumeID: resumeID}
			content []byte
		)
		if err := rows.Scan(&v.Seq, &v.Label, &v.Agent, &content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		if err := json.Unmarshal(content, &v.Content); err != nil {
			return nil, fmt.Errorf("decode version %d of resume %s: %w", v.Seq, resumeID, err)
		}
		if v.Seq == currentSeq {
			h.Current = len(h.Versions)
		}
		h.Versions = append(h.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Save writes the head and brings the version rows in line with h. Stored
// versions are never rewritten: new ones are inserted and versions dropped by
// truncation are deleted.
func (b *VersionBackend) Save(ctx context.Context, h *resume.History) error {
	if err := h.Validate(); err != nil {
		return err
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO resume_heads (resume_id, current_seq, next_seq, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (resume_id) DO UPDATE SET current_seq = $2, next_seq = $3, updated_at = NOW()`,
		h.ResumeID, h.Versions[h.Current].Seq, h.NextSeq,
	)
	if err != nil {
		return fmt.Errorf("upsert resume head %s: %w", h.ResumeID, err)
	}

	// A history that never got past version 0 is a fresh one and replaces
	// whatever was stored under the id. Otherwise only truncated rows go.
	seqs := make([]int32, 0, len(h.Versions))
	if h.NextSeq > 1 {
		for _, v := range h.Versions {
			seqs = append(seqs, int32(v.Seq))
		}
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM resume_versions WHERE resume_id = $1 AND NOT (seq = ANY($2))`,
		h.ResumeID, seqs,
	); err != nil {
		return fmt.Errorf("delete discarded versions of resume %s: %w", h.ResumeID, err)
	}

	for _, v := range h.Versions {
		content, err := json.Marshal(v.Content)
		if err != nil {
			return fmt.Errorf("marshal version %d: %w", v.Seq, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO resume_versions (resume_id, seq, label, agent, content, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (resume_id, seq) DO NOTHING`,
			h.ResumeID, v.Seq, v.Label, v.Agent, content, v.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert version %d of resume %s: %w", v.Seq, h.ResumeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit resume %s: %w", h.ResumeID, err)
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
