package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"channel_reporter/internal/domain/enums"
	"channel_reporter/internal/domain/model"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Save(ctx context.Context, entry model.Audit) error {
	if r.db == nil {
		return nil
	}

	payload := entry.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reporter_audit (actor_tg_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ActorTGID, string(entry.Action), string(payload), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reporter audit: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first. A non-empty actions list
// restricts the result to those actions.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int, actions []enums.AuditAction) ([]model.Audit, error) {
	if r.db == nil {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if len(actions) == 0 {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id::text, actor_tg_id, action, payload, created_at
			FROM reporter_audit
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	} else {
		names := make([]string, 0, len(actions))
		for _, action := range actions {
			names = append(names, string(action))
		}
		rows, err = r.db.QueryContext(ctx, `
			SELECT id::text, actor_tg_id, action, payload, created_at
			FROM reporter_audit
			WHERE action = ANY($2)
			ORDER BY created_at DESC
			LIMIT $1
		`, limit, pq.Array(names))
	}
	if err != nil {
		return nil, fmt.Errorf("list recent reporter audit: %w", err)
	}
	defer rows.Close()

	result := make([]model.Audit, 0, limit)
	for rows.Next() {
		var entry model.Audit
		var action string
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.ActorTGID, &action, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reporter audit row: %w", err)
		}
		entry.Action = enums.AuditAction(action)
		entry.Payload = json.RawMessage(payload)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reporter audit rows: %w", err)
	}

	return result, nil
}
