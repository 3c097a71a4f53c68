package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
)

// upsertRequest writes a chip request. position keeps submission order.
func upsertRequest(ctx context.Context, tx *sql.Tx, r *models.ChipRequest, position int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chip_requests (id, game_id, player_id, position, type, amount, status, edited_amount,
			resolved_by, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			edited_amount = excluded.edited_amount,
			resolved_by = excluded.resolved_by,
			resolved_at = excluded.resolved_at`,
		r.ID, r.GameID, r.PlayerID, position, string(r.Type), r.Amount, string(r.Status), nullInt(r.EditedAmount),
		r.ResolvedBy, r.CreatedAt, r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chip request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listRequests(ctx context.Context, gameID string) ([]*models.ChipRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, player_id, type, amount, status, edited_amount, resolved_by, created_at, resolved_at
		FROM chip_requests WHERE game_id = ? ORDER BY position`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get chip requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ChipRequest
	for rows.Next() {
		r := &models.ChipRequest{}
		var typ, status string
		var edited sql.NullInt64
		if err := rows.Scan(&r.ID, &r.GameID, &r.PlayerID, &typ, &r.Amount, &status, &edited,
			&r.ResolvedBy, &r.CreatedAt, &r.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chip request: %w", err)
		}
		r.Type = models.BuyInType(typ)
		r.Status = models.RequestStatus(status)
		r.EditedAmount = intPtr(edited)
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chip requests: %w", err)
	}
	return requests, nil
}
