package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
)

func (s *SQLiteStore) listLedger(ctx context.Context, gameID string) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, player_id, kind, amount, request_id, counterparty_id, seq, created_at
		FROM ledger_entries WHERE game_id = ? ORDER BY seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.GameID, &e.PlayerID, &kind, &e.Amount, &e.RequestID,
			&e.CounterpartyID, &e.Seq, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Kind = models.LedgerKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
