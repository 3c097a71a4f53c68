package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
)

// upsertPlayer writes a player row and replaces its credit assignments.
func upsertPlayer(ctx context.Context, tx *sql.Tx, p *models.Player) error {
	var frozenCash, frozenCredit, frozenTotal any
	if p.FrozenBuyIn != nil {
		frozenCash, frozenCredit, frozenTotal = p.FrozenBuyIn.CashIn, p.FrozenBuyIn.CreditIn, p.FrozenBuyIn.Total
	}
	var distCash any
	var distSource string
	var distCommittedAt int64
	if p.Distribution != nil {
		distCash = p.Distribution.Cash
		distSource = string(p.Distribution.Source)
		distCommittedAt = p.Distribution.CommittedAt
	}
	var payoutCash, payoutCredit any
	if p.Payout != nil {
		payoutCash, payoutCredit = p.Payout.Cash, p.Payout.Credit
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (id, game_id, name, is_manager, join_order, joined_at, is_active, current_chips,
			total_cash_in, total_credit_in, credits_owed, checkout_requested, checkout_status,
			frozen_cash_in, frozen_credit_in, frozen_total, submitted_chip_count, preferred_cash, preferred_credit,
			validated_chip_count, chips_after_credit, credit_repaid, profit_loss, input_locked, excess_absorbed,
			dist_cash, dist_source, dist_committed_at, payout_cash, payout_credit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active,
			current_chips = excluded.current_chips,
			total_cash_in = excluded.total_cash_in,
			total_credit_in = excluded.total_credit_in,
			credits_owed = excluded.credits_owed,
			checkout_requested = excluded.checkout_requested,
			checkout_status = excluded.checkout_status,
			frozen_cash_in = excluded.frozen_cash_in,
			frozen_credit_in = excluded.frozen_credit_in,
			frozen_total = excluded.frozen_total,
			submitted_chip_count = excluded.submitted_chip_count,
			preferred_cash = excluded.preferred_cash,
			preferred_credit = excluded.preferred_credit,
			validated_chip_count = excluded.validated_chip_count,
			chips_after_credit = excluded.chips_after_credit,
			credit_repaid = excluded.credit_repaid,
			profit_loss = excluded.profit_loss,
			input_locked = excluded.input_locked,
			excess_absorbed = excluded.excess_absorbed,
			dist_cash = excluded.dist_cash,
			dist_source = excluded.dist_source,
			dist_committed_at = excluded.dist_committed_at,
			payout_cash = excluded.payout_cash,
			payout_credit = excluded.payout_credit`,
		p.ID, p.GameID, p.Name, boolInt(p.IsManager), p.JoinOrder, p.JoinedAt, boolInt(p.IsActive), p.CurrentChips,
		p.TotalCashIn, p.TotalCreditIn, p.CreditsOwed, boolInt(p.CheckoutRequested), string(p.CheckoutStatus),
		frozenCash, frozenCredit, frozenTotal, nullInt(p.SubmittedChipCount), p.PreferredCash, p.PreferredCredit,
		nullInt(p.ValidatedChipCount), p.ChipsAfterCredit, p.CreditRepaid, p.ProfitLoss, boolInt(p.InputLocked), p.ExcessAbsorbed,
		distCash, distSource, distCommittedAt, payoutCash, payoutCredit,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM credit_assignments WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear credit assignments: %w", err)
	}
	if p.Distribution == nil {
		return nil
	}
	for i, c := range p.Distribution.Credit {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO credit_assignments (player_id, position, from_player_id, amount) VALUES (?, ?, ?, ?)",
			p.ID, i, c.From, c.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert credit assignment: %w", err)
		}
	}
	return nil
}

// listPlayers loads a game's players in join order, then their credit
// assignments in a second query so no two result sets are open at once.
func (s *SQLiteStore) listPlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, name, is_manager, join_order, joined_at, is_active, current_chips,
			total_cash_in, total_credit_in, credits_owed, checkout_requested, checkout_status,
			frozen_cash_in, frozen_credit_in, frozen_total, submitted_chip_count, preferred_cash, preferred_credit,
			validated_chip_count, chips_after_credit, credit_repaid, profit_loss, input_locked, excess_absorbed,
			dist_cash, dist_source, dist_committed_at, payout_cash, payout_credit
		FROM players WHERE game_id = ? ORDER BY join_order`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	byID := make(map[string]*models.Player)
	for rows.Next() {
		p := &models.Player{}
		var isManager, isActive, checkoutRequested, inputLocked int
		var status, distSource string
		var distCommittedAt int64
		var frozenCash, frozenCredit, frozenTotal, submitted, validated, distCash, payoutCash, payoutCredit sql.NullInt64
		if err := rows.Scan(
			&p.ID, &p.GameID, &p.Name, &isManager, &p.JoinOrder, &p.JoinedAt, &isActive, &p.CurrentChips,
			&p.TotalCashIn, &p.TotalCreditIn, &p.CreditsOwed, &checkoutRequested, &status,
			&frozenCash, &frozenCredit, &frozenTotal, &submitted, &p.PreferredCash, &p.PreferredCredit,
			&validated, &p.ChipsAfterCredit, &p.CreditRepaid, &p.ProfitLoss, &inputLocked, &p.ExcessAbsorbed,
			&distCash, &distSource, &distCommittedAt, &payoutCash, &payoutCredit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.IsManager = isManager == 1
		p.IsActive = isActive == 1
		p.CheckoutRequested = checkoutRequested == 1
		p.InputLocked = inputLocked == 1
		p.CheckoutStatus = models.CheckoutStatus(status)
		p.SubmittedChipCount = intPtr(submitted)
		p.ValidatedChipCount = intPtr(validated)
		if frozenCash.Valid {
			p.FrozenBuyIn = &models.FrozenBuyIn{
				CashIn:   frozenCash.Int64,
				CreditIn: frozenCredit.Int64,
				Total:    frozenTotal.Int64,
			}
		}
		if distCash.Valid {
			p.Distribution = &models.Distribution{
				Cash:        distCash.Int64,
				Source:      models.DistributionSource(distSource),
				CommittedAt: distCommittedAt,
			}
		}
		if payoutCash.Valid {
			p.Payout = &models.Payout{Cash: payoutCash.Int64, Credit: payoutCredit.Int64}
		}
		players = append(players, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	rows.Close()

	assignRows, err := s.db.QueryContext(ctx, `
		SELECT ca.player_id, ca.from_player_id, ca.amount
		FROM credit_assignments ca JOIN players p ON p.id = ca.player_id
		WHERE p.game_id = ? ORDER BY ca.player_id, ca.position`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get credit assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var playerID string
		var c models.CreditAssignment
		if err := assignRows.Scan(&playerID, &c.From, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan credit assignment: %w", err)
		}
		p, ok := byID[playerID]
		if !ok || p.Distribution == nil {
			continue
		}
		p.Distribution.Credit = append(p.Distribution.Credit, c)
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credit assignments: %w", err)
	}

	return players, nil
}
