package models

// LedgerKind classifies a ledger entry.
type LedgerKind string

const (
	// LedgerBuyInCash and LedgerBuyInCredit come from approved chip requests.
	LedgerBuyInCash   LedgerKind = "BUY_IN_CASH"
	LedgerBuyInCredit LedgerKind = "BUY_IN_CREDIT"

	// LedgerCreditRepaid is credit a player repaid with their own chips.
	LedgerCreditRepaid LedgerKind = "CREDIT_REPAID"

	// LedgerCreditAbsorbed moves a debtor's outstanding credit to the
	// creditor named in CounterpartyID.
	LedgerCreditAbsorbed LedgerKind = "CREDIT_ABSORBED"

	// LedgerPayoutCash and LedgerPayoutCredit are written once, when a
	// player's checkout completes.
	LedgerPayoutCash   LedgerKind = "PAYOUT_CASH"
	LedgerPayoutCredit LedgerKind = "PAYOUT_CREDIT"
)

// LedgerEntry is one money movement. Entries are never updated or removed.
type LedgerEntry struct {
	ID       string
	GameID   string
	PlayerID string
	Kind     LedgerKind
	Amount   int64

	// RequestID links buy-in entries to the approved request.
	RequestID string

	// CounterpartyID is the other player in a credit transfer.
	CounterpartyID string

	Seq       int64
	CreatedAt int64
}
