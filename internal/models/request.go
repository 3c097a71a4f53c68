package models

// BuyInType distinguishes cash from credit.
type BuyInType string

const (
	BuyInCash   BuyInType = "CASH"
	BuyInCredit BuyInType = "CREDIT"
)

// Valid reports whether t is CASH or CREDIT.
func (t BuyInType) Valid() bool {
	return t == BuyInCash || t == BuyInCredit
}

// RequestStatus is the resolution state of a chip request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestDeclined RequestStatus = "DECLINED"
	RequestEdited   RequestStatus = "EDITED"
)

// ChipRequest is a player's ask for more chips. Once it leaves PENDING it is
// never modified again.
type ChipRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID       string
	GameID   string
	PlayerID string

	Type   BuyInType
	Amount int64
	Status RequestStatus

	// EditedAmount is set only when Status is EDITED. Amount keeps the
	// original ask for display.
	EditedAmount *int64

	// ResolvedBy is the player ID of whoever resolved the request.
	ResolvedBy string

	CreatedAt  int64
	ResolvedAt int64
}

// EffectiveAmount is what the ledger recorded (or would record) for the request.
func (r *ChipRequest) EffectiveAmount() int64 {
	if r.Status == RequestEdited && r.EditedAmount != nil {
		return *r.EditedAmount
	}
	return r.Amount
}

// Clone returns a deep copy of the request.
func (r *ChipRequest) Clone() *ChipRequest {
	c := *r
	if r.EditedAmount != nil {
		v := *r.EditedAmount
		c.EditedAmount = &v
	}
	return &c
}
