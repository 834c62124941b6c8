package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowStatus is the lifecycle state of funds held in trust for a trade.
type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowFunded   EscrowStatus = "funded"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowDisputed EscrowStatus = "disputed"
)

// IsTerminal reports whether no further transition is possible. Disputed is
// terminal here: resolving a dispute is a manual back-office operation, not
// something this service automates.
func (s EscrowStatus) IsTerminal() bool {
	switch s {
	case EscrowReleased, EscrowRefunded, EscrowDisputed:
		return true
	}
	return false
}

// ActiveEscrowStatuses returns the statuses a transaction can still leave.
// Refund and dispute guards are built from this list so they stay in sync
// with IsTerminal.
func ActiveEscrowStatuses() []EscrowStatus {
	all := []EscrowStatus{EscrowPending, EscrowFunded, EscrowReleased, EscrowRefunded, EscrowDisputed}
	active := make([]EscrowStatus, 0, len(all))
	for _, s := range all {
		if !s.IsTerminal() {
			active = append(active, s)
		}
	}
	return active
}

// EscrowTransaction records funds held for a trade that needs a cash
// settlement. Status is the only mutable field; every status change is a
// guarded conditional update against the store, never an unconditional write.
// ExpiresAt is advisory data for the dispute-window policy; nothing in this
// service sweeps expired rows.
type EscrowTransaction struct {
	ID            int64           `json:"id"`
	TradeID       int64           `json:"trade_id"`
	BuyerID       int64           `json:"buyer_id"`
	SellerID      int64           `json:"seller_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        EscrowStatus    `json:"status"`
	FundedAt      *time.Time      `json:"funded_at,omitempty"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
