// backend/src/services/escrow_service.go
package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/security/validation"
)

type escrowServiceImpl struct {
	store      EscrowStore
	expiry     time.Duration
	feePercent decimal.Decimal
	flatFee    decimal.Decimal
}

// NewEscrowService wires the coordinator to its storage collaborator.
// expiry is the advisory dispute window stamped on every new transaction;
// feePercent and flatFee drive QuoteFee.
func NewEscrowService(store EscrowStore, expiry time.Duration, feePercent, flatFee decimal.Decimal) EscrowService {
	return &escrowServiceImpl{
		store:      store,
		expiry:     expiry,
		feePercent: feePercent,
		flatFee:    flatFee,
	}
}

func (s *escrowServiceImpl) Create(input EscrowCreateInput) (*models.EscrowTransaction, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidEscrowAmount, input.Amount)
	}
	if input.BuyerID == input.SellerID {
		return nil, fmt.Errorf("%w: user %d", ErrBuyerIsSeller, input.BuyerID)
	}

	now := time.Now().UTC()
	tx := &models.EscrowTransaction{
		TradeID:       input.TradeID,
		BuyerID:       input.BuyerID,
		SellerID:      input.SellerID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Status:        models.EscrowPending,
		ExpiresAt:     now.Add(s.expiry),
		CreatedAt:     now,
	}

	id, err := s.store.Insert(tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	logger.L.Info("Escrow transaction created",
		"escrowID", id, "tradeID", tx.TradeID, "amount", tx.Amount.String(), "expiresAt", tx.ExpiresAt)
	return tx, nil
}

// Fund marks the buyer's payment as cleared. Valid only from pending.
func (s *escrowServiceImpl) Fund(id int64) (*models.EscrowTransaction, error) {
	return s.transition(id, []models.EscrowStatus{models.EscrowPending}, models.EscrowFunded, TimestampFundedAt)
}

// Release hands the held funds to the seller. Valid only from funded; the
// both-parties-confirmed requirement is enforced by the caller, not here.
func (s *escrowServiceImpl) Release(id int64) (*models.EscrowTransaction, error) {
	return s.transition(id, []models.EscrowStatus{models.EscrowFunded}, models.EscrowReleased, TimestampReleased)
}

// Refund returns the funds to the buyer when the trade is cancelled before
// release.
func (s *escrowServiceImpl) Refund(id int64) (*models.EscrowTransaction, error) {
	return s.transition(id, models.ActiveEscrowStatuses(), models.EscrowRefunded, TimestampReleased)
}

// Dispute freezes the transaction from any non-terminal state. The reason is
// mandatory and recorded for the back-office; resolution itself is a manual
// process outside this service.
func (s *escrowServiceImpl) Dispute(id int64, reason string) (*models.EscrowTransaction, error) {
	reason = validation.SanitizeText(reason)
	if reason == "" {
		return nil, ErrDisputeReasonRequired
	}

	tx, err := s.transition(id, models.ActiveEscrowStatuses(), models.EscrowDisputed, TimestampNone)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertDispute(id, reason); err != nil {
		// The status flip already happened; losing the reason row must not
		// report the dispute itself as failed.
		logger.L.Error("Dispute reason could not be recorded", "escrowID", id, "error", err)
	}
	logger.L.Warn("Escrow transaction disputed", "escrowID", id, "reason", reason)
	return tx, nil
}

func (s *escrowServiceImpl) Get(id int64) (*models.EscrowTransaction, error) {
	tx, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrEscrowNotFound
	}
	return tx, nil
}

// transition runs one guarded status update. Zero affected rows means the
// guard did not match: the caller learns whether the row is missing or the
// transaction sits in a state the transition does not accept. Storage errors
// pass through wrapped; no retries happen here, since a blind retry of a
// conditional update is only safe when the caller re-derives the prior state.
func (s *escrowServiceImpl) transition(id int64, from []models.EscrowStatus, to models.EscrowStatus, timestampField string) (*models.EscrowTransaction, error) {
	affected, err := s.store.UpdateStatusIfCurrent(id, from, to, timestampField)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		current, err := s.store.Get(id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("%w: escrow %d is %s, cannot move to %s",
			ErrPreconditionFailed, id, current.Status, to)
	}

	updated, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrEscrowNotFound
	}
	logger.L.Info("Escrow transition applied", "escrowID", id, "status", updated.Status)
	return updated, nil
}

// QuoteFee computes the platform fee: a percentage of the amount plus a flat
// charge, rounded to whole currency units with ties going away from zero.
func (s *escrowServiceImpl) QuoteFee(amount decimal.Decimal) (FeeQuote, error) {
	if !amount.IsPositive() {
		return FeeQuote{}, fmt.Errorf("%w: got %s", ErrInvalidEscrowAmount, amount)
	}
	fee := amount.Mul(s.feePercent).Div(oneHundred).Add(s.flatFee).Round(0)
	return FeeQuote{Fee: fee, Total: amount.Add(fee)}, nil
}

var oneHundred = decimal.NewFromInt(100)
