// backend/src/services/escrow_store.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

// Timestamp columns a transition may stamp. Whitelisted so the guarded
// UPDATE can never be steered to another column.
const (
	TimestampNone     = ""
	TimestampFundedAt = "funded_at"
	TimestampReleased = "released_at"
)

type sqliteEscrowStore struct {
	db *sql.DB
}

// NewEscrowStore returns an EscrowStore over the given SQLite handle.
func NewEscrowStore(db *sql.DB) EscrowStore {
	return &sqliteEscrowStore{db: db}
}

func (s *sqliteEscrowStore) Insert(tx *models.EscrowTransaction) (int64, error) {
	query := `
	INSERT INTO escrow_transactions (trade_id, buyer_id, seller_id, amount, payment_method, status, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query,
		tx.TradeID, tx.BuyerID, tx.SellerID, tx.Amount.String(),
		tx.PaymentMethod, string(tx.Status), tx.ExpiresAt, tx.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting escrow transaction: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStatusIfCurrent performs the compare-and-swap:
// the status column only changes when the current value is one of `from`.
// The returned count tells the caller whether this invocation won the update.
func (s *sqliteEscrowStore) UpdateStatusIfCurrent(id int64, from []models.EscrowStatus, to models.EscrowStatus, timestampField string) (int64, error) {
	if len(from) == 0 {
		return 0, errors.New("escrow store: at least one prior status is required")
	}

	setClause := "status = ?"
	switch timestampField {
	case TimestampNone:
	case TimestampFundedAt, TimestampReleased:
		setClause += ", " + timestampField + " = ?"
	default:
		return 0, fmt.Errorf("escrow store: unknown timestamp field %q", timestampField)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	query := fmt.Sprintf(
		"UPDATE escrow_transactions SET %s WHERE id = ? AND status IN (%s)",
		setClause, placeholders,
	)

	args := []any{string(to)}
	if timestampField != TimestampNone {
		args = append(args, time.Now().UTC())
	}
	args = append(args, id)
	for _, status := range from {
		args = append(args, string(status))
	}

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating escrow %d status to %s: %w", id, to, err)
	}
	return res.RowsAffected()
}

func (s *sqliteEscrowStore) Get(id int64) (*models.EscrowTransaction, error) {
	query := `
	SELECT id, trade_id, buyer_id, seller_id, amount, payment_method, status, funded_at, released_at, expires_at, created_at
	FROM escrow_transactions
	WHERE id = ?`
	row := s.db.QueryRow(query, id)

	var tx models.EscrowTransaction
	var amount, status string
	var fundedAt, releasedAt sql.NullTime
	err := row.Scan(
		&tx.ID, &tx.TradeID, &tx.BuyerID, &tx.SellerID, &amount,
		&tx.PaymentMethod, &status, &fundedAt, &releasedAt, &tx.ExpiresAt, &tx.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching escrow %d: %w", id, err)
	}

	tx.Amount, err = parseStoredAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("escrow %d: %w", id, err)
	}
	tx.Status = models.EscrowStatus(status)
	if fundedAt.Valid {
		t := fundedAt.Time
		tx.FundedAt = &t
	}
	if releasedAt.Valid {
		t := releasedAt.Time
		tx.ReleasedAt = &t
	}
	return &tx, nil
}

func parseStoredAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored amount %q is not a valid decimal: %w", raw, err)
	}
	return amount, nil
}

func (s *sqliteEscrowStore) InsertDispute(escrowID int64, reason string) error {
	query := `INSERT INTO escrow_disputes (escrow_id, reason, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(query, escrowID, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("recording dispute for escrow %d: %w", escrowID, err)
	}
	return nil
}
