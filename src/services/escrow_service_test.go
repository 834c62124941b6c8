package services

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// fakeEscrowStore implements EscrowStore in memory with the same
// compare-and-swap contract as the SQLite store.
type fakeEscrowStore struct {
	nextID   int64
	rows     map[int64]*models.EscrowTransaction
	disputes map[int64][]string
	failWith error
}

func newFakeEscrowStore() *fakeEscrowStore {
	return &fakeEscrowStore{
		nextID:   1,
		rows:     make(map[int64]*models.EscrowTransaction),
		disputes: make(map[int64][]string),
	}
}

func (f *fakeEscrowStore) Insert(tx *models.EscrowTransaction) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	id := f.nextID
	f.nextID++
	clone := *tx
	clone.ID = id
	f.rows[id] = &clone
	return id, nil
}

func (f *fakeEscrowStore) UpdateStatusIfCurrent(id int64, from []models.EscrowStatus, to models.EscrowStatus, timestampField string) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	row, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	for _, status := range from {
		if row.Status == status {
			row.Status = to
			now := time.Now().UTC()
			switch timestampField {
			case TimestampFundedAt:
				row.FundedAt = &now
			case TimestampReleased:
				row.ReleasedAt = &now
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeEscrowStore) Get(id int64) (*models.EscrowTransaction, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (f *fakeEscrowStore) InsertDispute(escrowID int64, reason string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.disputes[escrowID] = append(f.disputes[escrowID], reason)
	return nil
}

func newTestEscrowService(store EscrowStore) EscrowService {
	return NewEscrowService(store, 7*24*time.Hour, decimal.NewFromFloat(2.5), decimal.NewFromInt(15))
}

func validInput() EscrowCreateInput {
	return EscrowCreateInput{
		TradeID:       42,
		BuyerID:       1,
		SellerID:      2,
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: "gcash",
	}
}

func TestEscrowCreate(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)

	tx, err := svc.Create(validInput())
	require.NoError(t, err)

	assert.Equal(t, models.EscrowPending, tx.Status)
	assert.Nil(t, tx.FundedAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), tx.ExpiresAt, time.Minute)
}

func TestEscrowCreate_InvalidInput(t *testing.T) {
	svc := newTestEscrowService(newFakeEscrowStore())

	input := validInput()
	input.Amount = decimal.Zero
	_, err := svc.Create(input)
	assert.ErrorIs(t, err, ErrInvalidEscrowAmount)

	input = validInput()
	input.Amount = decimal.NewFromInt(-10)
	_, err = svc.Create(input)
	assert.ErrorIs(t, err, ErrInvalidEscrowAmount)

	input = validInput()
	input.SellerID = input.BuyerID
	_, err = svc.Create(input)
	assert.ErrorIs(t, err, ErrBuyerIsSeller)
}

func TestEscrowFund_HappyPathThenDoubleFund(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)
	created, err := svc.Create(validInput())
	require.NoError(t, err)

	funded, err := svc.Fund(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EscrowFunded, funded.Status)
	assert.NotNil(t, funded.FundedAt)

	// A second fund attempt must fail loudly, not silently succeed, and
	// must leave the row untouched.
	_, err = svc.Fund(created.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	current, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EscrowFunded, current.Status)
}

func TestEscrowRelease_RequiresFunded(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)
	created, err := svc.Create(validInput())
	require.NoError(t, err)

	_, err = svc.Release(created.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	_, err = svc.Fund(created.ID)
	require.NoError(t, err)
	released, err := svc.Release(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EscrowReleased, released.Status)
	assert.NotNil(t, released.ReleasedAt)
}

func TestEscrowRefund_OnlyFromPendingOrFunded(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)

	// Refund straight from pending.
	first, err := svc.Create(validInput())
	require.NoError(t, err)
	refunded, err := svc.Refund(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EscrowRefunded, refunded.Status)

	// Refund after funding.
	second, err := svc.Create(validInput())
	require.NoError(t, err)
	_, err = svc.Fund(second.ID)
	require.NoError(t, err)
	_, err = svc.Refund(second.ID)
	require.NoError(t, err)

	// Refund after release must fail: the money is already gone.
	third, err := svc.Create(validInput())
	require.NoError(t, err)
	_, err = svc.Fund(third.ID)
	require.NoError(t, err)
	_, err = svc.Release(third.ID)
	require.NoError(t, err)
	_, err = svc.Refund(third.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestEscrowDispute(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)
	created, err := svc.Create(validInput())
	require.NoError(t, err)

	_, err = svc.Dispute(created.ID, "")
	assert.ErrorIs(t, err, ErrDisputeReasonRequired)

	disputed, err := svc.Dispute(created.ID, "cards never arrived")
	require.NoError(t, err)
	assert.Equal(t, models.EscrowDisputed, disputed.Status)
	assert.Equal(t, []string{"cards never arrived"}, store.disputes[created.ID])

	// Disputed is terminal; nothing moves out of it here.
	_, err = svc.Fund(created.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	_, err = svc.Dispute(created.ID, "again")
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestEscrowTransition_NotFound(t *testing.T) {
	svc := newTestEscrowService(newFakeEscrowStore())

	_, err := svc.Fund(999)
	assert.ErrorIs(t, err, ErrEscrowNotFound)

	_, err = svc.Get(999)
	assert.ErrorIs(t, err, ErrEscrowNotFound)
}

func TestEscrowStorageErrorsPropagate(t *testing.T) {
	store := newFakeEscrowStore()
	svc := newTestEscrowService(store)

	storageErr := errors.New("database is locked")
	store.failWith = storageErr

	_, err := svc.Create(validInput())
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.Fund(1)
	assert.ErrorIs(t, err, storageErr)
}

func TestQuoteFee(t *testing.T) {
	svc := newTestEscrowService(newFakeEscrowStore())

	quote, err := svc.QuoteFee(decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(40)), "fee: %s", quote.Fee)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(1040)), "total: %s", quote.Total)

	// 980 * 2.5% + 15 = 39.5 rounds up (ties away from zero).
	quote, err = svc.QuoteFee(decimal.NewFromInt(980))
	require.NoError(t, err)
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(40)), "fee: %s", quote.Fee)

	// 970 * 2.5% + 15 = 39.25 rounds down.
	quote, err = svc.QuoteFee(decimal.NewFromInt(970))
	require.NoError(t, err)
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(39)), "fee: %s", quote.Fee)

	_, err = svc.QuoteFee(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidEscrowAmount)
}
