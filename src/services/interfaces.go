// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

// Cache settings shared by the price service and report caching.
const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Define common service errors.
var (
	// Invalid-input class: the request itself is wrong and retrying it
	// unchanged can never succeed.
	ErrInvalidEscrowAmount   = errors.New("escrow amount must be positive")
	ErrBuyerIsSeller         = errors.New("buyer and seller cannot be the same user")
	ErrDisputeReasonRequired = errors.New("a dispute reason is required")

	// Failed-precondition class: the input was fine but the transaction was
	// not in a state the transition guard accepts, typically because a
	// concurrent caller won the race.
	ErrPreconditionFailed = errors.New("escrow transaction is not in a status that allows this transition")

	ErrEscrowNotFound     = errors.New("escrow transaction not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrAlreadyInWishlist  = errors.New("card already in wishlist")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInsufficientStock  = errors.New("not enough stock for requested quantity")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrParsingFailed      = errors.New("csv parsing failed")
)

// EscrowStore is the durable-storage collaborator for escrow transactions.
// UpdateStatusIfCurrent must perform the status change as a single atomic
// conditional update (compare-and-swap over storage) so that two concurrent
// transitions on the same row cannot both succeed. Implementations never
// write status unconditionally.
type EscrowStore interface {
	Insert(tx *models.EscrowTransaction) (int64, error)
	UpdateStatusIfCurrent(id int64, from []models.EscrowStatus, to models.EscrowStatus, timestampField string) (int64, error)
	Get(id int64) (*models.EscrowTransaction, error)
	InsertDispute(escrowID int64, reason string) error
}

// FeeQuote is the platform fee breakdown for an escrow settlement.
type FeeQuote struct {
	Fee   decimal.Decimal `json:"fee"`
	Total decimal.Decimal `json:"total"`
}

// EscrowCreateInput carries everything needed to open an escrow transaction.
type EscrowCreateInput struct {
	TradeID       int64           `json:"trade_id"`
	BuyerID       int64           `json:"buyer_id"`
	SellerID      int64           `json:"seller_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

// EscrowService coordinates the escrow lifecycle:
// pending → funded → released, with refund and dispute as alternate exits.
type EscrowService interface {
	Create(input EscrowCreateInput) (*models.EscrowTransaction, error)
	Fund(id int64) (*models.EscrowTransaction, error)
	Release(id int64) (*models.EscrowTransaction, error)
	Refund(id int64) (*models.EscrowTransaction, error)
	Dispute(id int64, reason string) (*models.EscrowTransaction, error)
	Get(id int64) (*models.EscrowTransaction, error)
	QuoteFee(amount decimal.Decimal) (FeeQuote, error)
}

// TradingService is the storefront surface over the pure valuation and
// balancing processors, applying the configured defaults.
type TradingService interface {
	ValuateCard(card models.TradeCard) (models.Valuation, error)
	BasketValue(cards []models.TradeCard) (decimal.Decimal, error)
	BuybackQuote(cards []models.TradeCard, mode models.PayoutMode) (*models.BuybackResult, error)
	TradeBalance(offering, requesting []models.TradeCard, tolerance *decimal.Decimal) (models.TradeBalance, error)
	TradeSummary(offering, requesting []models.TradeCard) (string, error)
	VerifiedTraderStatus(successfulTrades int, averageRating float64) bool
}

// PriceService fetches current card market prices in USD.
type PriceService interface {
	GetCardPriceUSD(scryfallID string) (decimal.Decimal, error)
}

// InventoryService owns inventory browsing and the CSV import pipeline.
type InventoryService interface {
	ListInventory(limit, offset int) ([]models.InventoryListing, error)
	ImportCSV(fileReader io.Reader, filename string, filesize int64) (*models.ImportResult, error)
}

// OrderService owns point-of-sale checkout and order reporting.
type OrderService interface {
	CreateOrder(userID int64, items []OrderItemInput, paymentMethod string) (*models.Order, error)
	ListOrders(limit int) ([]models.Order, error)
	UpdateOrderStatus(orderID int64, status string) error
	GetSalesReport() (*models.SalesReport, error)
}

// OrderItemInput is one checkout line as submitted by the POS client.
type OrderItemInput struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

// WishlistRepository is the server-authoritative wishlist store. The record
// schema lives in models.WishlistEntry; browser-local copies are caches of
// this data, never the source of truth.
type WishlistRepository interface {
	ListByUser(userID int64) ([]models.WishlistEntry, error)
	Add(userID, cardID int64, maxPrice decimal.Decimal, notes string) (int64, error)
	Remove(id, userID int64) error
}
