// backend/src/services/inventory_service_test.go
package services

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/manavault/backend/src/parsers/manabox"
)

type stubPriceService struct {
	price decimal.Decimal
	err   error
}

func (s *stubPriceService) GetCardPriceUSD(scryfallID string) (decimal.Decimal, error) {
	return s.price, s.err
}

func newTestInventoryService(db *sql.DB, price PriceService) InventoryService {
	return NewInventoryService(db, manabox.NewParser(), price,
		decimal.RequireFromString("1.5"), decimal.NewFromInt(56))
}

const manaBoxHeader = "Name,Set code,Set name,Collector number,Rarity,Quantity,Foil,Condition,Language,Scryfall ID,Purchase price\n"

func importCSV(t *testing.T, svc InventoryService, csv string) *testImportResult {
	t.Helper()
	result, err := svc.ImportCSV(strings.NewReader(csv), "test.csv", int64(len(csv)))
	require.NoError(t, err)
	return &testImportResult{result.Total, result.Inserted, result.Updated, result.Skipped, len(result.Errors)}
}

type testImportResult struct {
	total, inserted, updated, skipped, errors int
}

func TestImportCSV_InsertThenAccumulate(t *testing.T) {
	db := newTestDB(t)
	svc := newTestInventoryService(db, &stubPriceService{})

	file := manaBoxHeader +
		"Lightning Bolt,2x2,Double Masters 2022,117,common,3,normal,near_mint,en,scry-bolt,2.50\n"

	got := importCSV(t, svc, file)
	assert.Equal(t, &testImportResult{total: 1, inserted: 1}, got)

	var qty int
	var cost, sell string
	require.NoError(t, db.QueryRow(
		`SELECT quantity, cost_price, sell_price FROM inventory`).Scan(&qty, &cost, &sell))
	assert.Equal(t, 3, qty)
	// 2.50 USD at 56 PHP/USD is 140; a 1.5x markup rounds up to 210.
	assert.Equal(t, "140", cost)
	assert.Equal(t, "210", sell)

	// A second import of the same row accumulates quantity on the existing
	// row instead of creating a duplicate.
	got = importCSV(t, svc, file)
	assert.Equal(t, &testImportResult{total: 1, updated: 1}, got)

	var rowCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM inventory`).Scan(&rowCount))
	assert.Equal(t, 1, rowCount)
	require.NoError(t, db.QueryRow(`SELECT quantity FROM inventory`).Scan(&qty))
	assert.Equal(t, 6, qty)
}

func TestImportCSV_FoilStocksSeparately(t *testing.T) {
	db := newTestDB(t)
	svc := newTestInventoryService(db, &stubPriceService{})

	file := manaBoxHeader +
		"Lightning Bolt,2x2,Double Masters 2022,117,common,3,normal,near_mint,en,scry-bolt,2.50\n" +
		"Lightning Bolt,2x2,Double Masters 2022,117,common,1,foil,near_mint,en,scry-bolt,12.00\n"

	got := importCSV(t, svc, file)
	assert.Equal(t, &testImportResult{total: 2, inserted: 2}, got)

	var foilQty, normalQty int
	require.NoError(t, db.QueryRow(`SELECT quantity FROM inventory WHERE foil = 1`).Scan(&foilQty))
	require.NoError(t, db.QueryRow(`SELECT quantity FROM inventory WHERE foil = 0`).Scan(&normalQty))
	assert.Equal(t, 1, foilQty)
	assert.Equal(t, 3, normalQty)

	// Re-importing only the foil row touches only the foil stock.
	got = importCSV(t, svc, manaBoxHeader+
		"Lightning Bolt,2x2,Double Masters 2022,117,common,2,foil,near_mint,en,scry-bolt,12.00\n")
	assert.Equal(t, &testImportResult{total: 1, updated: 1}, got)

	require.NoError(t, db.QueryRow(`SELECT quantity FROM inventory WHERE foil = 1`).Scan(&foilQty))
	require.NoError(t, db.QueryRow(`SELECT quantity FROM inventory WHERE foil = 0`).Scan(&normalQty))
	assert.Equal(t, 3, foilQty)
	assert.Equal(t, 3, normalQty)
}

func TestImportCSV_BadRowsAreCollectedNotFatal(t *testing.T) {
	db := newTestDB(t)
	svc := newTestInventoryService(db, &stubPriceService{})

	file := manaBoxHeader +
		"Lightning Bolt,2x2,Double Masters 2022,117,common,zero,normal,near_mint,en,scry-bolt,2.50\n" +
		"Counterspell,2x2,Double Masters 2022,48,common,2,normal,lightly_played,en,scry-cspell,1.00\n"

	got := importCSV(t, svc, file)
	assert.Equal(t, &testImportResult{total: 2, inserted: 1, skipped: 1, errors: 1}, got)

	var rowCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM inventory`).Scan(&rowCount))
	assert.Equal(t, 1, rowCount)
}

func TestImportCSV_MarketPriceFallback(t *testing.T) {
	db := newTestDB(t)
	svc := newTestInventoryService(db, &stubPriceService{price: decimal.NewFromInt(4)})

	// No purchase price on the row, so the current market price sets the cost.
	file := manaBoxHeader +
		"Lightning Bolt,2x2,Double Masters 2022,117,common,1,normal,near_mint,en,scry-bolt,\n"

	got := importCSV(t, svc, file)
	assert.Equal(t, &testImportResult{total: 1, inserted: 1}, got)

	var cost, sell string
	require.NoError(t, db.QueryRow(`SELECT cost_price, sell_price FROM inventory`).Scan(&cost, &sell))
	assert.Equal(t, "224", cost)
	assert.Equal(t, "336", sell)
}
