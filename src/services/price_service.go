// backend/src/services/price_service.go
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
)

// --- API Response Structs ---

type scryfallCardResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prices struct {
		USD     string `json:"usd"`
		USDFoil string `json:"usd_foil"`
	} `json:"prices"`
}

type scryfallPriceService struct {
	baseURL    string
	httpClient *http.Client
	priceCache *cache.Cache
}

// NewPriceService returns a Scryfall-backed price source. Responses are
// cached so repeated imports of the same printing cost one API round trip.
func NewPriceService(baseURL string) PriceService {
	return &scryfallPriceService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		priceCache: cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	}
}

// GetCardPriceUSD looks up the current non-foil market price of a printing.
// Cards Scryfall carries no price for resolve to zero rather than an error,
// so imports of bulk cards proceed.
func (s *scryfallPriceService) GetCardPriceUSD(scryfallID string) (decimal.Decimal, error) {
	if cached, found := s.priceCache.Get(scryfallID); found {
		return cached.(decimal.Decimal), nil
	}

	url := fmt.Sprintf("%s/cards/%s", s.baseURL, scryfallID)
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching card price from scryfall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("scryfall returned status %d for card %s", resp.StatusCode, scryfallID)
	}

	var card scryfallCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return decimal.Zero, fmt.Errorf("decoding scryfall response: %w", err)
	}

	price := decimal.Zero
	if card.Prices.USD != "" {
		price, err = decimal.NewFromString(card.Prices.USD)
		if err != nil {
			return decimal.Zero, fmt.Errorf("scryfall price %q for card %s is not a valid decimal: %w", card.Prices.USD, scryfallID, err)
		}
	} else {
		logger.L.Debug("Scryfall has no USD price for card", "scryfallID", scryfallID, "name", card.Name)
	}

	s.priceCache.Set(scryfallID, price, cache.DefaultExpiration)
	return price, nil
}
