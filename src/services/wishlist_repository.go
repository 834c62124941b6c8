// backend/src/services/wishlist_repository.go
package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/security/validation"
)

type sqliteWishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository returns the SQLite-backed wishlist store.
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &sqliteWishlistRepository{db: db}
}

func (r *sqliteWishlistRepository) ListByUser(userID int64) ([]models.WishlistEntry, error) {
	query := `
	SELECT w.id, w.user_id, w.card_id, w.max_price, w.notes, w.created_at,
	       c.name, c.set_code, c.image_uri, c.price_php,
	       CASE WHEN i.card_id IS NOT NULL THEN 1 ELSE 0 END AS in_stock
	FROM wishlists w
	JOIN cards c ON w.card_id = c.id
	LEFT JOIN inventory i ON c.id = i.card_id AND i.quantity > 0
	WHERE w.user_id = ?
	GROUP BY w.id
	ORDER BY w.created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []models.WishlistEntry
	for rows.Next() {
		var e models.WishlistEntry
		var maxPrice, pricePHP string
		var notes, imageURI sql.NullString
		var inStock int
		if err := rows.Scan(&e.ID, &e.UserID, &e.CardID, &maxPrice, &notes, &e.CreatedAt,
			&e.CardName, &e.SetCode, &imageURI, &pricePHP, &inStock); err != nil {
			return nil, fmt.Errorf("scanning wishlist row: %w", err)
		}
		if e.MaxPrice, err = parseStoredAmount(maxPrice); err != nil {
			return nil, fmt.Errorf("wishlist %d: %w", e.ID, err)
		}
		if e.PricePHP, err = parseStoredAmount(pricePHP); err != nil {
			return nil, fmt.Errorf("wishlist %d: %w", e.ID, err)
		}
		e.Notes = notes.String
		e.ImageURI = imageURI.String
		e.InStock = inStock == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *sqliteWishlistRepository) Add(userID, cardID int64, maxPrice decimal.Decimal, notes string) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO wishlists (user_id, card_id, max_price, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, cardID, maxPrice.String(), validation.SanitizeText(notes), time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, ErrAlreadyInWishlist
		}
		return 0, fmt.Errorf("adding card %d to wishlist: %w", cardID, err)
	}
	return res.LastInsertId()
}

// Remove is scoped to the owning user so one user cannot delete another's
// entries by guessing IDs.
func (r *sqliteWishlistRepository) Remove(id, userID int64) error {
	res, err := r.db.Exec(`DELETE FROM wishlists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("removing wishlist entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCardNotFound
	}
	return nil
}
