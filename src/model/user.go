package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role values stored on a user. Staff can import inventory; admins can
// additionally read reports.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	Role             string    `json:"role"`
	IsActive         bool      `json:"is_active"`
	SuccessfulTrades int       `json:"successful_trades"`
	AverageRating    float64   `json:"average_rating"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) CreateUser(db *sql.DB) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	u.IsActive = true

	query := `
	INSERT INTO users (username, email, password, role, is_active, successful_trades, average_rating, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(u.Username, u.Email, u.Password, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role,
		&user.IsActive, &user.SuccessfulTrades, &user.AverageRating,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	query := `
	SELECT id, username, email, password, role, is_active, successful_trades, average_rating, created_at, updated_at
	FROM users
	WHERE id = ?`
	return scanUser(db.QueryRow(query, id))
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	query := `
	SELECT id, username, email, password, role, is_active, successful_trades, average_rating, created_at, updated_at
	FROM users
	WHERE email = ? AND is_active = 1`
	return scanUser(db.QueryRow(query, email))
}

// RecordCompletedTrade bumps the counters that feed the verified-trader
// check: one more successful trade and a recomputed running average rating.
func RecordCompletedTrade(db *sql.DB, userID int64, rating float64) error {
	query := `
	UPDATE users
	SET average_rating = (average_rating * successful_trades + ?) / (successful_trades + 1),
	    successful_trades = successful_trades + 1,
	    updated_at = ?
	WHERE id = ?`
	_, err := db.Exec(query, rating, time.Now(), userID)
	return err
}
