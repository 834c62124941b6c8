package model

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE users (
	    id INTEGER PRIMARY KEY AUTOINCREMENT,
	    username TEXT NOT NULL UNIQUE,
	    email TEXT NOT NULL UNIQUE,
	    password TEXT NOT NULL,
	    role TEXT NOT NULL DEFAULT 'customer',
	    is_active BOOLEAN NOT NULL DEFAULT 1,
	    successful_trades INTEGER NOT NULL DEFAULT 0,
	    average_rating REAL NOT NULL DEFAULT 0,
	    created_at TIMESTAMP NOT NULL,
	    updated_at TIMESTAMP NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *sql.DB) *User {
	t.Helper()
	user := &User{Username: "trader", Email: "trader@example.com"}
	require.NoError(t, user.HashPassword("s3cret-pass"))
	require.NoError(t, user.CreateUser(db))
	return user
}

func TestCreateUserDefaults(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	assert.Equal(t, RoleCustomer, user.Role)
	assert.True(t, user.IsActive)

	loaded, err := GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.SuccessfulTrades)
	assert.Zero(t, loaded.AverageRating)
}

func TestRecordCompletedTrade_RunningAverage(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	require.NoError(t, RecordCompletedTrade(db, user.ID, 5))
	require.NoError(t, RecordCompletedTrade(db, user.ID, 4))

	loaded, err := GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.SuccessfulTrades)
	assert.InDelta(t, 4.5, loaded.AverageRating, 1e-9)
}

func TestGetUserByEmail_SkipsInactive(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	_, err := db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, user.ID)
	require.NoError(t, err)

	_, err = GetUserByEmail(db, user.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
