package db

import (
	"database/sql"
	"fmt"
	"math/big"

	_ "github.com/lib/pq"
)

// NewPostgresDB instantiates a postgres backed DB. Reads and writes share the
// primary connection so every operation sees the writes of the previous one.
func NewPostgresDB(chainID *big.Int, username, password, name, host string) (*DB, error) {
	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=5432 sslmode=disable", username, password, name, host)
	db, err := sql.Open(driverPostgres, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDB(chainID, driverPostgres, db)
}
