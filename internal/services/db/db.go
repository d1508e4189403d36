package db

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/citizenwallet/tokengov/internal/storage"
	"github.com/ethereum/go-ethereum/common/hexutil"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbBaseFolder   = "data"
	dbConfigString = "cache=private&_journal=WAL&mode=rwc&_txlock=immediate&_busy_timeout=10000"

	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// DB stores the governance registries of one chain in SQL tables suffixed with the chain id.
type DB struct {
	chainID *big.Int
	driver  string
	mu      sync.Mutex
	db      *sql.DB

	ProposalDB   *ProposalDB
	DelegationDB *DelegationDB
	VoteDB       *VoteDB
	WeightDB     *WeightDB

	testing bool
}

// NewDB instantiates a sqlite backed DB under basePath/data
func NewDB(chainID *big.Int, basePath string) (*DB, error) {
	folderPath := fmt.Sprintf("%s/%s", basePath, dbBaseFolder)
	path := fmt.Sprintf("%s/gov.db", folderPath)

	// check if directory exists
	if !storage.Exists(folderPath) {
		err := storage.CreateDir(folderPath)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driverSQLite, fmt.Sprintf("file:%s?%s", path, dbConfigString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1)

	return newDB(chainID, driverSQLite, db)
}

func newDB(chainID *big.Int, driver string, db *sql.DB) (*DB, error) {
	d := &DB{
		chainID: chainID,
		driver:  driver,
		db:      db,
	}
	d.ProposalDB = &ProposalDB{p: d}
	d.DelegationDB = &DelegationDB{p: d}
	d.VoteDB = &VoteDB{p: d}
	d.WeightDB = &WeightDB{p: d}

	if err := d.ProposalDB.ensureExists(); err != nil {
		return nil, err
	}

	if err := d.DelegationDB.ensureExists(); err != nil {
		return nil, err
	}

	if err := d.VoteDB.ensureExists(); err != nil {
		return nil, err
	}

	if err := d.WeightDB.ensureExists(); err != nil {
		return nil, err
	}

	return d, nil
}

// SetTesting makes Close drop every table
func (d *DB) SetTesting() {
	d.testing = true
}

// Close closes the db
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.testing {
		d.ProposalDB.drop()
		d.DelegationDB.drop()
		d.VoteDB.drop()
		d.WeightDB.drop()
	}

	return d.db.Close()
}

func (d *DB) tableName(entity string) string {
	return fmt.Sprintf("t_gov_%s_%s", entity, d.chainID.String())
}

// rebind rewrites ? placeholders to $n for postgres
func (d *DB) rebind(query string) string {
	if d.driver != driverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// checkTableExists checks if a table exists in the database
func (d *DB) checkTableExists(tname string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if d.driver == driverPostgres {
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?"
	}

	var count int
	err := d.db.QueryRow(d.rebind(query), tname).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// update runs fn in a single transaction
func (d *DB) update(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func parseBig(s string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	return i, nil
}

// decodeBytes reads back a hexutil encoded column, empty values decode to nil
func decodeBytes(s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}

	if len(b) == 0 {
		return nil, nil
	}

	return b, nil
}

func formatBig(i *big.Int) string {
	if i == nil {
		return "0"
	}

	return i.String()
}
