package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/common"
)

// DelegationDB holds the append-only delegation records and the active pointer of each delegator
type DelegationDB struct {
	p *DB
}

func (db *DelegationDB) table() string {
	return db.p.tableName("delegations")
}

func (db *DelegationDB) activeTable() string {
	return db.p.tableName("active_delegations")
}

func (db *DelegationDB) ensureExists() error {
	exists, err := db.p.checkTableExists(db.table())
	if err != nil {
		return err
	}

	if !exists {
		if err := db.create(); err != nil {
			return err
		}
	}

	exists, err = db.p.checkTableExists(db.activeTable())
	if err != nil {
		return err
	}

	if !exists {
		return db.createActive()
	}

	return nil
}

func (db *DelegationDB) create() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		gov_key TEXT NOT NULL,
		id BIGINT NOT NULL,
		delegator TEXT NOT NULL,
		delegatee TEXT NOT NULL,
		weight TEXT NOT NULL,
		PRIMARY KEY (gov_key, id)
	);
	`, db.table()))

	return err
}

func (db *DelegationDB) createActive() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		gov_key TEXT NOT NULL,
		delegator TEXT NOT NULL,
		id BIGINT NOT NULL,
		PRIMARY KEY (gov_key, delegator)
	);
	`, db.activeTable()))

	return err
}

func (db *DelegationDB) drop() error {
	_, err := db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.table()))
	if err != nil {
		return err
	}

	_, err = db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.activeTable()))

	return err
}

// Add appends d and makes it the active delegation of d.Delegator
func (db *DelegationDB) Add(ctx context.Context, key common.Hash, d gov.Delegation) (uint64, error) {
	var id uint64
	err := db.p.update(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
		SELECT COALESCE(MAX(id), 0) + 1 FROM %s WHERE gov_key = ?
		`, db.table())), key.Hex()).Scan(&id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		INSERT INTO %s (gov_key, id, delegator, delegatee, weight)
		VALUES (?, ?, ?, ?, ?)
		`, db.table())), key.Hex(), id, d.Delegator.Hex(), d.Delegatee.Hex(), formatBig(d.Weight))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		INSERT INTO %s (gov_key, delegator, id)
		VALUES (?, ?, ?)
		ON CONFLICT (gov_key, delegator) DO UPDATE SET id = excluded.id
		`, db.activeTable())), key.Hex(), d.Delegator.Hex(), id)

		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Clear zeroes the active record of delegator and removes the pointer
func (db *DelegationDB) Clear(ctx context.Context, key common.Hash, delegator common.Address) (uint64, error) {
	var id uint64
	err := db.p.update(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
		SELECT id FROM %s WHERE gov_key = ? AND delegator = ?
		`, db.activeTable())), key.Hex(), delegator.Hex()).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				id = 0
				return nil
			}

			return err
		}

		zero := common.Address{}
		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		UPDATE %s SET delegator = ?, delegatee = ?, weight = ? WHERE gov_key = ? AND id = ?
		`, db.table())), zero.Hex(), zero.Hex(), "0", key.Hex(), id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		DELETE FROM %s WHERE gov_key = ? AND delegator = ?
		`, db.activeTable())), key.Hex(), delegator.Hex())

		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Active returns the id of the active delegation of voter, 0 if there is none
func (db *DelegationDB) Active(ctx context.Context, key common.Hash, voter common.Address) (uint64, error) {
	var id uint64
	err := db.p.db.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT id FROM %s WHERE gov_key = ? AND delegator = ?
	`, db.activeTable())), key.Hex(), voter.Hex()).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, err
	}

	return id, nil
}

// GetAll returns every delegation record of key in id order, revoked ones included
func (db *DelegationDB) GetAll(ctx context.Context, key common.Hash) ([]gov.Delegation, error) {
	rows, err := db.p.db.QueryContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT id, delegator, delegatee, weight
	FROM %s
	WHERE gov_key = ?
	ORDER BY id ASC
	`, db.table())), key.Hex())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	delegations := []gov.Delegation{}
	for rows.Next() {
		var d gov.Delegation
		var delegator, delegatee, weight string

		err := rows.Scan(&d.ID, &delegator, &delegatee, &weight)
		if err != nil {
			return nil, err
		}

		d.Delegator = common.HexToAddress(delegator)
		d.Delegatee = common.HexToAddress(delegatee)
		d.Weight, err = parseBig(weight)
		if err != nil {
			return nil, err
		}

		delegations = append(delegations, d)
	}

	return delegations, rows.Err()
}
