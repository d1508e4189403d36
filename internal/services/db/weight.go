package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// WeightDB holds the delegated weight accumulator, shared by every identity key of the chain
type WeightDB struct {
	p *DB
}

func (db *WeightDB) table() string {
	return db.p.tableName("delegated_weight")
}

func (db *WeightDB) ensureExists() error {
	exists, err := db.p.checkTableExists(db.table())
	if err != nil {
		return err
	}

	if !exists {
		return db.create()
	}

	return nil
}

func (db *WeightDB) create() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		delegatee TEXT NOT NULL PRIMARY KEY,
		weight TEXT NOT NULL
	);
	`, db.table()))

	return err
}

func (db *WeightDB) drop() error {
	_, err := db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.table()))

	return err
}

// Get returns the accumulated weight of delegatee
func (db *WeightDB) Get(ctx context.Context, delegatee common.Address) (*big.Int, error) {
	var weight string
	err := db.p.db.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT weight FROM %s WHERE delegatee = ?
	`, db.table())), delegatee.Hex()).Scan(&weight)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return new(big.Int), nil
		}

		return nil, err
	}

	return parseBig(weight)
}

// Add adds every entry of weights to the accumulator in one transaction
func (db *WeightDB) Add(ctx context.Context, weights map[common.Address]*big.Int) error {
	if len(weights) == 0 {
		return nil
	}

	delegatees := make([]common.Address, 0, len(weights))
	for a := range weights {
		delegatees = append(delegatees, a)
	}

	// stable write order
	sort.Slice(delegatees, func(i, j int) bool {
		return delegatees[i].Hex() < delegatees[j].Hex()
	})

	return db.p.update(ctx, func(tx *sql.Tx) error {
		for _, a := range delegatees {
			w := weights[a]
			if w == nil || w.Sign() == 0 {
				continue
			}

			current := new(big.Int)

			var weight string
			err := tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
			SELECT weight FROM %s WHERE delegatee = ?
			`, db.table())), a.Hex()).Scan(&weight)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}

			if err == nil {
				current, err = parseBig(weight)
				if err != nil {
					return err
				}
			}

			current.Add(current, w)

			_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
			INSERT INTO %s (delegatee, weight) VALUES (?, ?)
			ON CONFLICT (delegatee) DO UPDATE SET weight = excluded.weight
			`, db.table())), a.Hex(), current.String())
			if err != nil {
				return err
			}
		}

		return nil
	})
}
