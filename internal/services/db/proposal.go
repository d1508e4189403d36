package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type ProposalDB struct {
	p *DB
}

func (db *ProposalDB) table() string {
	return db.p.tableName("proposals")
}

func (db *ProposalDB) ensureExists() error {
	exists, err := db.p.checkTableExists(db.table())
	if err != nil {
		return err
	}

	if !exists {
		return db.create()
	}

	return nil
}

// create creates the proposals table
func (db *ProposalDB) create() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		gov_key TEXT NOT NULL,
		id BIGINT NOT NULL,
		proposer TEXT NOT NULL,
		deadline BIGINT NOT NULL, -- unix nanoseconds
		threshold TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		target TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (gov_key, id)
	);
	`, db.table()))

	return err
}

func (db *ProposalDB) drop() error {
	_, err := db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.table()))

	return err
}

// Add stores p under the next proposal id of key
func (db *ProposalDB) Add(ctx context.Context, key common.Hash, p gov.Proposal) (uint64, error) {
	var id uint64
	err := db.p.update(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
		SELECT COALESCE(MAX(id), 0) + 1 FROM %s WHERE gov_key = ?
		`, db.table())), key.Hex()).Scan(&id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		INSERT INTO %s (gov_key, id, proposer, deadline, threshold, title, description, target, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, db.table())),
			key.Hex(),
			id,
			p.Proposer.Hex(),
			p.Deadline.UnixNano(),
			formatBig(p.Threshold),
			p.Title,
			p.Description,
			p.Target.Hex(),
			hexutil.Encode(p.Data),
		)

		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Count returns the number of proposals allocated under key
func (db *ProposalDB) Count(ctx context.Context, key common.Hash) (uint64, error) {
	var count uint64
	err := db.p.db.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT COUNT(*) FROM %s WHERE gov_key = ?
	`, db.table())), key.Hex()).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Get returns a proposal by id
func (db *ProposalDB) Get(ctx context.Context, key common.Hash, id uint64) (*gov.Proposal, error) {
	row := db.p.db.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT id, proposer, deadline, threshold, title, description, target, data
	FROM %s
	WHERE gov_key = ? AND id = ?
	`, db.table())), key.Hex(), id)

	p, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gov.ErrNotFound
		}

		return nil, err
	}

	return p, nil
}

// GetAll returns every proposal of key in id order
func (db *ProposalDB) GetAll(ctx context.Context, key common.Hash) ([]gov.Proposal, error) {
	rows, err := db.p.db.QueryContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT id, proposer, deadline, threshold, title, description, target, data
	FROM %s
	WHERE gov_key = ?
	ORDER BY id ASC
	`, db.table())), key.Hex())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []gov.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}

		proposals = append(proposals, *p)
	}

	return proposals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProposal(s scanner) (*gov.Proposal, error) {
	var p gov.Proposal
	var proposer, threshold, target, data string
	var deadline int64

	err := s.Scan(&p.ID, &proposer, &deadline, &threshold, &p.Title, &p.Description, &target, &data)
	if err != nil {
		return nil, err
	}

	p.Proposer = common.HexToAddress(proposer)
	p.Deadline = time.Unix(0, deadline).UTC()
	p.Target = common.HexToAddress(target)

	p.Threshold, err = parseBig(threshold)
	if err != nil {
		return nil, err
	}

	p.Data, err = decodeBytes(data)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
