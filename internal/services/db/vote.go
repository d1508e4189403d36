package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type VoteDB struct {
	p *DB
}

func (db *VoteDB) table() string {
	return db.p.tableName("votes")
}

func (db *VoteDB) votedTable() string {
	return db.p.tableName("voted")
}

func (db *VoteDB) ensureExists() error {
	exists, err := db.p.checkTableExists(db.table())
	if err != nil {
		return err
	}

	if !exists {
		if err := db.create(); err != nil {
			return err
		}
	}

	exists, err = db.p.checkTableExists(db.votedTable())
	if err != nil {
		return err
	}

	if !exists {
		return db.createVoted()
	}

	return nil
}

func (db *VoteDB) create() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		gov_key TEXT NOT NULL,
		proposal_id BIGINT NOT NULL,
		id BIGINT NOT NULL,
		voter TEXT NOT NULL,
		support BOOLEAN NOT NULL,
		weight TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (gov_key, proposal_id, id)
	);
	`, db.table()))

	return err
}

func (db *VoteDB) createVoted() error {
	_, err := db.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s (
		gov_key TEXT NOT NULL,
		proposal_id BIGINT NOT NULL,
		voter TEXT NOT NULL,
		PRIMARY KEY (gov_key, proposal_id, voter)
	);
	`, db.votedTable()))

	return err
}

func (db *VoteDB) drop() error {
	_, err := db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.table()))
	if err != nil {
		return err
	}

	_, err = db.p.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", db.votedTable()))

	return err
}

// Add marks v.Voter as voted on the proposal and appends the ballot
func (db *VoteDB) Add(ctx context.Context, key common.Hash, proposalID uint64, v gov.Vote) (uint64, error) {
	var id uint64
	err := db.p.update(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE gov_key = ? AND proposal_id = ? AND voter = ?
		`, db.votedTable())), key.Hex(), proposalID, v.Voter.Hex()).Scan(&count)
		if err != nil {
			return err
		}

		if count > 0 {
			return gov.ErrAlreadyVoted
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		INSERT INTO %s (gov_key, proposal_id, voter) VALUES (?, ?, ?)
		`, db.votedTable())), key.Hex(), proposalID, v.Voter.Hex())
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
		SELECT COALESCE(MAX(id), 0) + 1 FROM %s WHERE gov_key = ? AND proposal_id = ?
		`, db.table())), key.Hex(), proposalID).Scan(&id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, db.p.rebind(fmt.Sprintf(`
		INSERT INTO %s (gov_key, proposal_id, id, voter, support, weight, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`, db.table())), key.Hex(), proposalID, id, v.Voter.Hex(), v.Support, formatBig(v.Weight), hexutil.Encode(v.Payload))

		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// HasVoted reports whether voter already voted on the proposal
func (db *VoteDB) HasVoted(ctx context.Context, key common.Hash, proposalID uint64, voter common.Address) (bool, error) {
	var count int
	err := db.p.db.QueryRowContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT COUNT(*) FROM %s WHERE gov_key = ? AND proposal_id = ? AND voter = ?
	`, db.votedTable())), key.Hex(), proposalID, voter.Hex()).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return count > 0, nil
}

// GetAll returns the ballots of a proposal in id order
func (db *VoteDB) GetAll(ctx context.Context, key common.Hash, proposalID uint64) ([]gov.Vote, error) {
	rows, err := db.p.db.QueryContext(ctx, db.p.rebind(fmt.Sprintf(`
	SELECT id, voter, support, weight, payload
	FROM %s
	WHERE gov_key = ? AND proposal_id = ?
	ORDER BY id ASC
	`, db.table())), key.Hex(), proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []gov.Vote{}
	for rows.Next() {
		var v gov.Vote
		var voter, weight, payload string

		err := rows.Scan(&v.ID, &voter, &v.Support, &weight, &payload)
		if err != nil {
			return nil, err
		}

		v.Voter = common.HexToAddress(voter)
		v.Weight, err = parseBig(weight)
		if err != nil {
			return nil, err
		}

		v.Payload, err = decodeBytes(payload)
		if err != nil {
			return nil, err
		}

		votes = append(votes, v)
	}

	return votes, rows.Err()
}
