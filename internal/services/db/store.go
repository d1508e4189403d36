package db

import (
	"context"
	"math/big"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/common"
)

var _ gov.Store = (*DB)(nil)

func (d *DB) AddProposal(ctx context.Context, key common.Hash, p gov.Proposal) (uint64, error) {
	return d.ProposalDB.Add(ctx, key, p)
}

func (d *DB) ProposalCount(ctx context.Context, key common.Hash) (uint64, error) {
	return d.ProposalDB.Count(ctx, key)
}

func (d *DB) GetProposal(ctx context.Context, key common.Hash, id uint64) (*gov.Proposal, error) {
	return d.ProposalDB.Get(ctx, key, id)
}

func (d *DB) GetProposals(ctx context.Context, key common.Hash) ([]gov.Proposal, error) {
	return d.ProposalDB.GetAll(ctx, key)
}

func (d *DB) AddDelegation(ctx context.Context, key common.Hash, del gov.Delegation) (uint64, error) {
	return d.DelegationDB.Add(ctx, key, del)
}

func (d *DB) ClearDelegation(ctx context.Context, key common.Hash, delegator common.Address) (uint64, error) {
	return d.DelegationDB.Clear(ctx, key, delegator)
}

func (d *DB) ActiveDelegation(ctx context.Context, key common.Hash, voter common.Address) (uint64, error) {
	return d.DelegationDB.Active(ctx, key, voter)
}

func (d *DB) GetDelegations(ctx context.Context, key common.Hash) ([]gov.Delegation, error) {
	return d.DelegationDB.GetAll(ctx, key)
}

func (d *DB) AddVote(ctx context.Context, key common.Hash, proposalID uint64, v gov.Vote) (uint64, error) {
	return d.VoteDB.Add(ctx, key, proposalID, v)
}

func (d *DB) HasVoted(ctx context.Context, key common.Hash, proposalID uint64, voter common.Address) (bool, error) {
	return d.VoteDB.HasVoted(ctx, key, proposalID, voter)
}

func (d *DB) GetVotes(ctx context.Context, key common.Hash, proposalID uint64) ([]gov.Vote, error) {
	return d.VoteDB.GetAll(ctx, key, proposalID)
}

func (d *DB) DelegatedWeight(ctx context.Context, delegatee common.Address) (*big.Int, error) {
	return d.WeightDB.Get(ctx, delegatee)
}

func (d *DB) AddDelegatedWeight(ctx context.Context, weights map[common.Address]*big.Int) error {
	return d.WeightDB.Add(ctx, weights)
}
