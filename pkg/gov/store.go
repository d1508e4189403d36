package gov

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var ErrNotFound = errors.New("not found")

// Store persists the proposal, vote and delegation registries of every identity
// key plus the process-wide delegated weight accumulator.
// Every method is atomic on its own.
type Store interface {
	// AddProposal allocates the next proposal id under key (starting at 1).
	AddProposal(ctx context.Context, key common.Hash, p Proposal) (uint64, error)
	ProposalCount(ctx context.Context, key common.Hash) (uint64, error)
	// GetProposal returns ErrNotFound for ids that were never allocated.
	GetProposal(ctx context.Context, key common.Hash, id uint64) (*Proposal, error)
	GetProposals(ctx context.Context, key common.Hash) ([]Proposal, error)

	// AddDelegation appends d and points the delegator's active delegation at it.
	AddDelegation(ctx context.Context, key common.Hash, d Delegation) (uint64, error)
	// ClearDelegation zeroes the delegator's active record in place and resets the
	// pointer. It returns the cleared id, 0 when nothing was active.
	ClearDelegation(ctx context.Context, key common.Hash, delegator common.Address) (uint64, error)
	ActiveDelegation(ctx context.Context, key common.Hash, voter common.Address) (uint64, error)
	GetDelegations(ctx context.Context, key common.Hash) ([]Delegation, error)

	// AddVote marks the voter as having voted on the proposal and appends v.
	// It returns ErrAlreadyVoted if the mark was already set.
	AddVote(ctx context.Context, key common.Hash, proposalID uint64, v Vote) (uint64, error)
	HasVoted(ctx context.Context, key common.Hash, proposalID uint64, voter common.Address) (bool, error)
	GetVotes(ctx context.Context, key common.Hash, proposalID uint64) ([]Vote, error)

	DelegatedWeight(ctx context.Context, delegatee common.Address) (*big.Int, error)
	// AddDelegatedWeight adds every entry to the accumulator in one step.
	AddDelegatedWeight(ctx context.Context, weights map[common.Address]*big.Int) error
}
