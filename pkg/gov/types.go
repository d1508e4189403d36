package gov

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Proposal is immutable once stored. A zero Target makes it a sentiment proposal.
type Proposal struct {
	ID          uint64         `json:"id"`
	Proposer    common.Address `json:"proposer"`
	Deadline    time.Time      `json:"deadline"`
	Threshold   *big.Int       `json:"threshold"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Target      common.Address `json:"target"`
	Data        []byte         `json:"data"`
}

// HasTarget reports whether processing the proposal calls out to a contract
func (p *Proposal) HasTarget() bool {
	return p.Target != (common.Address{})
}

type Vote struct {
	ID      uint64         `json:"id"`
	Voter   common.Address `json:"voter"`
	Support bool           `json:"support"`
	Weight  *big.Int       `json:"weight"`
	Payload []byte         `json:"payload"`
}

// Delegation weight is a snapshot of the delegator's balance when the record was created.
// A revoked record keeps its id but has every field zeroed.
type Delegation struct {
	ID        uint64         `json:"id"`
	Delegator common.Address `json:"delegator"`
	Delegatee common.Address `json:"delegatee"`
	Weight    *big.Int       `json:"weight"`
}

// BalanceOracle returns the voting weight of an account for a token instance.
type BalanceOracle interface {
	BalanceOf(ctx context.Context, token, account common.Address, id *big.Int) (*big.Int, error)
}

// Invoker calls an arbitrary target with an opaque payload and returns its raw output.
type Invoker interface {
	Invoke(ctx context.Context, target common.Address, payload []byte) ([]byte, error)
}

// Notifier is told about successfully processed proposals.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// TallyMode selects how delegated weight is aggregated.
type TallyMode string

const (
	// TallyModeCumulative scans every delegation record ever created and adds it to
	// the process-wide accumulator, which is never reset.
	TallyModeCumulative TallyMode = "cumulative"
	// TallyModeScoped only counts active delegation records and uses a fresh
	// accumulator per tally. This changes the observable behaviour of Process.
	TallyModeScoped TallyMode = "scoped"
)
