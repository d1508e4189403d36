package gov

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type tallyResult struct {
	For *big.Int

	// accumulator increments that become permanent once Process succeeds
	pending map[common.Address]*big.Int
}

func (g *Governor) tally(ctx context.Context, key common.Hash, proposalID uint64) (*tallyResult, error) {
	dels, err := g.store.GetDelegations(ctx, key)
	if err != nil {
		return nil, err
	}

	votes, err := g.store.GetVotes(ctx, key, proposalID)
	if err != nil {
		return nil, err
	}

	res := &tallyResult{For: new(big.Int)}

	var incoming func(addr common.Address) (*big.Int, error)

	switch g.opts.mode {
	case TallyModeScoped:
		acc := map[common.Address]*big.Int{}
		for _, d := range dels {
			active, err := g.store.ActiveDelegation(ctx, key, d.Delegator)
			if err != nil {
				return nil, err
			}
			if active == 0 || active != d.ID {
				continue
			}
			addWeight(acc, d.Delegatee, d.Weight)
		}

		incoming = func(addr common.Address) (*big.Int, error) {
			if w, ok := acc[addr]; ok {
				return w, nil
			}
			return new(big.Int), nil
		}
	default:
		// every record counts, orphaned and revoked ones included
		res.pending = map[common.Address]*big.Int{}
		for _, d := range dels {
			addWeight(res.pending, d.Delegatee, d.Weight)
		}

		incoming = func(addr common.Address) (*big.Int, error) {
			w, err := g.store.DelegatedWeight(ctx, addr)
			if err != nil {
				return nil, err
			}
			if p, ok := res.pending[addr]; ok {
				w = new(big.Int).Add(w, p)
			}
			return w, nil
		}
	}

	for _, v := range votes {
		// a voter who delegated away has a void ballot
		active, err := g.store.ActiveDelegation(ctx, key, v.Voter)
		if err != nil {
			return nil, err
		}
		if active != 0 {
			continue
		}

		if !v.Support {
			continue
		}

		res.For.Add(res.For, v.Weight)

		in, err := incoming(v.Voter)
		if err != nil {
			return nil, err
		}
		if in.Sign() > 0 {
			res.For.Add(res.For, in)
		}
	}

	return res, nil
}

func addWeight(acc map[common.Address]*big.Int, addr common.Address, w *big.Int) {
	if w == nil || w.Sign() == 0 {
		return
	}

	cur, ok := acc[addr]
	if !ok {
		cur = new(big.Int)
		acc[addr] = cur
	}
	cur.Add(cur, w)
}
