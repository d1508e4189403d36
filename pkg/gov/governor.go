package gov

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Governor runs the proposal, delegation and vote state machine of every token
// instance. Public operations are serialised: one runs to completion before the
// next one starts.
type Governor struct {
	mu sync.Mutex

	store   Store
	oracle  BalanceOracle
	invoker Invoker

	opts *Options
}

// Options define options for the Governor.
type Options struct {
	mode     TallyMode
	now      func() time.Time
	notifier Notifier
	logger   *log.Logger
}

// Option is a function setting a Governor option.
type Option func(opts *Options)

var defaultOptions = []Option{
	WithTallyMode(TallyModeCumulative),
	WithClock(time.Now),
	WithLogger(log.Default()),
}

func (o *Options) apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithTallyMode sets how delegated weight is aggregated. Anything other than
// TallyModeScoped selects TallyModeCumulative, callers validate user input first.
func WithTallyMode(mode TallyMode) Option {
	return func(opts *Options) {
		if mode != TallyModeScoped {
			mode = TallyModeCumulative
		}
		opts.mode = mode
	}
}

// WithClock overrides the time source used for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.now = now
	}
}

// WithNotifier reports processed proposals.
func WithNotifier(n Notifier) Option {
	return func(opts *Options) {
		opts.notifier = n
	}
}

// WithLogger sets the logger used for oracle, target and notifier failures.
func WithLogger(l *log.Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}

// New creates a Governor. invoker may be nil, in which case proposals with a
// target are processed without calling out.
func New(store Store, oracle BalanceOracle, invoker Invoker, opts ...Option) *Governor {
	options := &Options{}
	options.apply(defaultOptions...)
	options.apply(opts...)

	return &Governor{
		store:   store,
		oracle:  oracle,
		invoker: invoker,
		opts:    options,
	}
}

// Mode returns the tally mode in use
func (g *Governor) Mode() TallyMode {
	return g.opts.mode
}

// authorize returns the caller's current balance, or ErrUnauthorized if it is zero.
// A failing oracle counts as a zero balance.
func (g *Governor) authorize(ctx context.Context, token common.Address, id *big.Int, caller common.Address) (*big.Int, error) {
	bal, err := g.oracle.BalanceOf(ctx, token, caller, id)
	if err != nil {
		g.opts.logger.Printf("balance lookup for %s on %s#%s failed: %v", caller.Hex(), token.Hex(), id.String(), err)
		return nil, ErrUnauthorized
	}

	if bal == nil || bal.Sign() <= 0 {
		return nil, ErrUnauthorized
	}

	return bal, nil
}

// Propose stores a new proposal on behalf of caller and returns its id.
// The proposer of the draft is ignored.
func (g *Governor) Propose(ctx context.Context, token common.Address, id *big.Int, caller common.Address, draft Proposal) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.authorize(ctx, token, id, caller); err != nil {
		return 0, err
	}

	draft.ID = 0
	draft.Proposer = caller
	if draft.Threshold == nil {
		draft.Threshold = new(big.Int)
	}

	pid, err := g.store.AddProposal(ctx, Key(token, id), draft)
	if err != nil {
		return 0, fmt.Errorf("failed to store proposal: %w", err)
	}

	return pid, nil
}

// Delegate hands the caller's current balance to delegatee. Passing the zero
// address revokes the caller's active delegation instead.
// It returns the id of the new delegation record, 0 for a revocation.
func (g *Governor) Delegate(ctx context.Context, token common.Address, id *big.Int, caller, delegatee common.Address) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bal, err := g.authorize(ctx, token, id, caller)
	if err != nil {
		return 0, err
	}

	key := Key(token, id)

	if delegatee == (common.Address{}) {
		active, err := g.store.ActiveDelegation(ctx, key, caller)
		if err != nil {
			return 0, err
		}
		if active == 0 {
			return 0, ErrInvalidDelegation
		}

		if _, err := g.store.ClearDelegation(ctx, key, caller); err != nil {
			return 0, fmt.Errorf("failed to revoke delegation: %w", err)
		}

		return 0, nil
	}

	if delegatee == caller {
		return 0, ErrInvalidDelegation
	}

	did, err := g.store.AddDelegation(ctx, key, Delegation{
		Delegator: caller,
		Delegatee: delegatee,
		Weight:    bal,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store delegation: %w", err)
	}

	return did, nil
}

// Vote records the caller's ballot on a proposal. The caller needs an active
// delegation and may vote once per proposal.
func (g *Governor) Vote(ctx context.Context, token common.Address, id *big.Int, proposalID uint64, caller common.Address, support bool, payload []byte) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bal, err := g.authorize(ctx, token, id, caller)
	if err != nil {
		return 0, err
	}

	key := Key(token, id)

	active, err := g.store.ActiveDelegation(ctx, key, caller)
	if err != nil {
		return 0, err
	}
	if active == 0 {
		return 0, ErrInvalidDelegation
	}

	voted, err := g.store.HasVoted(ctx, key, proposalID, caller)
	if err != nil {
		return 0, err
	}
	if voted {
		return 0, ErrAlreadyVoted
	}

	vid, err := g.store.AddVote(ctx, key, proposalID, Vote{
		Voter:   caller,
		Support: support,
		Weight:  bal,
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to store vote: %w", err)
	}

	return vid, nil
}

// Process executes a proposal whose deadline has passed and whose "for" tally
// reaches its threshold. Any current holder may process, and processing can be
// repeated. The target's raw output is returned, its failure is only logged.
func (g *Governor) Process(ctx context.Context, token common.Address, id *big.Int, proposalID uint64, caller common.Address) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.authorize(ctx, token, id, caller); err != nil {
		return nil, err
	}

	key := Key(token, id)

	count, err := g.store.ProposalCount(ctx, key)
	if err != nil {
		return nil, err
	}
	if proposalID == 0 || proposalID > count {
		return nil, ErrInvalidProposal
	}

	p, err := g.store.GetProposal(ctx, key, proposalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidProposal
		}
		return nil, err
	}

	if g.opts.now().Before(p.Deadline) {
		return nil, ErrInvalidProposal
	}

	t, err := g.tally(ctx, key, proposalID)
	if err != nil {
		return nil, err
	}

	if t.For.Cmp(p.Threshold) < 0 {
		return nil, ErrInsufficientVotes
	}

	if len(t.pending) > 0 {
		if err := g.store.AddDelegatedWeight(ctx, t.pending); err != nil {
			return nil, fmt.Errorf("failed to store delegated weight: %w", err)
		}
	}

	var result []byte
	if p.HasTarget() {
		if g.invoker == nil {
			g.opts.logger.Printf("proposal %d on %s#%s has target %s but no invoker is configured", proposalID, token.Hex(), id.String(), p.Target.Hex())
		} else {
			result, err = g.invoker.Invoke(ctx, p.Target, p.Data)
			if err != nil {
				g.opts.logger.Printf("proposal %d on %s#%s: call to %s failed: %v", proposalID, token.Hex(), id.String(), p.Target.Hex(), err)
			}
		}
	}

	if g.opts.notifier != nil {
		msg := fmt.Sprintf("proposal %d \"%s\" processed on %s#%s with %s for (threshold %s)", proposalID, p.Title, token.Hex(), id.String(), t.For.String(), p.Threshold.String())
		if err := g.opts.notifier.Notify(ctx, msg); err != nil {
			g.opts.logger.Printf("failed to notify: %v", err)
		}
	}

	return result, nil
}

// Tally returns the current "for" weight of a proposal without committing
// anything to the delegated weight accumulator.
func (g *Governor) Tally(ctx context.Context, token common.Address, id *big.Int, proposalID uint64) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, err := g.tally(ctx, Key(token, id), proposalID)
	if err != nil {
		return nil, err
	}

	return t.For, nil
}

// Proposal returns a single proposal, ErrNotFound when it was never allocated.
func (g *Governor) Proposal(ctx context.Context, token common.Address, id *big.Int, proposalID uint64) (*Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.GetProposal(ctx, Key(token, id), proposalID)
}

// Proposals returns every proposal of the token instance in id order.
func (g *Governor) Proposals(ctx context.Context, token common.Address, id *big.Int) ([]Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.GetProposals(ctx, Key(token, id))
}

// Votes returns the ballots cast on a proposal in id order.
func (g *Governor) Votes(ctx context.Context, token common.Address, id *big.Int, proposalID uint64) ([]Vote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.GetVotes(ctx, Key(token, id), proposalID)
}

// Delegations returns every delegation record, revoked ones included.
func (g *Governor) Delegations(ctx context.Context, token common.Address, id *big.Int) ([]Delegation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.GetDelegations(ctx, Key(token, id))
}

// ActiveDelegation returns the id of the voter's outgoing delegation, 0 when none.
func (g *Governor) ActiveDelegation(ctx context.Context, token common.Address, id *big.Int, voter common.Address) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.ActiveDelegation(ctx, Key(token, id), voter)
}
