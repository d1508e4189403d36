package gov

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type voteKey struct {
	key        common.Hash
	proposalID uint64
}

type voterKey struct {
	key   common.Hash
	voter common.Address
}

type votedKey struct {
	key        common.Hash
	proposalID uint64
	voter      common.Address
}

// MemoryStore keeps every registry in process memory.
type MemoryStore struct {
	mu sync.Mutex

	proposals   map[common.Hash][]Proposal
	delegations map[common.Hash][]Delegation
	votes       map[voteKey][]Vote

	active map[voterKey]uint64
	voted  map[votedKey]bool

	delegated map[common.Address]*big.Int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals:   map[common.Hash][]Proposal{},
		delegations: map[common.Hash][]Delegation{},
		votes:       map[voteKey][]Vote{},
		active:      map[voterKey]uint64{},
		voted:       map[votedKey]bool{},
		delegated:   map[common.Address]*big.Int{},
	}
}

func (s *MemoryStore) AddProposal(ctx context.Context, key common.Hash, p Proposal) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = copyProposal(p)
	p.ID = uint64(len(s.proposals[key])) + 1
	s.proposals[key] = append(s.proposals[key], p)

	return p.ID, nil
}

func (s *MemoryStore) ProposalCount(ctx context.Context, key common.Hash) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(len(s.proposals[key])), nil
}

func (s *MemoryStore) GetProposal(ctx context.Context, key common.Hash, id uint64) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	props := s.proposals[key]
	if id == 0 || id > uint64(len(props)) {
		return nil, ErrNotFound
	}

	p := copyProposal(props[id-1])
	return &p, nil
}

func (s *MemoryStore) GetProposals(ctx context.Context, key common.Hash) ([]Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	props := make([]Proposal, 0, len(s.proposals[key]))
	for _, p := range s.proposals[key] {
		props = append(props, copyProposal(p))
	}

	return props, nil
}

func (s *MemoryStore) AddDelegation(ctx context.Context, key common.Hash, d Delegation) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d = copyDelegation(d)
	d.ID = uint64(len(s.delegations[key])) + 1
	s.delegations[key] = append(s.delegations[key], d)
	s.active[voterKey{key, d.Delegator}] = d.ID

	return d.ID, nil
}

func (s *MemoryStore) ClearDelegation(ctx context.Context, key common.Hash, delegator common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vk := voterKey{key, delegator}
	id := s.active[vk]
	if id == 0 {
		return 0, nil
	}

	s.delegations[key][id-1] = Delegation{ID: id, Weight: new(big.Int)}
	delete(s.active, vk)

	return id, nil
}

func (s *MemoryStore) ActiveDelegation(ctx context.Context, key common.Hash, voter common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active[voterKey{key, voter}], nil
}

func (s *MemoryStore) GetDelegations(ctx context.Context, key common.Hash) ([]Delegation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dels := make([]Delegation, 0, len(s.delegations[key]))
	for _, d := range s.delegations[key] {
		dels = append(dels, copyDelegation(d))
	}

	return dels, nil
}

func (s *MemoryStore) AddVote(ctx context.Context, key common.Hash, proposalID uint64, v Vote) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vk := votedKey{key, proposalID, v.Voter}
	if s.voted[vk] {
		return 0, ErrAlreadyVoted
	}
	s.voted[vk] = true

	pk := voteKey{key, proposalID}
	v = copyVote(v)
	v.ID = uint64(len(s.votes[pk])) + 1
	s.votes[pk] = append(s.votes[pk], v)

	return v.ID, nil
}

func (s *MemoryStore) HasVoted(ctx context.Context, key common.Hash, proposalID uint64, voter common.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.voted[votedKey{key, proposalID, voter}], nil
}

func (s *MemoryStore) GetVotes(ctx context.Context, key common.Hash, proposalID uint64) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pk := voteKey{key, proposalID}
	votes := make([]Vote, 0, len(s.votes[pk]))
	for _, v := range s.votes[pk] {
		votes = append(votes, copyVote(v))
	}

	return votes, nil
}

func (s *MemoryStore) DelegatedWeight(ctx context.Context, delegatee common.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.delegated[delegatee]
	if !ok {
		return new(big.Int), nil
	}

	return new(big.Int).Set(w), nil
}

func (s *MemoryStore) AddDelegatedWeight(ctx context.Context, weights map[common.Address]*big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, w := range weights {
		cur, ok := s.delegated[addr]
		if !ok {
			cur = new(big.Int)
			s.delegated[addr] = cur
		}
		cur.Add(cur, w)
	}

	return nil
}

func copyBig(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func copyProposal(p Proposal) Proposal {
	p.Threshold = copyBig(p.Threshold)
	p.Data = copyBytes(p.Data)
	return p
}

func copyVote(v Vote) Vote {
	v.Weight = copyBig(v.Weight)
	v.Payload = copyBytes(v.Payload)
	return v
}

func copyDelegation(d Delegation) Delegation {
	d.Weight = copyBig(d.Weight)
	return d
}
