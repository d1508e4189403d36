package gov

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidProposal   = errors.New("invalid proposal")
	ErrInsufficientVotes = errors.New("insufficient votes")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidDelegation = errors.New("invalid delegation")

	// reserved, no operation returns these yet
	ErrInvalidSetting   = errors.New("invalid setting")
	ErrAlreadyDelegated = errors.New("already delegated")
)
