package governance

import (
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	com "github.com/citizenwallet/tokengov/internal/common"
	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
)

type Service struct {
	g *gov.Governor
}

func NewService(g *gov.Governor) *Service {
	return &Service{
		g: g,
	}
}

type proposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    int64  `json:"deadline"`
	Threshold   string `json:"threshold"`
	Target      string `json:"target"`
	Data        string `json:"data"`
}

type delegationRequest struct {
	Delegatee string `json:"delegatee"`
}

type voteRequest struct {
	Support bool   `json:"support"`
	Payload string `json:"payload"`
}

type tallyResponse struct {
	ProposalID uint64        `json:"proposal_id"`
	For        string        `json:"for"`
	Mode       gov.TallyMode `json:"mode"`
}

type processResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Result     string `json:"result"`
}

// statusFor maps governance errors to http status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, gov.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, gov.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gov.ErrInvalidProposal),
		errors.Is(err, gov.ErrInvalidDelegation),
		errors.Is(err, gov.ErrInvalidSetting):
		return http.StatusBadRequest
	case errors.Is(err, gov.ErrInsufficientVotes),
		errors.Is(err, gov.ErrAlreadyVoted),
		errors.Is(err, gov.ErrAlreadyDelegated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		com.Error(w, status, nil)
		return
	}

	com.Error(w, status, err)
}

// parseInstance parses the token address and id of the url
func parseInstance(r *http.Request) (common.Address, *big.Int, error) {
	token, err := com.ParseAddress(chi.URLParam(r, "token_address"))
	if err != nil {
		return common.Address{}, nil, err
	}

	id, err := com.ParseUint256(chi.URLParam(r, "token_id"))
	if err != nil {
		return common.Address{}, nil, err
	}

	return token, id, nil
}

func parseProposalID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "proposal_id"), 10, 64)
}

func parsePagination(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}

// GetProposals godoc
//
//		@Summary		Fetch proposals
//		@Description	get every proposal of a token instance
//		@Tags			gov
//		@Produce		json
//		@Param			token_address	path		string	true	"Token Contract Address"
//		@Param			token_id		path		string	true	"Token ID"
//		@Success		200	{object}	common.Response
//		@Failure		400
//		@Failure		500
//		@Router			/gov/{token_address}/{token_id}/proposals [get]
func (s *Service) GetProposals(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	limit, offset := parsePagination(r)

	proposals, err := s.g.Proposals(r.Context(), token, id)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.BodyMultiple(w, com.Page(proposals, limit, offset), com.Pagination{Limit: limit, Offset: offset, Total: len(proposals)})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Service) GetProposal(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := parseProposalID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	p, err := s.g.Proposal(r.Context(), token, id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, p, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetVotes godoc
//
//		@Summary		Fetch votes
//		@Description	get the ballots cast on a proposal
//		@Tags			gov
//		@Produce		json
//		@Param			token_address	path		string	true	"Token Contract Address"
//		@Param			token_id		path		string	true	"Token ID"
//		@Param			proposal_id		path		int		true	"Proposal ID"
//		@Success		200	{object}	common.Response
//		@Failure		400
//		@Failure		500
//		@Router			/gov/{token_address}/{token_id}/proposals/{proposal_id}/votes [get]
func (s *Service) GetVotes(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := parseProposalID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	limit, offset := parsePagination(r)

	votes, err := s.g.Votes(r.Context(), token, id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.BodyMultiple(w, com.Page(votes, limit, offset), com.Pagination{Limit: limit, Offset: offset, Total: len(votes)})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetTally returns the weight a process call would see right now, nothing is committed
func (s *Service) GetTally(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := parseProposalID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	t, err := s.g.Tally(r.Context(), token, id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, tallyResponse{ProposalID: pid, For: t.String(), Mode: s.g.Mode()}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetDelegations returns every delegation record, ?active=true hides revoked ones
func (s *Service) GetDelegations(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	limit, offset := parsePagination(r)

	delegations, err := s.g.Delegations(r.Context(), token, id)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("active") == "true" {
		delegations = com.Filter(delegations, func(d gov.Delegation) bool {
			return d.Delegator != (common.Address{})
		})
	}

	err = com.BodyMultiple(w, com.Page(delegations, limit, offset), com.Pagination{Limit: limit, Offset: offset, Total: len(delegations)})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Service) GetActiveDelegation(w http.ResponseWriter, r *http.Request) {
	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	acc, err := com.ParseAddress(chi.URLParam(r, "acc_address"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	did, err := s.g.ActiveDelegation(r.Context(), token, id, acc)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, com.IDResponse{ID: did}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// readBody decodes the signed payload into v
func readBody(r *http.Request, v any) error {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	return hexutil.Decode(s)
}

// CreateProposal godoc
//
//		@Summary		Create a proposal
//		@Description	store a proposal on behalf of the signer
//		@Tags			gov
//		@Accept			json
//		@Produce		json
//		@Param			token_address	path		string	true	"Token Contract Address"
//		@Param			token_id		path		string	true	"Token ID"
//		@Success		200	{object}	common.Response
//		@Failure		400
//		@Failure		401
//		@Failure		500
//		@Router			/gov/{token_address}/{token_id}/proposals [post]
func (s *Service) CreateProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := com.GetContextAddress(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req proposalRequest
	if err := readBody(r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	threshold := new(big.Int)
	if req.Threshold != "" {
		threshold, err = com.ParseUint256(req.Threshold)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	var target common.Address
	if req.Target != "" {
		target, err = com.ParseAddress(req.Target)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	data, err := decodeHex(req.Data)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := s.g.Propose(r.Context(), token, id, caller, gov.Proposal{
		Deadline:    time.Unix(req.Deadline, 0).UTC(),
		Threshold:   threshold,
		Title:       req.Title,
		Description: req.Description,
		Target:      target,
		Data:        data,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, com.IDResponse{ID: pid}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Delegate creates a delegation from the signer. An empty delegatee or the zero
// address revokes the signer's active delegation.
func (s *Service) Delegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := com.GetContextAddress(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req delegationRequest
	if err := readBody(r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var delegatee common.Address
	if req.Delegatee != "" {
		delegatee, err = com.ParseAddress(req.Delegatee)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	did, err := s.g.Delegate(r.Context(), token, id, caller, delegatee)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, com.IDResponse{ID: did}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Service) Vote(w http.ResponseWriter, r *http.Request) {
	caller, ok := com.GetContextAddress(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := parseProposalID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := readBody(r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	payload, err := decodeHex(req.Payload)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	vid, err := s.g.Vote(r.Context(), token, id, pid, caller, req.Support, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, com.IDResponse{ID: vid}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Service) Process(w http.ResponseWriter, r *http.Request) {
	caller, ok := com.GetContextAddress(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, id, err := parseInstance(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pid, err := parseProposalID(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := s.g.Process(r.Context(), token, id, pid, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	err = com.Body(w, processResponse{ProposalID: pid, Result: hexutil.Encode(result)}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
