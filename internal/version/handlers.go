package version

import (
	"math/big"
	"net/http"

	"github.com/citizenwallet/tokengov/internal/common"
	"github.com/citizenwallet/tokengov/pkg/gov"
)

const Version = "0.1.0"

type Service struct {
	chainID *big.Int
	mode    gov.TallyMode
}

func NewService(chainID *big.Int, mode gov.TallyMode) *Service {
	return &Service{
		chainID: chainID,
		mode:    mode,
	}
}

type response struct {
	Version   string        `json:"version"`
	ChainID   string        `json:"chain_id"`
	TallyMode gov.TallyMode `json:"tally_mode"`
}

// Current returns the current version of the API and how the node tallies
func (s *Service) Current(w http.ResponseWriter, r *http.Request) {
	chainID := ""
	if s.chainID != nil {
		chainID = s.chainID.String()
	}

	err := common.Body(w, &response{Version: Version, ChainID: chainID, TallyMode: s.mode}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
