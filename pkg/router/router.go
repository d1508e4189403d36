package router

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/citizenwallet/tokengov/internal/auth"
	"github.com/citizenwallet/tokengov/internal/governance"
	"github.com/citizenwallet/tokengov/internal/services/ethrequest"
	"github.com/citizenwallet/tokengov/internal/version"
	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	chainId *big.Int
	apiKey  string
	evm     ethrequest.EVMRequester
	g       *gov.Governor
}

func NewServer(chainId *big.Int, apiKey string, evm ethrequest.EVMRequester, g *gov.Governor) *Router {
	return &Router{
		chainId,
		apiKey,
		evm,
		g,
	}
}

// Handler builds the http handler with every route and middleware
func (r *Router) Handler() http.Handler {
	cr := chi.NewRouter()

	a := auth.New(r.apiKey)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(10 << 20)) // Limit request bodies to 10MB
	cr.Use(a.AuthMiddleware)
	cr.Use(middleware.Compress(9))

	// instantiate handlers
	gs := governance.NewService(r.g)
	v := version.NewService(r.chainId, r.g.Mode())

	// configure routes
	cr.Get("/version", v.Current)

	cr.Route("/gov/{token_address}/{token_id}", func(cr chi.Router) {
		cr.Route("/proposals", func(cr chi.Router) {
			cr.Get("/", gs.GetProposals)
			cr.Post("/", withSignature(r.evm, gs.CreateProposal))

			cr.Route("/{proposal_id}", func(cr chi.Router) {
				cr.Get("/", gs.GetProposal)
				cr.Get("/votes", gs.GetVotes)
				cr.Get("/tally", gs.GetTally)

				cr.Post("/votes", withSignature(r.evm, gs.Vote))
				cr.Post("/process", withSignature(r.evm, gs.Process))
			})
		})

		cr.Route("/delegations", func(cr chi.Router) {
			cr.Get("/", gs.GetDelegations)
			cr.Get("/{acc_address}", gs.GetActiveDelegation)

			cr.Post("/", withSignature(r.evm, gs.Delegate))
		})
	})

	return cr
}

// implement the Server interface
func (r *Router) Start(port int) error {
	// start the server
	return http.ListenAndServe(fmt.Sprintf(":%v", port), r.Handler())
}
