// Package api is the out-of-scope "HTTP/WebSocket façade" collaborator
// (§1/§6): a thin REST surface over the DAL, built only to the handler
// shapes §6 names (GET /v1/info, POST /v1/identity,
// GET /v1/identity/{address}) with the §7 status-code mapping. No
// WebSocket or chat transport is implemented — that facade is named
// out-of-scope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/guarantor-network/fabric/pkg/dal"
)

// Version is the facade's reported API version, independent of any
// module release tag.
const Version = "v1"

// NewRouter builds the HTTP handler for this node's façade: store
// serves reads and writes through the DAL, nodeID and nodeAddress
// identify this node on /v1/info and /v1/identity respectively.
func NewRouter(store *dal.DAL, nodeID, nodeAddress string, log hclog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", InfoHandler(nodeID, Version).ServeHTTP)
		r.Post("/identity", CreateIdentityHandler(store, nodeAddress, log).ServeHTTP)
		r.Get("/identity/{address}", GetIdentityHandler(store, log).ServeHTTP)
	})

	return r
}
