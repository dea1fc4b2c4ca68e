// Package server wires the core components — the change store, the
// search index, the DAL, the DHT node, and the HTTP façade — into one
// running process (the relational identity cache is opened separately,
// on request, through Server.IdentityCache), the way
// internal/cmd/commands/server composes hermes's own collaborators
// behind a single Command.Run. Graceful shutdown follows the
// signal-then-context-timeout shape used across the pack's own HTTP
// server helpers, adapted here from net/http.Server directly since this
// module's façade is chi-based rather than echo-based.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/guarantor-network/fabric/internal/api"
	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/internal/identitycache"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/dal"
	"github.com/guarantor-network/fabric/pkg/dht"
	"github.com/guarantor-network/fabric/pkg/docsearch"
	bleveindex "github.com/guarantor-network/fabric/pkg/docsearch/bleve"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
	"github.com/guarantor-network/fabric/pkg/searchindex"
)

// Server is one running node: its store, its DHT participation, and its
// HTTP façade.
type Server struct {
	cfg     *config.Config
	log     hclog.Logger
	store   *changestore.BoltStore
	index   *searchindex.Index
	dal     *dal.DAL
	node    *dht.Node
	docs    docsearch.Index
	httpSrv *http.Server
}

// New builds every collaborator named in cfg but does not start
// listening; call Serve to run.
func New(cfg *config.Config, key fabriccrypto.KeyPair, log hclog.Logger) (*Server, error) {
	verifier := secp256k1.NewVerifier()

	store, err := changestore.Open(afero.NewOsFs(), cfg.Store.Path, verifier,
		changestore.WithLogger(log.Named("changestore")))
	if err != nil {
		return nil, fmt.Errorf("open change store: %w", err)
	}

	index := searchindex.New()
	for _, decl := range cfg.Index {
		index.Declare(decl.Doctype, decl.Fields...)
	}

	var opts []dal.Option
	opts = append(opts, dal.WithLogger(log.Named("dal")))
	if key != nil {
		opts = append(opts, dal.WithAuthoringKey(key), dal.WithDifficulty(cfg.Store.MineDifficulty))
	}
	d := dal.New(store, index, verifier, opts...)

	nodeID := dht.HashKey([]byte(cfg.DHT.Bind))
	node := dht.NewNode(nodeID, verifier,
		dht.WithKSize(cfg.DHT.KSize),
		dht.WithAlpha(cfg.DHT.Alpha),
		dht.WithLogger(log.Named("dht")))

	var docs docsearch.Index
	if cfg.Identity.DSN != "" {
		bleveIdx, err := bleveindex.Open(cfg.Store.Path + "/docsearch.bleve")
		if err != nil {
			log.Warn("docsearch unavailable, continuing without full-text enrichment", "error", err)
		} else {
			docs = bleveIdx
		}
	}

	var nodeAddress string
	if key != nil {
		nodeAddress = key.Address().String()
	}

	router := api.NewRouter(d, nodeID.String(), nodeAddress, log.Named("api"))

	return &Server{
		cfg:   cfg,
		log:   log,
		store: store,
		index: index,
		dal:   d,
		node:  node,
		docs:  docs,
		httpSrv: &http.Server{
			Addr:    cfg.HTTPListen,
			Handler: router,
		},
	}, nil
}

// DAL exposes the wired Data-Access Layer for CLI commands that need to
// operate without the HTTP façade.
func (s *Server) DAL() *dal.DAL {
	return s.dal
}

// Node exposes the wired DHT node for CLI commands.
func (s *Server) Node() *dht.Node {
	return s.node
}

// Handler exposes the façade's http.Handler directly, for tests and for
// embedding this node's API behind another listener.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// IdentityCache opens a relational cache against the configured DSN, or
// returns nil if none is configured.
func (s *Server) IdentityCache() (*identitycache.Cache, error) {
	if s.cfg.Identity.DSN == "" {
		return nil, nil
	}
	return identitycache.Open(s.cfg.Identity.Driver, s.cfg.Identity.DSN)
}

// Serve starts the HTTP façade and blocks until ctx is canceled or a
// SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http façade listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return s.Close()
}

// Close releases the store and any optional docsearch index without
// touching the HTTP listener; Serve calls this after Shutdown, and CLI
// commands that construct a Server without Serve-ing it should call it
// directly.
func (s *Server) Close() error {
	if s.docs != nil {
		if err := s.docs.Close(); err != nil {
			s.log.Warn("closing docsearch index", "error", err)
		}
	}
	return s.store.Close()
}
