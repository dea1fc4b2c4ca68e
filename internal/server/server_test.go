package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/internal/server"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
)

const serverTestWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

func TestNew_WiresRouterThatServesInfo(t *testing.T) {
	key, err := secp256k1.ParseWIF(serverTestWIF)
	require.NoError(t, err)

	cfg := &config.Config{
		Store: config.StoreConfig{Path: t.TempDir(), MineDifficulty: 1},
		DHT:   config.DHTConfig{Bind: "127.0.0.1:4001", KSize: 20, Alpha: 3},
		Index: []config.IndexConfig{
			{Doctype: "guarantor.schemas:Identity", Fields: []string{"address"}},
		},
		HTTPListen: "127.0.0.1:0",
	}

	srv, err := server.New(cfg, key, hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	require.NotNil(t, srv.DAL())
	require.NotNil(t, srv.Node())

	w, err := srv.DAL().NewDocument(t.Context(), "guarantor.schemas:Identity", map[string]interface{}{
		"address": key.Address().String(),
		"props":   map[string]interface{}{},
	})
	require.NoError(t, err)
	_, err = srv.DAL().Save(w)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/identity/"+key.Address().String(), nil)
	rec := httptest.NewRecorder()
	handlerFromServer(t, srv).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

// handlerFromServer reaches the façade's http.Handler the same way an
// operator reaches it over the network, without binding a real socket.
func handlerFromServer(t *testing.T, srv *server.Server) http.Handler {
	t.Helper()
	h := srv.Handler()
	require.NotNil(t, h)
	return h
}
