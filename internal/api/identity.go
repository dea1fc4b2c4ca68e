package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/guarantor-network/fabric/pkg/dal"
)

// infoResponse is the body of GET /v1/info.
type infoResponse struct {
	Node    string `json:"node"`
	Version string `json:"version"`
}

// InfoHandler handles GET /v1/info: a liveness/identity probe for this
// node, carrying no document data.
func InfoHandler(nodeID, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, infoResponse{Node: nodeID, Version: version})
	})
}

// createIdentityRequest is the body of POST /v1/identity.
type createIdentityRequest struct {
	Props map[string]interface{} `json:"props"`
}

// identityResponse is the wire shape for an Identity document.
type identityResponse struct {
	Head    string                 `json:"head"`
	HeadRev string                 `json:"head_rev"`
	Address string                 `json:"address"`
	Props   map[string]interface{} `json:"props"`
}

func toIdentityResponse(w *dal.DocumentWrapper) (identityResponse, error) {
	fields := w.Doc.Fields()
	address, _ := fields["address"].(string)
	props, _ := fields["props"].(map[string]interface{})
	return identityResponse{
		Head:    w.Head().String(),
		HeadRev: w.HeadRev().String(),
		Address: address,
		Props:   props,
	}, nil
}

// CreateIdentityHandler handles POST /v1/identity: mints a root
// Identity change signed by this node's configured authoring key and
// saves it. The address is derived from that key, not from the request
// body — a caller cannot mint an identity for someone else's address.
func CreateIdentityHandler(store *dal.DAL, nodeAddress string, log hclog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createIdentityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, log, "CreateIdentity", &dal.Error{Op: "CreateIdentity", Err: dal.ErrInvalidQuery, Msg: "malformed request body"})
			return
		}

		fields := map[string]interface{}{
			"address": nodeAddress,
			"props":   req.Props,
		}

		wrapper, err := store.NewDocument(r.Context(), "guarantor.schemas:Identity", fields)
		if err != nil {
			writeError(w, log, "CreateIdentity", err)
			return
		}
		wrapper, err = store.Save(wrapper)
		if err != nil {
			writeError(w, log, "CreateIdentity", err)
			return
		}

		resp, err := toIdentityResponse(wrapper)
		if err != nil {
			writeError(w, log, "CreateIdentity", err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	})
}

// GetIdentityHandler handles GET /v1/identity/{address}: looks the
// address up with a prefix-index find_one() against the DAL and returns
// 404 when no Identity matches. The relational identity cache is not
// consulted.
func GetIdentityHandler(store *dal.DAL, log hclog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if address == "" {
			writeError(w, log, "GetIdentity", &dal.Error{Op: "GetIdentity", Err: dal.ErrInvalidQuery, Msg: "address is required"})
			return
		}

		wrapper, err := store.FindOne("guarantor.schemas:Identity", map[string]string{"address": address})
		if err != nil {
			writeError(w, log, "GetIdentity", err)
			return
		}
		if wrapper == nil {
			log.Warn("GetIdentity", "address", address, "error", "not found")
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "identity not found: " + address})
			return
		}

		resp, err := toIdentityResponse(wrapper)
		if err != nil {
			writeError(w, log, "GetIdentity", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}
