package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/internal/api"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/dal"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
	"github.com/guarantor-network/fabric/pkg/searchindex"
)

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

const apiTestWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	key, err := secp256k1.ParseWIF(apiTestWIF)
	require.NoError(t, err)

	store, err := changestore.Open(afero.NewOsFs(), t.TempDir(), secp256k1.NewVerifier())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idx := searchindex.New()
	idx.Declare("guarantor.schemas:Identity", "address")

	d := dal.New(store, idx, secp256k1.NewVerifier(), dal.WithAuthoringKey(key), dal.WithDifficulty(1))
	nodeAddress := key.Address().String()

	return api.NewRouter(d, "test-node", nodeAddress, hclog.NewNullLogger()), nodeAddress
}

func TestRouter_InfoReturnsNodeIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "test-node", body["node"])
	require.Equal(t, api.Version, body["version"])
}

func TestRouter_CreateThenGetIdentity(t *testing.T) {
	router, nodeAddress := newTestRouter(t)

	createReq := httptest.NewRequest(http.MethodPost, "/v1/identity", jsonBody(t, map[string]interface{}{
		"props": map[string]interface{}{"name": "Bob", "email": "bob@mail.com"},
	}))
	createW := httptest.NewRecorder()
	router.ServeHTTP(createW, createReq)
	require.Equal(t, http.StatusCreated, createW.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/v1/identity/"+nodeAddress, nil)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)

	require.Equal(t, http.StatusOK, getW.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(getW.Body.Bytes(), &body))
	require.Equal(t, nodeAddress, body["address"])
}

func TestRouter_GetIdentity_UnknownAddressIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/identity/does-not-exist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateIdentity_MalformedBodyIs400(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/identity", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
