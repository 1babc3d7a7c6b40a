package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokengate/tokengated/internal/core/application"
	"github.com/tokengate/tokengated/internal/infrastructure/db"
	"github.com/tokengate/tokengated/internal/infrastructure/extension/inprocess"
)

const testManagerToken = "test-manager-token"

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	repos, err := db.NewService(db.ServiceConfig{
		DbType:   "badger",
		DbConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repos.Close)

	resolver := inprocess.NewExtensionResolver(
		inprocess.NewPauser("pauser"),
		inprocess.NewAmountCap("amountcap", 1000),
	)
	logic, lErr := application.NewLogic(application.LogicVersionStandard, resolver)
	require.Nil(t, lErr)

	store := application.NewStore(repos, logic.Id())
	proxy := application.NewProxy(testManagerToken, logic, store)
	return newRouter(proxy, resolver)
}

func doRequest(
	t *testing.T, mux *http.ServeMux, method, path, token string, body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if len(token) > 0 {
		req.Header.Set(managerTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestInfo(t *testing.T) {
	mux := newTestRouter(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/info", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["logic_id"])
	require.Equal(t, "standard", body["logic_version"])
}

func TestExtensionAdminFlow(t *testing.T) {
	mux := newTestRouter(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", testManagerToken,
		map[string]string{"address": "pauser"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodGet, "/v1/extensions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	extensions := body["extensions"].([]any)
	require.Len(t, extensions, 1)
	entry := extensions[0].(map[string]any)
	require.Equal(t, "pauser", entry["address"])
	require.Equal(t, "enabled", entry["state"])

	rec = doRequest(t, mux, http.MethodPost,
		"/v1/admin/extensions/pauser/disable", testManagerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodPost,
		"/v1/admin/extensions/pauser/enable", testManagerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodDelete,
		"/v1/admin/extensions/pauser", testManagerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodGet, "/v1/extensions", "", nil)
	body = decodeBody(t, rec)
	require.Empty(t, body["extensions"])
}

func TestAdminRequiresManagerToken(t *testing.T) {
	mux := newTestRouter(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", "wrong-token",
		map[string]string{"address": "pauser"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestErrorStatusMapping(t *testing.T) {
	mux := newTestRouter(t)

	// unknown extension: the capability handshake cannot reach it
	rec := doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", testManagerToken,
		map[string]string{"address": "ghost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "CAPABILITY_MISMATCH", decodeBody(t, rec)["code"])

	// duplicate registration
	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", testManagerToken,
		map[string]string{"address": "pauser"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", testManagerToken,
		map[string]string{"address": "pauser"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// state machine violation
	rec = doRequest(t, mux, http.MethodPost,
		"/v1/admin/extensions/pauser/enable", testManagerToken, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// unregistered extension
	rec = doRequest(t, mux, http.MethodDelete,
		"/v1/admin/extensions/ghost", testManagerToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// unknown logic version
	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/logic", testManagerToken,
		map[string]string{"version": "v3"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransferEndToEnd(t *testing.T) {
	mux := newTestRouter(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/admin/issuances", testManagerToken,
		map[string]any{"address": "alice", "amount": 100})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/extensions", testManagerToken,
		map[string]string{"address": "amountcap"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodPost, "/v1/transfers", "",
		map[string]any{"from": "alice", "to": "bob", "amount": 40})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decodeBody(t, rec)["id"])

	for addr, balance := range map[string]float64{"alice": 60, "bob": 40} {
		rec = doRequest(t, mux, http.MethodGet,
			fmt.Sprintf("/v1/accounts/%s/balance", addr), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, balance, decodeBody(t, rec)["balance"])
	}

	// over the cap: rejected by the registered extension
	rec = doRequest(t, mux, http.MethodPost, "/v1/transfers", "",
		map[string]any{"from": "alice", "to": "bob", "amount": 5000})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "TRANSFER_REJECTED", decodeBody(t, rec)["code"])

	// more than the remaining balance
	rec = doRequest(t, mux, http.MethodPost, "/v1/transfers", "",
		map[string]any{"from": "alice", "to": "bob", "amount": 70})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "BALANCE_TOO_LOW", decodeBody(t, rec)["code"])
}

func TestUpgradeLogicEndToEnd(t *testing.T) {
	mux := newTestRouter(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/info", "", nil)
	oldId := decodeBody(t, rec)["logic_id"]

	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/logic", "wrong-token",
		map[string]string{"version": "strict"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, mux, http.MethodPost, "/v1/admin/logic", testManagerToken,
		map[string]string{"version": "strict"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, mux, http.MethodGet, "/v1/info", "", nil)
	body := decodeBody(t, rec)
	require.Equal(t, "strict", body["logic_version"])
	require.NotEqual(t, oldId, body["logic_id"])
}
