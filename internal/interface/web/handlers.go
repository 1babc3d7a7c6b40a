package web

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tokengate/tokengated/internal/core/application"
	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/pkg/errors"
	grpccodes "google.golang.org/grpc/codes"
)

// managerTokenHeader carries the caller principal; the proxy decides whether
// it is the manager.
const managerTokenHeader = "X-Manager-Token"

type handler struct {
	proxy    *application.Proxy
	resolver ports.ExtensionResolver
}

type extensionInfo struct {
	Address string `json:"address"`
	State   string `json:"state"`
	Index   int    `json:"index"`
}

type transferRequest struct {
	Token        string `json:"token"`
	Payload      []byte `json:"payload,omitempty"`
	Partition    string `json:"partition,omitempty"`
	Operator     string `json:"operator,omitempty"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Amount       uint64 `json:"amount"`
	Data         []byte `json:"data,omitempty"`
	OperatorData []byte `json:"operator_data,omitempty"`
}

func (h *handler) info(w http.ResponseWriter, r *http.Request) {
	id, version := h.proxy.CurrentLogic()
	writeJSON(w, http.StatusOK, map[string]string{
		"logic_id":      id,
		"logic_version": version,
	})
}

func (h *handler) listExtensions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.proxy.AllExtensions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	extensions := make([]extensionInfo, 0, len(entries))
	for _, entry := range entries {
		extensions = append(extensions, extensionInfo{
			Address: entry.Address,
			State:   entry.State.String(),
			Index:   entry.Index,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"extensions": extensions})
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.proxy.Balance(
		r.Context(), r.PathValue("address"), r.URL.Query().Get("partition"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *handler) submitTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := domain.TransferRequest{
		Id:           uuid.NewString(),
		Token:        body.Token,
		Payload:      body.Payload,
		Partition:    body.Partition,
		Operator:     body.Operator,
		From:         body.From,
		To:           body.To,
		Amount:       body.Amount,
		Data:         body.Data,
		OperatorData: body.OperatorData,
	}
	if err := h.proxy.Transfer(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": req.Id})
}

func (h *handler) registerExtension(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	done, err := h.proxy.RegisterExtension(r.Context(), caller(r), body.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (h *handler) removeExtension(w http.ResponseWriter, r *http.Request) {
	done, err := h.proxy.RemoveExtension(r.Context(), caller(r), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (h *handler) enableExtension(w http.ResponseWriter, r *http.Request) {
	done, err := h.proxy.EnableExtension(r.Context(), caller(r), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (h *handler) disableExtension(w http.ResponseWriter, r *http.Request) {
	done, err := h.proxy.DisableExtension(r.Context(), caller(r), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (h *handler) upgradeLogic(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	newLogic, err := application.NewLogic(body.Version, h.resolver)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.proxy.UpgradeTo(r.Context(), caller(r), newLogic); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"logic_id":      newLogic.Id(),
		"logic_version": newLogic.Version(),
	})
}

func (h *handler) issue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address   string `json:"address"`
		Partition string `json:"partition,omitempty"`
		Amount    uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.proxy.Issue(
		r.Context(), caller(r), body.Address, body.Partition, body.Amount,
	); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

func caller(r *http.Request) string {
	return r.Header.Get(managerTokenHeader)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nolint:all
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err errors.Error) {
	err.Log().Debug("request failed")
	writeJSON(w, httpStatus(err.GrpcCode()), map[string]any{
		"code":     err.CodeName(),
		"message":  err.Error(),
		"metadata": err.Metadata(),
	})
}

func httpStatus(code grpccodes.Code) int {
	switch code {
	case grpccodes.InvalidArgument:
		return http.StatusBadRequest
	case grpccodes.NotFound:
		return http.StatusNotFound
	case grpccodes.AlreadyExists:
		return http.StatusConflict
	case grpccodes.PermissionDenied:
		return http.StatusForbidden
	case grpccodes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case grpccodes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
