package http_interface

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Librechain/bmultisig/internal/core/application"
	"github.com/Librechain/bmultisig/internal/core/domain"
	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/julienschmidt/httprouter"
)

type walletHandler struct {
	walletSvc *application.WalletService
}

func newWalletHandler(walletSvc *application.WalletService) *walletHandler {
	return &walletHandler{walletSvc}
}

type createWalletRequest struct {
	Name       string `json:"name"`
	M          uint8  `json:"m"`
	N          uint8  `json:"n"`
	JoinPubKey string `json:"joinPubKey"`
}

type joinWalletRequest struct {
	cosigner.HTTPOptions
	ProofSignature string `json:"proofSignature"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *walletHandler) createWallet(
	w http.ResponseWriter, r *http.Request, _ httprouter.Params,
) {
	req := &createWalletRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	joinPubKey, err := hex.DecodeString(req.JoinPubKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := h.walletSvc.CreateWallet(
		r.Context(), req.Name, req.M, req.N, joinPubKey,
	)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (h *walletHandler) listWallets(
	w http.ResponseWriter, r *http.Request, _ httprouter.Params,
) {
	list, err := h.walletSvc.ListWallets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *walletHandler) getWalletInfo(
	w http.ResponseWriter, r *http.Request, p httprouter.Params,
) {
	info, err := h.walletSvc.GetWalletInfo(r.Context(), p.ByName("name"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *walletHandler) joinWallet(
	w http.ResponseWriter, r *http.Request, p httprouter.Params,
) {
	req := &joinWalletRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	proofSig, err := hex.DecodeString(req.ProofSignature)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.walletSvc.JoinWallet(
		r.Context(), p.ByName("name"), &req.HTTPOptions, proofSig,
	)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *walletHandler) rotateToken(
	w http.ResponseWriter, r *http.Request, p httprouter.Params,
) {
	id, err := strconv.ParseUint(p.ByName("id"), 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := h.walletSvc.RotateCosignerToken(
		r.Context(), p.ByName("name"), uint8(id),
	)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOwnershipProof),
		errors.Is(err, domain.ErrInvalidJoinAuthorization):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCosignerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWalletNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWalletAlreadyExisting):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// nolint:errcheck
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, errorResponse{err.Error()})
}
