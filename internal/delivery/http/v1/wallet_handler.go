package v1

import (
	"net/http"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"
)

type WalletHandler struct {
	walletUC *usecase.WalletUsecase
}

func NewWalletHandler(walletUC *usecase.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)

	view, err := h.walletUC.GetWallet(r.Context(), user.ID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, view)
}
