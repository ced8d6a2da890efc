package v1

import (
	"net/http"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminWalletHandler struct {
	walletUC *usecase.WalletUsecase
}

func NewAdminWalletHandler(walletUC *usecase.WalletUsecase) *AdminWalletHandler {
	return &AdminWalletHandler{walletUC: walletUC}
}

func (h *AdminWalletHandler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	views, pagination, err := h.walletUC.GetAllTransactions(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, views, pagination)
}

type walletCreditReq struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// CreditWallet is the goodwill-credit path.
func (h *AdminWalletHandler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	var req walletCreditReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "userId is required")
		return
	}
	if req.Description == "" {
		req.Description = "Adjustment by support"
	}

	if err := h.walletUC.Credit(r.Context(), req.UserID, req.Amount, req.Description); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Wallet credited")
}
