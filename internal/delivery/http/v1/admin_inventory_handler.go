package v1

import (
	"net/http"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminInventoryHandler struct {
	inventoryUC *usecase.InventoryUsecase
}

func NewAdminInventoryHandler(inventoryUC *usecase.InventoryUsecase) *AdminInventoryHandler {
	return &AdminInventoryHandler{inventoryUC: inventoryUC}
}

type adjustStockReq struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (h *AdminInventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req adjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	variant, err := h.inventoryUC.AdjustStock(r.Context(), r.PathValue("variantId"), req.Delta, req.Reason, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, variant)
}

func (h *AdminInventoryHandler) GetInventoryLogs(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	logs, total, err := h.inventoryUC.GetLogs(r.Context(), r.PathValue("variantId"), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, logs, domain.Pagination{
		Page: page, Limit: limit, TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}
