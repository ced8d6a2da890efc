package v1

import (
	"net/http"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC}
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)

	orders, total, err := h.orderUC.GetMyOrders(r.Context(), user.ID, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, orders, domain.Pagination{
		Page: page, Limit: limit, TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	order, err := h.orderUC.GetMyOrder(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, order)
}

type cancelOrderReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req cancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	order, err := h.orderUC.CancelOrder(r.Context(), user.ID, r.PathValue("id"), req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, order)
}

type returnRequestReq struct {
	Reason            string `json:"reason"`
	AdditionalDetails string `json:"additionalDetails"`
}

func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req returnRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Reason == "" {
		badRequest(w, "reason is required")
		return
	}

	err := h.orderUC.RequestReturn(r.Context(), user.ID, r.PathValue("id"), r.PathValue("itemId"), req.Reason, req.AdditionalDetails)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Return requested")
}
