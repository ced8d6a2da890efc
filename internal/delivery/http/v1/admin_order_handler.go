package v1

import (
	"net/http"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewAdminOrderHandler(orderUC *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: orderUC}
}

func (h *AdminOrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{
		Page:   utils.ParseInt(r.URL.Query().Get("page"), 1),
		Limit:  utils.ParseInt(r.URL.Query().Get("limit"), 20),
		Status: r.URL.Query().Get("status"),
		UserID: r.URL.Query().Get("userId"),
		Search: r.URL.Query().Get("search"),
	}

	orders, total, err := h.orderUC.GetAllOrders(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, orders, domain.Pagination{
		Page: filter.Page, Limit: filter.Limit, TotalItems: total,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	})
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, order)
}

type updateStatusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *AdminOrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Status == "" {
		badRequest(w, "status is required")
		return
	}

	if err := h.orderUC.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status, req.Reason); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Order status updated")
}

func (h *AdminOrderHandler) ListReturnRequests(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	orders, total, err := h.orderUC.ListReturnRequests(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, orders, domain.Pagination{
		Page: page, Limit: limit, TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

type resolveReturnReq struct {
	Approve         bool   `json:"approve"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *AdminOrderHandler) ResolveReturn(w http.ResponseWriter, r *http.Request) {
	var req resolveReturnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if !req.Approve && req.RejectionReason == "" {
		badRequest(w, "rejectionReason is required when rejecting")
		return
	}

	err := h.orderUC.ResolveReturn(r.Context(), r.PathValue("id"), r.PathValue("itemId"), req.Approve, req.RejectionReason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Return request resolved")
}
