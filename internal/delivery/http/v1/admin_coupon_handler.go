package v1

import (
	"net/http"
	"time"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminCouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewAdminCouponHandler(couponUC *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{couponUC: couponUC}
}

type couponReq struct {
	Code           string    `json:"code"`
	Description    string    `json:"description"`
	DiscountType   string    `json:"discountType"`
	DiscountValue  int64     `json:"discountValue"`
	MinOrderAmount int64     `json:"minOrderAmount"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

func (h *AdminCouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	coupon := &domain.Coupon{
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
	if err := h.couponUC.CreateCoupon(r.Context(), coupon); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, coupon)
}

func (h *AdminCouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	coupon := &domain.Coupon{
		ID:             r.PathValue("id"),
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
	if err := h.couponUC.UpdateCoupon(r.Context(), coupon); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, coupon)
}

func (h *AdminCouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Coupon deleted")
}

func (h *AdminCouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.GetCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, coupon)
}

func (h *AdminCouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	coupons, total, err := h.couponUC.ListCoupons(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, coupons, domain.Pagination{
		Page: page, Limit: limit, TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}
