package v1

import (
	"net/http"
	"vintage-backend/internal/usecase"

	"github.com/goccy/go-json"
)

type CouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewCouponHandler(couponUC *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{couponUC: couponUC}
}

func (h *CouponHandler) AvailableCoupons(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	coupons, err := h.couponUC.AvailableCoupons(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, coupons)
}

type applyCouponReq struct {
	Code      string `json:"code"`
	CartTotal int64  `json:"cartTotal"`
}

func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req applyCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Code == "" {
		badRequest(w, "code is required")
		return
	}

	resp, err := h.couponUC.ApplyPreview(r.Context(), user.ID, req.Code, req.CartTotal)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, resp)
}
