package v1

import (
	"net/http"
	"vintage-backend/internal/usecase"

	"github.com/goccy/go-json"
)

type PaymentHandler struct {
	paymentUC *usecase.PaymentUsecase
}

func NewPaymentHandler(paymentUC *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req usecase.CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.AddressID == "" {
		badRequest(w, "addressId is required")
		return
	}

	intent, err := h.paymentUC.CreateIntent(r.Context(), user.ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, intent)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req usecase.VerifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.GatewayOrderRef == "" || req.PaymentRef == "" || req.Signature == "" {
		badRequest(w, "gatewayOrderId, gatewayPaymentId and gatewaySignature are required")
		return
	}

	order, err := h.paymentUC.VerifyAndPlace(r.Context(), user.ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, order)
}

type paymentEventReq struct {
	GatewayOrderRef string `json:"gatewayOrderId"`
	Reason          string `json:"reason"`
}

func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req paymentEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := h.paymentUC.CancelPayment(r.Context(), user.ID, req.GatewayOrderRef, req.Reason); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Payment cancelled")
}

func (h *PaymentHandler) PaymentFailure(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req paymentEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := h.paymentUC.HandleFailure(r.Context(), user.ID, req.GatewayOrderRef, req.Reason); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Payment failure recorded")
}
