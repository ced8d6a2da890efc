package v1

import (
	"net/http"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"

	"github.com/goccy/go-json"
)

type CheckoutHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	userRepo   domain.UserRepository
}

func NewCheckoutHandler(checkoutUC *usecase.CheckoutUsecase, userRepo domain.UserRepository) *CheckoutHandler {
	return &CheckoutHandler{checkoutUC: checkoutUC, userRepo: userRepo}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.checkoutUC.Checkout(r.Context(), user.ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, order)
}

// ListAddresses backs the address picker on the checkout page.
func (h *CheckoutHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	addresses, err := h.userRepo.ListAddresses(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, addresses)
}
