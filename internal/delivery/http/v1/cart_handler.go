package v1

import (
	"net/http"
	"vintage-backend/internal/usecase"

	"github.com/goccy/go-json"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	cart, err := h.cartUC.GetMyCart(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cart)
}

type addToCartReq struct {
	VariantID string `json:"sizeVariantId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.VariantID == "" {
		badRequest(w, "sizeVariantId is required")
		return
	}

	cart, err := h.cartUC.AddToCart(r.Context(), user.ID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cart)
}

type updateCartReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	variantID := r.PathValue("variantId")
	if variantID == "" {
		badRequest(w, "variant id required")
		return
	}
	var req updateCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	cart, err := h.cartUC.UpdateQuantity(r.Context(), user.ID, variantID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	variantID := r.PathValue("variantId")
	if variantID == "" {
		badRequest(w, "variant id required")
		return
	}

	cart, err := h.cartUC.RemoveFromCart(r.Context(), user.ID, variantID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cart)
}
