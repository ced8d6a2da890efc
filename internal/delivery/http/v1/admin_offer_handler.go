package v1

import (
	"net/http"
	"time"
	"vintage-backend/internal/domain"
	"vintage-backend/internal/usecase"
	"vintage-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AdminOfferHandler struct {
	offerUC *usecase.OfferUsecase
}

func NewAdminOfferHandler(offerUC *usecase.OfferUsecase) *AdminOfferHandler {
	return &AdminOfferHandler{offerUC: offerUC}
}

type offerReq struct {
	Name               string    `json:"name"`
	OfferType          string    `json:"offerType"`
	DiscountPercentage int       `json:"discountPercentage"`
	Items              []string  `json:"items"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	IsActive           bool      `json:"isActive"`
}

func (h *AdminOfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	offer := &domain.Offer{
		Name:               req.Name,
		OfferType:          req.OfferType,
		DiscountPercentage: req.DiscountPercentage,
		Items:              req.Items,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		IsActive:           req.IsActive,
	}
	if err := h.offerUC.CreateOffer(r.Context(), offer); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, offer)
}

func (h *AdminOfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	offer := &domain.Offer{
		ID:                 r.PathValue("id"),
		Name:               req.Name,
		OfferType:          req.OfferType,
		DiscountPercentage: req.DiscountPercentage,
		Items:              req.Items,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		IsActive:           req.IsActive,
	}
	if err := h.offerUC.UpdateOffer(r.Context(), offer); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, offer)
}

func (h *AdminOfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.offerUC.DeleteOffer(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Offer deleted")
}

func (h *AdminOfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offerUC.GetOffer(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, offer)
}

func (h *AdminOfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)

	offers, total, err := h.offerUC.ListOffers(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, offers, domain.Pagination{
		Page: page, Limit: limit, TotalItems: total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}
