package handler

import (
	"net/http"

	"greencycle/internal/delivery/api/response"
	"greencycle/internal/delivery/api/validator"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RatingHandlerParams holds dependencies for RatingHandler, injected by Fx.
type RatingHandlerParams struct {
	fx.In

	RatingUC usecase.RatingUsecase
}

// RatingHandler exposes the mutual rating of finalized collections.
type RatingHandler struct {
	ratingUC usecase.RatingUsecase
}

// NewRatingHandler is the constructor for RatingHandler
func NewRatingHandler(params RatingHandlerParams) *RatingHandler {
	return &RatingHandler{
		ratingUC: params.RatingUC,
	}
}

// RatePartnerRequest is the client's score for the partner of a collection
type RatePartnerRequest struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
	ClientID     uuid.UUID `json:"client_id" validate:"required"`
	Score        int       `json:"score" validate:"min=0,max=5"`
	Text         string    `json:"text" validate:"max=300"`
}

// RateClientRequest is the partner's score for the client of a collection
type RateClientRequest struct {
	CollectionID uuid.UUID `json:"collection_id" validate:"required"`
	PartnerID    uuid.UUID `json:"partner_id" validate:"required"`
	Score        int       `json:"score" validate:"min=0,max=5"`
	Text         string    `json:"text" validate:"max=300"`
}

// RatePartner handles POST /ratings/rate-partner
func (h *RatingHandler) RatePartner(c echo.Context) error {
	var req RatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados da avaliação inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	rating, err := h.ratingUC.SubmitClientRating(c.Request().Context(), &usecase.SubmitRatingInput{
		CollectionID: req.CollectionID,
		ActorID:      req.ClientID,
		Score:        req.Score,
		Comment:      req.Text,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newRatingResponse(rating))
}

// RateClient handles POST /ratings/rate-client
func (h *RatingHandler) RateClient(c echo.Context) error {
	var req RateClientRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados da avaliação inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	rating, err := h.ratingUC.SubmitPartnerRating(c.Request().Context(), &usecase.SubmitRatingInput{
		CollectionID: req.CollectionID,
		ActorID:      req.PartnerID,
		Score:        req.Score,
		Comment:      req.Text,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newRatingResponse(rating))
}

// GetByCollection handles GET /ratings/collection/:id
func (h *RatingHandler) GetByCollection(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	rating, err := h.ratingUC.GetByCollection(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newRatingResponse(rating))
}

// ClientStatistics handles GET /ratings/statistics/client/:id
func (h *RatingHandler) ClientStatistics(c echo.Context) error {
	clientID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de cliente inválido")
	}

	stats, err := h.ratingUC.StatisticsForClient(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newRatingStatisticsResponse(stats))
}

// PartnerStatistics handles GET /ratings/statistics/partner/:id
func (h *RatingHandler) PartnerStatistics(c echo.Context) error {
	partnerID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de parceiro inválido")
	}

	stats, err := h.ratingUC.StatisticsForPartner(c.Request().Context(), partnerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newRatingStatisticsResponse(stats))
}
