package handler

import (
	"log/slog"
	"net/http"

	"greencycle/internal/delivery/api/response"
	"greencycle/internal/delivery/api/validator"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CollectionHandlerParams holds dependencies for CollectionHandler, injected by Fx.
type CollectionHandlerParams struct {
	fx.In

	CollectionUC usecase.CollectionUsecase
	ImageUC      usecase.ImageUsecase
	Logger       *slog.Logger
}

// CollectionHandler exposes the collection lifecycle.
type CollectionHandler struct {
	collectionUC usecase.CollectionUsecase
	imageUC      usecase.ImageUsecase
	logger       *slog.Logger
}

// NewCollectionHandler is the constructor for CollectionHandler
func NewCollectionHandler(params CollectionHandlerParams) *CollectionHandler {
	return &CollectionHandler{
		collectionUC: params.CollectionUC,
		imageUC:      params.ImageUC,
		logger:       params.Logger,
	}
}

// CreateCollectionRequest represents the request body for offering material.
// Exactly one of weight or quantity is expected.
type CreateCollectionRequest struct {
	ClientID      uuid.UUID        `json:"client_id" validate:"required"`
	MaterialID    uuid.UUID        `json:"material_id" validate:"required"`
	AddressID     uuid.UUID        `json:"address_id" validate:"required"`
	Weight        *decimal.Decimal `json:"weight" validate:"required_without=Quantity,excluded_with=Quantity,omitempty,decimal_positive"`
	Quantity      *int             `json:"quantity" validate:"required_without=Weight,excluded_with=Weight,omitempty,gt=0"`
	Notes         string           `json:"notes" validate:"max=100"`
	PaymentAmount decimal.Decimal  `json:"payment_amount"`
}

// AcceptCollectionRequest represents the request body for accepting a collection
type AcceptCollectionRequest struct {
	PartnerID uuid.UUID `json:"partner_id" validate:"required"`
}

// ScanPickupRequest represents a partner scanning the client's pickup QR code
type ScanPickupRequest struct {
	PartnerID uuid.UUID `json:"partner_id" validate:"required"`
	QRData    string    `json:"qr_data" validate:"required"`
}

// CreateCollection handles POST /collections
func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	var req CreateCollectionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados da coleta inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	input := &usecase.CreateCollectionInput{
		ClientID:      req.ClientID,
		MaterialID:    req.MaterialID,
		AddressID:     req.AddressID,
		Weight:        req.Weight,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
		PaymentAmount: req.PaymentAmount,
	}

	collection, err := h.collectionUC.CreateCollection(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newCollectionResponse(collection))
}

// GetCollection handles GET /collections/:id
func (h *CollectionHandler) GetCollection(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	detail, err := h.collectionUC.GetCollection(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCollectionDetailResponse(detail))
}

// Accept handles POST /collections/:id/accept
func (h *CollectionHandler) Accept(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	var req AcceptCollectionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados de aceite inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	collection, err := h.collectionUC.Accept(c.Request().Context(), collectionID, req.PartnerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCollectionResponse(collection))
}

// MarkCollected handles POST /collections/:id/mark-collected
func (h *CollectionHandler) MarkCollected(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	collection, err := h.collectionUC.MarkCollected(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCollectionResponse(collection))
}

// Cancel handles POST /collections/:id/cancel
func (h *CollectionHandler) Cancel(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	collection, err := h.collectionUC.Cancel(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCollectionResponse(collection))
}

// Finalize handles POST /collections/:id/finalize
func (h *CollectionHandler) Finalize(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	out, err := h.collectionUC.Finalize(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, FinalizeResponse{
		Collection:    newCollectionResponse(out.Collection),
		RatingCreated: out.RatingCreated,
	})
}

// ListPendingForPartner handles GET /collections/pending-for-partner/:partner_id.
// Optional lat and lon query parameters add the distance of each collection.
func (h *CollectionHandler) ListPendingForPartner(c echo.Context) error {
	partnerID, ok := idParam(c, "partner_id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de parceiro inválido")
	}

	origin, err := originFromQuery(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_ORIGIN", "Informe lat e lon válidos")
	}

	items, err := h.collectionUC.ListPendingForPartner(c.Request().Context(), partnerID, origin)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPendingCollectionResponses(items))
}

func originFromQuery(c echo.Context) (*orb.Point, error) {
	if c.QueryParam("lat") == "" && c.QueryParam("lon") == "" {
		return nil, nil
	}

	var lat, lon float64
	err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &lat).
		MustFloat64("lon", &lon).
		BindError()
	if err != nil {
		return nil, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "coordinates out of range")
	}

	return &orb.Point{lon, lat}, nil
}

// GeneratePickupQR handles GET /collections/:id/pickup-qr
func (h *CollectionHandler) GeneratePickupQR(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	png, err := h.collectionUC.GeneratePickupQR(c.Request().Context(), collectionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// ScanPickup handles POST /collections/scan-pickup
func (h *CollectionHandler) ScanPickup(c echo.Context) error {
	var req ScanPickupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados de leitura inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	collection, err := h.collectionUC.ScanPickup(c.Request().Context(), req.PartnerID, req.QRData)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCollectionResponse(collection))
}

// AddImage handles POST /collections/:id/images with a multipart "image" file
func (h *CollectionHandler) AddImage(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "IMAGE_REQUIRED", "Envie a imagem no campo image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "IMAGE_REQUIRED", "Não foi possível ler a imagem enviada")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			h.logger.Warn("Failed to close uploaded image", slog.Any("error", cerr))
		}
	}()

	image, err := h.imageUC.AddImage(c.Request().Context(), collectionID, fileHeader.Filename, file)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newImageResponse(image))
}

// DeleteImage handles DELETE /collections/:id/images/:image_id
func (h *CollectionHandler) DeleteImage(c echo.Context) error {
	collectionID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de coleta inválido")
	}
	imageID, ok := idParam(c, "image_id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de imagem inválido")
	}

	if err := h.imageUC.DeleteImage(c.Request().Context(), collectionID, imageID); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
