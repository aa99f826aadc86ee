package handler

import (
	"net/http"

	"greencycle/internal/delivery/api/response"
	"greencycle/internal/delivery/api/validator"
	"greencycle/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	MaterialUC usecase.MaterialUsecase
	AddressUC  usecase.AddressUsecase
}

// CatalogHandler exposes the reference data collections point at: materials and addresses.
type CatalogHandler struct {
	materialUC usecase.MaterialUsecase
	addressUC  usecase.AddressUsecase
}

// NewCatalogHandler is the constructor for CatalogHandler
func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{
		materialUC: params.MaterialUC,
		addressUC:  params.AddressUC,
	}
}

// CreateMaterialRequest represents the request body for a new material
type CreateMaterialRequest struct {
	Name        string          `json:"name" validate:"required,max=50"`
	Description string          `json:"description" validate:"max=150"`
	Price       decimal.Decimal `json:"price"`
}

// AddressRequest represents the request body for creating or replacing an address
type AddressRequest struct {
	CEP          string `json:"cep" validate:"required,cep"`
	State        string `json:"state" validate:"required,len=2"`
	City         string `json:"city" validate:"required,max=100"`
	Neighborhood string `json:"neighborhood" validate:"required,max=100"`
	Street       string `json:"street" validate:"required,max=150"`
	Number       int    `json:"number" validate:"required,gt=0"`
	Complement   string `json:"complement" validate:"max=100"`
}

func (r *AddressRequest) toInput() *usecase.AddressInput {
	return &usecase.AddressInput{
		CEP:          r.CEP,
		State:        r.State,
		City:         r.City,
		Neighborhood: r.Neighborhood,
		Street:       r.Street,
		Number:       r.Number,
		Complement:   r.Complement,
	}
}

// CreateMaterial handles POST /materials
func (h *CatalogHandler) CreateMaterial(c echo.Context) error {
	var req CreateMaterialRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados do material inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	material, err := h.materialUC.CreateMaterial(c.Request().Context(), &usecase.CreateMaterialInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newMaterialResponse(material))
}

// ListMaterials handles GET /materials
func (h *CatalogHandler) ListMaterials(c echo.Context) error {
	materials, err := h.materialUC.ListMaterials(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, newMaterialResponse(m))
	}

	return response.Success(c, http.StatusOK, out)
}

// GetMaterial handles GET /materials/:id
func (h *CatalogHandler) GetMaterial(c echo.Context) error {
	materialID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de material inválido")
	}

	material, err := h.materialUC.GetMaterial(c.Request().Context(), materialID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newMaterialResponse(material))
}

// CreateAddress handles POST /addresses
func (h *CatalogHandler) CreateAddress(c echo.Context) error {
	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados do endereço inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	address, err := h.addressUC.CreateAddress(c.Request().Context(), req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newAddressResponse(address))
}

// GetAddress handles GET /addresses/:id
func (h *CatalogHandler) GetAddress(c echo.Context) error {
	addressID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de endereço inválido")
	}

	address, err := h.addressUC.GetAddress(c.Request().Context(), addressID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAddressResponse(address))
}

// UpdateAddress handles PUT /addresses/:id
func (h *CatalogHandler) UpdateAddress(c echo.Context) error {
	addressID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de endereço inválido")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados do endereço inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	address, err := h.addressUC.UpdateAddress(c.Request().Context(), addressID, req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAddressResponse(address))
}
