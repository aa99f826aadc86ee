package handler

import (
	"net/http"
	"time"

	"greencycle/internal/delivery/api/response"
	"greencycle/internal/delivery/api/validator"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
}

// AccountHandler holds dependencies for client and partner account handlers
type AccountHandler struct {
	accountUC usecase.AccountUsecase
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
	}
}

// UserRequest holds the login fields shared by client and partner registration
type UserRequest struct {
	Name      string     `json:"name" validate:"required,max=150"`
	Username  string     `json:"username" validate:"required,max=150"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"omitempty,phone_br"`
	Password  string     `json:"password" validate:"required,min=8"`
	AddressID *uuid.UUID `json:"address_id"`
}

// RegisterClientRequest represents the request body for client registration
type RegisterClientRequest struct {
	UserRequest
	CPF       string `json:"cpf" validate:"required,cpf"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Sex       string `json:"sex" validate:"required,len=1"`
}

// RegisterPartnerRequest represents the request body for partner registration
type RegisterPartnerRequest struct {
	UserRequest
	CNPJ        string      `json:"cnpj" validate:"required,cnpj"`
	MaterialIDs []uuid.UUID `json:"material_ids" validate:"required,min=1"`
}

// UpdatePartnerMaterialsRequest replaces the materials a partner works with
type UpdatePartnerMaterialsRequest struct {
	MaterialIDs []uuid.UUID `json:"material_ids" validate:"required"`
}

func (r *UserRequest) toInput() usecase.UserInput {
	return usecase.UserInput{
		Name:      r.Name,
		Username:  r.Username,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
		AddressID: r.AddressID,
	}
}

// RegisterClient handles POST /clients
func (h *AccountHandler) RegisterClient(c echo.Context) error {
	var req RegisterClientRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados do cliente inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	birthDate, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		return response.ValidationError(c, map[string]string{"birth_date": "datetime=2006-01-02"})
	}

	client, err := h.accountUC.RegisterClient(c.Request().Context(), &usecase.RegisterClientInput{
		User:      req.toInput(),
		CPF:       req.CPF,
		BirthDate: birthDate,
		Sex:       req.Sex,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newClientResponse(client))
}

// RegisterPartner handles POST /partners
func (h *AccountHandler) RegisterPartner(c echo.Context) error {
	var req RegisterPartnerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Dados do parceiro inválidos")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	partner, err := h.accountUC.RegisterPartner(c.Request().Context(), &usecase.RegisterPartnerInput{
		User:        req.toInput(),
		CNPJ:        req.CNPJ,
		MaterialIDs: req.MaterialIDs,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newPartnerResponse(partner))
}

// GetClient handles GET /clients/:id
func (h *AccountHandler) GetClient(c echo.Context) error {
	clientID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de cliente inválido")
	}

	client, err := h.accountUC.GetClient(c.Request().Context(), clientID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newClientResponse(client))
}

// GetPartner handles GET /partners/:id
func (h *AccountHandler) GetPartner(c echo.Context) error {
	partnerID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de parceiro inválido")
	}

	partner, err := h.accountUC.GetPartner(c.Request().Context(), partnerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPartnerResponse(partner))
}

// UpdatePartnerMaterials handles PUT /partners/:id/materials
func (h *AccountHandler) UpdatePartnerMaterials(c echo.Context) error {
	partnerID, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "ID de parceiro inválido")
	}

	var req UpdatePartnerMaterialsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Lista de materiais inválida")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	partner, err := h.accountUC.UpdatePartnerMaterials(c.Request().Context(), partnerID, req.MaterialIDs)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newPartnerResponse(partner))
}
