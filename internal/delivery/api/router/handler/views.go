package handler

import (
	"time"

	"greencycle/internal/domain/entity"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestResponse is the workflow half of a collection.
type RequestResponse struct {
	ID          uuid.UUID  `json:"id"`
	State       string     `json:"state"`
	Notes       string     `json:"notes"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// PaymentResponse is the monetary half of a collection.
type PaymentResponse struct {
	ID      uuid.UUID       `json:"id"`
	State   string          `json:"state"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// ImageResponse describes a hosted collection photo.
type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectionResponse is returned by every lifecycle action.
type CollectionResponse struct {
	ID         uuid.UUID        `json:"id"`
	ClientID   uuid.UUID        `json:"client_id"`
	PartnerID  *uuid.UUID       `json:"partner_id"`
	MaterialID uuid.UUID        `json:"material_id"`
	Weight     *decimal.Decimal `json:"weight,omitempty"`
	Quantity   *int             `json:"quantity,omitempty"`
	AddressID  uuid.UUID        `json:"address_id"`
	Request    RequestResponse  `json:"request"`
	Payment    PaymentResponse  `json:"payment"`
	Images     []ImageResponse  `json:"images"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CollectionDetailResponse adds the referenced records to a collection.
type CollectionDetailResponse struct {
	CollectionResponse
	Material *MaterialResponse `json:"material,omitempty"`
	Address  *AddressResponse  `json:"address,omitempty"`
	Rating   *RatingResponse   `json:"rating"`
}

// FinalizeResponse reports whether finalizing created the rating.
type FinalizeResponse struct {
	Collection    CollectionResponse `json:"collection"`
	RatingCreated bool               `json:"rating_created"`
}

// PendingCollectionResponse is one entry of a partner's pending listing.
type PendingCollectionResponse struct {
	ID             uuid.UUID        `json:"id"`
	ClientID       uuid.UUID        `json:"client_id"`
	MaterialID     uuid.UUID        `json:"material_id"`
	MaterialName   string           `json:"material_name"`
	Weight         *decimal.Decimal `json:"weight,omitempty"`
	Quantity       *int             `json:"quantity,omitempty"`
	AddressID      uuid.UUID        `json:"address_id"`
	AddressLine    string           `json:"address_line"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	Notes          string           `json:"notes"`
	PaymentAmount  decimal.Decimal  `json:"payment_amount"`
	DistanceMeters *float64         `json:"distance_meters,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// RatingResponse shows both halves of a rating.
type RatingResponse struct {
	ID               uuid.UUID `json:"id"`
	CollectionID     uuid.UUID `json:"collection_id"`
	ClientID         uuid.UUID `json:"client_id"`
	PartnerID        uuid.UUID `json:"partner_id"`
	ScoreByClient    int       `json:"score_by_client"`
	CommentByClient  string    `json:"comment_by_client"`
	ScoreByPartner   int       `json:"score_by_partner"`
	CommentByPartner string    `json:"comment_by_partner"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RatingStatisticsResponse summarises the scores a party received.
type RatingStatisticsResponse struct {
	RatedCount           int         `json:"rated_count"`
	Average              string      `json:"average"`
	Histogram            map[int]int `json:"histogram"`
	CompletedCollections int64       `json:"completed_collections"`
}

// MaterialResponse describes a catalogue material.
type MaterialResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// AddressResponse describes a geocoded address.
type AddressResponse struct {
	ID           uuid.UUID `json:"id"`
	CEP          string    `json:"cep"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood"`
	Street       string    `json:"street"`
	Number       int       `json:"number"`
	Complement   string    `json:"complement"`
	Line         string    `json:"line"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// UserResponse is the public part of an account's login identity.
type UserResponse struct {
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	AddressID *uuid.UUID `json:"address_id,omitempty"`
}

// ClientResponse describes a client account.
type ClientResponse struct {
	ID        uuid.UUID    `json:"id"`
	User      UserResponse `json:"user"`
	CPF       string       `json:"cpf"`
	BirthDate string       `json:"birth_date"`
	Sex       string       `json:"sex"`
	CreatedAt time.Time    `json:"created_at"`
}

// PartnerResponse describes a partner account.
type PartnerResponse struct {
	ID          uuid.UUID    `json:"id"`
	User        UserResponse `json:"user"`
	CNPJ        string       `json:"cnpj"`
	MaterialIDs []uuid.UUID  `json:"material_ids"`
	CreatedAt   time.Time    `json:"created_at"`
}

func newCollectionResponse(c *entity.Collection) CollectionResponse {
	images := make([]ImageResponse, 0, len(c.Images))
	for i := range c.Images {
		images = append(images, newImageResponse(&c.Images[i]))
	}

	return CollectionResponse{
		ID:         c.ID,
		ClientID:   c.ClientID,
		PartnerID:  c.Partner.Ptr(),
		MaterialID: c.MaterialID,
		Weight:     c.Measure.Weight,
		Quantity:   c.Measure.Quantity,
		AddressID:  c.AddressID,
		Request: RequestResponse{
			ID:          c.Request.ID,
			State:       c.Request.State.String(),
			Notes:       c.Request.Notes,
			FinalizedAt: c.Request.FinalizedAt,
		},
		Payment: PaymentResponse{
			ID:      c.Payment.ID,
			State:   c.Payment.State.String(),
			Amount:  c.Payment.Amount,
			Balance: c.Payment.Balance,
		},
		Images:    images,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newCollectionDetailResponse(d *usecase.CollectionDetail) CollectionDetailResponse {
	resp := CollectionDetailResponse{CollectionResponse: newCollectionResponse(d.Collection)}
	if d.Material != nil {
		m := newMaterialResponse(d.Material)
		resp.Material = &m
	}
	if d.Address != nil {
		a := newAddressResponse(d.Address)
		resp.Address = &a
	}
	if d.Rating != nil {
		r := newRatingResponse(d.Rating)
		resp.Rating = &r
	}

	return resp
}

func newPendingCollectionResponses(items []*entity.CollectionSummary) []PendingCollectionResponse {
	out := make([]PendingCollectionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, PendingCollectionResponse{
			ID:             s.ID,
			ClientID:       s.ClientID,
			MaterialID:     s.MaterialID,
			MaterialName:   s.MaterialName,
			Weight:         s.Measure.Weight,
			Quantity:       s.Measure.Quantity,
			AddressID:      s.AddressID,
			AddressLine:    s.AddressLine,
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
			Notes:          s.Notes,
			PaymentAmount:  s.PaymentAmount,
			DistanceMeters: s.DistanceMeters,
			CreatedAt:      s.CreatedAt,
		})
	}

	return out
}

func newImageResponse(img *entity.CollectionImage) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		CreatedAt: img.CreatedAt,
	}
}

func newRatingResponse(r *entity.Rating) RatingResponse {
	return RatingResponse{
		ID:               r.ID,
		CollectionID:     r.CollectionID,
		ClientID:         r.ClientID,
		PartnerID:        r.PartnerID,
		ScoreByClient:    r.ScoreByClient,
		CommentByClient:  r.CommentByClient,
		ScoreByPartner:   r.ScoreByPartner,
		CommentByPartner: r.CommentByPartner,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func newRatingStatisticsResponse(s *entity.RatingStatistics) RatingStatisticsResponse {
	return RatingStatisticsResponse{
		RatedCount:           s.RatedCount,
		Average:              s.Average.StringFixed(2),
		Histogram:            s.Histogram,
		CompletedCollections: s.CompletedCollections,
	}
}

func newMaterialResponse(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
	}
}

func newAddressResponse(a *entity.Address) AddressResponse {
	return AddressResponse{
		ID:           a.ID,
		CEP:          a.CEP,
		State:        a.State,
		City:         a.City,
		Neighborhood: a.Neighborhood,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Line:         a.Line(),
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
	}
}

func newUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		AddressID: u.AddressID,
	}
}

func newClientResponse(c *entity.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		User:      newUserResponse(&c.User),
		CPF:       c.CPF,
		BirthDate: c.BirthDate.Format(time.DateOnly),
		Sex:       c.Sex,
		CreatedAt: c.CreatedAt,
	}
}

func newPartnerResponse(p *entity.Partner) PartnerResponse {
	ids := p.MaterialIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}

	return PartnerResponse{
		ID:          p.ID,
		User:        newUserResponse(&p.User),
		CNPJ:        p.CNPJ,
		MaterialIDs: ids,
		CreatedAt:   p.CreatedAt,
	}
}
