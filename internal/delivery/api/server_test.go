package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greencycle/config"
	"greencycle/internal/delivery/api/response"
	"greencycle/internal/delivery/api/router"
	"greencycle/internal/delivery/api/router/handler"
	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type apiEnv struct {
	e           *echo.Echo
	collections *mockCollectionUsecase
	images      *mockImageUsecase
	ratings     *mockRatingUsecase
	materials   *mockMaterialUsecase
	addresses   *mockAddressUsecase
	accounts    *mockAccountUsecase
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "2MB"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &apiEnv{
		collections: new(mockCollectionUsecase),
		images:      new(mockImageUsecase),
		ratings:     new(mockRatingUsecase),
		materials:   new(mockMaterialUsecase),
		addresses:   new(mockAddressUsecase),
		accounts:    new(mockAccountUsecase),
	}

	env.e = NewEcho(cfg, logger, router.RouterParams{
		CollectionHandler: handler.NewCollectionHandler(handler.CollectionHandlerParams{
			CollectionUC: env.collections,
			ImageUC:      env.images,
			Logger:       logger,
		}),
		RatingHandler: handler.NewRatingHandler(handler.RatingHandlerParams{
			RatingUC: env.ratings,
		}),
		CatalogHandler: handler.NewCatalogHandler(handler.CatalogHandlerParams{
			MaterialUC: env.materials,
			AddressUC:  env.addresses,
		}),
		AccountHandler: handler.NewAccountHandler(handler.AccountHandlerParams{
			AccountUC: env.accounts,
		}),
	})

	t.Cleanup(func() {
		env.collections.AssertExpectations(t)
		env.images.AssertExpectations(t)
		env.ratings.AssertExpectations(t)
		env.materials.AssertExpectations(t)
		env.addresses.AssertExpectations(t)
		env.accounts.AssertExpectations(t)
	})

	return env
}

func (env *apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	return rec
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorInfo `json:"error"`
	Meta  response.MetaInfo   `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var data map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))

	return data
}

func assertAppError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *response.ErrorInfo {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)

	return env.Error
}

func newTestCollection(t *testing.T) *entity.Collection {
	t.Helper()

	weight := decimal.RequireFromString("12.5")
	c, err := entity.NewCollection(entity.NewCollectionParams{
		ClientID:      uuid.New(),
		MaterialID:    uuid.New(),
		AddressID:     uuid.New(),
		Weight:        &weight,
		Notes:         "portão azul",
		PaymentAmount: decimal.RequireFromString("30.00"),
	}, testNow)
	require.NoError(t, err)

	return c
}

func TestHealth_EchoesRequestID(t *testing.T) {
	env := newAPIEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Equal(t, "req-123", decodeEnvelope(t, rec).Meta.RequestID)
	assert.Equal(t, "ok", decodeData(t, rec)["status"])
}

func TestHealth_GeneratesRequestID(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)

	generated := rec.Header().Get(deliverycontext.HeaderXRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, decodeEnvelope(t, rec).Meta.RequestID)
}

func TestCreateCollection(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)

	env.collections.On("CreateCollection", mock.Anything, mock.MatchedBy(func(in *usecase.CreateCollectionInput) bool {
		return in.ClientID == collection.ClientID &&
			in.Weight != nil && in.Weight.Equal(decimal.RequireFromString("12.5")) &&
			in.Quantity == nil &&
			in.PaymentAmount.Equal(decimal.RequireFromString("30")) &&
			in.Notes == "portão azul"
	})).Return(collection, nil).Once()

	rec := env.do(t, http.MethodPost, "/collections", map[string]any{
		"client_id":      collection.ClientID,
		"material_id":    collection.MaterialID,
		"address_id":     collection.AddressID,
		"weight":         12.5,
		"notes":          "portão azul",
		"payment_amount": "30.00",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, collection.ID.String(), data["id"])
	assert.Nil(t, data["partner_id"])
	assert.Equal(t, "12.5", data["weight"])
	assert.NotContains(t, data, "quantity")
	assert.Equal(t, "pending", data["request"].(map[string]any)["state"])
	assert.Equal(t, "pending", data["payment"].(map[string]any)["state"])
}

func TestCreateCollection_Validation(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"client_id":      uuid.New(),
			"material_id":    uuid.New(),
			"address_id":     uuid.New(),
			"payment_amount": "10",
		}
	}

	tests := []struct {
		name      string
		mutate    func(body map[string]any)
		wantField string
	}{
		{
			name: "both weight and quantity",
			mutate: func(body map[string]any) {
				body["weight"] = "2"
				body["quantity"] = 3
			},
			wantField: "weight",
		},
		{
			name:      "neither weight nor quantity",
			mutate:    func(body map[string]any) {},
			wantField: "weight",
		},
		{
			name: "zero weight",
			mutate: func(body map[string]any) {
				body["weight"] = "0"
			},
			wantField: "weight",
		},
		{
			name: "negative quantity",
			mutate: func(body map[string]any) {
				body["quantity"] = -1
			},
			wantField: "quantity",
		},
		{
			name: "missing client",
			mutate: func(body map[string]any) {
				delete(body, "client_id")
				body["quantity"] = 1
			},
			wantField: "client_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAPIEnv(t)
			body := base()
			tt.mutate(body)

			rec := env.do(t, http.MethodPost, "/collections", body)

			errInfo := assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
			details, ok := errInfo.Details.(map[string]any)
			require.True(t, ok, "details should list fields")
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestCreateCollection_MalformedBody(t *testing.T) {
	env := newAPIEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/collections", bytes.NewBufferString(`{"client_id": "not-a-uuid"`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assertAppError(t, rec, http.StatusBadRequest, "INVALID_INPUT")
}

func TestGetCollection(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)
	collection.Partner = entity.AssignedTo(uuid.New())

	detail := &usecase.CollectionDetail{
		Collection: collection,
		Material:   &entity.Material{ID: collection.MaterialID, Name: "Papelão", Price: decimal.RequireFromString("0.80")},
		Address: &entity.Address{
			ID: collection.AddressID, CEP: "70040010", State: "DF", City: "Brasília",
			Neighborhood: "Asa Norte", Street: "SQN 102", Number: 3,
		},
	}
	env.collections.On("GetCollection", mock.Anything, collection.ID).Return(detail, nil).Once()

	rec := env.do(t, http.MethodGet, "/collections/"+collection.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, collection.Partner.Ptr().String(), data["partner_id"])
	assert.Equal(t, "Papelão", data["material"].(map[string]any)["name"])
	assert.Equal(t, "SQN 102, 3 - Asa Norte - Brasília/DF", data["address"].(map[string]any)["line"])
	assert.Nil(t, data["rating"])
}

func TestGetCollection_Errors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		env := newAPIEnv(t)

		rec := env.do(t, http.MethodGet, "/collections/nope", nil)

		assertAppError(t, rec, http.StatusBadRequest, "INVALID_ID")
	})

	t.Run("not found", func(t *testing.T) {
		env := newAPIEnv(t)
		id := uuid.New()
		env.collections.On("GetCollection", mock.Anything, id).Return(nil, domainerrors.ErrCollectionNotFound).Once()

		rec := env.do(t, http.MethodGet, "/collections/"+id.String(), nil)

		assertAppError(t, rec, http.StatusNotFound, "COLLECTION_NOT_FOUND")
	})
}

func TestAccept(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)
	partnerID := uuid.New()
	accepted := *collection
	require.NoError(t, accepted.Accept(partnerID, true, testNow))

	env.collections.On("Accept", mock.Anything, collection.ID, partnerID).Return(&accepted, nil).Once()

	rec := env.do(t, http.MethodPost, "/collections/"+collection.ID.String()+"/accept", map[string]any{
		"partner_id": partnerID,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, partnerID.String(), data["partner_id"])
	assert.Equal(t, "accepted", data["request"].(map[string]any)["state"])
}

func TestAccept_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "invalid transition carries states",
			err:        domainerrors.NewTransitionError("accept", "request=pending", "request=cancelled payment=cancelled"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_TRANSITION",
			wantDetail: "expected=request=pending",
		},
		{
			name:       "already accepted",
			err:        domainerrors.ErrAlreadyAccepted,
			wantStatus: http.StatusBadRequest,
			wantCode:   "ALREADY_ACCEPTED",
		},
		{
			name:       "capability mismatch",
			err:        domainerrors.ErrPartnerCapabilityMismatch,
			wantStatus: http.StatusBadRequest,
			wantCode:   "PARTNER_CAPABILITY_MISMATCH",
		},
		{
			name:       "partner not found",
			err:        domainerrors.ErrPartnerNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "PARTNER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAPIEnv(t)
			collectionID, partnerID := uuid.New(), uuid.New()
			env.collections.On("Accept", mock.Anything, collectionID, partnerID).Return(nil, tt.err).Once()

			rec := env.do(t, http.MethodPost, "/collections/"+collectionID.String()+"/accept", map[string]any{
				"partner_id": partnerID,
			})

			errInfo := assertAppError(t, rec, tt.wantStatus, tt.wantCode)
			if tt.wantDetail != "" {
				assert.Contains(t, errInfo.Details, tt.wantDetail)
			}
		})
	}
}

func TestAccept_MissingPartner(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/collections/"+uuid.NewString()+"/accept", map[string]any{})

	assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestMarkCollectedAndCancel(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)
	cancelled := *collection
	require.NoError(t, cancelled.Cancel(testNow))

	env.collections.On("MarkCollected", mock.Anything, collection.ID).
		Return(nil, domainerrors.NewTransitionError("mark_collected", "request=accepted", "request=pending payment=pending")).Once()
	env.collections.On("Cancel", mock.Anything, collection.ID).Return(&cancelled, nil).Once()

	rec := env.do(t, http.MethodPost, "/collections/"+collection.ID.String()+"/mark-collected", nil)
	assertAppError(t, rec, http.StatusBadRequest, "INVALID_TRANSITION")

	rec = env.do(t, http.MethodPost, "/collections/"+collection.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "cancelled", data["request"].(map[string]any)["state"])
	assert.Equal(t, "cancelled", data["payment"].(map[string]any)["state"])
}

func TestFinalize(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)
	require.NoError(t, collection.Accept(uuid.New(), true, testNow))
	require.NoError(t, collection.MarkCollected(testNow))
	require.NoError(t, collection.Finalize(testNow))

	env.collections.On("Finalize", mock.Anything, collection.ID).
		Return(&usecase.FinalizeOutput{Collection: collection, RatingCreated: true}, nil).Once()

	rec := env.do(t, http.MethodPost, "/collections/"+collection.ID.String()+"/finalize", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, true, data["rating_created"])
	inner := data["collection"].(map[string]any)
	assert.Equal(t, "finalized", inner["request"].(map[string]any)["state"])
	assert.NotEmpty(t, inner["request"].(map[string]any)["finalized_at"])
	assert.Equal(t, "paid", inner["payment"].(map[string]any)["state"])
}

func TestListPendingForPartner(t *testing.T) {
	partnerID := uuid.New()
	distance := 1250.5
	quantity := 4
	items := []*entity.CollectionSummary{
		{
			ID:             uuid.New(),
			MaterialName:   "Vidro",
			Measure:        entity.Measure{Quantity: &quantity},
			AddressLine:    "SQN 102, 3 - Asa Norte - Brasília/DF",
			PaymentAmount:  decimal.RequireFromString("15"),
			DistanceMeters: &distance,
			CreatedAt:      testNow,
		},
	}

	t.Run("with origin", func(t *testing.T) {
		env := newAPIEnv(t)
		env.collections.On("ListPendingForPartner", mock.Anything, partnerID, mock.MatchedBy(func(p *orb.Point) bool {
			return p != nil && p.Lat() == -15.79 && p.Lon() == -47.88
		})).Return(items, nil).Once()

		rec := env.do(t, http.MethodGet, "/collections/pending-for-partner/"+partnerID.String()+"?lat=-15.79&lon=-47.88", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var data []map[string]any
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		require.Len(t, data, 1)
		assert.Equal(t, "Vidro", data[0]["material_name"])
		assert.InDelta(t, 1250.5, data[0]["distance_meters"], 0.001)
		assert.InDelta(t, 4, data[0]["quantity"], 0)
	})

	t.Run("without origin", func(t *testing.T) {
		env := newAPIEnv(t)
		env.collections.On("ListPendingForPartner", mock.Anything, partnerID, mock.MatchedBy(func(p *orb.Point) bool {
			return p == nil
		})).Return([]*entity.CollectionSummary{}, nil).Once()

		rec := env.do(t, http.MethodGet, "/collections/pending-for-partner/"+partnerID.String(), nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
	})

	t.Run("half an origin", func(t *testing.T) {
		env := newAPIEnv(t)

		rec := env.do(t, http.MethodGet, "/collections/pending-for-partner/"+partnerID.String()+"?lat=-15.79", nil)

		assertAppError(t, rec, http.StatusBadRequest, "INVALID_ORIGIN")
	})

	t.Run("unknown partner", func(t *testing.T) {
		env := newAPIEnv(t)
		env.collections.On("ListPendingForPartner", mock.Anything, partnerID, mock.Anything).
			Return(nil, domainerrors.ErrPartnerNotFound).Once()

		rec := env.do(t, http.MethodGet, "/collections/pending-for-partner/"+partnerID.String(), nil)

		assertAppError(t, rec, http.StatusNotFound, "PARTNER_NOT_FOUND")
	})
}

func TestPickupQR(t *testing.T) {
	env := newAPIEnv(t)
	collection := newTestCollection(t)
	partnerID := uuid.New()
	png := []byte("\x89PNG\r\n\x1a\nfake")

	env.collections.On("GeneratePickupQR", mock.Anything, collection.ID).Return(png, nil).Once()
	env.collections.On("ScanPickup", mock.Anything, partnerID, "payload").Return(collection, nil).Once()

	rec := env.do(t, http.MethodGet, "/collections/"+collection.ID.String()+"/pickup-qr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = env.do(t, http.MethodPost, "/collections/scan-pickup", map[string]any{
		"partner_id": partnerID,
		"qr_data":    "payload",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestImages(t *testing.T) {
	collectionID := uuid.New()

	t.Run("upload", func(t *testing.T) {
		env := newAPIEnv(t)
		image := &entity.CollectionImage{
			ID:           uuid.New(),
			CollectionID: collectionID,
			URL:          "https://img.example/collections/a.jpg",
			FileID:       "collections/a.jpg",
			CreatedAt:    testNow,
		}
		env.images.On("AddImage", mock.Anything, collectionID, "photo.jpg", []byte("fake-jpeg")).Return(image, nil).Once()

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-jpeg"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/collections/"+collectionID.String()+"/images", &body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		rec := httptest.NewRecorder()
		env.e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		assert.Equal(t, image.URL, data["url"])
		assert.NotContains(t, data, "file_id")
	})

	t.Run("missing file", func(t *testing.T) {
		env := newAPIEnv(t)

		rec := env.do(t, http.MethodPost, "/collections/"+collectionID.String()+"/images", map[string]any{})

		assertAppError(t, rec, http.StatusBadRequest, "IMAGE_REQUIRED")
	})

	t.Run("delete", func(t *testing.T) {
		env := newAPIEnv(t)
		imageID := uuid.New()
		env.images.On("DeleteImage", mock.Anything, collectionID, imageID).Return(nil).Once()

		rec := env.do(t, http.MethodDelete, "/collections/"+collectionID.String()+"/images/"+imageID.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("delete unknown", func(t *testing.T) {
		env := newAPIEnv(t)
		imageID := uuid.New()
		env.images.On("DeleteImage", mock.Anything, collectionID, imageID).Return(domainerrors.ErrImageNotFound).Once()

		rec := env.do(t, http.MethodDelete, "/collections/"+collectionID.String()+"/images/"+imageID.String(), nil)

		assertAppError(t, rec, http.StatusNotFound, "IMAGE_NOT_FOUND")
	})
}

func TestRatePartner(t *testing.T) {
	collectionID, clientID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		env := newAPIEnv(t)
		rating := &entity.Rating{ID: uuid.New(), CollectionID: collectionID, ClientID: clientID, ScoreByClient: 5, CommentByClient: "Pontual"}
		env.ratings.On("SubmitClientRating", mock.Anything, &usecase.SubmitRatingInput{
			CollectionID: collectionID,
			ActorID:      clientID,
			Score:        5,
			Comment:      "Pontual",
		}).Return(rating, nil).Once()

		rec := env.do(t, http.MethodPost, "/ratings/rate-partner", map[string]any{
			"collection_id": collectionID,
			"client_id":     clientID,
			"score":         5,
			"text":          "Pontual",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		assert.InDelta(t, 5, data["score_by_client"], 0)
		assert.Equal(t, "Pontual", data["comment_by_client"])
	})

	t.Run("score out of range", func(t *testing.T) {
		env := newAPIEnv(t)

		rec := env.do(t, http.MethodPost, "/ratings/rate-partner", map[string]any{
			"collection_id": collectionID,
			"client_id":     clientID,
			"score":         6,
		})

		errInfo := assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
		assert.Equal(t, map[string]any{"score": "max=5"}, errInfo.Details)
	})

	t.Run("not the client hides details", func(t *testing.T) {
		env := newAPIEnv(t)
		env.ratings.On("SubmitClientRating", mock.Anything, mock.Anything).
			Return(nil, domainerrors.ErrNotAuthorized.WithDetails("client mismatch")).Once()

		rec := env.do(t, http.MethodPost, "/ratings/rate-partner", map[string]any{
			"collection_id": collectionID,
			"client_id":     clientID,
			"score":         3,
		})

		errInfo := assertAppError(t, rec, http.StatusForbidden, "NOT_AUTHORIZED")
		assert.Nil(t, errInfo.Details)
	})

	t.Run("not finalized", func(t *testing.T) {
		env := newAPIEnv(t)
		env.ratings.On("SubmitClientRating", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFinalized).Once()

		rec := env.do(t, http.MethodPost, "/ratings/rate-partner", map[string]any{
			"collection_id": collectionID,
			"client_id":     clientID,
			"score":         3,
		})

		assertAppError(t, rec, http.StatusBadRequest, "NOT_FINALIZED")
	})
}

func TestRateClient(t *testing.T) {
	env := newAPIEnv(t)
	collectionID, partnerID := uuid.New(), uuid.New()
	env.ratings.On("SubmitPartnerRating", mock.Anything, &usecase.SubmitRatingInput{
		CollectionID: collectionID,
		ActorID:      partnerID,
		Score:        0,
		Comment:      "",
	}).Return(&entity.Rating{ID: uuid.New(), CollectionID: collectionID, PartnerID: partnerID}, nil).Once()

	rec := env.do(t, http.MethodPost, "/ratings/rate-client", map[string]any{
		"collection_id": collectionID,
		"partner_id":    partnerID,
	})

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRatingStatistics(t *testing.T) {
	env := newAPIEnv(t)
	partnerID := uuid.New()
	stats := entity.NewRatingStatistics([]int{5, 4, 0}, 3)
	env.ratings.On("StatisticsForPartner", mock.Anything, partnerID).Return(&stats, nil).Once()
	env.ratings.On("StatisticsForClient", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrClientNotFound).Once()

	rec := env.do(t, http.MethodGet, "/ratings/statistics/partner/"+partnerID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.InDelta(t, 2, data["rated_count"], 0)
	assert.Equal(t, "4.50", data["average"])
	assert.InDelta(t, 3, data["completed_collections"], 0)
	histogram := data["histogram"].(map[string]any)
	assert.Len(t, histogram, 6)
	assert.InDelta(t, 1, histogram["0"], 0)
	assert.InDelta(t, 1, histogram["5"], 0)
	assert.InDelta(t, 0, histogram["3"], 0)

	rec = env.do(t, http.MethodGet, "/ratings/statistics/client/"+uuid.NewString(), nil)
	assertAppError(t, rec, http.StatusNotFound, "CLIENT_NOT_FOUND")
}

func TestServerErrorsAreGeneric(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "plain error",
			err:      errors.New("connection reset"),
			wantCode: "INTERNAL_ERROR",
		},
		{
			name:     "database error",
			err:      domainerrors.NewDatabaseExecuteError(errors.New("deadlock"), "update requests"),
			wantCode: "DATABASE_EXECUTE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAPIEnv(t)
			env.ratings.On("GetByCollection", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := env.do(t, http.MethodGet, "/ratings/collection/"+uuid.NewString(), nil)

			errInfo := assertAppError(t, rec, http.StatusInternalServerError, tt.wantCode)
			assert.Nil(t, errInfo.Details)
			assert.NotContains(t, rec.Body.String(), "deadlock")
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/nowhere", nil)

	assertAppError(t, rec, http.StatusNotFound, "HTTP_ERROR")
}

func TestMaterials(t *testing.T) {
	env := newAPIEnv(t)
	material := &entity.Material{ID: uuid.New(), Name: "Alumínio", Description: "Latas", Price: decimal.RequireFromString("5.20")}

	env.materials.On("CreateMaterial", mock.Anything, mock.MatchedBy(func(in *usecase.CreateMaterialInput) bool {
		return in.Name == "Alumínio" && in.Price.Equal(decimal.RequireFromString("5.2"))
	})).Return(material, nil).Once()
	env.materials.On("ListMaterials", mock.Anything).Return([]*entity.Material{material}, nil).Once()

	rec := env.do(t, http.MethodPost, "/materials", map[string]any{
		"name":        "Alumínio",
		"description": "Latas",
		"price":       "5.20",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "5.2", decodeData(t, rec)["price"])

	rec = env.do(t, http.MethodGet, "/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Alumínio", list[0]["name"])

	rec = env.do(t, http.MethodPost, "/materials", map[string]any{"description": "sem nome"})
	assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestAddresses(t *testing.T) {
	env := newAPIEnv(t)
	address := &entity.Address{
		ID: uuid.New(), CEP: "70040010", State: "DF", City: "Brasília", Neighborhood: "Asa Norte",
		Street: "SQN 102", Number: 3, Latitude: -15.78, Longitude: -47.88,
	}
	body := map[string]any{
		"cep":          "70040-010",
		"state":        "DF",
		"city":         "Brasília",
		"neighborhood": "Asa Norte",
		"street":       "SQN 102",
		"number":       3,
	}

	env.addresses.On("CreateAddress", mock.Anything, mock.MatchedBy(func(in *usecase.AddressInput) bool {
		return in.CEP == "70040-010" && in.Number == 3
	})).Return(address, nil).Once()
	env.addresses.On("UpdateAddress", mock.Anything, address.ID, mock.Anything).Return(address, nil).Once()

	rec := env.do(t, http.MethodPost, "/addresses", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.InDelta(t, -15.78, decodeData(t, rec)["latitude"], 1e-9)

	rec = env.do(t, http.MethodPut, "/addresses/"+address.ID.String(), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body["cep"] = "123"
	rec = env.do(t, http.MethodPost, "/addresses", body)
	errInfo := assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	assert.Equal(t, map[string]any{"cep": "cep"}, errInfo.Details)
}

func TestRegisterClient(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"name":       "Maria Souza",
			"username":   "maria",
			"email":      "maria@example.com",
			"phone":      "(61) 99876-5432",
			"password":   "segredo123",
			"cpf":        "529.982.247-25",
			"birth_date": "1990-05-17",
			"sex":        "F",
		}
	}

	t.Run("success", func(t *testing.T) {
		env := newAPIEnv(t)
		client := &entity.Client{
			ID:        uuid.New(),
			User:      entity.User{Name: "Maria Souza", Username: "maria", PasswordHash: "hash"},
			CPF:       "529.982.247-25",
			BirthDate: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
			Sex:       "F",
		}
		env.accounts.On("RegisterClient", mock.Anything, mock.MatchedBy(func(in *usecase.RegisterClientInput) bool {
			return in.User.Username == "maria" &&
				in.BirthDate.Equal(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)) &&
				in.CPF == "529.982.247-25"
		})).Return(client, nil).Once()

		rec := env.do(t, http.MethodPost, "/clients", valid())

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "hash")
		data := decodeData(t, rec)
		assert.Equal(t, "1990-05-17", data["birth_date"])
	})

	t.Run("invalid documents", func(t *testing.T) {
		env := newAPIEnv(t)
		body := valid()
		body["cpf"] = "529.982.247-26"
		body["phone"] = "123"
		body["birth_date"] = "17/05/1990"

		rec := env.do(t, http.MethodPost, "/clients", body)

		errInfo := assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
		assert.Equal(t, map[string]any{
			"cpf":        "cpf",
			"phone":      "phone_br",
			"birth_date": "datetime=2006-01-02",
		}, errInfo.Details)
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newAPIEnv(t)
		env.accounts.On("RegisterClient", mock.Anything, mock.Anything).
			Return(nil, domainerrors.ErrAccountAlreadyExists.WithDetails("cpf")).Once()

		rec := env.do(t, http.MethodPost, "/clients", valid())

		assertAppError(t, rec, http.StatusConflict, "ACCOUNT_ALREADY_EXISTS")
	})
}

func TestPartners(t *testing.T) {
	env := newAPIEnv(t)
	materialID := uuid.New()
	partner := &entity.Partner{
		ID:          uuid.New(),
		User:        entity.User{Name: "Coop Verde", Username: "coopverde"},
		CNPJ:        "11.222.333/0001-81",
		MaterialIDs: []uuid.UUID{materialID},
	}

	env.accounts.On("RegisterPartner", mock.Anything, mock.MatchedBy(func(in *usecase.RegisterPartnerInput) bool {
		return in.CNPJ == "11222333000181" && len(in.MaterialIDs) == 1 && in.MaterialIDs[0] == materialID
	})).Return(partner, nil).Once()
	env.accounts.On("UpdatePartnerMaterials", mock.Anything, partner.ID, []uuid.UUID{}).
		Return(&entity.Partner{ID: partner.ID, CNPJ: partner.CNPJ}, nil).Once()

	rec := env.do(t, http.MethodPost, "/partners", map[string]any{
		"name":         "Coop Verde",
		"username":     "coopverde",
		"password":     "segredo123",
		"cnpj":         "11222333000181",
		"material_ids": []uuid.UUID{materialID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "11.222.333/0001-81", decodeData(t, rec)["cnpj"])

	rec = env.do(t, http.MethodPut, "/partners/"+partner.ID.String()+"/materials", map[string]any{
		"material_ids": []uuid.UUID{},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{}, decodeData(t, rec)["material_ids"])

	rec = env.do(t, http.MethodPost, "/partners", map[string]any{
		"name":         "Coop Verde",
		"username":     "coopverde",
		"password":     "segredo123",
		"cnpj":         "11222333000182",
		"material_ids": []uuid.UUID{materialID},
	})
	errInfo := assertAppError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	assert.Equal(t, map[string]any{"cnpj": "cnpj"}, errInfo.Details)
}
