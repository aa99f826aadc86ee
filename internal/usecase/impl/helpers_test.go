package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"greencycle/config"
	"greencycle/internal/domain/entity"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"
	"greencycle/internal/infra/lock"
	"greencycle/internal/infra/persistence/postgres"
	"greencycle/internal/infra/qrcode"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(allowRevision bool) *config.Config {
	return &config.Config{
		Rating: &config.RatingConfig{AllowRevision: allowRevision},
		Geocoding: &config.GeocodingConfig{
			FallbackLatitude:  -15.7801,
			FallbackLongitude: -47.9292,
		},
	}
}

// testEnv wires the real gorm repositories onto a throwaway SQLite file.
type testEnv struct {
	db             *gorm.DB
	txManager      repository.TransactionManager
	collectionRepo repository.CollectionRepository
	ratingRepo     repository.RatingRepository
	materialRepo   repository.MaterialRepository
	addressRepo    repository.AddressRepository
	clientRepo     repository.ClientRepository
	partnerRepo    repository.PartnerRepository
	publisher      *mockEventPublisher
	pendingCache   *memoryPendingCache
	logger         *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := postgres.OpenSQLite(filepath.Join(t.TempDir(), "greencycle.db"), nil)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	publisher := &mockEventPublisher{}
	publisher.On("PublishCollectionEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &testEnv{
		db:             db,
		txManager:      postgres.NewTransactionManager(db),
		collectionRepo: postgres.NewCollectionRepository(db),
		ratingRepo:     postgres.NewRatingRepository(db),
		materialRepo:   postgres.NewMaterialRepository(db),
		addressRepo:    postgres.NewAddressRepository(db),
		clientRepo:     postgres.NewClientRepository(db),
		partnerRepo:    postgres.NewPartnerRepository(db),
		publisher:      publisher,
		pendingCache:   newMemoryPendingCache(),
		logger:         newDiscardLogger(),
	}
}

func (env *testEnv) newCollectionService() *collectionService {
	srv := NewCollectionService(CollectionServiceParams{
		TxManager:      env.txManager,
		CollectionRepo: env.collectionRepo,
		RatingRepo:     env.ratingRepo,
		MaterialRepo:   env.materialRepo,
		AddressRepo:    env.addressRepo,
		PartnerRepo:    env.partnerRepo,
		Guard:          lock.NewActionGuard(nil, &config.Config{}, env.logger),
		PendingCache:   env.pendingCache,
		Publisher:      env.publisher,
		QRCodeService:  qrcode.NewQRCodeService(256, "M"),
		Logger:         env.logger,
	}).(*collectionService)
	srv.now = func() time.Time { return fixedNow }

	return srv
}

func (env *testEnv) newRatingService(allowRevision bool) *ratingService {
	srv := NewRatingService(RatingServiceParams{
		TxManager:      env.txManager,
		RatingRepo:     env.ratingRepo,
		CollectionRepo: env.collectionRepo,
		ClientRepo:     env.clientRepo,
		PartnerRepo:    env.partnerRepo,
		Config:         newTestConfig(allowRevision),
		Logger:         env.logger,
	}).(*ratingService)
	srv.now = func() time.Time { return fixedNow }

	return srv
}

func (env *testEnv) seedMaterial(t *testing.T, name string) *entity.Material {
	t.Helper()

	m := &entity.Material{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString("1.50"),
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	require.NoError(t, env.materialRepo.Create(context.Background(), m))

	return m
}

func (env *testEnv) seedAddress(t *testing.T, lat, lon float64) *entity.Address {
	t.Helper()

	a := &entity.Address{
		ID:           uuid.New(),
		CEP:          "70722000",
		State:        "DF",
		City:         "Brasília",
		Neighborhood: "Asa Norte",
		Street:       "SQN 210",
		Number:       10,
		Latitude:     lat,
		Longitude:    lon,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
	require.NoError(t, env.addressRepo.Create(context.Background(), a))

	return a
}

func testUser(username string) entity.User {
	return entity.User{
		ID:           uuid.New(),
		Name:         username,
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
}

func (env *testEnv) seedClient(t *testing.T) *entity.Client {
	t.Helper()

	id := uuid.New()
	c := &entity.Client{
		ID:        id,
		User:      testUser("client-" + id.String()[:8]),
		CPF:       id.String()[:14],
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Sex:       "F",
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	require.NoError(t, env.clientRepo.Create(context.Background(), c))

	return c
}

func (env *testEnv) seedPartner(t *testing.T, materialIDs ...uuid.UUID) *entity.Partner {
	t.Helper()

	id := uuid.New()
	p := &entity.Partner{
		ID:          id,
		User:        testUser("partner-" + id.String()[:8]),
		CNPJ:        id.String()[:18],
		MaterialIDs: materialIDs,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	require.NoError(t, env.partnerRepo.Create(context.Background(), p))

	return p
}

// fixture is one client offering one material that one partner handles.
type fixture struct {
	material *entity.Material
	address  *entity.Address
	client   *entity.Client
	partner  *entity.Partner
}

func (env *testEnv) seedFixture(t *testing.T) fixture {
	t.Helper()

	material := env.seedMaterial(t, "Papelão "+uuid.NewString()[:6])

	return fixture{
		material: material,
		address:  env.seedAddress(t, -15.7801, -47.9292),
		client:   env.seedClient(t),
		partner:  env.seedPartner(t, material.ID),
	}
}

func (env *testEnv) createCollection(t *testing.T, srv *collectionService, f fixture) *entity.Collection {
	t.Helper()

	weight := decimal.RequireFromString("12.5")
	c, err := srv.CreateCollection(context.Background(), &usecase.CreateCollectionInput{
		ClientID:      f.client.ID,
		MaterialID:    f.material.ID,
		AddressID:     f.address.ID,
		Weight:        &weight,
		PaymentAmount: decimal.RequireFromString("30.00"),
	})
	require.NoError(t, err)

	return c
}

// publishedActions lists the actions of every published collection event in order.
func (env *testEnv) publishedActions() []string {
	var actions []string
	for _, call := range env.publisher.Calls {
		if call.Method != "PublishCollectionEvent" {
			continue
		}
		actions = append(actions, call.Arguments.Get(1).(*service.CollectionEvent).Action)
	}

	return actions
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishCollectionEvent(ctx context.Context, event *service.CollectionEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (orb.Point, error) {
	args := m.Called(ctx, address)

	return args.Get(0).(orb.Point), args.Error(1)
}

type mockImageHost struct {
	mock.Mock
}

func (m *mockImageHost) Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadedImage, error) {
	args := m.Called(ctx, name, r)
	if img, ok := args.Get(0).(*entity.UploadedImage); ok {
		return img, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockImageHost) Delete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

// memoryPendingCache mirrors the versioned Redis cache and records invalidations.
type memoryPendingCache struct {
	mu          sync.Mutex
	items       map[uuid.UUID][]*entity.CollectionSummary
	generations map[uuid.UUID]int
	global      int
	invalidated map[uuid.UUID]int
}

func newMemoryPendingCache() *memoryPendingCache {
	return &memoryPendingCache{
		items:       make(map[uuid.UUID][]*entity.CollectionSummary),
		generations: make(map[uuid.UUID]int),
		invalidated: make(map[uuid.UUID]int),
	}
}

func (c *memoryPendingCache) version(partnerID uuid.UUID) string {
	return fmt.Sprintf("%d:%d", c.global, c.generations[partnerID])
}

func (c *memoryPendingCache) Get(_ context.Context, partnerID uuid.UUID) (*service.PendingLookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.items[partnerID]

	return &service.PendingLookup{Items: items, Hit: ok, Version: c.version(partnerID)}, nil
}

func (c *memoryPendingCache) Set(_ context.Context, partnerID uuid.UUID, version string, items []*entity.CollectionSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version(partnerID) {
		return nil
	}
	c.items[partnerID] = items

	return nil
}

func (c *memoryPendingCache) InvalidatePartners(_ context.Context, partnerIDs ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range partnerIDs {
		delete(c.items, id)
		c.generations[id]++
		c.invalidated[id]++
	}

	return nil
}

func (c *memoryPendingCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[uuid.UUID][]*entity.CollectionSummary)
	c.global++

	return nil
}

func (c *memoryPendingCache) cached(partnerID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[partnerID]

	return ok
}
