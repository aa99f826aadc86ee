// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "greencycle/internal/delivery/context"
	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"
	"greencycle/internal/domain/service"
	"greencycle/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// collectionService implements the CollectionUsecase interface.
type collectionService struct {
	txManager      repository.TransactionManager
	collectionRepo repository.CollectionRepository
	ratingRepo     repository.RatingRepository
	materialRepo   repository.MaterialRepository
	addressRepo    repository.AddressRepository
	partnerRepo    repository.PartnerRepository
	guard          service.ActionGuard
	pendingCache   service.PendingCache
	publisher      service.EventPublisher
	qrCodeService  service.QRCodeService
	logger         *slog.Logger
	now            func() time.Time
}

// CollectionServiceParams holds dependencies for CollectionService, injected by Fx.
type CollectionServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	CollectionRepo repository.CollectionRepository
	RatingRepo     repository.RatingRepository
	MaterialRepo   repository.MaterialRepository
	AddressRepo    repository.AddressRepository
	PartnerRepo    repository.PartnerRepository
	Guard          service.ActionGuard
	PendingCache   service.PendingCache
	Publisher      service.EventPublisher
	QRCodeService  service.QRCodeService
	Logger         *slog.Logger
}

// NewCollectionService creates a new collection lifecycle service.
func NewCollectionService(params CollectionServiceParams) usecase.CollectionUsecase {
	return &collectionService{
		txManager:      params.TxManager,
		collectionRepo: params.CollectionRepo,
		ratingRepo:     params.RatingRepo,
		materialRepo:   params.MaterialRepo,
		addressRepo:    params.AddressRepo,
		partnerRepo:    params.PartnerRepo,
		guard:          params.Guard,
		pendingCache:   params.PendingCache,
		publisher:      params.Publisher,
		qrCodeService:  params.QRCodeService,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *collectionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateCollection inserts the collection with a pending request and a pending payment.
func (srv *collectionService) CreateCollection(ctx context.Context, input *usecase.CreateCollectionInput) (*entity.Collection, error) {
	collection, err := entity.NewCollection(entity.NewCollectionParams{
		ClientID:      input.ClientID,
		MaterialID:    input.MaterialID,
		AddressID:     input.AddressID,
		Weight:        input.Weight,
		Quantity:      input.Quantity,
		Notes:         input.Notes,
		PaymentAmount: input.PaymentAmount,
	}, srv.now())
	if err != nil {
		return nil, err
	}

	err = srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := ensureClient(ctx, repos.ClientRepo(), input.ClientID); err != nil {
			return err
		}
		if _, err := repos.MaterialRepo().FindByID(ctx, input.MaterialID); err != nil {
			return notFoundAs(err, domainerrors.ErrMaterialNotFound)
		}
		if _, err := repos.AddressRepo().FindByID(ctx, input.AddressID); err != nil {
			return notFoundAs(err, domainerrors.ErrAddressNotFound)
		}

		return repos.CollectionRepo().Create(ctx, collection)
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Collection created",
		slog.Any("collection_id", collection.ID),
		slog.Any("client_id", collection.ClientID),
		slog.Any("material_id", collection.MaterialID))
	srv.afterCommit(ctx, collection, service.ActionCreated, false, true)

	return collection, nil
}

// GetCollection loads a collection with its material, address and rating.
func (srv *collectionService) GetCollection(ctx context.Context, collectionID uuid.UUID) (*usecase.CollectionDetail, error) {
	collection, err := findCollection(ctx, srv.collectionRepo, collectionID)
	if err != nil {
		return nil, err
	}

	material, err := srv.materialRepo.FindByID(ctx, collection.MaterialID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load collection material")
	}
	address, err := srv.addressRepo.FindByID(ctx, collection.AddressID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load collection address")
	}

	rating, err := srv.ratingRepo.FindByCollection(ctx, collectionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to load collection rating")
	}

	return &usecase.CollectionDetail{
		Collection: collection,
		Material:   material,
		Address:    address,
		Rating:     rating,
	}, nil
}

// Accept assigns the partner to a pending collection. Of two concurrent accepts exactly one wins.
func (srv *collectionService) Accept(ctx context.Context, collectionID, partnerID uuid.UUID) (*entity.Collection, error) {
	release, err := srv.guard.Acquire(ctx, collectionID)
	switch {
	case errors.Is(err, service.ErrGuardBusy):
		// The row lock still serialises the accept and reports the loser.
		srv.log(ctx).Info("Accept guard still held, continuing on the row lock",
			slog.Any("collection_id", collectionID))
		release = func() {}
	case err != nil:
		srv.log(ctx).Warn("Accept guard unavailable", slog.Any("error", err))
		release = func() {}
	}
	defer release()

	collection, err := srv.runTransition(ctx, collectionID, entity.ActionAccept,
		func(repos repository.RepositoryFactory, c *entity.Collection) error {
			if err := ensurePartner(ctx, repos.PartnerRepo(), partnerID); err != nil {
				return err
			}
			handles, err := repos.PartnerRepo().HandlesMaterial(ctx, partnerID, c.MaterialID)
			if err != nil {
				return errors.Wrap(err, "failed to check partner materials")
			}

			return c.Accept(partnerID, handles, srv.now())
		}, nil)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Collection accepted",
		slog.Any("collection_id", collectionID),
		slog.Any("partner_id", partnerID))
	srv.afterCommit(ctx, collection, entity.ActionAccept.String(), false, true)

	return collection, nil
}

// MarkCollected records that the assigned partner picked the material up.
func (srv *collectionService) MarkCollected(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error) {
	collection, err := srv.runTransition(ctx, collectionID, entity.ActionMarkCollected,
		func(_ repository.RepositoryFactory, c *entity.Collection) error {
			return c.MarkCollected(srv.now())
		}, nil)
	if err != nil {
		return nil, err
	}

	srv.afterCommit(ctx, collection, entity.ActionMarkCollected.String(), false, false)

	return collection, nil
}

// Cancel withdraws a pending collection and its pending payment.
func (srv *collectionService) Cancel(ctx context.Context, collectionID uuid.UUID) (*entity.Collection, error) {
	collection, err := srv.runTransition(ctx, collectionID, entity.ActionCancel,
		func(_ repository.RepositoryFactory, c *entity.Collection) error {
			return c.Cancel(srv.now())
		}, nil)
	if err != nil {
		return nil, err
	}

	srv.afterCommit(ctx, collection, entity.ActionCancel.String(), false, true)

	return collection, nil
}

// Finalize pays a collected collection and opens its rating.
func (srv *collectionService) Finalize(ctx context.Context, collectionID uuid.UUID) (*usecase.FinalizeOutput, error) {
	ratingCreated := false
	collection, err := srv.runTransition(ctx, collectionID, entity.ActionFinalize,
		func(_ repository.RepositoryFactory, c *entity.Collection) error {
			return c.Finalize(srv.now())
		},
		func(repos repository.RepositoryFactory, c *entity.Collection) error {
			_, err := repos.RatingRepo().FindByCollectionForUpdate(ctx, c.ID)
			if err == nil {
				return nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return errors.Wrap(err, "failed to check existing rating")
			}
			if err := repos.RatingRepo().Create(ctx, entity.NewRating(c, srv.now())); err != nil {
				return err
			}
			ratingCreated = true

			return nil
		})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Collection finalized",
		slog.Any("collection_id", collectionID),
		slog.Bool("rating_created", ratingCreated))
	srv.afterCommit(ctx, collection, entity.ActionFinalize.String(), ratingCreated, false)

	return &usecase.FinalizeOutput{
		Collection:    collection,
		RatingCreated: ratingCreated,
	}, nil
}

type transitionStep func(repos repository.RepositoryFactory, c *entity.Collection) error

// runTransition locks the collection, applies the action and writes it back guarded on the prior status.
// afterSave, when set, runs in the same transaction once the state write succeeded.
func (srv *collectionService) runTransition(ctx context.Context, collectionID uuid.UUID, action entity.Action, apply, afterSave transitionStep) (*entity.Collection, error) {
	var result *entity.Collection

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		c, err := repos.CollectionRepo().FindByIDForUpdate(ctx, collectionID)
		if err != nil {
			return notFoundAs(err, domainerrors.ErrCollectionNotFound)
		}

		from := c.Status()
		if err := apply(repos, c); err != nil {
			return err
		}

		if err := repos.CollectionRepo().SaveTransition(ctx, c, from); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return staleStateError(action, from)
			}

			return err
		}

		if afterSave != nil {
			if err := afterSave(repos, c); err != nil {
				return err
			}
		}
		result = c

		return nil
	})
	if err != nil {
		srv.log(ctx).Debug("Collection transition rejected",
			slog.Any("collection_id", collectionID),
			slog.String("action", action.String()),
			slog.Any("error", err))

		return nil, err
	}

	return result, nil
}

// staleStateError reports a compare-and-set write that lost to a concurrent one.
func staleStateError(action entity.Action, from entity.Status) error {
	if action == entity.ActionAccept {
		return domainerrors.ErrAlreadyAccepted
	}

	return domainerrors.NewTransitionError(action.String(), from.String(), "changed concurrently")
}

// afterCommit publishes the event and drops stale pending listings. Failures are logged only.
func (srv *collectionService) afterCommit(ctx context.Context, c *entity.Collection, action string, ratingCreated, invalidate bool) {
	if invalidate {
		srv.invalidatePending(ctx, c.MaterialID)
	}

	event := &service.CollectionEvent{
		RequestID:     deliverycontext.GetRequestIDFromContext(ctx),
		CollectionID:  c.ID.String(),
		Action:        action,
		RequestState:  c.Request.State.String(),
		PaymentState:  c.Payment.State.String(),
		ClientID:      c.ClientID.String(),
		MaterialID:    c.MaterialID.String(),
		RatingCreated: ratingCreated,
		OccurredAt:    c.UpdatedAt,
	}
	if partnerID, ok := c.Partner.PartnerID(); ok {
		event.PartnerID = partnerID.String()
	}

	if err := srv.publisher.PublishCollectionEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish collection event",
			slog.Any("collection_id", c.ID),
			slog.String("action", action),
			slog.Any("error", err))
	}
}

func (srv *collectionService) invalidatePending(ctx context.Context, materialID uuid.UUID) {
	partnerIDs, err := srv.partnerRepo.FindIDsByMaterial(ctx, materialID)
	if err != nil {
		srv.log(ctx).Warn("Failed to resolve partners for cache invalidation", slog.Any("error", err))
		if err := srv.pendingCache.InvalidateAll(ctx); err != nil {
			srv.log(ctx).Warn("Failed to invalidate pending cache", slog.Any("error", err))
		}

		return
	}

	if err := srv.pendingCache.InvalidatePartners(ctx, partnerIDs...); err != nil {
		srv.log(ctx).Warn("Failed to invalidate pending cache",
			slog.Any("material_id", materialID),
			slog.Any("error", err))
	}
}

// ListPendingForPartner lists unassigned pending collections the partner can accept, newest first.
func (srv *collectionService) ListPendingForPartner(ctx context.Context, partnerID uuid.UUID, origin *orb.Point) ([]*entity.CollectionSummary, error) {
	if err := ensurePartner(ctx, srv.partnerRepo, partnerID); err != nil {
		return nil, err
	}

	lookup, err := srv.pendingCache.Get(ctx, partnerID)
	if err != nil {
		srv.log(ctx).Warn("Pending cache read failed", slog.Any("error", err))
	}

	var items []*entity.CollectionSummary
	if lookup != nil && lookup.Hit {
		items = lookup.Items
	} else {
		materialIDs, err := srv.partnerRepo.FindMaterialIDs(ctx, partnerID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find partner materials")
		}

		items, err = srv.collectionRepo.FindPendingByMaterials(ctx, materialIDs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find pending collections")
		}

		// Without a version from a successful read the listing is not cached.
		if lookup != nil {
			if err := srv.pendingCache.Set(ctx, partnerID, lookup.Version, items); err != nil {
				srv.log(ctx).Warn("Pending cache write failed", slog.Any("error", err))
			}
		}
	}

	if origin == nil {
		return items, nil
	}

	return withDistance(items, *origin), nil
}

// withDistance returns copies of items annotated with their distance from origin.
func withDistance(items []*entity.CollectionSummary, origin orb.Point) []*entity.CollectionSummary {
	out := make([]*entity.CollectionSummary, 0, len(items))
	for _, item := range items {
		annotated := *item
		meters := geo.Distance(origin, orb.Point{item.Longitude, item.Latitude})
		annotated.DistanceMeters = &meters
		out = append(out, &annotated)
	}

	return out
}

// GeneratePickupQR renders the QR code the partner scans when picking the material up.
func (srv *collectionService) GeneratePickupQR(ctx context.Context, collectionID uuid.UUID) ([]byte, error) {
	collection, err := findCollection(ctx, srv.collectionRepo, collectionID)
	if err != nil {
		return nil, err
	}

	if !collection.Status().CanApply(entity.ActionMarkCollected) {
		return nil, domainerrors.NewTransitionError("pickup_qr",
			"request="+entity.RequestAccepted.String(), collection.Status().String())
	}

	png, err := srv.qrCodeService.GeneratePickupQR(collectionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate pickup QR code")
	}

	return png, nil
}

// ScanPickup marks the collection encoded in qrData as collected on behalf of its assigned partner.
func (srv *collectionService) ScanPickup(ctx context.Context, partnerID uuid.UUID, qrData string) (*entity.Collection, error) {
	collectionID, err := srv.qrCodeService.ParsePickupQR(qrData)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("QR code de coleta inválido")
	}

	collection, err := srv.runTransition(ctx, collectionID, entity.ActionMarkCollected,
		func(_ repository.RepositoryFactory, c *entity.Collection) error {
			if !c.Partner.Is(partnerID) {
				return domainerrors.ErrNotAuthorized
			}

			return c.MarkCollected(srv.now())
		}, nil)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Pickup scanned",
		slog.Any("collection_id", collectionID),
		slog.Any("partner_id", partnerID))
	srv.afterCommit(ctx, collection, entity.ActionMarkCollected.String(), false, false)

	return collection, nil
}
