package impl

import (
	"context"

	"greencycle/internal/domain/entity"
	domainerrors "greencycle/internal/domain/errors"
	"greencycle/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// notFoundAs replaces repository.ErrNotFound with the domain error the caller should see.
func notFoundAs(err error, target *domainerrors.BaseError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}

	return err
}

func findCollection(ctx context.Context, repo repository.CollectionRepository, id uuid.UUID) (*entity.Collection, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domainerrors.ErrCollectionNotFound)
	}

	return c, nil
}

func ensureClient(ctx context.Context, repo repository.ClientRepository, id uuid.UUID) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to check client")
	}
	if !ok {
		return domainerrors.ErrClientNotFound
	}

	return nil
}

func ensurePartner(ctx context.Context, repo repository.PartnerRepository, id uuid.UUID) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to check partner")
	}
	if !ok {
		return domainerrors.ErrPartnerNotFound
	}

	return nil
}

// ensureMaterials fails unless every id names a catalogue material.
func ensureMaterials(ctx context.Context, repo repository.MaterialRepository, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "failed to find materials")
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, m := range found {
		known[m.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return domainerrors.ErrMaterialNotFound.WithDetailsf("material %s", id)
		}
	}

	return nil
}
