package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tireserve/platform/internal/api/middleware"
	"github.com/tireserve/platform/internal/cache"
	"github.com/tireserve/platform/internal/errors"
	"github.com/tireserve/platform/internal/models"
	repository "github.com/tireserve/platform/internal/repositories"
)

// CatalogService serves part snapshots for availability display. Reads may
// be a little stale; the atomic decrement is the source of truth during
// checkout, never this cache.
type CatalogService struct {
	partRepo repository.PartRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewCatalogService(partRepo repository.PartRepository, partCache cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{partRepo: partRepo, cache: partCache, ttl: ttl}
}

func (s *CatalogService) GetPart(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	key := cache.Key(cache.PartKeyPrefix, id.String())

	if s.cache != nil {
		var cached models.Part

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			middleware.LoggerFromContext(ctx).Warn("Part cache read failed", slog.String("error", err.Error()))
		} else if found {
			return &cached, nil
		}
	}

	part, err := s.partRepo.GetPartByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Part not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load part").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, part, s.ttl); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Part cache write failed", slog.String("error", err.Error()))
		}
	}

	return part, nil
}
