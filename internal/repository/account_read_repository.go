package repository

import (
	"context"
	"time"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	sharedredis "github.com/Sinanalungal/Image-Generator-Backend/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const listingCacheKey = "accounts:listing"

// AccountReadRepository serves the administrative projections. The full
// listing is read through a Redis cache when one is configured.
type AccountReadRepository struct {
	repo   AccountRepository
	cache  *sharedredis.ViewCache[[]models.AccountView]
	urlFor func(key string) string
}

// NewAccountReadRepository builds the read side; redisClient may be nil to run
// without a cache, urlFor may be nil to expose raw image keys.
func NewAccountReadRepository(repo AccountRepository, redisClient goredis.Cmdable, ttl time.Duration, urlFor func(string) string, log *zap.Logger) *AccountReadRepository {
	r := &AccountReadRepository{repo: repo, urlFor: urlFor}
	if redisClient != nil {
		r.cache = sharedredis.NewViewCache[[]models.AccountView](redisClient, ttl, log)
	}
	return r
}

// Listing returns every non-superuser account, ordered by id.
func (r *AccountReadRepository) Listing(ctx context.Context) ([]models.AccountView, error) {
	if r.cache != nil {
		if views, ok := r.cache.Get(ctx, listingCacheKey); ok {
			return *views, nil
		}
	}
	return r.RefreshListing(ctx)
}

// RefreshListing loads the listing from the store and caches it, unless an
// invalidation raced the load.
func (r *AccountReadRepository) RefreshListing(ctx context.Context) ([]models.AccountView, error) {
	var version string
	cacheable := false
	if r.cache != nil {
		version, cacheable = r.cache.Version(ctx, listingCacheKey)
	}

	accounts, err := r.repo.ListNonSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	views := models.ToViews(accounts, r.urlFor)

	if cacheable {
		r.cache.SetIfVersion(ctx, listingCacheKey, version, &views)
	}
	return views, nil
}

// Search bypasses the cache; result sets depend on the query.
func (r *AccountReadRepository) Search(ctx context.Context, query string) ([]models.AccountView, error) {
	accounts, err := r.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return models.ToViews(accounts, r.urlFor), nil
}

// View projects a single account.
func (r *AccountReadRepository) View(a *models.Account) models.AccountView {
	return models.ToView(a, r.urlFor)
}

// InvalidateListing drops the cached listing. Called after every mutation.
func (r *AccountReadRepository) InvalidateListing(ctx context.Context) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, listingCacheKey)
	}
}
