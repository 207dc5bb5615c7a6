package catalog

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront-service/internal/cache"
	"storefront-service/internal/clients/cj"
	"storefront-service/internal/models"
)

const (
	// listV2 allows page sizes up to 100; fetch more pages when needed.
	maxPageSize  = 100
	minPageSize  = 20
	maxPages     = 3
	defaultLimit = 120

	// DefaultCacheTTL is how long an assembled product list stays cached.
	DefaultCacheTTL = 5 * time.Minute
)

// SupplierClient is the subset of the supplier API the catalog needs.
type SupplierClient interface {
	FetchProducts(ctx context.Context, filters cj.ListFilters) json.RawMessage
	FetchProductByID(ctx context.Context, id string) json.RawMessage
}

// Options narrows a product listing request.
type Options struct {
	Keyword  string
	Category string
	MaxPrice int64
	Limit    int
}

// Service assembles normalized, cached product lists from the supplier API.
type Service struct {
	client     SupplierClient
	cache      cache.ProductCache
	normalizer Normalizer
	logger     *logrus.Logger
	cacheTTL   time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a catalog service. exchangeRate <= 0 selects the
// default rate, cacheTTL <= 0 the default TTL; seed fixes the shuffle order
// for reproducible runs.
func NewService(client SupplierClient, productCache cache.ProductCache, logger *logrus.Logger, exchangeRate float64, cacheTTL time.Duration, seed int64) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		client:     client,
		cache:      productCache,
		normalizer: Normalizer{ExchangeRate: exchangeRate},
		logger:     logger,
		cacheTTL:   cacheTTL,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// cacheKey fingerprints the options that affect list contents.
func cacheKey(opts Options) string {
	key, _ := json.Marshal(map[string]any{
		"keyword":  opts.Keyword,
		"category": opts.Category,
		"maxPrice": opts.MaxPrice,
		"limit":    opts.Limit,
	})
	return string(key)
}

// GetProducts returns a normalized product list for the given options,
// serving from cache within the TTL. Failures upstream degrade to an empty
// list; placeholder products are never fabricated.
func (s *Service) GetProducts(ctx context.Context, opts Options) []models.Product {
	key := cacheKey(opts)
	if items, ok := s.cache.Get(ctx, key); ok {
		return items
	}

	desired := opts.Limit
	if desired <= 0 {
		desired = defaultLimit
	}
	pageSize := desired
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	pages := (desired + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if pages > maxPages {
		pages = maxPages
	}

	// One supplier call per page, concurrently. Each call is independently
	// fail-soft; a failed page contributes nothing.
	responses := make([]json.RawMessage, pages)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pages; i++ {
		page := i + 1
		idx := i
		g.Go(func() error {
			responses[idx] = s.client.FetchProducts(gctx, cj.ListFilters{
				Keyword:    opts.Keyword,
				CategoryID: opts.Category,
				Page:       page,
				Size:       pageSize,
			})
			return nil
		})
	}
	_ = g.Wait()

	var combined []cj.RawRecord
	for _, raw := range responses {
		combined = append(combined, cj.ExtractList(raw)...)
	}
	combined = Dedupe(combined)

	normalized := make([]models.Product, 0, len(combined))
	for _, rec := range combined {
		if product := s.normalizer.Normalize(rec); product != nil {
			normalized = append(normalized, *product)
		}
	}

	// The supplier returns a fixed relevance order; shuffling keeps every
	// buyer session from seeing an identical listing.
	s.shuffle(normalized)

	filtered := normalized
	if opts.Category != "" {
		filtered = filterByCategory(filtered, opts.Category)
	}
	if opts.MaxPrice > 0 {
		filtered = filterByMaxPrice(filtered, opts.MaxPrice)
		// Price-constrained buyers want cheapest-first.
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price < filtered[j].Price
		})
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	if len(filtered) == 0 {
		s.logger.WithField("options", key).Warn("supplier catalog yielded no products")
		return []models.Product{}
	}

	s.cache.Set(ctx, key, filtered, s.cacheTTL)
	return filtered
}

// GetProductByID attempts a direct supplier detail fetch, then falls back to
// scanning a bounded general listing. Returns nil when neither path yields a
// product.
func (s *Service) GetProductByID(ctx context.Context, id string) *models.Product {
	if raw := s.client.FetchProductByID(ctx, id); raw != nil {
		if rec := cj.ExtractDetail(raw); rec != nil {
			if product := s.normalizer.Normalize(rec); product != nil {
				return product
			}
		}
	}

	for _, product := range s.GetProducts(ctx, Options{Limit: 50}) {
		if product.ID == id {
			p := product
			return &p
		}
	}
	return nil
}

// Categories returns the distinct categories of a bounded product fetch,
// sorted alphabetically.
func (s *Service) Categories(ctx context.Context) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, product := range s.GetProducts(ctx, Options{Limit: defaultLimit}) {
		key := strings.ToLower(product.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, product.Category)
	}
	sort.Strings(categories)
	return categories
}

func (s *Service) shuffle(items []models.Product) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func filterByCategory(items []models.Product, category string) []models.Product {
	result := make([]models.Product, 0, len(items))
	for _, product := range items {
		if strings.EqualFold(product.Category, category) {
			result = append(result, product)
		}
	}
	return result
}

func filterByMaxPrice(items []models.Product, maxPrice int64) []models.Product {
	result := make([]models.Product, 0, len(items))
	for _, product := range items {
		if product.Price <= maxPrice {
			result = append(result, product)
		}
	}
	return result
}
