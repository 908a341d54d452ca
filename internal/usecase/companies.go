package usecase

import (
	"context"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
)

const (
	companyCachePrefix = "companies"
	minCompanyQuery    = 2
)

// CompanyService resolves company names to listed symbols, cached per query.
type CompanyService struct {
	searcher drepo.CompanySearcher
	cache    cache.Service
	ttl      time.Duration
	limit    int
}

func NewCompanyService(searcher drepo.CompanySearcher, c cache.Service, ttl time.Duration, limit int) *CompanyService {
	if limit <= 0 {
		limit = 10
	}
	return &CompanyService{searcher: searcher, cache: c, ttl: ttl, limit: limit}
}

// Search returns at most limit (capped at the configured limit) matches.
// Queries shorter than two characters return an empty list.
func (s *CompanyService) Search(ctx context.Context, q string, limit int) ([]models.Company, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minCompanyQuery {
		return []models.Company{}, nil
	}
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	key := cache.GenerateKeyWithParams(companyCachePrefix, strings.ToLower(q), limit)
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.Company, error) {
		return s.searcher.SearchCompanies(ctx, q, limit)
	})
}
