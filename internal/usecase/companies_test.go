package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"
)

type countingSearcher struct {
	calls int
	limit int
}

func (s *countingSearcher) SearchCompanies(_ context.Context, q string, limit int) ([]models.Company, error) {
	s.calls++
	s.limit = limit
	return []models.Company{{Name: q, Symbol: "X.NS"}}, nil
}

func TestCompanyService_Search(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	searcher := &countingSearcher{}
	svc := NewCompanyService(searcher, mc, time.Minute, 10)
	ctx := context.Background()

	got, err := svc.Search(ctx, " Reliance ", 50)
	require.NoError(t, err)
	assert.Equal(t, []models.Company{{Name: "Reliance", Symbol: "X.NS"}}, got)
	assert.Equal(t, 10, searcher.limit)

	_, err = svc.Search(ctx, "reliance", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)

	short, err := svc.Search(ctx, "r", 5)
	require.NoError(t, err)
	assert.Empty(t, short)
	assert.Equal(t, 1, searcher.calls)
}
