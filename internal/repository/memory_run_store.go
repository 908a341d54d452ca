package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
)

// MemoryRunStore keeps runs in process. Used for development and tests.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]models.Run
}

var _ repository.RunStore = (*MemoryRunStore)(nil)

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]models.Run)}
}

func (m *MemoryRunStore) Init(context.Context) error { return nil }

func (m *MemoryRunStore) FindFresh(_ context.Context, company string, since time.Time) (*models.Run, error) {
	return m.newest(company, func(r models.Run) bool { return r.CreatedAt.After(since) })
}

func (m *MemoryRunStore) Latest(_ context.Context, company string) (*models.Run, error) {
	return m.newest(company, func(models.Run) bool { return true })
}

func (m *MemoryRunStore) Save(_ context.Context, run *models.Run) error {
	m.mu.Lock()
	m.runs[run.ID] = *run
	m.mu.Unlock()
	return nil
}

func (m *MemoryRunStore) ListOlderThan(_ context.Context, company string, before time.Time) ([]models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Run
	for _, r := range m.runs {
		if (company == "" || r.Company == company) && r.CreatedAt.Before(before) {
			out = append(out, models.Run{ID: r.ID, Company: r.Company, ArtifactPath: r.ArtifactPath, CreatedAt: r.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRunStore) Delete(_ context.Context, ids ...string) error {
	m.mu.Lock()
	for _, id := range ids {
		delete(m.runs, id)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryRunStore) Health(context.Context) error { return nil }

func (m *MemoryRunStore) Close() error { return nil }

// Len reports the number of stored runs.
func (m *MemoryRunStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

func (m *MemoryRunStore) newest(company string, keep func(models.Run) bool) (*models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *models.Run
	for _, r := range m.runs {
		if r.Company != company || !keep(r) {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return nil, models.ErrRunNotFound
	}
	return best, nil
}
