package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// RunStore persists cached runs. The lifecycle manager is its only writer.
type RunStore interface {
	Init(ctx context.Context) error // ensure tables
	// FindFresh returns the newest run for company created after since, or
	// models.ErrRunNotFound.
	FindFresh(ctx context.Context, company string, since time.Time) (*models.Run, error)
	// Latest returns the newest run for company regardless of age.
	Latest(ctx context.Context, company string) (*models.Run, error)
	Save(ctx context.Context, run *models.Run) error
	// ListOlderThan returns run headers (ID, Company, ArtifactPath, CreatedAt)
	// created before the cutoff. An empty company matches every company.
	ListOlderThan(ctx context.Context, company string, before time.Time) ([]models.Run, error)
	Delete(ctx context.Context, ids ...string) error
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher announces persisted runs.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, ev models.RunCompletedEvent) error
	Close() error
}

type Metrics interface {
	RecordAdmission(result string)
	RecordCacheLookup(hit bool)
	RecordStage(stage string, seconds float64)
	RecordSynthesis(status string)
	RecordEviction(result string)
	RecordError(kind string)
}
