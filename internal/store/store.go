package store

import (
	"context"

	"github.com/mindstash/mindstash/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Items() Items
	Projects() Projects
	HealthPing(ctx context.Context) error
	Close() error
}

// Items is the durable item collection. Create preserves a caller-supplied
// CreatedAt so split-extraction rewrites keep the original capture time.
type Items interface {
	Create(ctx context.Context, it *model.Item) (*model.Item, error)
	Get(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context) ([]*model.Item, error)
	ListByStatus(ctx context.Context, status model.Status) ([]*model.Item, error)
	// ListPending returns items with pendingAIProcessing=true and status=inbox.
	ListPending(ctx context.Context) ([]*model.Item, error)
	Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error)
	Delete(ctx context.Context, id string) error
}

type Projects interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, p *model.Project) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}
