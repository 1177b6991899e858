package api

import (
	"context"
	"time"

	"github.com/mindstash/mindstash/internal/inbox"
	"github.com/mindstash/mindstash/internal/model"
)

// Service contracts the handlers depend on. Narrow interfaces keep the
// handlers testable with small stubs.

type CaptureService interface {
	Capture(ctx context.Context, rawInput string) (*model.Item, error)
	Get(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context, status model.Status, category model.Category) ([]*model.Item, error)
	Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error)
	Delete(ctx context.Context, id string) error
	Reclassify(ctx context.Context, id string) (*model.Item, error)
	SetReminder(ctx context.Context, id string, at *time.Time, message string) (*model.Item, error)
	ClearReminder(ctx context.Context, id string) (*model.Item, error)
}

type InboxService interface {
	ProcessPendingItems(ctx context.Context) (inbox.Result, error)
	PendingCount(ctx context.Context) (int, error)
	IsRunning() bool
}

type GroupingService interface {
	GroupThoughts(ctx context.Context, items []*model.Item) (model.GroupingResult, error)
	AcceptGroup(ctx context.Context, g model.ThoughtGroup) (*model.Item, error)
	RejectGroup(ctx context.Context, g model.ThoughtGroup) error
}

type ProjectService interface {
	DetectProjects(ctx context.Context, items []*model.Item) (model.ProjectDetection, error)
	ApproveSuggestion(ctx context.Context, sg model.ProjectSuggestion) (*model.Project, error)
	GenerateMergePreview(ctx context.Context, a, b *model.Item) (model.MergePreview, error)
	SuggestTags(ctx context.Context, it *model.Item) ([]string, error)
}

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
}
