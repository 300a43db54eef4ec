package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository"
)

// Dispatch is what the transports (HTTP, kafka) need from the dispatcher.
type Dispatch interface {
	Refresh(ctx context.Context) error
	Targets(ctx context.Context, regionID *int) ([]models.Target, error)
	Reindeer(ctx context.Context) ([]models.Reindeer, error)
	Regions(ctx context.Context) ([]models.Region, error)
	Stock(ctx context.Context) ([]models.Gift, error)
	Groups(ctx context.Context, status models.GroupStatus) ([]models.GroupSummary, error)
	Group(ctx context.Context, groupID int) (models.GroupDetail, error)

	Preview(ctx context.Context, req models.DispatchRequest) (models.DispatchResult, error)
	CreateGroup(ctx context.Context, req models.DispatchRequest) (models.DispatchResult, error)
	ResumeGroup(ctx context.Context, groupID int) (models.DispatchResult, error)
	DeliverGroup(ctx context.Context, groupID int) (models.DeliveryOutcome, error)
	DeleteGroup(ctx context.Context, groupID int) error

	HandleMessage(ctx context.Context, payload []byte) error
}

// Backend is the subset of the workshop REST API the dispatcher drives.
type Backend interface {
	Targets(ctx context.Context, regionID *int) ([]models.Target, error)
	Wishlist(ctx context.Context, childID int) ([]models.WishItem, error)
	AvailableReindeer(ctx context.Context) ([]models.Reindeer, error)
	Regions(ctx context.Context) ([]models.Region, error)
	Gifts(ctx context.Context) ([]models.Gift, error)
	Groups(ctx context.Context, status models.GroupStatus) ([]models.GroupSummary, error)
	Group(ctx context.Context, groupID int) (models.GroupDetail, error)
	CreateGroup(ctx context.Context, req models.CreateGroupRequest) (int, error)
	AddItem(ctx context.Context, groupID int, req models.AddItemRequest) error
	Deliver(ctx context.Context, groupID int) (models.DeliverResponse, error)
	DeleteGroup(ctx context.Context, groupID int) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.DeliveryEvent) error
}

type Service struct {
	repository.Snapshots
	repository.Journal

	backend  Backend
	strategy allocator.Strategy
	events   EventPublisher
	v        *validator.Validate
	now      func() time.Time

	inFlight atomic.Bool
}

type Option func(*Service)

// WithEvents publishes lifecycle events. Without it events are skipped.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repository *repository.Repository, backend Backend, strategy allocator.Strategy, opts ...Option) *Service {
	s := &Service{
		Snapshots: repository.Snapshots,
		Journal:   repository.Journal,
		backend:   backend,
		strategy:  strategy,
		v:         validator.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ Dispatch = (*Service)(nil)
