package repository

import (
	"time"

	"github.com/jinzhu/gorm"

	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository/cache"
	"workshop-dispatch/internal/repository/postgres"
)

// Snapshots is the read-through cache of backend state. Get* returns an error on a miss.
type Snapshots interface {
	PutTargets(t []models.Target)
	GetTargets() ([]models.Target, error)
	PutReindeer(r []models.Reindeer)
	GetReindeer() ([]models.Reindeer, error)
	PutRegions(r []models.Region)
	GetRegions() ([]models.Region, error)
	PutGifts(g []models.Gift)
	GetGifts() ([]models.Gift, error)
	PutGroups(status models.GroupStatus, g []models.GroupSummary)
	GetGroups(status models.GroupStatus) ([]models.GroupSummary, error)
	DropGroups()
	PutWishlist(childID int, w []models.WishItem)
	GetWishlist(childID int) ([]models.WishItem, error)
	Invalidate()
}

// Journal records what a dispatch planned and which items the backend has accepted.
type Journal interface {
	SavePlan(plan models.GroupPlan) error
	AttachGroup(requestID string, groupID int) error
	MarkSubmitted(requestID string, childID int, at time.Time) error
	PlanByGroup(groupID int) (models.GroupPlan, error)
	PlanByRequest(requestID string) (models.GroupPlan, error)
	DeletePlan(groupID int) error
	DiscardPlan(requestID string) error
}

type Repository struct {
	Snapshots
	Journal
}

type Options struct {
	CacheTTL    time.Duration
	CacheShards int
}

func snapshots(o Options) *cache.SnapshotRepo {
	return cache.NewSnapshotRepo(cache.NewShardedCache(
		cache.WithShards(o.CacheShards),
		cache.WithShardTTL(o.CacheTTL),
	))
}

// NewRepository keeps the journal in postgres.
func NewRepository(db *gorm.DB, o Options) *Repository {
	return &Repository{
		Snapshots: snapshots(o),
		Journal:   postgres.NewJournalPostgres(db),
	}
}

// NewMemoryRepository keeps the journal in process memory.
func NewMemoryRepository(o Options) *Repository {
	return &Repository{
		Snapshots: snapshots(o),
		Journal:   cache.NewJournalRepo(cache.NewCache()),
	}
}
