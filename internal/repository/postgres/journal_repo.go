package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/lib/pq"

	"workshop-dispatch/internal/models"
)

var ErrDuplicatePlan = errors.New("duplicate journal entry")

// uniqueViolation is the postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// JournalPostgresRepo persists dispatch plans so a partially submitted group can be resumed
// after a restart.
type JournalPostgresRepo struct {
	db *gorm.DB
}

func NewJournalPostgres(db *gorm.DB) *JournalPostgresRepo {
	return &JournalPostgresRepo{db: db}
}

func (r *JournalPostgresRepo) SavePlan(plan models.GroupPlan) error {
	items := make([]models.PlannedItem, len(plan.Items))
	for i, it := range plan.Items {
		it.ID = 0
		it.RequestRefer = plan.RequestID
		it.Seq = i
		items[i] = it
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	hdr := plan
	hdr.Items = nil

	err := r.db.
		Set("gorm:association_autocreate", false).
		Set("gorm:association_autoupdate", false).
		Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&hdr).Error; err != nil {
				return err
			}
			for i := range items {
				if err := tx.Create(&items[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicatePlan, plan.RequestID)
	}
	return err
}

func (r *JournalPostgresRepo) AttachGroup(requestID string, groupID int) error {
	q := r.db.Model(&models.GroupPlan{}).
		Where("request_id = ?", requestID).
		Update("group_id", groupID)
	if q.Error != nil {
		return q.Error
	}
	if q.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JournalPostgresRepo) MarkSubmitted(requestID string, childID int, at time.Time) error {
	q := r.db.Model(&models.PlannedItem{}).
		Where("request_refer = ? AND child_id = ?", requestID, childID).
		Update("submitted_at", at.UTC())
	if q.Error != nil {
		return q.Error
	}
	if q.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JournalPostgresRepo) PlanByGroup(groupID int) (models.GroupPlan, error) {
	var plan models.GroupPlan
	q := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		First(&plan)
	return plan, q.Error
}

func (r *JournalPostgresRepo) PlanByRequest(requestID string) (models.GroupPlan, error) {
	var plan models.GroupPlan
	q := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).
		Where("request_id = ?", requestID).
		First(&plan)
	return plan, q.Error
}

func (r *JournalPostgresRepo) DeletePlan(groupID int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var plans []models.GroupPlan
		if err := tx.Where("group_id = ?", groupID).Find(&plans).Error; err != nil {
			return err
		}
		if len(plans) == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, p := range plans {
			if err := tx.Where("request_refer = ?", p.RequestID).Delete(models.PlannedItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("request_id = ?", p.RequestID).Delete(models.GroupPlan{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DiscardPlan removes a plan by its request id, whether or not a group was attached.
func (r *JournalPostgresRepo) DiscardPlan(requestID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_refer = ?", requestID).Delete(models.PlannedItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("request_id = ?", requestID).Delete(models.GroupPlan{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
