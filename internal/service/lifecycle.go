package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/metrics"
	"workshop-dispatch/internal/models"
)

// DeliverGroup makes a single delivery attempt. The backend decides the outcome: DONE with a
// delivered count, or FAILED (or unchanged) with its message surfaced as the error.
func (s *Service) DeliverGroup(ctx context.Context, groupID int) (models.DeliveryOutcome, error) {
	out := models.DeliveryOutcome{GroupID: groupID}
	detail, err := s.backend.Group(ctx, groupID)
	if err != nil {
		return out, err
	}
	out.Status = detail.Status
	out.ReindeerID = detail.ReindeerID
	if detail.Status != models.GroupPending {
		return out, &TerminalStateError{GroupID: groupID, Op: "deliver", Status: detail.Status}
	}

	log := logrus.WithFields(logrus.Fields{"group_id": groupID, "reindeer_id": detail.ReindeerID})
	resp, err := s.backend.Deliver(ctx, groupID)
	if err != nil {
		out.Message = failureMessage(err)
		if after, derr := s.backend.Group(ctx, groupID); derr == nil {
			out.Status = after.Status
		} else {
			log.WithError(derr).Warn("group status unknown after failed delivery")
		}
		metrics.Deliveries.WithLabelValues(string(out.Status)).Inc()
		log.WithError(err).WithField("status", out.Status).Warn("delivery failed")
		s.refreshAfterWrite(ctx, "deliver")
		s.publish(ctx, models.DeliveryEvent{
			Type:      models.EventGroupFailed,
			GroupID:   groupID,
			Status:    out.Status,
			ItemCount: len(detail.Items),
			Reason:    out.Message,
		})
		return out, err
	}

	out.Status = models.GroupDone
	out.DeliveredCount = resp.DeliveredCount
	out.Message = resp.Message
	if resp.ReindeerID != 0 {
		out.ReindeerID = resp.ReindeerID
	}
	metrics.Deliveries.WithLabelValues(string(out.Status)).Inc()
	log.WithField("delivered", out.DeliveredCount).Info("delivery completed")
	s.forgetPlan(groupID)
	s.refreshAfterWrite(ctx, "deliver")
	s.publish(ctx, models.DeliveryEvent{
		Type:           models.EventGroupDelivered,
		GroupID:        groupID,
		Status:         out.Status,
		ItemCount:      len(detail.Items),
		DeliveredCount: out.DeliveredCount,
	})
	return out, nil
}

// DeleteGroup removes a PENDING or FAILED group. DONE groups are history and stay.
func (s *Service) DeleteGroup(ctx context.Context, groupID int) error {
	detail, err := s.backend.Group(ctx, groupID)
	if err != nil {
		return err
	}
	if !detail.Status.Deletable() {
		return &TerminalStateError{GroupID: groupID, Op: "delete", Status: detail.Status}
	}
	if err := s.backend.DeleteGroup(ctx, groupID); err != nil {
		if backend.IsRejection(err) && !backend.IsNotFound(err) {
			if after, derr := s.backend.Group(ctx, groupID); derr == nil && !after.Status.Deletable() {
				return &TerminalStateError{GroupID: groupID, Op: "delete", Status: after.Status, Err: err}
			}
		}
		return err
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "status": detail.Status}).Info("delivery group deleted")
	s.forgetPlan(groupID)
	s.refreshAfterWrite(ctx, "delete")
	s.publish(ctx, models.DeliveryEvent{
		Type:      models.EventGroupDeleted,
		GroupID:   groupID,
		Status:    detail.Status,
		ItemCount: len(detail.Items),
	})
	return nil
}

func (s *Service) forgetPlan(groupID int) {
	if err := s.DeletePlan(groupID); err != nil && !isMissing(err) {
		logrus.WithError(err).WithField("group_id", groupID).Warn("journal cleanup failed")
	}
}

// publish is best effort: the backend already holds the truth.
func (s *Service) publish(ctx context.Context, ev models.DeliveryEvent) {
	if s.events == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.OccurredAt = s.now()
	if ev.StaffID == "" {
		ev.StaffID = backend.StaffIDFrom(ctx)
	}
	if err := s.events.PublishEvent(ctx, ev); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"type": ev.Type, "group_id": ev.GroupID}).Warn("publish event failed")
	}
}

func failureMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
