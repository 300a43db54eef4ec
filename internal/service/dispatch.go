package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/metrics"
	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository/cache"
	"workshop-dispatch/internal/repository/postgres"
)

func (s *Service) validate(req models.DispatchRequest) error {
	if len(req.ChildIDs) == 0 {
		return ErrEmptySelection
	}
	if req.ReindeerID == 0 {
		return ErrNoReindeer
	}
	if err := s.v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Reason: "validation failed: " + humanizeValidationErrors(verrs)}
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Preview runs validation and allocation without writing anything.
func (s *Service) Preview(ctx context.Context, req models.DispatchRequest) (models.DispatchResult, error) {
	return s.plan(backend.WithStaffID(ctx, req.StaffID), req)
}

func (s *Service) plan(ctx context.Context, req models.DispatchRequest) (models.DispatchResult, error) {
	res := models.DispatchResult{
		RequestID:  req.RequestID,
		ReindeerID: req.ReindeerID,
		Strategy:   s.strategy.Name(),
	}
	if err := s.validate(req); err != nil {
		return res, err
	}

	targets, err := s.Targets(ctx, nil)
	if err != nil {
		return res, err
	}
	byID := make(map[int]models.Target, len(targets))
	for _, t := range targets {
		byID[t.ChildID] = t
	}

	seen := make(map[int]bool, len(req.ChildIDs))
	selected := make([]models.Target, 0, len(req.ChildIDs))
	for _, id := range req.ChildIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := byID[id]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("child %d is not awaiting delivery, skipped", id))
			continue
		}
		selected = append(selected, t)
	}
	if len(selected) == 0 {
		return res, ErrUnknownChildren
	}
	region := selected[0]
	for _, t := range selected[1:] {
		if t.RegionID != region.RegionID {
			return res, ErrMixedRegions
		}
	}
	res.RegionID = region.RegionID

	in := allocator.Input{RegionID: region.RegionID}
	for _, t := range selected {
		c := allocator.Candidate{ChildID: t.ChildID, RegionID: t.RegionID}
		if s.strategy.UsesWishlists() {
			w, err := s.wishlist(ctx, t.ChildID)
			if err != nil {
				logrus.WithError(err).WithField("child_id", t.ChildID).Warn("wishlist lookup failed, child has no wishes")
			}
			c.Wishlist = w
		}
		in.Candidates = append(in.Candidates, c)
	}
	if s.strategy.UsesWishlists() {
		if in.Gifts, err = s.gifts(ctx); err != nil {
			return res, err
		}
	}

	out, err := s.strategy.Allocate(ctx, in)
	if errors.Is(err, allocator.ErrEmptySelection) {
		return res, ErrEmptySelection
	}
	if err != nil {
		return res, fmt.Errorf("allocate: %w", err)
	}
	metrics.ObserveAllocation(s.strategy.Name(), out.Shortage)

	res.Assignments = out.Assignments
	res.Dropped = out.Dropped
	res.Shortage = out.Shortage
	res.Warnings = append(res.Warnings, out.Warnings...)
	if len(res.Assignments) == 0 {
		return res, ErrNothingToAssign
	}

	res.GroupName = s.groupName(ctx, region, req.ReindeerID, len(res.Assignments))
	if strings.TrimSpace(res.GroupName) == "" {
		return res, ErrEmptyGroupName
	}
	return res, nil
}

// groupName builds "Delivery group (<region> · <reindeer> · <n> children)". Lookups that
// fail fall back to the numeric ids.
func (s *Service) groupName(ctx context.Context, region models.Target, reindeerID, children int) string {
	regionName := region.RegionName
	if regionName == "" {
		regionName = fmt.Sprintf("region %d", region.RegionID)
		if regions, err := s.Regions(ctx); err == nil {
			for _, r := range regions {
				if r.RegionID == region.RegionID && r.RegionName != "" {
					regionName = r.RegionName
					break
				}
			}
		}
	}

	reindeerName := fmt.Sprintf("reindeer %d", reindeerID)
	if reindeer, err := s.Reindeer(ctx); err == nil {
		for _, r := range reindeer {
			if r.ReindeerID == reindeerID && r.Name != "" {
				reindeerName = r.Name
				break
			}
		}
	}
	return fmt.Sprintf("Delivery group (%s · %s · %d children)", regionName, reindeerName, children)
}

// CreateGroup plans the allocation, creates the backend group and adds one item per
// assignment. Every planned item is journaled before submission so that a group left
// half-populated by a backend failure can be finished with ResumeGroup.
func (s *Service) CreateGroup(ctx context.Context, req models.DispatchRequest) (models.DispatchResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.DispatchResult{RequestID: req.RequestID}, ErrBusy
	}
	defer s.inFlight.Store(false)

	if err := s.validate(req); err != nil {
		return models.DispatchResult{RequestID: req.RequestID}, err
	}
	if req.RequestID != "" {
		if _, err := s.PlanByRequest(req.RequestID); err == nil {
			return models.DispatchResult{RequestID: req.RequestID}, ErrDuplicateRequest
		} else if !isMissing(err) {
			return models.DispatchResult{RequestID: req.RequestID}, fmt.Errorf("journal lookup: %w", err)
		}
	} else {
		req.RequestID = uuid.NewString()
	}
	ctx = backend.WithStaffID(ctx, req.StaffID)

	res, err := s.plan(ctx, req)
	if err != nil {
		return res, err
	}

	plan := models.GroupPlan{
		RequestID:  res.RequestID,
		GroupName:  res.GroupName,
		ReindeerID: res.ReindeerID,
		RegionID:   res.RegionID,
		StaffID:    backend.StaffIDFrom(ctx),
		Strategy:   res.Strategy,
		Shortage:   res.Shortage,
		CreatedAt:  s.now(),
		Items:      make([]models.PlannedItem, 0, len(res.Assignments)),
	}
	for i, a := range res.Assignments {
		plan.Items = append(plan.Items, models.PlannedItem{Seq: i, ChildID: a.ChildID, GiftID: a.GiftID, Forced: a.Forced})
	}
	if err := s.SavePlan(plan); err != nil {
		if isDuplicate(err) {
			return res, ErrDuplicateRequest
		}
		return res, fmt.Errorf("journal plan: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{"request_id": res.RequestID, "strategy": res.Strategy})
	groupID, err := s.backend.CreateGroup(ctx, models.CreateGroupRequest{GroupName: res.GroupName, ReindeerID: res.ReindeerID})
	if err != nil {
		log.WithError(err).Warn("create group rejected")
		// No group exists, so the request id must stay usable for a retry.
		if derr := s.DiscardPlan(res.RequestID); derr != nil && !isMissing(derr) {
			log.WithError(derr).Warn("journal discard failed, request id stays taken")
		}
		return res, err
	}
	res.GroupID = groupID
	log = log.WithField("group_id", groupID)
	if err := s.AttachGroup(res.RequestID, groupID); err != nil {
		log.WithError(err).Warn("journal attach failed, group cannot be resumed")
	}

	res.Submitted, err = s.submit(ctx, res.RequestID, groupID, plan.Items, nil)
	s.refreshAfterWrite(ctx, "create")
	if err != nil {
		metrics.PartialSubmissions.Inc()
		log.WithError(err).WithField("submitted", res.Submitted).Warn("group left partially populated")
		return res, fmt.Errorf("%w: group %d has %d of %d items: %w",
			ErrPartialSubmission, groupID, res.Submitted, len(plan.Items), err)
	}

	metrics.GroupsCreated.WithLabelValues(res.Strategy).Inc()
	log.WithFields(logrus.Fields{"items": res.Submitted, "shortage": res.Shortage}).Info("delivery group queued")
	s.publish(ctx, models.DeliveryEvent{
		Type:      models.EventGroupCreated,
		GroupID:   groupID,
		RequestID: res.RequestID,
		Status:    models.GroupPending,
		ItemCount: res.Submitted,
		Shortage:  res.Shortage,
	})
	return res, nil
}

// submit adds items in order and stops at the first rejection. Items the group already
// holds are only marked in the journal. It returns how many items the group holds afterwards.
func (s *Service) submit(ctx context.Context, requestID string, groupID int, items []models.PlannedItem, present func(childID int) bool) (int, error) {
	n := 0
	for _, it := range items {
		if present == nil || !present(it.ChildID) {
			if err := s.backend.AddItem(ctx, groupID, models.AddItemRequest{ChildID: it.ChildID, GiftID: it.GiftID}); err != nil {
				return n, err
			}
		}
		n++
		if err := s.MarkSubmitted(requestID, it.ChildID, s.now()); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"request_id": requestID, "child_id": it.ChildID}).
				Warn("journal mark submitted failed")
		}
	}
	return n, nil
}

// ResumeGroup finishes a partially populated group from its journaled plan.
func (s *Service) ResumeGroup(ctx context.Context, groupID int) (models.DispatchResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.DispatchResult{GroupID: groupID}, ErrBusy
	}
	defer s.inFlight.Store(false)

	plan, err := s.PlanByGroup(groupID)
	if isMissing(err) {
		return models.DispatchResult{GroupID: groupID}, fmt.Errorf("%w: no dispatch plan for group %d", ErrNotFound, groupID)
	}
	if err != nil {
		return models.DispatchResult{GroupID: groupID}, fmt.Errorf("journal lookup: %w", err)
	}

	res := models.DispatchResult{
		RequestID:  plan.RequestID,
		GroupID:    groupID,
		GroupName:  plan.GroupName,
		ReindeerID: plan.ReindeerID,
		RegionID:   plan.RegionID,
		Strategy:   plan.Strategy,
		Shortage:   plan.Shortage,
	}
	for _, it := range plan.Items {
		res.Assignments = append(res.Assignments, models.Assignment{ChildID: it.ChildID, GiftID: it.GiftID, Forced: it.Forced})
	}

	detail, err := s.backend.Group(ctx, groupID)
	if err != nil {
		return res, err
	}
	if detail.Status != models.GroupPending {
		return res, &TerminalStateError{GroupID: groupID, Op: "resume", Status: detail.Status}
	}

	pending := plan.Pending()
	done := len(plan.Items) - len(pending)
	n, err := s.submit(ctx, plan.RequestID, groupID, pending, detail.HasChild)
	res.Submitted = done + n
	s.refreshAfterWrite(ctx, "resume")
	if err != nil {
		metrics.PartialSubmissions.Inc()
		return res, fmt.Errorf("%w: group %d has %d of %d items: %w",
			ErrPartialSubmission, groupID, res.Submitted, len(plan.Items), err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "items": res.Submitted}).Info("delivery group resumed")
	s.publish(ctx, models.DeliveryEvent{
		Type:      models.EventGroupCreated,
		GroupID:   groupID,
		RequestID: plan.RequestID,
		Status:    models.GroupPending,
		ItemCount: res.Submitted,
		Shortage:  plan.Shortage,
	})
	return res, nil
}

// isMissing covers both journal backends: gorm's not-found and the KV store's 404.
func isMissing(err error) bool {
	if err == nil {
		return false
	}
	if gorm.IsRecordNotFoundError(err) {
		return true
	}
	var eh cache.ErrorHandler
	return errors.As(err, &eh) && eh.StatusCode == http.StatusNotFound
}

func isDuplicate(err error) bool {
	if errors.Is(err, postgres.ErrDuplicatePlan) {
		return true
	}
	var eh cache.ErrorHandler
	return errors.As(err, &eh) && eh.StatusCode == http.StatusConflict
}
