package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/models"
)

// Refresh replaces every snapshot with the backend's current state. The first failing
// fetch aborts the refresh and leaves the previous snapshots in place.
func (s *Service) Refresh(ctx context.Context) error {
	targets, err := s.backend.Targets(ctx, nil)
	if err != nil {
		return fmt.Errorf("refresh targets: %w", err)
	}
	reindeer, err := s.backend.AvailableReindeer(ctx)
	if err != nil {
		return fmt.Errorf("refresh reindeer: %w", err)
	}
	regions, err := s.backend.Regions(ctx)
	if err != nil {
		return fmt.Errorf("refresh regions: %w", err)
	}
	gifts, err := s.backend.Gifts(ctx)
	if err != nil {
		return fmt.Errorf("refresh gifts: %w", err)
	}
	pending, err := s.backend.Groups(ctx, models.GroupPending)
	if err != nil {
		return fmt.Errorf("refresh groups: %w", err)
	}

	s.PutTargets(targets)
	s.PutReindeer(reindeer)
	s.PutRegions(regions)
	s.PutGifts(gifts)
	s.DropGroups()
	s.PutGroups(models.GroupPending, pending)
	return nil
}

// refreshAfterWrite never fails the caller: the write already happened. On error the
// snapshots are dropped so the next read goes to the backend.
func (s *Service) refreshAfterWrite(ctx context.Context, op string) {
	if err := s.Refresh(ctx); err != nil {
		logrus.WithError(err).WithField("op", op).Warn("refresh after write failed, snapshots invalidated")
		s.Invalidate()
	}
}

func (s *Service) Targets(ctx context.Context, regionID *int) ([]models.Target, error) {
	all, err := s.GetTargets()
	if err != nil {
		if all, err = s.backend.Targets(ctx, nil); err != nil {
			return nil, err
		}
		s.PutTargets(all)
	}
	if regionID == nil {
		return all, nil
	}
	out := make([]models.Target, 0, len(all))
	for _, t := range all {
		if t.RegionID == *regionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) Reindeer(ctx context.Context) ([]models.Reindeer, error) {
	if r, err := s.GetReindeer(); err == nil {
		return r, nil
	}
	r, err := s.backend.AvailableReindeer(ctx)
	if err != nil {
		return nil, err
	}
	s.PutReindeer(r)
	return r, nil
}

func (s *Service) Regions(ctx context.Context) ([]models.Region, error) {
	if r, err := s.GetRegions(); err == nil {
		return r, nil
	}
	r, err := s.backend.Regions(ctx)
	if err != nil {
		return nil, err
	}
	s.PutRegions(r)
	return r, nil
}

func (s *Service) gifts(ctx context.Context) ([]models.Gift, error) {
	if g, err := s.GetGifts(); err == nil {
		return g, nil
	}
	g, err := s.backend.Gifts(ctx)
	if err != nil {
		return nil, err
	}
	s.PutGifts(g)
	return g, nil
}

// Stock lists the gift catalog, largest stock first.
func (s *Service) Stock(ctx context.Context) ([]models.Gift, error) {
	g, err := s.gifts(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]models.Gift(nil), g...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StockQuantity > out[j].StockQuantity })
	return out, nil
}

func (s *Service) Groups(ctx context.Context, status models.GroupStatus) ([]models.GroupSummary, error) {
	if status == "" {
		status = models.GroupPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if g, err := s.GetGroups(status); err == nil {
		return g, nil
	}
	g, err := s.backend.Groups(ctx, status)
	if err != nil {
		return nil, err
	}
	s.PutGroups(status, g)
	return g, nil
}

// Group always asks the backend; details are what delete and deliver decisions rely on.
func (s *Service) Group(ctx context.Context, groupID int) (models.GroupDetail, error) {
	return s.backend.Group(ctx, groupID)
}

// wishlist returns the cached wishlist or fetches it. A failed lookup is not cached.
func (s *Service) wishlist(ctx context.Context, childID int) ([]models.WishItem, error) {
	if w, err := s.GetWishlist(childID); err == nil {
		return w, nil
	}
	w, err := s.backend.Wishlist(ctx, childID)
	if err != nil {
		return nil, err
	}
	s.PutWishlist(childID, w)
	return w, nil
}
