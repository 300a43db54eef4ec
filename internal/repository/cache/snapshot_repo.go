package cache

import (
	"fmt"
	"net/http"
	"strconv"

	"workshop-dispatch/internal/models"
)

const (
	keyTargets  = "targets"
	keyReindeer = "reindeer:available"
	keyRegions  = "regions"
	keyGifts    = "gifts"
	prefGroups  = "groups:"
	prefWish    = "wishlist:"
)

// SnapshotRepo stores the last known backend state per collection. A miss is reported as a
// 404 ErrorHandler so callers can fall through to the backend.
type SnapshotRepo struct {
	cch KV
}

func NewSnapshotRepo(cch KV) *SnapshotRepo {
	return &SnapshotRepo{cch: cch}
}

func get[T any](kv KV, key string) (T, error) {
	var zero T
	v, ok := kv.Get(key)
	if !ok {
		return zero, NewErrorHandler(fmt.Errorf("%s not cached", key), http.StatusNotFound)
	}
	out, ok := v.(T)
	if !ok {
		return zero, NewErrorHandler(fmt.Errorf("cached %s has unexpected type %T", key, v), http.StatusInternalServerError)
	}
	return out, nil
}

func (r *SnapshotRepo) PutTargets(t []models.Target) { r.cch.Put(keyTargets, t) }
func (r *SnapshotRepo) GetTargets() ([]models.Target, error) {
	return get[[]models.Target](r.cch, keyTargets)
}

func (r *SnapshotRepo) PutReindeer(rd []models.Reindeer) { r.cch.Put(keyReindeer, rd) }
func (r *SnapshotRepo) GetReindeer() ([]models.Reindeer, error) {
	return get[[]models.Reindeer](r.cch, keyReindeer)
}

func (r *SnapshotRepo) PutRegions(rg []models.Region) { r.cch.Put(keyRegions, rg) }
func (r *SnapshotRepo) GetRegions() ([]models.Region, error) {
	return get[[]models.Region](r.cch, keyRegions)
}

func (r *SnapshotRepo) PutGifts(g []models.Gift) { r.cch.Put(keyGifts, g) }
func (r *SnapshotRepo) GetGifts() ([]models.Gift, error) {
	return get[[]models.Gift](r.cch, keyGifts)
}

func (r *SnapshotRepo) PutGroups(status models.GroupStatus, g []models.GroupSummary) {
	r.cch.Put(prefGroups+string(status), g)
}

func (r *SnapshotRepo) GetGroups(status models.GroupStatus) ([]models.GroupSummary, error) {
	return get[[]models.GroupSummary](r.cch, prefGroups+string(status))
}

// DropGroups forgets every cached group listing.
func (r *SnapshotRepo) DropGroups() {
	for _, s := range []models.GroupStatus{models.GroupPending, models.GroupDone, models.GroupFailed} {
		r.cch.Delete(prefGroups + string(s))
	}
}

func (r *SnapshotRepo) PutWishlist(childID int, w []models.WishItem) {
	r.cch.Put(prefWish+strconv.Itoa(childID), w)
}

func (r *SnapshotRepo) GetWishlist(childID int) ([]models.WishItem, error) {
	return get[[]models.WishItem](r.cch, prefWish+strconv.Itoa(childID))
}

func (r *SnapshotRepo) Invalidate() { r.cch.Clear() }
