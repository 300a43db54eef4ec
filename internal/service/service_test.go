package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/backend/backendtest"
	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository"
	svc "workshop-dispatch/internal/service"
)

type eventsStub struct {
	mu  sync.Mutex
	got []models.DeliveryEvent
	err error
}

func (e *eventsStub) PublishEvent(_ context.Context, ev models.DeliveryEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return e.err
}

func (e *eventsStub) types() []models.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.EventType
	for _, ev := range e.got {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	srv    *backendtest.Server
	client *backend.Client
	events *eventsStub
	svc    *svc.Service
}

func wish(priority, giftID int) models.WishItem {
	return models.WishItem{Priority: priority, GiftID: giftID}
}

func newFixture(t *testing.T, strategy func(*backend.Client) allocator.Strategy) *fixture {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	srv.AddRegion(1, "North")
	srv.AddRegion(2, "South")
	srv.AddGift(10, "sled", 1)
	srv.AddGift(20, "doll", 5)
	srv.AddReindeer(models.Reindeer{ReindeerID: 5, Name: "Dasher", CurrentStamina: 90, CurrentMagic: 80})
	srv.AddReindeer(models.Reindeer{ReindeerID: 6, Name: "Comet", CurrentStamina: 40, CurrentMagic: 5})
	srv.AddTarget(models.Target{ChildID: 1, Name: "Ana", RegionID: 1}, wish(1, 10), wish(2, 20))
	srv.AddTarget(models.Target{ChildID: 2, Name: "Ben", RegionID: 1}, wish(1, 10), wish(2, 20))
	srv.AddTarget(models.Target{ChildID: 3, Name: "Cleo", RegionID: 1})
	srv.AddTarget(models.Target{ChildID: 4, Name: "Dan", RegionID: 2}, wish(1, 20))
	srv.AddTarget(models.Target{ChildID: 5, Name: "Eve", RegionID: 1}, wish(1, 10))

	cl, err := backend.New(backend.Config{BaseURL: srv.URL, StaffID: "7"})
	require.NoError(t, err)

	var st allocator.Strategy = allocator.NewRoundRobin()
	if strategy != nil {
		st = strategy(cl)
	}
	ev := &eventsStub{}
	s := svc.NewService(repository.NewMemoryRepository(repository.Options{}), cl, st, svc.WithEvents(ev))
	return &fixture{srv: srv, client: cl, events: ev, svc: s}
}

func TestCreateGroup_QueuesOneItemPerChild(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1, 2}, ReindeerID: 5, StaffID: "42"})
	require.NoError(t, err)
	require.NotEmpty(t, res.RequestID)
	require.Equal(t, "Delivery group (North · Dasher · 2 children)", res.GroupName)
	require.Equal(t, []models.Assignment{{ChildID: 1, GiftID: 10}, {ChildID: 2, GiftID: 20}}, res.Assignments)
	require.Equal(t, 2, res.Submitted)
	require.False(t, res.Shortage)
	require.Equal(t, allocator.StrategyLocal, res.Strategy)

	g, ok := f.srv.GroupDetail(res.GroupID)
	require.True(t, ok)
	require.Equal(t, models.GroupPending, g.Status)
	require.Len(t, g.Items, 2)
	require.NotNil(t, g.CreatedByStaffID)
	require.Equal(t, 42, *g.CreatedByStaffID)

	require.Equal(t, []models.EventType{models.EventGroupCreated}, f.events.types())
	require.Equal(t, "42", f.events.got[0].StaffID)

	groups, err := f.svc.Groups(ctx, models.GroupPending)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 2, groups[0].ChildCount)
}

func TestCreateGroup_ForcesTopWishOnShortage(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{1, 5}, ReindeerID: 5})
	require.NoError(t, err)
	require.True(t, res.Shortage)
	require.Equal(t, []models.Assignment{
		{ChildID: 1, GiftID: 10},
		{ChildID: 5, GiftID: 10, Forced: true},
	}, res.Assignments)
}

func TestCreateGroup_DropsChildWithoutWishes(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{1, 3}, ReindeerID: 5})
	require.NoError(t, err)
	require.Equal(t, []int{3}, res.Dropped)
	require.NotEmpty(t, res.Warnings)
	require.Len(t, res.Assignments, 1)
	require.Contains(t, res.GroupName, "1 children")
}

func TestCreateGroup_ValidationNeverWrites(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.DispatchRequest
		want error
	}{
		{"empty selection", models.DispatchRequest{ReindeerID: 5}, svc.ErrEmptySelection},
		{"no reindeer", models.DispatchRequest{ChildIDs: []int{1}}, svc.ErrNoReindeer},
		{"mixed regions", models.DispatchRequest{ChildIDs: []int{1, 4}, ReindeerID: 5}, svc.ErrMixedRegions},
		{"unknown children", models.DispatchRequest{ChildIDs: []int{99}, ReindeerID: 5}, svc.ErrUnknownChildren},
		{"nothing to assign", models.DispatchRequest{ChildIDs: []int{3}, ReindeerID: 5}, svc.ErrNothingToAssign},
		{"negative id", models.DispatchRequest{ChildIDs: []int{-1}, ReindeerID: 5}, svc.ErrValidation},
		{"request id too long", models.DispatchRequest{RequestID: strings.Repeat("r", 37), ChildIDs: []int{1}, ReindeerID: 5}, svc.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateGroup(ctx, tc.req)
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, svc.ErrValidation)
		})
	}
	require.Zero(t, f.srv.CallCount(http.MethodPost, "/santa/groups"))

	_, err := f.svc.CreateGroup(ctx, models.DispatchRequest{RequestID: strings.Repeat("r", 36), ChildIDs: []int{1}, ReindeerID: 5})
	require.NoError(t, err)
}

func TestCreateGroup_WishlistFailureDowngradesChild(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	f := newFixture(t, nil)
	f.srv.FailWishlist(1)

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{1, 2}, ReindeerID: 5})
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Dropped)
	require.Equal(t, []models.Assignment{{ChildID: 2, GiftID: 10}}, res.Assignments)

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && e.Message == "wishlist lookup failed, child has no wishes" && e.Data["child_id"] == 1 {
			found = true
			break
		}
	}
	require.True(t, found, "expected warn log for failed wishlist")
}

func TestCreateGroup_UnknownReindeerNamedByID(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{4}, ReindeerID: 6})
	require.NoError(t, err)
	require.Equal(t, "Delivery group (South · reindeer 6 · 1 children)", res.GroupName)
}

func TestCreateGroup_BackendRejectsCreate(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 77})
	require.NotEmpty(t, res.RequestID)
	_, jerr := f.svc.PlanByRequest(res.RequestID)
	require.Error(t, jerr)
	var be *backend.Error
	require.True(t, errors.As(err, &be))
	require.Equal(t, http.StatusNotFound, be.StatusCode)
	require.Equal(t, "Reindeer not found", be.Message)
	require.Zero(t, f.srv.CallCount(http.MethodPost, "/santa/groups/"))
	require.Empty(t, f.events.types())
}

func TestCreateGroup_FailedCreateFreesRequestID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.srv.Fail(http.MethodPost, "/santa/groups", http.StatusServiceUnavailable, "backend busy")

	msg := []byte(`{"request_id":"req-1","child_ids":[1],"reindeer_id":5}`)
	err := f.svc.HandleMessage(ctx, msg)
	require.Equal(t, http.StatusServiceUnavailable, backend.StatusCode(err))
	require.False(t, backend.IsRejection(err))
	_, ok := f.srv.GroupDetail(1)
	require.False(t, ok)
	_, err = f.svc.PlanByRequest("req-1")
	require.Error(t, err)

	require.NoError(t, f.svc.HandleMessage(ctx, msg))
	g, ok := f.srv.GroupDetail(1)
	require.True(t, ok)
	require.Len(t, g.Items, 1)

	require.ErrorIs(t, f.svc.HandleMessage(ctx, msg), svc.ErrDuplicateRequest)
}

func TestCreateGroup_PartialSubmissionThenResume(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.srv.Fail(http.MethodPost, "/santa/groups/1/items", http.StatusBadRequest, "Child already belongs to another pending group")

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1, 2}, ReindeerID: 5})
	require.ErrorIs(t, err, svc.ErrPartialSubmission)
	var be *backend.Error
	require.True(t, errors.As(err, &be))
	require.Equal(t, "Child already belongs to another pending group", be.Message)
	require.Equal(t, 1, res.GroupID)
	require.Zero(t, res.Submitted)

	g, _ := f.srv.GroupDetail(1)
	require.Equal(t, models.GroupPending, g.Status)
	require.Empty(t, g.Items)

	resumed, err := f.svc.ResumeGroup(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, resumed.Submitted)
	require.Equal(t, res.RequestID, resumed.RequestID)

	g, _ = f.srv.GroupDetail(1)
	require.Len(t, g.Items, 2)
}

func TestResumeGroup_SkipsItemsAlreadyInGroup(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.srv.Fail(http.MethodPost, "/santa/groups/1/items", http.StatusServiceUnavailable, "try later")

	_, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1, 2}, ReindeerID: 5})
	require.ErrorIs(t, err, svc.ErrPartialSubmission)

	// accepted by the backend but never acknowledged to the dispatcher
	require.NoError(t, f.client.AddItem(ctx, 1, models.AddItemRequest{ChildID: 1, GiftID: 10}))

	res, err := f.svc.ResumeGroup(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, res.Submitted)
	g, _ := f.srv.GroupDetail(1)
	require.Len(t, g.Items, 2)
}

func TestResumeGroup_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ResumeGroup(ctx, 42)
	require.ErrorIs(t, err, svc.ErrNotFound)

	f.srv.Fail(http.MethodPost, "/santa/groups/1/items", http.StatusBadRequest, "nope")
	_, err = f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 5})
	require.ErrorIs(t, err, svc.ErrPartialSubmission)
	f.srv.SetGroupStatus(1, models.GroupFailed)

	_, err = f.svc.ResumeGroup(ctx, 1)
	require.ErrorIs(t, err, svc.ErrTerminalState)
}

func TestCreateGroup_DuplicateRequestID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	req := models.DispatchRequest{RequestID: "req-1", ChildIDs: []int{1}, ReindeerID: 5}

	_, err := f.svc.CreateGroup(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.CreateGroup(ctx, req)
	require.ErrorIs(t, err, svc.ErrDuplicateRequest)
	_, ok := f.srv.GroupDetail(2)
	require.False(t, ok)
}

type blockingBackend struct {
	*backend.Client
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (int, error) {
	close(b.entered)
	<-b.release
	return b.Client.CreateGroup(ctx, req)
}

func TestCreateGroup_RejectsReentry(t *testing.T) {
	f := newFixture(t, nil)
	bb := &blockingBackend{Client: f.client, entered: make(chan struct{}), release: make(chan struct{})}
	s := svc.NewService(repository.NewMemoryRepository(repository.Options{}), bb, allocator.NewRoundRobin())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 5})
		done <- err
	}()
	<-bb.entered

	_, err := s.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{2}, ReindeerID: 5})
	require.ErrorIs(t, err, svc.ErrBusy)
	_, err = s.ResumeGroup(ctx, 1)
	require.ErrorIs(t, err, svc.ErrBusy)

	close(bb.release)
	require.NoError(t, <-done)
}

func TestServerStrategy_NeverFlagsShortage(t *testing.T) {
	f := newFixture(t, func(cl *backend.Client) allocator.Strategy { return allocator.NewServer(cl) })

	res, err := f.svc.CreateGroup(context.Background(), models.DispatchRequest{ChildIDs: []int{1, 2, 3}, ReindeerID: 5})
	require.NoError(t, err)
	require.Equal(t, allocator.StrategyServer, res.Strategy)
	require.False(t, res.Shortage)
	require.Equal(t, []models.Assignment{{ChildID: 1, GiftID: 10}, {ChildID: 2, GiftID: 10}}, res.Assignments)
	require.Equal(t, []int{3}, res.Dropped)
	require.Zero(t, f.srv.CallCount(http.MethodGet, "/list-elf/"))
}

func TestPreview_NoWrites(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Preview(context.Background(), models.DispatchRequest{ChildIDs: []int{2, 1}, ReindeerID: 5})
	require.NoError(t, err)
	require.Equal(t, []models.Assignment{{ChildID: 2, GiftID: 10}, {ChildID: 1, GiftID: 20}}, res.Assignments)
	require.Zero(t, res.GroupID)
	require.Zero(t, f.srv.CallCount(http.MethodPost, "/"))
}

func TestDeliverGroup_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1, 2}, ReindeerID: 5})
	require.NoError(t, err)

	out, err := f.svc.DeliverGroup(ctx, res.GroupID)
	require.NoError(t, err)
	require.Equal(t, models.GroupDone, out.Status)
	require.Equal(t, 2, out.DeliveredCount)
	require.Equal(t, 5, out.ReindeerID)
	require.Equal(t, 0, f.srv.Stock(10))
	require.Equal(t, 4, f.srv.Stock(20))

	stock, err := f.svc.Stock(ctx)
	require.NoError(t, err)
	require.Equal(t, 20, stock[0].GiftID)
	require.Equal(t, 4, stock[0].StockQuantity)

	targets, err := f.svc.Targets(ctx, nil)
	require.NoError(t, err)
	for _, tg := range targets {
		require.NotContains(t, []int{1, 2}, tg.ChildID)
	}
	require.Equal(t, []models.EventType{models.EventGroupCreated, models.EventGroupDelivered}, f.events.types())

	_, err = f.svc.ResumeGroup(ctx, res.GroupID)
	require.ErrorIs(t, err, svc.ErrNotFound)
}

func TestDeliverGroup_FailureReportsBackendStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{4}, ReindeerID: 6})
	require.NoError(t, err)

	out, err := f.svc.DeliverGroup(ctx, res.GroupID)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, backend.StatusCode(err))
	require.Equal(t, models.GroupFailed, out.Status)
	require.Equal(t, "Reindeer stamina/magic is not enough for delivery", out.Message)
	require.Equal(t, 5, f.srv.Stock(20))

	last := f.events.got[len(f.events.got)-1]
	require.Equal(t, models.EventGroupFailed, last.Type)
	require.Equal(t, out.Message, last.Reason)
}

func TestDeliverGroup_NonPendingIsTerminal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 5})
	require.NoError(t, err)
	f.srv.SetGroupStatus(res.GroupID, models.GroupFailed)

	out, err := f.svc.DeliverGroup(ctx, res.GroupID)
	require.ErrorIs(t, err, svc.ErrTerminalState)
	require.Equal(t, models.GroupFailed, out.Status)
	require.Zero(t, f.srv.CallCount(http.MethodPost, "/santa/groups/1/deliver"))
}

func TestDeleteGroup(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	done, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 5})
	require.NoError(t, err)
	_, err = f.svc.DeliverGroup(ctx, done.GroupID)
	require.NoError(t, err)

	err = f.svc.DeleteGroup(ctx, done.GroupID)
	var te *svc.TerminalStateError
	require.True(t, errors.As(err, &te))
	require.Equal(t, models.GroupDone, te.Status)
	_, ok := f.srv.GroupDetail(done.GroupID)
	require.True(t, ok)

	f.srv.AddReindeer(models.Reindeer{ReindeerID: 8, Name: "Vixen", CurrentStamina: 90, CurrentMagic: 90})
	pending, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{2}, ReindeerID: 8})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGroup(ctx, pending.GroupID))
	_, ok = f.srv.GroupDetail(pending.GroupID)
	require.False(t, ok)
	require.Equal(t, models.EventGroupDeleted, f.events.got[len(f.events.got)-1].Type)

	err = f.svc.DeleteGroup(ctx, 999)
	require.True(t, backend.IsNotFound(err))
}

func TestDeleteGroup_FailedGroupLeavesListings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.CreateGroup(ctx, models.DispatchRequest{ChildIDs: []int{1}, ReindeerID: 5})
	require.NoError(t, err)
	f.srv.SetGroupStatus(res.GroupID, models.GroupFailed)

	failed, err := f.svc.Groups(ctx, models.GroupFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)

	require.NoError(t, f.svc.DeleteGroup(ctx, res.GroupID))
	_, ok := f.srv.GroupDetail(res.GroupID)
	require.False(t, ok)

	failed, err = f.svc.Groups(ctx, models.GroupFailed)
	require.NoError(t, err)
	require.Empty(t, failed)
	pending, err := f.svc.Groups(ctx, models.GroupPending)
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Equal(t, models.EventGroupDeleted, f.events.got[len(f.events.got)-1].Type)
}

func TestReadThrough_UsesSnapshots(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		regions, err := f.svc.Regions(ctx)
		require.NoError(t, err)
		require.Len(t, regions, 2)
	}
	require.Equal(t, 1, f.srv.CallCount(http.MethodGet, "/regions/all"))

	south := 2
	targets, err := f.svc.Targets(ctx, &south)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Equal(t, 4, targets[0].ChildID)

	reindeer, err := f.svc.Reindeer(ctx)
	require.NoError(t, err)
	require.Len(t, reindeer, 1)

	_, err = f.svc.Groups(ctx, "SHIPPED")
	require.ErrorIs(t, err, svc.ErrInvalidStatus)
}

func TestRefresh_FailureKeepsPreviousSnapshots(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.Refresh(ctx))

	f.srv.Fail(http.MethodGet, "/gift/", http.StatusInternalServerError, "db down")
	require.Error(t, f.svc.Refresh(ctx))

	stock, err := f.svc.Stock(ctx)
	require.NoError(t, err)
	require.Len(t, stock, 2)
	require.Equal(t, 20, stock[0].GiftID)
}

func TestHandleMessage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.HandleMessage(ctx, []byte("not json")), svc.ErrDecode)
	require.ErrorIs(t, f.svc.HandleMessage(ctx, []byte(`{"child_ids":[],"reindeer_id":5}`)), svc.ErrValidation)

	require.NoError(t, f.svc.HandleMessage(ctx, []byte(`{"request_id":"r-9","child_ids":[1,2],"reindeer_id":5,"staff_id":"3"}`)))
	g, ok := f.srv.GroupDetail(1)
	require.True(t, ok)
	require.Len(t, g.Items, 2)

	require.ErrorIs(t, f.svc.HandleMessage(ctx, []byte(`{"request_id":"r-9","child_ids":[1],"reindeer_id":5}`)), svc.ErrDuplicateRequest)
}
