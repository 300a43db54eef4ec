// Package backendtest provides an in-memory workshop backend for tests. It serves the same
// routes as the real backend and enforces its group state rules.
package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"workshop-dispatch/internal/models"
)

type child struct {
	target    models.Target
	wishes    []models.WishItem
	delivered bool
}

type group struct {
	detail models.GroupDetail
}

type fault struct {
	method, path string
	status       int
	detail       string
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	regions   map[int]string
	children  map[int]*child
	order     []int
	gifts     map[int]*models.Gift
	reindeer  map[int]*models.Reindeer
	groups    map[int]*group
	nextGroup int
	nextItem  int

	faults      []fault
	badWishlist map[int]bool
	calls       []string
	staff       []string
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		regions:     map[int]string{},
		children:    map[int]*child{},
		gifts:       map[int]*models.Gift{},
		reindeer:    map[int]*models.Reindeer{},
		groups:      map[int]*group{},
		badWishlist: map[int]bool{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.record)

	r.GET("/santa/targets", s.targets)
	r.GET("/santa/assign-gifts", s.assignGifts)
	r.GET("/list-elf/child/:id/wishlist", s.wishlist)
	r.GET("/reindeer/available", s.availableReindeer)
	r.GET("/regions/all", s.regionList)
	r.GET("/gift/", s.giftList)

	r.GET("/santa/groups", s.groupList)
	r.POST("/santa/groups", s.createGroup)
	r.GET("/santa/groups/:id", s.groupDetail)
	r.DELETE("/santa/groups/:id", s.deleteGroup)
	r.POST("/santa/groups/:id/items", s.addItem)
	r.POST("/santa/groups/:id/deliver", s.deliver)
	return r
}

func (s *Server) AddRegion(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[id] = name
}

// AddTarget registers a NICE child awaiting delivery with its ranked wishes.
func (s *Server) AddTarget(t models.Target, wishes ...models.WishItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.StatusCode == "" {
		t.StatusCode = models.ChildNice
	}
	if t.DeliveryStatusCode == "" {
		t.DeliveryStatusCode = "PENDING"
	}
	if _, ok := s.children[t.ChildID]; !ok {
		s.order = append(s.order, t.ChildID)
	}
	s.children[t.ChildID] = &child{target: t, wishes: wishes}
}

func (s *Server) AddGift(id int, name string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifts[id] = &models.Gift{GiftID: id, GiftName: name, StockQuantity: qty}
}

func (s *Server) AddReindeer(r models.Reindeer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == "" {
		r.Status = models.ReindeerReady
	}
	s.reindeer[r.ReindeerID] = &r
}

func (s *Server) SetGroupStatus(id int, status models.GroupStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[id]; ok {
		g.detail.Status = status
	}
}

// Fail makes the next request matching method and path answer with status and detail.
func (s *Server) Fail(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, path: path, status: status, detail: detail})
}

func (s *Server) FailWishlist(childID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badWishlist[childID] = true
}

func (s *Server) Stock(giftID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.gifts[giftID]; ok {
		return g.StockQuantity
	}
	return 0
}

func (s *Server) Reindeer(id int) (models.Reindeer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reindeer[id]
	if !ok {
		return models.Reindeer{}, false
	}
	return *r, true
}

func (s *Server) GroupDetail(id int) (models.GroupDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return models.GroupDetail{}, false
	}
	d := g.detail
	d.Items = append([]models.GroupItem(nil), g.detail.Items...)
	return d, true
}

// Calls lists every request received as "METHOD /path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) CallCount(method, pathPrefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, method+" "+pathPrefix) {
			n++
		}
	}
	return n
}

// StaffIDs lists the x-staff-id header of every request, in order.
func (s *Server) StaffIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.staff...)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, c.Request.Method+" "+c.Request.URL.Path)
	s.staff = append(s.staff, c.GetHeader("x-staff-id"))
	for i, f := range s.faults {
		if f.method == c.Request.Method && f.path == c.Request.URL.Path {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
			s.mu.Unlock()
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
	}
	s.mu.Unlock()
	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return v, true
}

func regionQuery(c *gin.Context) (int, bool) {
	raw := c.Query("region_id")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func (s *Server) targets(c *gin.Context) {
	region, filtered := regionQuery(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Target{}
	for _, id := range s.order {
		ch := s.children[id]
		if ch.delivered || ch.target.StatusCode != models.ChildNice {
			continue
		}
		if filtered && ch.target.RegionID != region {
			continue
		}
		t := ch.target
		t.RegionName = s.regions[t.RegionID]
		out = append(out, t)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) wishlist(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.badWishlist[id] {
		detail(c, http.StatusInternalServerError, "wishlist store unavailable")
		return
	}
	ch, found := s.children[id]
	if !found {
		detail(c, http.StatusNotFound, "Child not found")
		return
	}
	items := append([]models.WishItem{}, ch.wishes...)
	for i := range items {
		if g, ok := s.gifts[items[i].GiftID]; ok {
			items[i].GiftName = g.GiftName
		}
	}
	c.JSON(http.StatusOK, models.Wishlist{ChildID: id, Wishlist: items})
}

func (s *Server) availableReindeer(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reindeer{}
	for _, r := range s.reindeer {
		if r.Status == models.ReindeerReady && r.CurrentStamina >= 70 {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReindeerID < out[j].ReindeerID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) regionList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Region{}
	for id, name := range s.regions {
		out = append(out, models.Region{RegionID: id, RegionName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegionID < out[j].RegionID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) giftList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Gift{}
	for _, g := range s.gifts {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GiftID < out[j].GiftID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) assignGifts(c *gin.Context) {
	region, filtered := regionQuery(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Assignment{}
	for _, id := range s.order {
		ch := s.children[id]
		if ch.delivered || ch.target.StatusCode != models.ChildNice {
			continue
		}
		if filtered && ch.target.RegionID != region {
			continue
		}
		wishes := append([]models.WishItem(nil), ch.wishes...)
		sort.SliceStable(wishes, func(i, j int) bool { return wishes[i].Priority < wishes[j].Priority })
		for _, w := range wishes {
			if g, ok := s.gifts[w.GiftID]; ok && g.StockQuantity > 0 {
				out = append(out, models.Assignment{ChildID: id, GiftID: w.GiftID})
				break
			}
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) groupList(c *gin.Context) {
	status := models.GroupStatus(c.DefaultQuery("status_filter", string(models.GroupPending)))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.GroupSummary{}
	for _, g := range s.groups {
		if g.detail.Status != status {
			continue
		}
		out = append(out, models.GroupSummary{
			GroupID:    g.detail.GroupID,
			GroupName:  g.detail.GroupName,
			ReindeerID: g.detail.ReindeerID,
			Status:     g.detail.Status,
			ChildCount: len(g.detail.Items),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) groupDetail(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[id]
	if !found {
		detail(c, http.StatusNotFound, "Delivery group not found")
		return
	}
	c.JSON(http.StatusOK, g.detail)
}

func (s *Server) createGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, found := s.reindeer[req.ReindeerID]
	if !found {
		detail(c, http.StatusNotFound, "Reindeer not found")
		return
	}
	if r.Status != models.ReindeerReady || r.CurrentStamina < 30 {
		detail(c, http.StatusBadRequest, "Reindeer is not available for delivery")
		return
	}
	s.nextGroup++
	d := models.GroupDetail{
		GroupID:    s.nextGroup,
		GroupName:  req.GroupName,
		ReindeerID: req.ReindeerID,
		Status:     models.GroupPending,
		CreatedAt:  models.NewTimestamp(time.Now()),
		Items:      []models.GroupItem{},
	}
	if staff, err := strconv.Atoi(c.GetHeader("x-staff-id")); err == nil {
		d.CreatedByStaffID = &staff
	}
	s.groups[d.GroupID] = &group{detail: d}
	c.JSON(http.StatusCreated, d.GroupID)
}

func (s *Server) addItem(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[id]
	if !found {
		detail(c, http.StatusNotFound, "Delivery group not found")
		return
	}
	if g.detail.Status != models.GroupPending {
		detail(c, http.StatusBadRequest, "Only pending groups can be modified")
		return
	}
	if _, found := s.children[req.ChildID]; !found {
		detail(c, http.StatusNotFound, "Child not found")
		return
	}
	if g.detail.HasChild(req.ChildID) {
		detail(c, http.StatusBadRequest, "Child is already in this group")
		return
	}
	for oid, other := range s.groups {
		if oid != id && other.detail.Status == models.GroupPending && other.detail.HasChild(req.ChildID) {
			detail(c, http.StatusBadRequest, "Child already belongs to another pending group")
			return
		}
	}
	if _, found := s.gifts[req.GiftID]; !found {
		detail(c, http.StatusNotFound, "Gift not found")
		return
	}
	s.nextItem++
	g.detail.Items = append(g.detail.Items, models.GroupItem{GroupItemID: s.nextItem, ChildID: req.ChildID, GiftID: req.GiftID})
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to group"})
}

func (s *Server) deleteGroup(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[id]
	if !found {
		detail(c, http.StatusNotFound, "Delivery group not found")
		return
	}
	if !g.detail.Status.Deletable() {
		detail(c, http.StatusBadRequest, "Only pending or failed groups can be deleted")
		return
	}
	delete(s.groups, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) deliver(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, found := s.groups[id]
	if !found {
		detail(c, http.StatusNotFound, "Delivery group not found")
		return
	}
	if g.detail.Status != models.GroupPending {
		detail(c, http.StatusBadRequest, "Only PENDING groups can be delivered")
		return
	}

	fail := func(status int, msg string) {
		g.detail.Status = models.GroupFailed
		detail(c, status, msg)
	}
	if len(g.detail.Items) == 0 {
		fail(http.StatusBadRequest, "Delivery group has no items")
		return
	}
	r, found := s.reindeer[g.detail.ReindeerID]
	if !found {
		fail(http.StatusNotFound, "Reindeer not found for this group")
		return
	}
	if r.Status != models.ReindeerReady {
		fail(http.StatusBadRequest, "Reindeer is not READY")
		return
	}
	if r.CurrentStamina < 30 || r.CurrentMagic < 10 {
		fail(http.StatusBadRequest, "Reindeer stamina/magic is not enough for delivery")
		return
	}

	needed := map[int]int{}
	for _, it := range g.detail.Items {
		needed[it.GiftID]++
	}
	var shortages []string
	ids := make([]int, 0, len(needed))
	for gid := range needed {
		ids = append(ids, gid)
	}
	sort.Ints(ids)
	for _, gid := range ids {
		gift, found := s.gifts[gid]
		switch {
		case !found:
			shortages = append(shortages, fmt.Sprintf("gift#%d (missing)", gid))
		case gift.StockQuantity < needed[gid]:
			shortages = append(shortages, fmt.Sprintf("%s (short by %d)", gift.GiftName, needed[gid]-gift.StockQuantity))
		}
	}
	if len(shortages) > 0 {
		fail(http.StatusBadRequest, "Insufficient stock: "+strings.Join(shortages, ", "))
		return
	}

	for _, it := range g.detail.Items {
		s.gifts[it.GiftID].StockQuantity--
		if ch, ok := s.children[it.ChildID]; ok {
			ch.delivered = true
		}
	}
	r.CurrentStamina -= 10
	r.CurrentMagic -= 10
	r.Status = models.ReindeerOnDelivery
	g.detail.Status = models.GroupDone

	c.JSON(http.StatusOK, models.DeliverResponse{
		Message:        "Delivery completed",
		GroupID:        id,
		DeliveredCount: len(g.detail.Items),
		ReindeerID:     r.ReindeerID,
	})
}
