package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	byID          map[string]*domain.Order
	byIdempotency map[string]*domain.Order // key: ownerID + "/" + idempotencyKey
	seq           int
	createErr     error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		byID:          make(map[string]*domain.Order),
		byIdempotency: make(map[string]*domain.Order),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	if o.Tasks != nil {
		clone.Tasks = make(map[string]domain.Task, len(o.Tasks))
		for k, v := range o.Tasks {
			clone.Tasks[k] = v
		}
	}
	clone.AssignedDriverIDs = append([]string(nil), o.AssignedDriverIDs...)
	return &clone
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	o.ID = fmt.Sprintf("ord_%d", r.seq)
	r.byID[o.ID] = cloneOrder(o)
	if o.IdempotencyKey != "" {
		r.byIdempotency[o.OwnerID+"/"+o.IdempotencyKey] = r.byID[o.ID]
	}
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	// Mirrors the real Mongo query: owner filter makes foreign orders invisible.
	if ownerID != "" && o.OwnerID != ownerID {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, ownerID, key string) (*domain.Order, error) {
	o, ok := r.byIdempotency[ownerID+"/"+key]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	for _, o := range r.byID {
		if f.OwnerID != "" && o.OwnerID != f.OwnerID {
			continue
		}
		if f.DriverID != "" {
			found := false
			for _, id := range o.AssignedDriverIDs {
				if id == f.DriverID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(o.Priority) != f.Priority {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}

	total := int64(len(matched))
	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	skip := (f.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*domain.Order{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// put installs an order directly, bypassing Create.
func (r *stubOrderRepo) put(o *domain.Order) {
	r.byID[o.ID] = cloneOrder(o)
}

type stubGroupRepo struct {
	byID map[string]*domain.TaskGroup
	seq  int
	// ordersRef, when set, receives the order side of each commit so the
	// stub behaves like the real transactional dual write.
	ordersRef *stubOrderRepo
	// conflictNext forces the next N commits (either write path) to fail
	// with a version conflict without writing anything.
	conflictNext int
	commits      int
}

func newStubGroupRepo() *stubGroupRepo {
	return &stubGroupRepo{byID: make(map[string]*domain.TaskGroup)}
}

func cloneGroup(g *domain.TaskGroup) *domain.TaskGroup {
	clone := *g
	clone.LineItems = append([]domain.LineItem(nil), g.LineItems...)
	clone.Task.Positions = append([]domain.PositionEntry(nil), g.Task.Positions...)
	if g.Orders != nil {
		clone.Orders = make(map[string]domain.OrderSnapshot, len(g.Orders))
		for k, v := range g.Orders {
			clone.Orders[k] = v
		}
	}
	return &clone
}

// CreateGroupsAndCommit mirrors the real repository's transaction: either
// every group insert and order replace lands, or nothing is written.
func (r *stubGroupRepo) CreateGroupsAndCommit(_ context.Context, groups []*domain.TaskGroup, orders []*domain.Order) error {
	if r.conflictNext > 0 {
		r.conflictNext--
		return domain.ErrVersionConflict
	}

	r.commits++
	for _, g := range groups {
		r.seq++
		g.ID = fmt.Sprintf("grp_%d", r.seq)
		g.Version = 0
		r.byID[g.ID] = cloneGroup(g)
	}
	for _, o := range orders {
		o.Version++
		if r.ordersRef != nil {
			r.ordersRef.put(o)
		}
	}
	return nil
}

func (r *stubGroupRepo) FindByID(_ context.Context, id string) (*domain.TaskGroup, error) {
	g, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r *stubGroupRepo) FindByOrderID(_ context.Context, orderID string) ([]*domain.TaskGroup, error) {
	var out []*domain.TaskGroup
	for _, g := range r.byID {
		for _, li := range g.LineItems {
			if li.OrderID == orderID {
				out = append(out, cloneGroup(g))
				break
			}
		}
	}
	return out, nil
}

func (r *stubGroupRepo) FindByDriverID(_ context.Context, driverID string) ([]*domain.TaskGroup, error) {
	var out []*domain.TaskGroup
	for _, g := range r.byID {
		if g.DriverID == driverID {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

// CommitTransition mirrors the real repository's compare-and-set contract:
// every document's version must match the stored one or nothing is written.
func (r *stubGroupRepo) CommitTransition(_ context.Context, group *domain.TaskGroup, orders []*domain.Order) error {
	if r.conflictNext > 0 {
		r.conflictNext--
		return domain.ErrVersionConflict
	}

	stored, ok := r.byID[group.ID]
	if !ok {
		return domain.ErrTaskGroupNotFound
	}
	if stored.Version != group.Version {
		return domain.ErrVersionConflict
	}

	r.commits++
	group.Version++
	r.byID[group.ID] = cloneGroup(group)
	for _, o := range orders {
		o.Version++
		if r.ordersRef != nil {
			r.ordersRef.put(o)
		}
	}
	return nil
}

type stubDriverRepo struct {
	byID          map[string]*domain.Driver
	seq           int
	earningsCalls int
	lastAmount    float64
}

func newStubDriverRepo() *stubDriverRepo {
	return &stubDriverRepo{byID: make(map[string]*domain.Driver)}
}

func (r *stubDriverRepo) Create(_ context.Context, d *domain.Driver) (*domain.Driver, error) {
	for _, existing := range r.byID {
		if existing.UserID == d.UserID {
			return nil, domain.ErrDriverExists
		}
	}
	r.seq++
	d.ID = fmt.Sprintf("drv_%d", r.seq)
	clone := *d
	r.byID[d.ID] = &clone
	return &clone, nil
}

func (r *stubDriverRepo) FindByID(_ context.Context, id string) (*domain.Driver, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDriverRepo) FindByUserID(_ context.Context, userID string) (*domain.Driver, error) {
	for _, d := range r.byID {
		if d.UserID == userID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, domain.ErrDriverNotFound
}

func (r *stubDriverRepo) UpdateLocation(_ context.Context, id string, pos domain.Coordinates, at time.Time) error {
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	d.LastLocation = &pos
	d.LocatedAt = at
	return nil
}

func (r *stubDriverRepo) SetVerification(_ context.Context, id string, status domain.VerificationStatus) error {
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	d.Verification = status
	return nil
}

func (r *stubDriverRepo) AddEarnings(_ context.Context, id string, deliveries int64, amountUSD float64) error {
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	d.Earnings.DeliveriesCompleted += deliveries
	d.Earnings.TotalUSD += amountUSD
	r.earningsCalls++
	r.lastAmount = amountUSD
	return nil
}

// addVerifiedDriver installs a ready-to-assign driver and returns its id.
func (r *stubDriverRepo) addVerifiedDriver(name string) string {
	r.seq++
	id := fmt.Sprintf("drv_%d", r.seq)
	r.byID[id] = &domain.Driver{
		ID:           id,
		UserID:       "usr_" + id,
		Name:         name,
		Verification: domain.VerificationVerified,
	}
	return id
}

type stubPricingRepo struct {
	cfg *ports.PricingConfig
	err error
}

func (r *stubPricingRepo) Current(_ context.Context) (*ports.PricingConfig, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.cfg, nil
}

func (r *stubPricingRepo) Replace(_ context.Context, zones []domain.Zone) (*ports.PricingConfig, error) {
	r.cfg = &ports.PricingConfig{Version: r.cfg.Version + 1, Zones: zones}
	return r.cfg, nil
}

type stubRouting struct {
	route ports.Route
	// failuresLeft makes the provider error this many times before succeeding.
	failuresLeft int
	calls        int
}

func (r *stubRouting) DistanceAndDuration(_ context.Context, _, _ domain.Coordinates) (ports.Route, error) {
	r.calls++
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return ports.Route{}, domain.ErrRoutingUnavailable
	}
	return r.route, nil
}

type stubRouteCache struct {
	routes map[string]ports.Route
	hits   int
	puts   int
}

func newStubRouteCache() *stubRouteCache {
	return &stubRouteCache{routes: make(map[string]ports.Route)}
}

func cacheKey(a, b domain.Coordinates) string {
	return fmt.Sprintf("%v:%v", a, b)
}

func (c *stubRouteCache) Get(_ context.Context, origin, dest domain.Coordinates) (ports.Route, bool, error) {
	route, ok := c.routes[cacheKey(origin, dest)]
	if ok {
		c.hits++
	}
	return route, ok, nil
}

func (c *stubRouteCache) Put(_ context.Context, origin, dest domain.Coordinates, route ports.Route) error {
	c.puts++
	c.routes[cacheKey(origin, dest)] = route
	return nil
}

type stubEvidenceStore struct {
	refs map[string]bool
}

func newStubEvidenceStore(refs ...string) *stubEvidenceStore {
	s := &stubEvidenceStore{refs: make(map[string]bool)}
	for _, ref := range refs {
		s.refs[ref] = true
	}
	return s
}

func (s *stubEvidenceStore) Register(_ context.Context, reference, _ string) error {
	s.refs[reference] = true
	return nil
}

func (s *stubEvidenceStore) Exists(_ context.Context, reference string) (bool, error) {
	return s.refs[reference], nil
}
