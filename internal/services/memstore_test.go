package skn

import (
	"context"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/glkeru/skn/internal/config"
	model "github.com/glkeru/skn/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Хранилище в памяти с теми же условными записями, что и MembersDB / LedgerDB
type memStore struct {
	mu       sync.Mutex
	seq      int64
	members  map[string]*model.Member
	pairs    map[string]map[int64]model.PairRecord
	earnings map[string]model.Earning

	// хуки для сбоев и гонок
	beforeUpdate  func(memberID string) error
	afterUpdate   func(memberID string) error
	beforeClaim   func(parentID string, side model.Side, childID string) error
	beforeRelease func(memberID string, key string) error
}

func newMemStore() *memStore {
	return &memStore{
		members:  make(map[string]*model.Member),
		pairs:    make(map[string]map[int64]model.PairRecord),
		earnings: make(map[string]model.Earning),
	}
}

func copyMember(m *model.Member) *model.Member {
	c := *m
	c.Path = slices.Clone(m.Path)
	c.PendingKeys = slices.Clone(m.PendingKeys)
	if m.Propagation != nil {
		cp := *m.Propagation
		c.Propagation = &cp
	}
	return &c
}

func (s *memStore) touch(m *model.Member) {
	s.seq++
	m.UpdatedAt = time.Unix(0, s.seq)
}

func (s *memStore) put(m *model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(m)
	s.members[m.ID] = copyMember(m)
}

func (s *memStore) get(t *testing.T, id string) *model.Member {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	require.True(t, ok, "member %s", id)
	return copyMember(m)
}

func (s *memStore) GetMember(ctx context.Context, id string) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyMember(m), nil
}

func (s *memStore) FindChildClaim(ctx context.Context, parentID string, side model.Side) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.Member
	for _, m := range s.members {
		if m.ParentID != parentID || m.Side != side {
			continue
		}
		if found == nil || m.UpdatedAt.Before(found.UpdatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, model.ErrNotFound
	}
	return copyMember(found), nil
}

func (s *memStore) SetPosition(ctx context.Context, memberID string, pos model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return model.ErrNotFound
	}
	if m.ParentID != "" || m.IsActive {
		return model.ErrAlreadyPlaced
	}
	m.ParentID = pos.ParentID
	m.Side = pos.Side
	m.Depth = pos.Depth
	m.Path = slices.Clone(pos.Path)
	m.IsActive = true
	cp := pos.Checkpoint
	cp.UpdatedAt = time.Now()
	m.Propagation = &cp
	s.touch(m)
	return nil
}

func (s *memStore) ClearPosition(ctx context.Context, memberID string, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.ParentID != parentID {
		return nil
	}
	m.ParentID = ""
	m.Side = ""
	m.Depth = 0
	m.Path = nil
	m.IsActive = false
	m.Propagation = nil
	s.touch(m)
	return nil
}

func (s *memStore) ClaimChild(ctx context.Context, parentID string, side model.Side, childID string) error {
	if s.beforeClaim != nil {
		if err := s.beforeClaim(parentID, side, childID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.members[parentID]
	if !ok {
		return model.ErrNotFound
	}
	if cur := p.ChildID(side); cur != "" && cur != childID {
		return model.ErrConcurrentPlacement
	}
	if side == model.SideLeft {
		p.LeftChildID = childID
	} else {
		p.RightChildID = childID
	}
	s.touch(p)
	return nil
}

func (s *memStore) UpdateCounters(ctx context.Context, memberID string, version int64, c model.Counters, key string) error {
	if s.beforeUpdate != nil {
		if err := s.beforeUpdate(memberID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	m, ok := s.members[memberID]
	if !ok {
		s.mu.Unlock()
		return model.ErrNotFound
	}
	if m.Version != version {
		s.mu.Unlock()
		return model.ErrVersionConflict
	}
	m.LeftActiveCount = c.LeftActiveCount
	m.RightActiveCount = c.RightActiveCount
	m.PairsCompleted = c.PairsCompleted
	m.TotalEarnings = c.TotalEarnings
	m.StarLevel = c.StarLevel
	m.WithdrawnTotal = c.WithdrawnTotal
	m.Version++
	if key != "" && !m.Pending(key) {
		m.PendingKeys = append(m.PendingKeys, key)
	}
	s.touch(m)
	s.mu.Unlock()

	if s.afterUpdate != nil {
		return s.afterUpdate(memberID)
	}
	return nil
}

func (s *memStore) ReleaseKey(ctx context.Context, memberID string, key string) error {
	if s.beforeRelease != nil {
		if err := s.beforeRelease(memberID, key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberID]; ok {
		m.PendingKeys = slices.DeleteFunc(m.PendingKeys, func(k string) bool { return k == key })
	}
	return nil
}

func (s *memStore) SaveCheckpoint(ctx context.Context, memberID string, from string, cp model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return model.ErrNotFound
	}
	if !m.PropagationAt(from) {
		return model.ErrCheckpointMoved
	}
	cp.UpdatedAt = time.Now()
	m.Propagation = &cp
	return nil
}

func (s *memStore) PendingPropagations(ctx context.Context, before time.Time, limit int64) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Member
	for _, m := range s.members {
		if m.PropagationPending() && !m.Propagation.UpdatedAt.After(before) {
			res = append(res, *copyMember(m))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	if int64(len(res)) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *memStore) SetPayment(ctx context.Context, memberID string, status model.PaymentStatus, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return model.ErrNotFound
	}
	m.PaymentStatus = status
	if pin != "" {
		m.ReferralPin = pin
	}
	return nil
}

func (s *memStore) FindByPin(ctx context.Context, pin string) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ReferralPin == pin {
			return copyMember(m), nil
		}
	}
	return nil, model.ErrNotFound
}

// журнал

func (s *memStore) InsertPair(ctx context.Context, pair model.PairRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byNumber, ok := s.pairs[pair.MemberID]
	if !ok {
		byNumber = make(map[int64]model.PairRecord)
		s.pairs[pair.MemberID] = byNumber
	}
	if _, ok := byNumber[pair.PairNumber]; ok {
		return model.ErrLedgerConflict
	}
	byNumber[pair.PairNumber] = pair
	return nil
}

func earningKey(memberID string, source model.SourceType, sourceID string) string {
	return memberID + "|" + string(source) + "|" + sourceID
}

func (s *memStore) InsertEarning(ctx context.Context, earning model.Earning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := earningKey(earning.MemberID, earning.SourceType, earning.SourceID)
	if _, ok := s.earnings[key]; ok {
		return model.ErrLedgerConflict
	}
	s.earnings[key] = earning
	return nil
}

func (s *memStore) HasEarning(ctx context.Context, memberID string, source model.SourceType, sourceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.earnings[earningKey(memberID, source, sourceID)]
	return ok, nil
}

func (s *memStore) GetPairs(ctx context.Context, memberID string) ([]model.PairRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.PairRecord
	for _, p := range s.pairs[memberID] {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].PairNumber < res[j].PairNumber })
	return res, nil
}

func (s *memStore) GetEarnings(ctx context.Context, memberID string) ([]model.Earning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Earning
	for _, e := range s.earnings {
		if e.MemberID == memberID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].SourceID < res[j].SourceID })
	return res, nil
}

// сумма начислений участника по типу
func (s *memStore) earned(memberID string, source model.SourceType) (total int64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.earnings {
		if e.MemberID == memberID && e.SourceType == source {
			total += e.Amount
			count++
		}
	}
	return total, count
}

// снимок состояния для сравнения
func (s *memStore) snapshot() (map[string]model.Member, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make(map[string]model.Member, len(s.members))
	for id, m := range s.members {
		c := *copyMember(m)
		c.UpdatedAt = time.Time{}
		if c.Propagation != nil {
			c.Propagation.UpdatedAt = time.Time{}
		}
		members[id] = c
	}
	return members, len(s.earnings)
}

type fixture struct {
	store     *memStore
	plan      *config.Plan
	resolver  *Resolver
	engine    *PropagationEngine
	placement *PlacementService
}

func newFixture(strategy model.Strategy) *fixture {
	return newFixtureWithPlan(func(p *config.Plan) { p.Strategy = strategy })
}

func newFixtureWithPlan(setup func(p *config.Plan)) *fixture {
	logger := zap.NewNop()
	store := newMemStore()
	plan := config.DefaultPlan()
	setup(plan)
	resolver := NewResolver(logger, store, plan.MaxTreeDepth)
	engine := NewPropagationEngine(logger, store, NewLedgerWriter(logger, store), nil, plan)
	placement := NewPlacementService(logger, store, resolver, engine, plan)
	return &fixture{store, plan, resolver, engine, placement}
}

func (f *fixture) root(id string) {
	f.store.put(&model.Member{ID: id, ReferralCode: "ref-" + id, IsActive: true, PaymentStatus: model.PaymentApproved})
}

func (f *fixture) member(id string, sponsor string) {
	f.store.put(&model.Member{ID: id, SponsorID: sponsor, ReferralCode: "ref-" + id, PaymentStatus: model.PaymentPending})
}

// узел с готовыми связями, без распространения
func (f *fixture) node(id string, parent string, side model.Side, left string, right string) {
	f.store.put(&model.Member{
		ID:           id,
		ReferralCode: "ref-" + id,
		ParentID:     parent,
		Side:         side,
		LeftChildID:  left,
		RightChildID: right,
		IsActive:     true,
	})
}

// участник уже стоит под parent и ждет распространения с него
func (s *memStore) placed(id string, parent string, side model.Side) {
	s.put(&model.Member{
		ID:           id,
		ReferralCode: "ref-" + id,
		ParentID:     parent,
		Side:         side,
		IsActive:     true,
		Propagation:  &model.Checkpoint{NextAncestorID: parent, Side: side},
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.members[parent]; ok {
		if side == model.SideLeft {
			p.LeftChildID = id
		} else {
			p.RightChildID = id
		}
	}
}
