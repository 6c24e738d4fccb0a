package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"convention-planner/internal/model"
	pkgerrors "convention-planner/pkg/errors"
)

// ── Mock ConventionRepository ──

type mockConventionRepo struct {
	conventions map[string]*model.Convention
}

func newMockConventionRepo() *mockConventionRepo {
	return &mockConventionRepo{conventions: make(map[string]*model.Convention)}
}

func (m *mockConventionRepo) Create(_ context.Context, conv *model.Convention) error {
	if conv.ConventionID == "" {
		conv.ConventionID = "conv-" + conv.Name
	}
	conv.Version = 1
	cp := *conv
	m.conventions[conv.ConventionID] = &cp
	return nil
}

// GetByID 返回副本，避免服务层修改直接落到存储
func (m *mockConventionRepo) GetByID(_ context.Context, id string) (*model.Convention, error) {
	if c, ok := m.conventions[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConventionRepo) List(_ context.Context, offset, limit int) ([]model.Convention, int64, error) {
	var result []model.Convention
	for _, c := range m.conventions {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConventionID < result[j].ConventionID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := min(offset+limit, len(result))
	return result[offset:end], total, nil
}

func (m *mockConventionRepo) Update(_ context.Context, conv *model.Convention) error {
	stored, ok := m.conventions[conv.ConventionID]
	if !ok || stored.Version != conv.Version {
		return pkgerrors.ErrOptimisticLock
	}
	conv.Version++
	cp := *conv
	m.conventions[conv.ConventionID] = &cp
	return nil
}

func (m *mockConventionRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.conventions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.conventions, id)
	return nil
}

// ── Mock PaperRepository ──

type mockPaperRepo struct {
	papers map[string]*model.Paper
	seq    int
}

func newMockPaperRepo() *mockPaperRepo {
	return &mockPaperRepo{papers: make(map[string]*model.Paper)}
}

func (m *mockPaperRepo) Create(_ context.Context, paper *model.Paper) error {
	if paper.PaperID == "" {
		m.seq++
		paper.PaperID = fmt.Sprintf("paper-%03d", m.seq)
	}
	m.papers[paper.PaperID] = paper
	return nil
}

func (m *mockPaperRepo) BatchCreate(ctx context.Context, papers []model.Paper) error {
	for i := range papers {
		p := papers[i]
		if err := m.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockPaperRepo) GetByID(_ context.Context, conventionID, id string) (*model.Paper, error) {
	if p, ok := m.papers[id]; ok && p.ConventionID == conventionID {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaperRepo) ListByConvention(_ context.Context, conventionID string) ([]model.Paper, error) {
	var result []model.Paper
	for _, p := range m.papers {
		if p.ConventionID == conventionID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

func (m *mockPaperRepo) Update(_ context.Context, paper *model.Paper) error {
	m.papers[paper.PaperID] = paper
	return nil
}

func (m *mockPaperRepo) Delete(_ context.Context, conventionID, id string) error {
	if p, ok := m.papers[id]; !ok || p.ConventionID != conventionID {
		return gorm.ErrRecordNotFound
	}
	delete(m.papers, id)
	return nil
}

// ── Mock PaperAssignmentRepository ──

type mockAssignmentRepo struct {
	list   []model.PaperAssignment
	papers *mockPaperRepo
}

func newMockAssignmentRepo(papers *mockPaperRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{papers: papers}
}

func (m *mockAssignmentRepo) ListByConvention(_ context.Context, conventionID string) ([]model.PaperAssignment, error) {
	var result []model.PaperAssignment
	for _, a := range m.list {
		if a.ConventionID != conventionID {
			continue
		}
		a.Paper = m.papers.papers[a.PaperID]
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].SessionNumber < result[j].SessionNumber })
	return result, nil
}

func (m *mockAssignmentRepo) CountBySession(_ context.Context, conventionID string, sessionNumber int) (int64, error) {
	var n int64
	for _, a := range m.list {
		if a.ConventionID == conventionID && a.SessionNumber == sessionNumber {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) Assign(_ context.Context, a *model.PaperAssignment) error {
	for i := range m.list {
		if m.list[i].ConventionID == a.ConventionID && m.list[i].PaperID == a.PaperID {
			m.list[i].SessionNumber = a.SessionNumber
			return nil
		}
	}
	m.list = append(m.list, *a)
	return nil
}

func (m *mockAssignmentRepo) AssignWithinCapacity(ctx context.Context, a *model.PaperAssignment, capacity int) error {
	n := 0
	for _, e := range m.list {
		if e.ConventionID == a.ConventionID && e.SessionNumber == a.SessionNumber && e.PaperID != a.PaperID {
			n++
		}
	}
	if n >= capacity {
		return pkgerrors.ErrCapacityExceeded
	}
	return m.Assign(ctx, a)
}

func (m *mockAssignmentRepo) Remove(_ context.Context, conventionID string, sessionNumber int, paperID string) (bool, error) {
	for i, a := range m.list {
		if a.ConventionID == conventionID && a.SessionNumber == sessionNumber && a.PaperID == paperID {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) Replace(ctx context.Context, conventionID string, list []model.PaperAssignment) error {
	_ = m.DeleteByConvention(ctx, conventionID)
	m.list = append(m.list, list...)
	return nil
}

func (m *mockAssignmentRepo) DeleteByConvention(_ context.Context, conventionID string) error {
	kept := m.list[:0]
	for _, a := range m.list {
		if a.ConventionID != conventionID {
			kept = append(kept, a)
		}
	}
	m.list = kept
	return nil
}

// ── Mock PersonRepository ──

type mockPersonRepo struct {
	people map[string]*model.Person
	seq    int
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{people: make(map[string]*model.Person)}
}

func (m *mockPersonRepo) Create(_ context.Context, p *model.Person) error {
	if p.PersonID == "" {
		m.seq++
		p.PersonID = fmt.Sprintf("person-%03d", m.seq)
	}
	m.people[p.PersonID] = p
	return nil
}

func (m *mockPersonRepo) GetByID(_ context.Context, conventionID, id string) (*model.Person, error) {
	if p, ok := m.people[id]; ok && p.ConventionID == conventionID {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonRepo) ListByConvention(_ context.Context, conventionID, role string) ([]model.Person, error) {
	var result []model.Person
	for _, p := range m.people {
		if p.ConventionID == conventionID && (role == "" || p.Role == role) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockPersonRepo) Update(_ context.Context, p *model.Person) error {
	m.people[p.PersonID] = p
	return nil
}

func (m *mockPersonRepo) Delete(_ context.Context, conventionID, role, id string) error {
	p, ok := m.people[id]
	if !ok || p.ConventionID != conventionID || p.Role != role {
		return gorm.ErrRecordNotFound
	}
	delete(m.people, id)
	return nil
}

// ── Mock RoomNameRepository ──

type mockRoomNameRepo struct {
	names   map[string][]model.RoomName
	listErr error
}

func newMockRoomNameRepo() *mockRoomNameRepo {
	return &mockRoomNameRepo{names: make(map[string][]model.RoomName)}
}

func (m *mockRoomNameRepo) ListByConvention(_ context.Context, conventionID string) ([]model.RoomName, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.names[conventionID], nil
}

func (m *mockRoomNameRepo) Replace(_ context.Context, conventionID string, names []model.RoomName) error {
	m.names[conventionID] = names
	return nil
}

// ── Mock PlacementRepository ──

type mockPlacementRepo struct {
	papers map[string][]model.PaperSessionPlacement
	tables map[string][]model.RoundTablePlacement
}

func newMockPlacementRepo() *mockPlacementRepo {
	return &mockPlacementRepo{
		papers: make(map[string][]model.PaperSessionPlacement),
		tables: make(map[string][]model.RoundTablePlacement),
	}
}

func (m *mockPlacementRepo) ListPaperSessions(_ context.Context, conventionID string) ([]model.PaperSessionPlacement, error) {
	return m.papers[conventionID], nil
}

func (m *mockPlacementRepo) ListRoundTables(_ context.Context, conventionID string) ([]model.RoundTablePlacement, error) {
	return m.tables[conventionID], nil
}

func (m *mockPlacementRepo) CreatePaperSession(_ context.Context, p *model.PaperSessionPlacement) error {
	for _, e := range m.papers[p.ConventionID] {
		if e.Day == p.Day && e.SlotIndex == p.SlotIndex && e.Position == p.Position {
			return gorm.ErrDuplicatedKey
		}
	}
	m.papers[p.ConventionID] = append(m.papers[p.ConventionID], *p)
	return nil
}

func (m *mockPlacementRepo) DeletePaperSessionAt(_ context.Context, conventionID string, day, slot, position int) (bool, error) {
	list := m.papers[conventionID]
	for i, e := range list {
		if e.Day == day && e.SlotIndex == slot && e.Position == position {
			m.papers[conventionID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPlacementRepo) UpsertRoundTable(_ context.Context, p *model.RoundTablePlacement) error {
	list := m.tables[p.ConventionID]
	for i := range list {
		if list[i].RoundTableID == p.RoundTableID {
			list[i].Day, list[i].SlotIndex, list[i].Position = p.Day, p.SlotIndex, p.Position
			return nil
		}
	}
	m.tables[p.ConventionID] = append(list, *p)
	return nil
}

func (m *mockPlacementRepo) DeleteRoundTable(_ context.Context, conventionID string, roundTableID int) (bool, error) {
	list := m.tables[conventionID]
	for i, e := range list {
		if e.RoundTableID == roundTableID {
			m.tables[conventionID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPlacementRepo) Replace(_ context.Context, conventionID string, papers []model.PaperSessionPlacement, tables []model.RoundTablePlacement) error {
	m.papers[conventionID] = papers
	m.tables[conventionID] = tables
	return nil
}

func (m *mockPlacementRepo) Clear(_ context.Context, conventionID string) error {
	delete(m.papers, conventionID)
	delete(m.tables, conventionID)
	return nil
}

// ── Mock SessionCustomizationRepository ──

type mockCustomizationRepo struct {
	items   map[string]*model.SessionCustomization // convention_id/position_key
	people  *mockPersonRepo
	listErr error
}

func newMockCustomizationRepo(people *mockPersonRepo) *mockCustomizationRepo {
	return &mockCustomizationRepo{items: make(map[string]*model.SessionCustomization), people: people}
}

func (m *mockCustomizationRepo) preload(c model.SessionCustomization) model.SessionCustomization {
	if c.ModeratorID != nil {
		c.Moderator = m.people.people[*c.ModeratorID]
	}
	if c.ChairID != nil {
		c.Chair = m.people.people[*c.ChairID]
	}
	return c
}

func (m *mockCustomizationRepo) ListByConvention(_ context.Context, conventionID string) ([]model.SessionCustomization, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.SessionCustomization
	for _, c := range m.items {
		if c.ConventionID == conventionID {
			result = append(result, m.preload(*c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PositionKey < result[j].PositionKey })
	return result, nil
}

func (m *mockCustomizationRepo) GetByKey(_ context.Context, conventionID, positionKey string) (*model.SessionCustomization, error) {
	if c, ok := m.items[conventionID+"/"+positionKey]; ok {
		cp := m.preload(*c)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomizationRepo) Upsert(_ context.Context, c *model.SessionCustomization) error {
	cp := *c
	m.items[c.ConventionID+"/"+c.PositionKey] = &cp
	return nil
}

func (m *mockCustomizationRepo) Delete(_ context.Context, conventionID, positionKey string) error {
	key := conventionID + "/" + positionKey
	if _, ok := m.items[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, key)
	return nil
}
