package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
)

// ── 会议通用错误 ──

var (
	ErrConventionNotFound = errors.New("会议不存在")
)

const timeLayout = "2006-01-02T15:04:05Z"

// PlanService 排期计算接口
type PlanService interface {
	// 无状态计算：不读写存储
	Calculate(req *dto.PlanParametersRequest) planner.Result
	// 按已保存的会议参数计算
	GetPlan(ctx context.Context, conventionID string) (*dto.ConventionPlanResponse, error)
	// 渲染网格（摆放、标签、会议室、场次定制）
	GetGrid(ctx context.Context, conventionID string) (*dto.GridResponse, error)
}

type planService struct {
	repo     *repository.Repository
	defaults planner.Defaults
	logger   *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, defaults planner.Defaults, logger *zap.Logger) PlanService {
	return &planService{repo: repo, defaults: defaults, logger: logger}
}

func (s *planService) Calculate(req *dto.PlanParametersRequest) planner.Result {
	result := planner.Plan(req.ToInput().ParametersWith(s.defaults))
	s.logger.Debug("排期计算完成",
		zap.Int("paper_sessions", result.PaperSessions),
		zap.Int("total_sessions", result.TotalSessions),
		zap.Bool("feasible", result.Capacity.IsFeasible),
	)
	return result
}

func (s *planService) GetPlan(ctx context.Context, conventionID string) (*dto.ConventionPlanResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}

	return &dto.ConventionPlanResponse{
		ConventionID: conv.ConventionID,
		Name:         conv.Name,
		Plan:         planner.Plan(conventionParameters(conv, s.defaults)),
		Categories:   toCategoryBriefs(conv.Categories),
	}, nil
}

// ════════════════════════════════════════════════════════════
// GetGrid — 网格渲染
// ════════════════════════════════════════════════════════════

func (s *planService) GetGrid(ctx context.Context, conventionID string) (*dto.GridResponse, error) {
	// 1. 会议参数
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.defaults)
	result := planner.Plan(p)

	// 2. 摆放
	layout, err := loadLayout(ctx, s.repo, p, result.PaperSessions, conventionID)
	if err != nil {
		s.logger.Error("查询网格摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	resp := &dto.GridResponse{
		ConventionID: conventionID,
		Grid: planner.BuildGrid(p, layout, planner.GridOptions{
			SlotLabels:    conv.SlotLabels,
			SlotTimes:     conv.SlotTimes,
			SessionLabels: conv.SessionLabels,
		}),
	}

	// 3. 会议室名称与场次定制：读取失败时退回默认值，不影响网格
	names, err := s.repo.RoomName.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Warn("查询会议室名称失败，使用默认名称", zap.String("convention_id", conventionID), zap.Error(err))
		names = nil
	}
	resp.Rooms = buildRooms(maxRooms(p), names)

	customs, err := s.repo.Customization.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Warn("查询场次定制失败，忽略定制", zap.String("convention_id", conventionID), zap.Error(err))
		customs = nil
	}
	if len(customs) > 0 {
		resp.Sessions = make(map[string]dto.CustomizationResponse, len(customs))
		for i := range customs {
			resp.Sessions[customs[i].PositionKey] = toCustomizationResponse(&customs[i])
		}
	}

	return resp, nil
}

// ── 共享辅助 ──

// loadConvention 查询会议，不存在时返回 ErrConventionNotFound
func loadConvention(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Convention, error) {
	conv, err := repo.Convention.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConventionNotFound
		}
		logger.Error("查询会议失败", zap.String("convention_id", id), zap.Error(err))
		return nil, err
	}
	return conv, nil
}

// conventionInput 已保存的会议参数 → 排期输入
func conventionInput(conv *model.Convention) planner.Input {
	in := planner.Input{
		ConventionDays:      conv.ConventionDays,
		TimeSlotsPerDay:     conv.TimeSlotsPerDay,
		RoomsPerDay:         conv.AvailableRooms,
		SessionsPerSlot:     conv.SessionsPerTimeSlot,
		CustomTimeSlots:     conv.CustomTimeSlots.DayOverrides(),
		CustomRooms:         conv.CustomRooms.DayOverrides(),
		CustomSessionsSlot:  conv.CustomSessions.DayOverrides(),
		TotalPapers:         conv.TotalPapers,
		PapersPerSession:    conv.PapersPerSession,
		MinPapersPerSession: conv.MinPapersPerSession,
		MaxPapersPerSession: conv.MaxPapersPerSession,
		TotalRoundTables:    conv.TotalRoundTables,
		RoundTableDuration:  conv.RoundTableDuration,
	}
	for _, c := range conv.Categories {
		in.Categories = append(in.Categories, planner.Category{Name: c.Name, PaperCount: c.PaperCount})
	}
	return in
}

func conventionParameters(conv *model.Convention, defaults planner.Defaults) planner.Parameters {
	return conventionInput(conv).ParametersWith(defaults)
}

// staleRows 不再落在当前网格内的摆放记录
type staleRows struct {
	papers []planner.Position
	tables []int
}

func (r staleRows) empty() bool { return len(r.papers) == 0 && len(r.tables) == 0 }

// loadLayout 读取摆放记录；参数变更后超出网格或编号越界的记录被忽略
func loadLayout(ctx context.Context, repo *repository.Repository, p planner.Parameters, paperSessions int, conventionID string) (planner.Layout, error) {
	layout, _, err := readLayout(ctx, repo, p, paperSessions, conventionID)
	return layout, err
}

func readLayout(ctx context.Context, repo *repository.Repository, p planner.Parameters, paperSessions int, conventionID string) (planner.Layout, staleRows, error) {
	layout := planner.NewLayout()
	var stale staleRows

	papers, err := repo.Placement.ListPaperSessions(ctx, conventionID)
	if err != nil {
		return layout, stale, err
	}
	tables, err := repo.Placement.ListRoundTables(ctx, conventionID)
	if err != nil {
		return layout, stale, err
	}

	for _, pl := range papers {
		pos := planner.Position{Day: pl.Day, Slot: pl.SlotIndex, Index: pl.Position}
		if p.InRange(pos) && pl.SessionNumber >= 1 && pl.SessionNumber <= paperSessions {
			layout.Papers[pos] = pl.SessionNumber
			continue
		}
		stale.papers = append(stale.papers, pos)
	}
	for _, rt := range tables {
		pos := planner.Position{Day: rt.Day, Slot: rt.SlotIndex, Index: rt.Position}
		if p.InRange(pos) && rt.RoundTableID >= 1 && rt.RoundTableID <= p.TotalRoundTables {
			layout.RoundTables[rt.RoundTableID] = pos
			continue
		}
		stale.tables = append(stale.tables, rt.RoundTableID)
	}
	return layout, stale, nil
}

// pruneLayout 删除不再落在网格内的摆放记录，返回剩余布局；
// 被删除的场次重新成为未摆放，之后恢复网格尺寸也不会再出现
func pruneLayout(ctx context.Context, repo *repository.Repository, logger *zap.Logger, p planner.Parameters, paperSessions int, conventionID string) (planner.Layout, error) {
	layout, stale, err := readLayout(ctx, repo, p, paperSessions, conventionID)
	if err != nil || stale.empty() {
		return layout, err
	}

	for _, pos := range stale.papers {
		if _, err := repo.Placement.DeletePaperSessionAt(ctx, conventionID, pos.Day, pos.Slot, pos.Index); err != nil {
			return layout, err
		}
	}
	for _, id := range stale.tables {
		if _, err := repo.Placement.DeleteRoundTable(ctx, conventionID, id); err != nil {
			return layout, err
		}
	}

	logger.Info("已清理网格外的摆放",
		zap.String("convention_id", conventionID),
		zap.Int("paper_sessions", len(stale.papers)),
		zap.Int("round_tables", len(stale.tables)),
	)
	return layout, nil
}

// maxRooms 各天会议室数的最大值
func maxRooms(p planner.Parameters) int {
	n := p.StandardRooms
	for _, r := range p.RoomsPerDay {
		n = max(n, r)
	}
	return n
}

// buildRooms 会议室列表：自定义名称优先，否则 "Room n"
func buildRooms(count int, names []model.RoomName) []dto.RoomResponse {
	custom := make(map[int]string, len(names))
	for _, n := range names {
		if name := strings.TrimSpace(n.Name); name != "" {
			custom[n.RoomNumber] = name
		}
	}

	rooms := make([]dto.RoomResponse, 0, count)
	for i := 1; i <= count; i++ {
		r := dto.RoomResponse{RoomNumber: i, Name: fmt.Sprintf("Room %d", i)}
		if name, ok := custom[i]; ok {
			r.Name, r.Custom = name, true
		}
		rooms = append(rooms, r)
	}
	return rooms
}

func toCategoryBriefs(cats []model.CategoryEntry) []dto.CategoryBrief {
	out := make([]dto.CategoryBrief, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryBrief{Name: c.Name, Color: c.Color, PaperCount: c.PaperCount})
	}
	return out
}
