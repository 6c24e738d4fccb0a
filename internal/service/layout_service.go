package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
	pkgerrors "convention-planner/pkg/errors"
)

// ── 网格摆放业务错误 ──

var (
	ErrPositionOccupied     = errors.New("该位置已被占用")
	ErrPositionOutOfRange   = errors.New("位置超出当天网格范围")
	ErrPositionEmpty        = errors.New("该位置没有场次")
	ErrRoundTableNotFound   = errors.New("圆桌不存在")
	ErrRoundTableDoesNotFit = errors.New("当天剩余时段不足以容纳该圆桌")
	ErrAllSessionsPlaced    = errors.New("所有论文场次均已摆放")
)

// LayoutService 网格摆放接口
type LayoutService interface {
	AutoPopulate(ctx context.Context, conventionID string) (*dto.GridResponse, error)
	AssignRoundTable(ctx context.Context, conventionID string, req *dto.AssignRoundTableRequest) (*dto.PlacementResponse, error)
	AssignRoundTableToSlot(ctx context.Context, conventionID string, req *dto.AssignRoundTableToSlotRequest) (*dto.PlacementResponse, error)
	AssignPaperSession(ctx context.Context, conventionID string, req *dto.PositionRequest) (*dto.PlacementResponse, error)
	RemoveAt(ctx context.Context, conventionID string, req *dto.PositionRequest) (*dto.PlacementResponse, error)
	Clear(ctx context.Context, conventionID string) error
}

type layoutService struct {
	repo     *repository.Repository
	plan     PlanService
	defaults planner.Defaults
	logger   *zap.Logger
}

// NewLayoutService 创建 LayoutService 实例
func NewLayoutService(repo *repository.Repository, plan PlanService, defaults planner.Defaults, logger *zap.Logger) LayoutService {
	return &layoutService{repo: repo, plan: plan, defaults: defaults, logger: logger}
}

// layoutState 一次摆放操作所需的会议状态
type layoutState struct {
	params        planner.Parameters
	paperSessions int
	layout        planner.Layout
}

// load 修改布局前先清理网格外的记录，占用判断与场次编号只基于网格内的记录
func (s *layoutService) load(ctx context.Context, conventionID string) (*layoutState, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.defaults)
	result := planner.Plan(p)

	layout, err := pruneLayout(ctx, s.repo, s.logger, p, result.PaperSessions, conventionID)
	if err != nil {
		s.logger.Error("查询网格摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	return &layoutState{params: p, paperSessions: result.PaperSessions, layout: layout}, nil
}

// ════════════════════════════════════════════════════════════
// AutoPopulate — 覆盖现有摆放
// ════════════════════════════════════════════════════════════

func (s *layoutService) AutoPopulate(ctx context.Context, conventionID string) (*dto.GridResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.defaults)
	result := planner.Plan(p)
	layout := planner.AutoPopulate(p, result.PaperSessions, p.TotalRoundTables)

	papers := make([]model.PaperSessionPlacement, 0, len(layout.Papers))
	for _, pos := range layout.PlacedPositions() {
		papers = append(papers, model.PaperSessionPlacement{
			ConventionID:  conventionID,
			Day:           pos.Day,
			SlotIndex:     pos.Slot,
			Position:      pos.Index,
			SessionNumber: layout.Papers[pos],
		})
	}
	tables := make([]model.RoundTablePlacement, 0, len(layout.RoundTables))
	for id := 1; id <= p.TotalRoundTables; id++ {
		pos, ok := layout.RoundTables[id]
		if !ok {
			continue
		}
		tables = append(tables, model.RoundTablePlacement{
			ConventionID: conventionID,
			RoundTableID: id,
			Day:          pos.Day,
			SlotIndex:    pos.Slot,
			Position:     pos.Index,
		})
	}

	if err := s.repo.Placement.Replace(ctx, conventionID, papers, tables); err != nil {
		s.logger.Error("保存自动摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("自动摆放完成",
		zap.String("convention_id", conventionID),
		zap.Int("paper_sessions", len(papers)),
		zap.Int("round_tables", len(tables)),
	)

	return s.plan.GetGrid(ctx, conventionID)
}

// ────────────────────── AssignRoundTable ──────────────────────

// AssignRoundTable 已摆放的圆桌会被移动到新位置
func (s *layoutService) AssignRoundTable(ctx context.Context, conventionID string, req *dto.AssignRoundTableRequest) (*dto.PlacementResponse, error) {
	st, err := s.load(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	if req.RoundTableID < 1 || req.RoundTableID > st.params.TotalRoundTables {
		return nil, ErrRoundTableNotFound
	}

	pos := req.PositionRequest.ToPosition()
	delete(st.layout.RoundTables, req.RoundTableID)
	if err := roundTableFits(st.params, st.layout, pos); err != nil {
		return nil, err
	}

	return s.saveRoundTable(ctx, conventionID, req.RoundTableID, pos)
}

// ────────────────────── AssignRoundTableToSlot ──────────────────────

// AssignRoundTableToSlot 放到该时段第一个能容纳圆桌的位置
func (s *layoutService) AssignRoundTableToSlot(ctx context.Context, conventionID string, req *dto.AssignRoundTableToSlotRequest) (*dto.PlacementResponse, error) {
	st, err := s.load(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	if req.RoundTableID < 1 || req.RoundTableID > st.params.TotalRoundTables {
		return nil, ErrRoundTableNotFound
	}

	slots, _, perSlot := st.params.Day(req.Day)
	if req.Slot < 0 || req.Slot >= slots {
		return nil, ErrPositionOutOfRange
	}

	delete(st.layout.RoundTables, req.RoundTableID)
	// 整个时段都放不下时，返回第一个位置的原因
	var firstErr error
	for i := 0; i < perSlot; i++ {
		pos := planner.Position{Day: req.Day, Slot: req.Slot, Index: i}
		err := roundTableFits(st.params, st.layout, pos)
		if err == nil {
			return s.saveRoundTable(ctx, conventionID, req.RoundTableID, pos)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ErrPositionOutOfRange
	}
	return nil, firstErr
}

func (s *layoutService) saveRoundTable(ctx context.Context, conventionID string, id int, pos planner.Position) (*dto.PlacementResponse, error) {
	rec := &model.RoundTablePlacement{
		ConventionID: conventionID,
		RoundTableID: id,
		Day:          pos.Day,
		SlotIndex:    pos.Slot,
		Position:     pos.Index,
	}
	if err := s.repo.Placement.UpsertRoundTable(ctx, rec); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrPositionOccupied
		}
		s.logger.Error("保存圆桌摆放失败", zap.String("convention_id", conventionID), zap.Int("round_table_id", id), zap.Error(err))
		return nil, err
	}
	return &dto.PlacementResponse{Kind: planner.CellRoundTable, Position: pos, RoundTableID: id}, nil
}

// roundTableFits 圆桌从 pos 开始连续占用 RoundTableDuration 个时段，每个时段的该位置都必须空闲
func roundTableFits(p planner.Parameters, l planner.Layout, pos planner.Position) error {
	if !p.InRange(pos) {
		return ErrPositionOutOfRange
	}
	duration := max(p.RoundTableDuration, 1)
	for k := 0; k < duration; k++ {
		cell := planner.Position{Day: pos.Day, Slot: pos.Slot + k, Index: pos.Index}
		if !p.InRange(cell) {
			return ErrRoundTableDoesNotFit
		}
		if l.Occupied(cell, duration) {
			return ErrPositionOccupied
		}
	}
	return nil
}

// ────────────────────── AssignPaperSession ──────────────────────

// AssignPaperSession 在空闲位置放入编号最小的未摆放论文场次
func (s *layoutService) AssignPaperSession(ctx context.Context, conventionID string, req *dto.PositionRequest) (*dto.PlacementResponse, error) {
	st, err := s.load(ctx, conventionID)
	if err != nil {
		return nil, err
	}

	pos := req.ToPosition()
	if !st.params.InRange(pos) {
		return nil, ErrPositionOutOfRange
	}
	if st.layout.Occupied(pos, st.params.RoundTableDuration) {
		return nil, ErrPositionOccupied
	}

	n := st.layout.NextPaperSession()
	if n > st.paperSessions {
		return nil, ErrAllSessionsPlaced
	}

	rec := &model.PaperSessionPlacement{
		ConventionID:  conventionID,
		Day:           pos.Day,
		SlotIndex:     pos.Slot,
		Position:      pos.Index,
		SessionNumber: n,
	}
	if err := s.repo.Placement.CreatePaperSession(ctx, rec); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrPositionOccupied
		}
		s.logger.Error("保存论文场次摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	return &dto.PlacementResponse{Kind: planner.CellPaper, Position: pos, SessionNumber: n}, nil
}

// ────────────────────── RemoveAt ──────────────────────

// RemoveAt 移除该位置上的论文场次，或覆盖该位置的圆桌
func (s *layoutService) RemoveAt(ctx context.Context, conventionID string, req *dto.PositionRequest) (*dto.PlacementResponse, error) {
	st, err := s.load(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	pos := req.ToPosition()

	if n, ok := st.layout.Papers[pos]; ok {
		if _, err := s.repo.Placement.DeletePaperSessionAt(ctx, conventionID, pos.Day, pos.Slot, pos.Index); err != nil {
			s.logger.Error("移除论文场次摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
			return nil, err
		}
		return &dto.PlacementResponse{Kind: planner.CellPaper, Position: pos, SessionNumber: n}, nil
	}

	if id, ok := st.layout.RoundTableAt(pos, st.params.RoundTableDuration); ok {
		if _, err := s.repo.Placement.DeleteRoundTable(ctx, conventionID, id); err != nil {
			s.logger.Error("移除圆桌摆放失败", zap.String("convention_id", conventionID), zap.Int("round_table_id", id), zap.Error(err))
			return nil, err
		}
		return &dto.PlacementResponse{Kind: planner.CellRoundTable, Position: st.layout.RoundTables[id], RoundTableID: id}, nil
	}

	return nil, ErrPositionEmpty
}

// ────────────────────── Clear ──────────────────────

func (s *layoutService) Clear(ctx context.Context, conventionID string) error {
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return err
	}
	if err := s.repo.Placement.Clear(ctx, conventionID); err != nil {
		s.logger.Error("清空网格摆放失败", zap.String("convention_id", conventionID), zap.Error(err))
		return err
	}
	return nil
}
