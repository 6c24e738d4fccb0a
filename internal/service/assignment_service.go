package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
	pkgerrors "convention-planner/pkg/errors"
)

// ── 论文分配业务错误 ──

var (
	ErrSessionNotFound    = errors.New("论文场次不存在")
	ErrSessionFull        = errors.New("论文场次已满")
	ErrAssignmentNotFound = errors.New("该论文不在此场次中")
)

// AssignmentService 论文 → 论文场次 分配接口
type AssignmentService interface {
	List(ctx context.Context, conventionID string) (*dto.PaperAssignmentsResponse, error)
	Assign(ctx context.Context, conventionID string, req *dto.AssignPaperRequest) (*dto.SessionPapersResponse, error)
	Remove(ctx context.Context, conventionID string, sessionNumber int, paperID string) error
	AutoAssign(ctx context.Context, conventionID string) (*dto.PaperAssignmentsResponse, error)
	Clear(ctx context.Context, conventionID string) error
}

type assignmentService struct {
	repo     *repository.Repository
	defaults planner.Defaults
	logger   *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, defaults planner.Defaults, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, defaults: defaults, logger: logger}
}

// sessions 当前排期下的论文场次
func (s *assignmentService) sessions(ctx context.Context, conventionID string) ([]planner.Session, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	return planner.Distribute(conventionParameters(conv, s.defaults)).Sessions, nil
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, conventionID string) (*dto.PaperAssignmentsResponse, error) {
	sessions, err := s.sessions(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, conventionID, sessions)
}

// build 组装场次视图；编号超出当前场次数的分配视为未分配
func (s *assignmentService) build(ctx context.Context, conventionID string, sessions []planner.Session) (*dto.PaperAssignmentsResponse, error) {
	papers, err := s.repo.Paper.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("列出论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("查询论文分配失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	resp := &dto.PaperAssignmentsResponse{
		Sessions:   make([]dto.SessionPapersResponse, 0, len(sessions)),
		Unassigned: []dto.PaperResponse{},
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, dto.SessionPapersResponse{
			SessionNumber: sess.ID,
			Title:         sess.Title,
			Category:      sess.Category,
			Capacity:      sess.PaperCount,
			Papers:        []dto.PaperResponse{},
		})
	}

	assigned := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.SessionNumber < 1 || a.SessionNumber > len(sessions) || a.Paper == nil {
			continue
		}
		view := &resp.Sessions[a.SessionNumber-1]
		view.Papers = append(view.Papers, *toPaperResponse(a.Paper))
		assigned[a.PaperID] = true
	}
	for i := range papers {
		if !assigned[papers[i].PaperID] {
			resp.Unassigned = append(resp.Unassigned, *toPaperResponse(&papers[i]))
		}
	}
	return resp, nil
}

// ────────────────────── Assign ──────────────────────

// Assign 论文已在其他场次时移到新场次
func (s *assignmentService) Assign(ctx context.Context, conventionID string, req *dto.AssignPaperRequest) (*dto.SessionPapersResponse, error) {
	sessions, err := s.sessions(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	if req.SessionNumber < 1 || req.SessionNumber > len(sessions) {
		return nil, ErrSessionNotFound
	}

	if _, err := s.repo.Paper.GetByID(ctx, conventionID, req.PaperID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		s.logger.Error("查询论文失败", zap.String("paper_id", req.PaperID), zap.Error(err))
		return nil, err
	}

	current, err := s.repo.Assignment.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("查询论文分配失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	already := false
	for _, a := range current {
		if a.PaperID == req.PaperID && a.SessionNumber == req.SessionNumber {
			already = true
			break
		}
	}

	if !already {
		a := &model.PaperAssignment{
			ConventionID:  conventionID,
			SessionNumber: req.SessionNumber,
			PaperID:       req.PaperID,
		}
		if err := s.repo.Assignment.AssignWithinCapacity(ctx, a, sessions[req.SessionNumber-1].PaperCount); err != nil {
			switch {
			case errors.Is(err, pkgerrors.ErrCapacityExceeded):
				return nil, ErrSessionFull
			case errors.Is(err, gorm.ErrRecordNotFound):
				return nil, ErrConventionNotFound
			}
			s.logger.Error("分配论文失败", zap.String("convention_id", conventionID), zap.Error(err))
			return nil, err
		}
	}

	resp, err := s.build(ctx, conventionID, sessions)
	if err != nil {
		return nil, err
	}
	return &resp.Sessions[req.SessionNumber-1], nil
}

// ────────────────────── Remove ──────────────────────

func (s *assignmentService) Remove(ctx context.Context, conventionID string, sessionNumber int, paperID string) error {
	removed, err := s.repo.Assignment.Remove(ctx, conventionID, sessionNumber, paperID)
	if err != nil {
		s.logger.Error("移除论文分配失败", zap.String("convention_id", conventionID), zap.Error(err))
		return err
	}
	if !removed {
		return ErrAssignmentNotFound
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// AutoAssign — 按分类自动分配
// ════════════════════════════════════════════════════════════

// AutoAssign 覆盖现有分配：按场次顺序，分类场次取同分类论文，
// 不分类的场次按顺序取剩余论文，直到场次容量用完
func (s *assignmentService) AutoAssign(ctx context.Context, conventionID string) (*dto.PaperAssignmentsResponse, error) {
	sessions, err := s.sessions(ctx, conventionID)
	if err != nil {
		return nil, err
	}
	papers, err := s.repo.Paper.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("列出论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	list := autoAssign(conventionID, sessions, papers)
	if err := s.repo.Assignment.Replace(ctx, conventionID, list); err != nil {
		s.logger.Error("保存自动分配失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("论文自动分配完成",
		zap.String("convention_id", conventionID),
		zap.Int("assigned", len(list)),
		zap.Int("papers", len(papers)),
	)
	return s.build(ctx, conventionID, sessions)
}

func autoAssign(conventionID string, sessions []planner.Session, papers []model.Paper) []model.PaperAssignment {
	used := make([]bool, len(papers))
	var list []model.PaperAssignment

	for _, sess := range sessions {
		room := sess.PaperCount
		for i := range papers {
			if room == 0 {
				break
			}
			if used[i] || (sess.Category != "" && papers[i].Category != sess.Category) {
				continue
			}
			used[i] = true
			room--
			list = append(list, model.PaperAssignment{
				ConventionID:  conventionID,
				SessionNumber: sess.ID,
				PaperID:       papers[i].PaperID,
			})
		}
	}
	return list
}

// ────────────────────── Clear ──────────────────────

func (s *assignmentService) Clear(ctx context.Context, conventionID string) error {
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return err
	}
	if err := s.repo.Assignment.DeleteByConvention(ctx, conventionID); err != nil {
		s.logger.Error("清空论文分配失败", zap.String("convention_id", conventionID), zap.Error(err))
		return err
	}
	return nil
}
