package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"convention-planner/config"
	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
	pkgerrors "convention-planner/pkg/errors"
	"convention-planner/pkg/jwt"
)

// ── 会议模块业务错误 ──

var (
	ErrConventionVersionConflict = errors.New("会议已被修改，请刷新后重试")
)

// ConventionService 会议业务接口
type ConventionService interface {
	Create(ctx context.Context, req *dto.CreateConventionRequest) (*dto.CreateConventionResponse, error)
	List(ctx context.Context, req *dto.ConventionListRequest) ([]dto.ConventionBrief, int64, error)
	GetByID(ctx context.Context, id string) (*dto.ConventionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateConventionRequest) (*dto.ConventionResponse, error)
	Delete(ctx context.Context, id string) error
}

type conventionService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewConventionService 创建 ConventionService 实例
func NewConventionService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) ConventionService {
	return &conventionService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *conventionService) Create(ctx context.Context, req *dto.CreateConventionRequest) (*dto.CreateConventionResponse, error) {
	conv := &model.Convention{Name: strings.TrimSpace(req.Name)}
	applyParameters(conv, mergeInput(planner.Input{}, &req.PlanParametersRequest),
		mergeCategories(nil, req.Categories), s.cfg.Planner.Defaults())

	if req.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), passcodeCost(s.cfg))
		if err != nil {
			s.logger.Error("口令哈希失败", zap.Error(err))
			return nil, err
		}
		h := string(hash)
		conv.PasscodeHash = &h
	}

	if err := s.repo.Convention.Create(ctx, conv); err != nil {
		s.logger.Error("创建会议失败", zap.Error(err))
		return nil, err
	}

	token, err := issueEditToken(s.jwtMgr, conv.ConventionID)
	if err != nil {
		s.logger.Error("生成编辑令牌失败", zap.String("convention_id", conv.ConventionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("会议已创建", zap.String("convention_id", conv.ConventionID), zap.String("name", conv.Name))

	return &dto.CreateConventionResponse{
		Convention:        *toConventionResponse(conv),
		EditTokenResponse: *token,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *conventionService) List(ctx context.Context, req *dto.ConventionListRequest) ([]dto.ConventionBrief, int64, error) {
	list, total, err := s.repo.Convention.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出会议失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ConventionBrief, 0, len(list))
	for i := range list {
		c := &list[i]
		result = append(result, dto.ConventionBrief{
			ID:             c.ConventionID,
			Name:           c.Name,
			ConventionDays: c.ConventionDays,
			TotalPapers:    c.TotalPapers,
			UpdatedAt:      c.UpdatedAt.Format(timeLayout),
		})
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *conventionService) GetByID(ctx context.Context, id string) (*dto.ConventionResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toConventionResponse(conv), nil
}

// ────────────────────── Update ──────────────────────

// Update 未填写的参数保留原值；按天覆盖值与分类在填写时整体替换
func (s *conventionService) Update(ctx context.Context, id string, req *dto.UpdateConventionRequest) (*dto.ConventionResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	if conv.Version != req.Version {
		return nil, ErrConventionVersionConflict
	}

	if req.Name != nil {
		conv.Name = strings.TrimSpace(*req.Name)
	}
	applyParameters(conv, mergeInput(conventionInput(conv), &req.PlanParametersRequest),
		mergeCategories(conv.Categories, req.Categories), s.cfg.Planner.Defaults())

	if err := s.repo.Convention.Update(ctx, conv); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConventionVersionConflict
		}
		s.logger.Error("更新会议失败", zap.String("convention_id", id), zap.Error(err))
		return nil, err
	}

	// 网格缩小后清理落在网格外的摆放；失败时由下一次布局修改再清理
	p := conventionParameters(conv, s.cfg.Planner.Defaults())
	if _, err := pruneLayout(ctx, s.repo, s.logger, p, planner.Plan(p).PaperSessions, id); err != nil {
		s.logger.Warn("清理网格外的摆放失败", zap.String("convention_id", id), zap.Error(err))
	}

	return toConventionResponse(conv), nil
}

// ────────────────────── Delete ──────────────────────

func (s *conventionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Convention.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConventionNotFound
		}
		s.logger.Error("删除会议失败", zap.String("convention_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("会议已删除", zap.String("convention_id", id))
	return nil
}

// ── 参数合并与保存 ──

// mergeInput 以 base 为底，覆盖请求中已填写的字段
func mergeInput(base planner.Input, req *dto.PlanParametersRequest) planner.Input {
	set := func(dst *int, v dto.FlexInt) {
		if v.Set {
			*dst = v.Value
		}
	}
	set(&base.ConventionDays, req.ConventionDays)
	set(&base.TimeSlotsPerDay, req.TimeSlotsPerDay)
	set(&base.RoomsPerDay, req.AvailableRooms)
	set(&base.SessionsPerSlot, req.SessionsPerTimeSlot)
	set(&base.TotalPapers, req.TotalPapers)
	set(&base.PapersPerSession, req.PapersPerSession)
	set(&base.MinPapersPerSession, req.MinPapersPerSession)
	set(&base.MaxPapersPerSession, req.MaxPapersPerSession)
	set(&base.TotalRoundTables, req.TotalRoundTables)
	set(&base.RoundTableDuration, req.RoundTableDuration)

	if req.CustomTimeSlots != nil {
		base.CustomTimeSlots = req.CustomTimeSlots.Days()
	}
	if req.CustomRooms != nil {
		base.CustomRooms = req.CustomRooms.Days()
	}
	if req.CustomSessionsPerSlot != nil {
		base.CustomSessionsSlot = req.CustomSessionsPerSlot.Days()
	}
	return base
}

// mergeCategories 请求未携带分类时保留原分类；空名称的分类被丢弃
func mergeCategories(current []model.CategoryEntry, req []dto.CategoryRequest) []model.CategoryEntry {
	if req == nil {
		return current
	}
	out := make([]model.CategoryEntry, 0, len(req))
	for _, c := range req {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out = append(out, model.CategoryEntry{
			Name:       name,
			Color:      c.Color,
			PaperCount: max(c.PaperCount.Int(), 0),
		})
	}
	return out
}

// applyParameters 规整后写入会议；保存的总是规整后的值
func applyParameters(conv *model.Convention, in planner.Input, cats []model.CategoryEntry, defaults planner.Defaults) {
	p := in.ParametersWith(defaults)

	conv.ConventionDays = p.ConventionDays
	conv.TimeSlotsPerDay = p.StandardTimeSlots
	conv.AvailableRooms = p.StandardRooms
	conv.SessionsPerTimeSlot = p.StandardSessionsPerSlot
	conv.CustomTimeSlots = model.IntArrayFromOverrides(overridesOf(p.TimeSlotsPerDay, p.StandardTimeSlots), p.ConventionDays)
	conv.CustomRooms = model.IntArrayFromOverrides(overridesOf(p.RoomsPerDay, p.StandardRooms), p.ConventionDays)
	conv.CustomSessions = model.IntArrayFromOverrides(overridesOf(p.SessionsPerSlotPerDay, p.StandardSessionsPerSlot), p.ConventionDays)
	conv.TotalPapers = p.TotalPapers
	conv.PapersPerSession = p.PapersPerSession
	conv.MinPapersPerSession = p.MinPapersPerSession
	conv.MaxPapersPerSession = p.MaxPapersPerSession
	conv.TotalRoundTables = p.TotalRoundTables
	conv.RoundTableDuration = p.RoundTableDuration
	conv.Categories = cats
}

// overridesOf 与标准值不同的天
func overridesOf(perDay []int, standard int) map[int]int {
	out := make(map[int]int)
	for i, n := range perDay {
		if n != standard {
			out[i+1] = n
		}
	}
	return out
}

func toConventionResponse(c *model.Convention) *dto.ConventionResponse {
	cats := toCategoryBriefs(c.Categories)
	return &dto.ConventionResponse{
		ID:                    c.ConventionID,
		Name:                  c.Name,
		ConventionDays:        c.ConventionDays,
		TimeSlotsPerDay:       c.TimeSlotsPerDay,
		AvailableRooms:        c.AvailableRooms,
		SessionsPerTimeSlot:   c.SessionsPerTimeSlot,
		CustomTimeSlots:       nonEmpty(c.CustomTimeSlots.DayOverrides()),
		CustomRooms:           nonEmpty(c.CustomRooms.DayOverrides()),
		CustomSessionsPerSlot: nonEmpty(c.CustomSessions.DayOverrides()),
		TotalPapers:           c.TotalPapers,
		PapersPerSession:      c.PapersPerSession,
		MinPapersPerSession:   c.MinPapersPerSession,
		MaxPapersPerSession:   c.MaxPapersPerSession,
		TotalRoundTables:      c.TotalRoundTables,
		RoundTableDuration:    c.RoundTableDuration,
		Categories:            cats,
		HasPasscode:           c.PasscodeHash != nil && *c.PasscodeHash != "",
		Version:               c.Version,
		CreatedAt:             c.CreatedAt.Format(timeLayout),
		UpdatedAt:             c.UpdatedAt.Format(timeLayout),
	}
}

func nonEmpty(m map[int]int) map[int]int {
	if len(m) == 0 {
		return nil
	}
	return m
}
