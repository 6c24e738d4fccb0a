package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
)

// ── 场次定制业务错误 ──

var (
	ErrInvalidPositionKey      = errors.New("位置键无效（dayD_slotS_posP）")
	ErrCustomizationNotFound   = errors.New("场次定制不存在")
	ErrModeratorNotFound       = errors.New("主持人不存在")
	ErrChairNotFound           = errors.New("主席不存在")
	ErrPreferredRoomOutOfRange = errors.New("首选会议室超出当天会议室数量")
)

// CustomizationService 按位置的场次定制接口
type CustomizationService interface {
	List(ctx context.Context, conventionID string) ([]dto.CustomizationResponse, error)
	Get(ctx context.Context, conventionID, positionKey string) (*dto.CustomizationResponse, error)
	Upsert(ctx context.Context, conventionID, positionKey string, req *dto.UpsertCustomizationRequest) (*dto.CustomizationResponse, error)
	Delete(ctx context.Context, conventionID, positionKey string) error
}

type customizationService struct {
	repo     *repository.Repository
	defaults planner.Defaults
	logger   *zap.Logger
}

// NewCustomizationService 创建 CustomizationService 实例
func NewCustomizationService(repo *repository.Repository, defaults planner.Defaults, logger *zap.Logger) CustomizationService {
	return &customizationService{repo: repo, defaults: defaults, logger: logger}
}

func (s *customizationService) List(ctx context.Context, conventionID string) ([]dto.CustomizationResponse, error) {
	list, err := s.repo.Customization.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("查询场次定制失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CustomizationResponse, 0, len(list))
	for i := range list {
		result = append(result, toCustomizationResponse(&list[i]))
	}
	return result, nil
}

func (s *customizationService) Get(ctx context.Context, conventionID, positionKey string) (*dto.CustomizationResponse, error) {
	if _, ok := planner.ParsePositionKey(positionKey); !ok {
		return nil, ErrInvalidPositionKey
	}
	c, err := s.repo.Customization.GetByKey(ctx, conventionID, positionKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomizationNotFound
		}
		s.logger.Error("查询场次定制失败", zap.String("position_key", positionKey), zap.Error(err))
		return nil, err
	}
	resp := toCustomizationResponse(c)
	return &resp, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *customizationService) Upsert(ctx context.Context, conventionID, positionKey string, req *dto.UpsertCustomizationRequest) (*dto.CustomizationResponse, error) {
	// 1. 位置校验
	pos, ok := planner.ParsePositionKey(positionKey)
	if !ok {
		return nil, ErrInvalidPositionKey
	}
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.defaults)
	if !p.InRange(pos) {
		return nil, ErrPositionOutOfRange
	}
	if _, rooms, _ := p.Day(pos.Day); req.PreferredRoom > rooms {
		return nil, ErrPreferredRoomOutOfRange
	}

	// 2. 主持人 / 主席校验
	if err := s.checkPerson(ctx, conventionID, req.ModeratorID, model.RoleModerator, ErrModeratorNotFound); err != nil {
		return nil, err
	}
	if err := s.checkPerson(ctx, conventionID, req.ChairID, model.RoleChair, ErrChairNotFound); err != nil {
		return nil, err
	}

	// 3. 写入
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = string(planner.SessionTypePaper)
	}
	c := &model.SessionCustomization{
		ConventionID:  conventionID,
		PositionKey:   positionKey,
		SessionType:   sessionType,
		PaperCount:    req.PaperCount,
		Category:      strings.TrimSpace(req.Category),
		PreferredRoom: req.PreferredRoom,
		Notes:         strings.TrimSpace(req.Notes),
		ModeratorID:   req.ModeratorID,
		ChairID:       req.ChairID,
	}
	if err := s.repo.Customization.Upsert(ctx, c); err != nil {
		s.logger.Error("保存场次定制失败", zap.String("position_key", positionKey), zap.Error(err))
		return nil, err
	}

	return s.Get(ctx, conventionID, positionKey)
}

func (s *customizationService) checkPerson(ctx context.Context, conventionID string, id *string, role string, notFound error) error {
	if id == nil {
		return nil
	}
	p, err := s.repo.Person.GetByID(ctx, conventionID, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		s.logger.Error("查询人员失败", zap.String("person_id", *id), zap.Error(err))
		return err
	}
	if p.Role != role {
		return notFound
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *customizationService) Delete(ctx context.Context, conventionID, positionKey string) error {
	if _, ok := planner.ParsePositionKey(positionKey); !ok {
		return ErrInvalidPositionKey
	}
	if err := s.repo.Customization.Delete(ctx, conventionID, positionKey); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomizationNotFound
		}
		s.logger.Error("删除场次定制失败", zap.String("position_key", positionKey), zap.Error(err))
		return err
	}
	return nil
}

func toCustomizationResponse(c *model.SessionCustomization) dto.CustomizationResponse {
	resp := dto.CustomizationResponse{
		PositionKey:   c.PositionKey,
		SessionType:   c.SessionType,
		PaperCount:    c.PaperCount,
		Category:      c.Category,
		PreferredRoom: c.PreferredRoom,
		Notes:         c.Notes,
	}
	if c.Moderator != nil {
		resp.Moderator = toPersonResponse(c.Moderator)
	}
	if c.Chair != nil {
		resp.Chair = toPersonResponse(c.Chair)
	}
	return resp
}
