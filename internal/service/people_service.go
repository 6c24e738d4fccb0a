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

// ── 人员 / 会议室业务错误 ──

var (
	ErrPersonNotFound = errors.New("人员不存在")
	ErrInvalidRole    = errors.New("角色无效（moderator / chair）")
	ErrRoomOutOfRange = errors.New("会议室编号超出会议室数量")
)

// PeopleService 主持人、主席与会议室名称接口
type PeopleService interface {
	Create(ctx context.Context, conventionID, role string, req *dto.PersonRequest) (*dto.PersonResponse, error)
	List(ctx context.Context, conventionID, role string) ([]dto.PersonResponse, error)
	Update(ctx context.Context, conventionID, role, id string, req *dto.PersonRequest) (*dto.PersonResponse, error)
	Delete(ctx context.Context, conventionID, role, id string) error

	ListRooms(ctx context.Context, conventionID string) ([]dto.RoomResponse, error)
	UpdateRooms(ctx context.Context, conventionID string, req *dto.UpdateRoomNamesRequest) ([]dto.RoomResponse, error)
}

type peopleService struct {
	repo     *repository.Repository
	defaults planner.Defaults
	logger   *zap.Logger
}

// NewPeopleService 创建 PeopleService 实例
func NewPeopleService(repo *repository.Repository, defaults planner.Defaults, logger *zap.Logger) PeopleService {
	return &peopleService{repo: repo, defaults: defaults, logger: logger}
}

// ValidRole 角色是否为 moderator / chair
func ValidRole(role string) bool {
	return role == model.RoleModerator || role == model.RoleChair
}

// ────────────────────── Create ──────────────────────

func (s *peopleService) Create(ctx context.Context, conventionID, role string, req *dto.PersonRequest) (*dto.PersonResponse, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return nil, err
	}

	p := &model.Person{
		ConventionID: conventionID,
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		School:       strings.TrimSpace(req.School),
		Email:        strings.TrimSpace(req.Email),
	}
	if err := s.repo.Person.Create(ctx, p); err != nil {
		s.logger.Error("创建人员失败", zap.String("convention_id", conventionID), zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return toPersonResponse(p), nil
}

// ────────────────────── List ──────────────────────

func (s *peopleService) List(ctx context.Context, conventionID, role string) ([]dto.PersonResponse, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	list, err := s.repo.Person.ListByConvention(ctx, conventionID, role)
	if err != nil {
		s.logger.Error("列出人员失败", zap.String("convention_id", conventionID), zap.String("role", role), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PersonResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPersonResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *peopleService) Update(ctx context.Context, conventionID, role, id string, req *dto.PersonRequest) (*dto.PersonResponse, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	p, err := s.repo.Person.GetByID(ctx, conventionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		s.logger.Error("查询人员失败", zap.String("person_id", id), zap.Error(err))
		return nil, err
	}
	if p.Role != role {
		return nil, ErrPersonNotFound
	}

	p.Name = strings.TrimSpace(req.Name)
	p.School = strings.TrimSpace(req.School)
	p.Email = strings.TrimSpace(req.Email)

	if err := s.repo.Person.Update(ctx, p); err != nil {
		s.logger.Error("更新人员失败", zap.String("person_id", id), zap.Error(err))
		return nil, err
	}
	return toPersonResponse(p), nil
}

// ────────────────────── Delete ──────────────────────

func (s *peopleService) Delete(ctx context.Context, conventionID, role, id string) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.repo.Person.Delete(ctx, conventionID, role, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPersonNotFound
		}
		s.logger.Error("删除人员失败", zap.String("person_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 会议室名称
// ════════════════════════════════════════════════════════════

func (s *peopleService) ListRooms(ctx context.Context, conventionID string) ([]dto.RoomResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.RoomName.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("查询会议室名称失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	return buildRooms(maxRooms(conventionParameters(conv, s.defaults)), names), nil
}

// UpdateRooms 整体替换会议室名称；空名称恢复默认 "Room n"
func (s *peopleService) UpdateRooms(ctx context.Context, conventionID string, req *dto.UpdateRoomNamesRequest) ([]dto.RoomResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	count := maxRooms(conventionParameters(conv, s.defaults))

	// 同一编号以最后一次为准
	byNumber := make(map[int]string, len(req.Rooms))
	var order []int
	for _, r := range req.Rooms {
		if r.RoomNumber < 1 || r.RoomNumber > count {
			return nil, ErrRoomOutOfRange
		}
		if _, ok := byNumber[r.RoomNumber]; !ok {
			order = append(order, r.RoomNumber)
		}
		byNumber[r.RoomNumber] = strings.TrimSpace(r.Name)
	}

	names := make([]model.RoomName, 0, len(order))
	for _, n := range order {
		if byNumber[n] == "" {
			continue
		}
		names = append(names, model.RoomName{ConventionID: conventionID, RoomNumber: n, Name: byNumber[n]})
	}

	if err := s.repo.RoomName.Replace(ctx, conventionID, names); err != nil {
		s.logger.Error("保存会议室名称失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	return buildRooms(count, names), nil
}

func toPersonResponse(p *model.Person) *dto.PersonResponse {
	return &dto.PersonResponse{
		ID:     p.PersonID,
		Role:   p.Role,
		Name:   p.Name,
		School: p.School,
		Email:  p.Email,
	}
}
