package service

import (
	"go.uber.org/zap"

	"convention-planner/config"
	"convention-planner/internal/repository"
	"convention-planner/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Convention    ConventionService
	Auth          AuthService
	Plan          PlanService
	Layout        LayoutService
	Paper         PaperService
	Assignment    AssignmentService
	People        PeopleService
	Customization CustomizationService
	Label         LabelService
}

// NewService 创建 Service 聚合；revoker 为 nil 时（未配置 Redis）令牌撤销不可用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) *Service {
	defaults := cfg.Planner.Defaults()
	plan := NewPlanService(repo, defaults, logger)

	return &Service{
		Convention:    NewConventionService(cfg, repo, jwtMgr, logger),
		Auth:          NewAuthService(cfg, repo, jwtMgr, revoker, logger),
		Plan:          plan,
		Layout:        NewLayoutService(repo, plan, defaults, logger),
		Paper:         NewPaperService(repo, cfg.Planner.MaxImportRows, logger),
		Assignment:    NewAssignmentService(repo, defaults, logger),
		People:        NewPeopleService(repo, defaults, logger),
		Customization: NewCustomizationService(repo, defaults, logger),
		Label:         NewLabelService(&cfg.Planner, repo, logger),
	}
}
