package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"convention-planner/config"
	"convention-planner/internal/dto"
	"convention-planner/internal/repository"
	pkgerrors "convention-planner/pkg/errors"
	"convention-planner/pkg/jwt"
)

var (
	ErrPasscodeNotSet        = errors.New("该会议未设置口令")
	ErrInvalidPasscode       = errors.New("口令错误")
	ErrRevocationUnavailable = errors.New("令牌撤销服务不可用")
)

// TokenRevoker 编辑令牌撤销列表（Redis 实现见 pkg/redis）
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 会议编辑权限接口
type AuthService interface {
	// 用口令换取编辑令牌
	IssueEditToken(ctx context.Context, conventionID string, req *dto.EditTokenRequest) (*dto.EditTokenResponse, error)
	// 撤销当前令牌
	RevokeEditToken(ctx context.Context, claims *jwt.Claims) error
	// 设置或清除口令（需持有编辑令牌）
	ChangePasscode(ctx context.Context, conventionID string, req *dto.ChangePasscodeRequest) error
}

type authService struct {
	cfg     *config.Config
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService 创建 AuthService 实例；revoker 为 nil 时撤销不可用
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:     cfg,
		repo:    repo,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		logger:  logger,
	}
}

func (s *authService) IssueEditToken(ctx context.Context, conventionID string, req *dto.EditTokenRequest) (*dto.EditTokenResponse, error) {
	// 1. 查询会议
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}

	// 2. 验证口令 (bcrypt)
	if conv.PasscodeHash == nil || *conv.PasscodeHash == "" {
		return nil, ErrPasscodeNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*conv.PasscodeHash), []byte(req.Passcode)); err != nil {
		return nil, ErrInvalidPasscode
	}

	// 3. 签发令牌
	token, err := issueEditToken(s.jwtMgr, conv.ConventionID)
	if err != nil {
		s.logger.Error("生成编辑令牌失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	return token, nil
}

func (s *authService) RevokeEditToken(ctx context.Context, claims *jwt.Claims) error {
	if s.revoker == nil {
		return ErrRevocationUnavailable
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoker.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("撤销编辑令牌失败", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}

	s.logger.Info("编辑令牌已撤销", zap.String("convention_id", claims.ConventionID), zap.String("jti", claims.ID))
	return nil
}

func (s *authService) ChangePasscode(ctx context.Context, conventionID string, req *dto.ChangePasscodeRequest) error {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return err
	}

	if req.Passcode == "" {
		conv.PasscodeHash = nil
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), passcodeCost(s.cfg))
		if err != nil {
			s.logger.Error("口令哈希失败", zap.Error(err))
			return err
		}
		h := string(hash)
		conv.PasscodeHash = &h
	}

	if err := s.repo.Convention.Update(ctx, conv); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrConventionVersionConflict
		}
		s.logger.Error("更新口令失败", zap.String("convention_id", conventionID), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助 ──

func issueEditToken(jwtMgr *jwt.Manager, conventionID string) (*dto.EditTokenResponse, error) {
	token, claims, err := jwtMgr.GenerateEditToken(conventionID)
	if err != nil {
		return nil, err
	}
	return &dto.EditTokenResponse{
		ConventionID: conventionID,
		EditToken:    token,
		ExpiresAt:    claims.ExpiresAt.Time.UTC().Format(timeLayout),
	}, nil
}

func passcodeCost(cfg *config.Config) int {
	cost := cfg.Auth.PasscodeCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
