package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// AuthHandler 编辑权限 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// IssueEditToken 用口令换取编辑令牌
// POST /api/v1/conventions/:id/edit-token
func (h *AuthHandler) IssueEditToken(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.EditTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.IssueEditToken(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RevokeEditToken 撤销当前编辑令牌
// DELETE /api/v1/conventions/:id/edit-token
func (h *AuthHandler) RevokeEditToken(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.RevokeEditToken(c.Request.Context(), claims); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ChangePasscode 设置或清除会议口令
// PUT /api/v1/conventions/:id/passcode
func (h *AuthHandler) ChangePasscode(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.ChangePasscodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePasscode(c.Request.Context(), id, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAuthError 统一处理编辑权限业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPasscode):
		response.Error(c, http.StatusUnauthorized, 11001, "口令错误")
	case errors.Is(err, service.ErrPasscodeNotSet):
		response.Forbidden(c, 11002, "该会议未设置口令，无法签发编辑令牌")
	case errors.Is(err, service.ErrRevocationUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 11003, "令牌撤销服务不可用")
	default:
		handleConventionError(c, err)
	}
}
