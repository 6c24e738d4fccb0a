package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// AssignmentHandler 论文分场 HTTP 处理器
type AssignmentHandler struct {
	assignSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignSvc: assignSvc}
}

// ListAssignments 各论文场次及未分配论文
// GET /api/v1/conventions/:id/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	result, err := h.assignSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignPaper 将论文分到场次（从原场次移出）
// POST /api/v1/conventions/:id/assignments
func (h *AssignmentHandler) AssignPaper(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.AssignPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.assignSvc.Assign(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, session)
}

// RemovePaper 将论文移出场次
// DELETE /api/v1/conventions/:id/assignments/:session/:paper_id
func (h *AssignmentHandler) RemovePaper(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	sessionNumber, err := strconv.Atoi(c.Param("session"))
	if err != nil || sessionNumber < 1 {
		response.BadRequest(c, 10001, "场次编号无效")
		return
	}

	if err := h.assignSvc.Remove(c.Request.Context(), id, sessionNumber, c.Param("paper_id")); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// AutoAssign 按分类顺序自动分配全部论文（覆盖现有分配）
// POST /api/v1/conventions/:id/assignments/auto
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	result, err := h.assignSvc.AutoAssign(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// ClearAssignments 清空全部分配
// DELETE /api/v1/conventions/:id/assignments
func (h *AssignmentHandler) ClearAssignments(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Clear(c.Request.Context(), id); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAssignmentError 统一处理论文分场业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 15001, "论文场次不存在")
	case errors.Is(err, service.ErrSessionFull):
		response.Conflict(c, 15002, "论文场次已满")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15003, "该论文不在此场次中")
	case errors.Is(err, service.ErrPaperNotFound):
		response.NotFound(c, 14001, "论文不存在")
	default:
		handleConventionError(c, err)
	}
}
