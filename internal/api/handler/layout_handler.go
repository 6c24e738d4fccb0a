package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// LayoutHandler 网格摆放 HTTP 处理器
type LayoutHandler struct {
	layoutSvc service.LayoutService
}

// NewLayoutHandler 创建 LayoutHandler
func NewLayoutHandler(layoutSvc service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layoutSvc: layoutSvc}
}

// AutoPopulate 自动摆放全部场次（覆盖现有摆放）
// POST /api/v1/conventions/:id/layout/auto
func (h *LayoutHandler) AutoPopulate(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	grid, err := h.layoutSvc.AutoPopulate(c.Request.Context(), id)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, grid)
}

// AssignRoundTable 将圆桌放到指定位置（已摆放则移动）
// POST /api/v1/conventions/:id/layout/round-tables
func (h *LayoutHandler) AssignRoundTable(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.AssignRoundTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	placement, err := h.layoutSvc.AssignRoundTable(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, placement)
}

// AssignRoundTableToSlot 将圆桌放到某时段第一个空位
// POST /api/v1/conventions/:id/layout/round-tables/slot
func (h *LayoutHandler) AssignRoundTableToSlot(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.AssignRoundTableToSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	placement, err := h.layoutSvc.AssignRoundTableToSlot(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, placement)
}

// AssignPaperSession 在空位放入下一个未摆放的论文场次
// POST /api/v1/conventions/:id/layout/paper-sessions
func (h *LayoutHandler) AssignPaperSession(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	placement, err := h.layoutSvc.AssignPaperSession(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, placement)
}

// RemoveAt 移除某位置上的场次
// POST /api/v1/conventions/:id/layout/remove
func (h *LayoutHandler) RemoveAt(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	removed, err := h.layoutSvc.RemoveAt(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, removed)
}

// Clear 清空全部摆放
// DELETE /api/v1/conventions/:id/layout
func (h *LayoutHandler) Clear(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	if err := h.layoutSvc.Clear(c.Request.Context(), id); err != nil {
		h.handleLayoutError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleLayoutError 统一处理网格摆放业务错误
func (h *LayoutHandler) handleLayoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPositionOccupied):
		response.Conflict(c, 13001, "该位置已被占用")
	case errors.Is(err, service.ErrPositionOutOfRange):
		response.BadRequest(c, 13002, "位置超出当天网格范围")
	case errors.Is(err, service.ErrPositionEmpty):
		response.NotFound(c, 13003, "该位置没有场次")
	case errors.Is(err, service.ErrRoundTableNotFound):
		response.NotFound(c, 13004, "圆桌不存在")
	case errors.Is(err, service.ErrRoundTableDoesNotFit):
		response.BadRequest(c, 13005, "当天剩余时段不足以容纳该圆桌")
	case errors.Is(err, service.ErrAllSessionsPlaced):
		response.Conflict(c, 13006, "所有论文场次均已摆放")
	default:
		handleConventionError(c, err)
	}
}
