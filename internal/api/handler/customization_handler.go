package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// CustomizationHandler 场次定制 HTTP 处理器
type CustomizationHandler struct {
	customSvc service.CustomizationService
}

// NewCustomizationHandler 创建 CustomizationHandler
func NewCustomizationHandler(customSvc service.CustomizationService) *CustomizationHandler {
	return &CustomizationHandler{customSvc: customSvc}
}

// ListCustomizations 场次定制列表
// GET /api/v1/conventions/:id/customizations
func (h *CustomizationHandler) ListCustomizations(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	list, err := h.customSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handleCustomizationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCustomization 单个位置的场次定制
// GET /api/v1/conventions/:id/customizations/:key
func (h *CustomizationHandler) GetCustomization(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	custom, err := h.customSvc.Get(c.Request.Context(), id, c.Param("key"))
	if err != nil {
		h.handleCustomizationError(c, err)
		return
	}

	response.OK(c, custom)
}

// UpsertCustomization 新增或覆盖场次定制
// PUT /api/v1/conventions/:id/customizations/:key
func (h *CustomizationHandler) UpsertCustomization(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpsertCustomizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	custom, err := h.customSvc.Upsert(c.Request.Context(), id, c.Param("key"), &req)
	if err != nil {
		h.handleCustomizationError(c, err)
		return
	}

	response.OK(c, custom)
}

// DeleteCustomization 删除场次定制
// DELETE /api/v1/conventions/:id/customizations/:key
func (h *CustomizationHandler) DeleteCustomization(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	if err := h.customSvc.Delete(c.Request.Context(), id, c.Param("key")); err != nil {
		h.handleCustomizationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCustomizationError 统一处理场次定制业务错误
func (h *CustomizationHandler) handleCustomizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPositionKey):
		response.BadRequest(c, 17001, "位置键无效")
	case errors.Is(err, service.ErrCustomizationNotFound):
		response.NotFound(c, 17002, "场次定制不存在")
	case errors.Is(err, service.ErrModeratorNotFound):
		response.BadRequest(c, 17003, "主持人不存在")
	case errors.Is(err, service.ErrChairNotFound):
		response.BadRequest(c, 17004, "主席不存在")
	case errors.Is(err, service.ErrPreferredRoomOutOfRange):
		response.BadRequest(c, 17005, "首选会议室超出当天会议室数量")
	case errors.Is(err, service.ErrPositionOutOfRange):
		response.BadRequest(c, 13002, "位置超出当天网格范围")
	default:
		handleConventionError(c, err)
	}
}
