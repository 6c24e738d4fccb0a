package handler

import (
	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// ConventionHandler 会议模块 HTTP 处理器
type ConventionHandler struct {
	convSvc service.ConventionService
}

// NewConventionHandler 创建 ConventionHandler
func NewConventionHandler(convSvc service.ConventionService) *ConventionHandler {
	return &ConventionHandler{convSvc: convSvc}
}

// CreateConvention 创建会议（返回编辑令牌）
// POST /api/v1/conventions
func (h *ConventionHandler) CreateConvention(c *gin.Context) {
	var req dto.CreateConventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.convSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleConventionError(c, err)
		return
	}

	response.Created(c, result)
}

// ListConventions 会议列表（分页）
// GET /api/v1/conventions
func (h *ConventionHandler) ListConventions(c *gin.Context) {
	var req dto.ConventionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.convSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetConvention 会议详情
// GET /api/v1/conventions/:id
func (h *ConventionHandler) GetConvention(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	conv, err := h.convSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleConventionError(c, err)
		return
	}

	response.OK(c, conv)
}

// UpdateConvention 更新会议参数
// PUT /api/v1/conventions/:id
func (h *ConventionHandler) UpdateConvention(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdateConventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	conv, err := h.convSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleConventionError(c, err)
		return
	}

	response.OK(c, conv)
}

// DeleteConvention 删除会议
// DELETE /api/v1/conventions/:id
func (h *ConventionHandler) DeleteConvention(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	if err := h.convSvc.Delete(c.Request.Context(), id); err != nil {
		handleConventionError(c, err)
		return
	}

	response.OK(c, nil)
}
