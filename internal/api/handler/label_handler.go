package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// LabelHandler 标签与开始时间 HTTP 处理器
type LabelHandler struct {
	labelSvc service.LabelService
}

// NewLabelHandler 创建 LabelHandler
func NewLabelHandler(labelSvc service.LabelService) *LabelHandler {
	return &LabelHandler{labelSvc: labelSvc}
}

// GetLabels 全部标签与开始时间
// GET /api/v1/conventions/:id/labels
func (h *LabelHandler) GetLabels(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	labels, err := h.labelSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}

	response.OK(c, labels)
}

// UpdateSlotLabels 设置某天的时段标签
// PUT /api/v1/conventions/:id/labels/slots
func (h *LabelHandler) UpdateSlotLabels(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdateSlotLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	labels, err := h.labelSvc.UpdateSlotLabels(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}

	response.OK(c, labels)
}

// UpdateSessionLabels 合并场次标签
// PUT /api/v1/conventions/:id/labels/sessions
func (h *LabelHandler) UpdateSessionLabels(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdateSessionLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	labels, err := h.labelSvc.UpdateSessionLabels(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}

	response.OK(c, labels)
}

// UpdateSlotTimes 合并时段开始时间
// PUT /api/v1/conventions/:id/labels/times
func (h *LabelHandler) UpdateSlotTimes(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdateSlotTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	labels, err := h.labelSvc.UpdateSlotTimes(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}

	response.OK(c, labels)
}

// AutoSlotTimes 按场次时长与间隔自动生成开始时间
// POST /api/v1/conventions/:id/labels/times/auto
func (h *LabelHandler) AutoSlotTimes(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	// 请求体可省略，全部使用配置缺省值
	var req dto.AutoSlotTimesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	labels, err := h.labelSvc.AutoSlotTimes(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}

	response.OK(c, labels)
}

// ImportSlotTimesICS 从会场日历导入开始时间
// POST /api/v1/conventions/:id/labels/times/ics
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *LabelHandler) ImportSlotTimesICS(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		result, err := h.labelSvc.ImportSlotTimesICS(c.Request.Context(), id, file)
		if err != nil {
			h.handleLabelError(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 18000, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	body, err := service.FetchICSContent(c.Request.Context(), req.URL)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 18008, "ICS URL 获取失败", err.Error())
		return
	}
	defer body.Close()

	result, err := h.labelSvc.ImportSlotTimesICS(c.Request.Context(), id, body)
	if err != nil {
		h.handleLabelError(c, err)
		return
	}
	response.OK(c, result)
}

// handleLabelError 统一处理标签与开始时间业务错误
func (h *LabelHandler) handleLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDayOutOfRange):
		response.BadRequest(c, 18001, "天序号超出会议天数")
	case errors.Is(err, service.ErrSlotOutOfRange):
		response.BadRequest(c, 18002, "时段序号超出当天时段数")
	case errors.Is(err, service.ErrInvalidSessionLabel):
		response.BadRequest(c, 18003, "场次标签键无效")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 18004, "时间格式无效（HH:MM）")
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 18005, "ICS 中没有可用的定时事件")
	case errors.Is(err, service.ErrICSInvalid):
		response.BadRequest(c, 18006, "ICS 文件无法解析")
	case errors.Is(err, service.ErrTooManySlotLabels):
		response.BadRequest(c, 18007, "标签数量超过当天时段数")
	default:
		handleConventionError(c, err)
	}
}
