package handler

import (
	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// PlanHandler 排期计算 HTTP 处理器
type PlanHandler struct {
	planSvc service.PlanService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// Calculate 无状态排期计算
// POST /api/v1/plans/calculate
//
// 所有数值字段宽松解析，无法识别的值按缺省值处理，因此只有 JSON 结构错误才返回 400。
func (h *PlanHandler) Calculate(c *gin.Context) {
	var req dto.PlanParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, h.planSvc.Calculate(&req))
}

// GetPlan 按已保存参数计算会议排期
// GET /api/v1/conventions/:id/plan
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.GetPlan(c.Request.Context(), id)
	if err != nil {
		handleConventionError(c, err)
		return
	}

	response.OK(c, plan)
}

// GetGrid 获取排期网格
// GET /api/v1/conventions/:id/grid
func (h *PlanHandler) GetGrid(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	grid, err := h.planSvc.GetGrid(c.Request.Context(), id)
	if err != nil {
		handleConventionError(c, err)
		return
	}

	response.OK(c, grid)
}
