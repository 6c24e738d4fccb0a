package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// PaperHandler 论文模块 HTTP 处理器
type PaperHandler struct {
	paperSvc service.PaperService
}

// NewPaperHandler 创建 PaperHandler
func NewPaperHandler(paperSvc service.PaperService) *PaperHandler {
	return &PaperHandler{paperSvc: paperSvc}
}

// ListPapers 论文列表
// GET /api/v1/conventions/:id/papers
func (h *PaperHandler) ListPapers(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	papers, err := h.paperSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.OK(c, gin.H{"list": papers})
}

// CreatePaper 新增论文
// POST /api/v1/conventions/:id/papers
func (h *PaperHandler) CreatePaper(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.CreatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	paper, err := h.paperSvc.Create(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.Created(c, paper)
}

// UpdatePaper 更新论文
// PUT /api/v1/conventions/:id/papers/:paper_id
func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	paper, err := h.paperSvc.Update(c.Request.Context(), id, c.Param("paper_id"), &req)
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.OK(c, paper)
}

// DeletePaper 删除论文（同时移出所在场次）
// DELETE /api/v1/conventions/:id/papers/:paper_id
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	if err := h.paperSvc.Delete(c.Request.Context(), id, c.Param("paper_id")); err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportPapers 批量导入论文
// POST /api/v1/conventions/:id/papers/import
//
// multipart/form-data, field="file"；按扩展名识别 .csv 与 .xlsx
func (h *PaperHandler) ImportPapers(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 14000, "请上传 CSV 或 Excel 文件")
		return
	}
	defer file.Close()

	var result *dto.ImportResult
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		result, err = h.paperSvc.ImportCSV(c.Request.Context(), id, file)
	case ".xlsx":
		result, err = h.paperSvc.ImportXLSX(c.Request.Context(), id, file)
	default:
		response.BadRequest(c, 14000, "仅支持 .csv 与 .xlsx 文件")
		return
	}
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportPapers 导出论文 CSV
// GET /api/v1/conventions/:id/papers/export
func (h *PaperHandler) ExportPapers(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	data, err := h.paperSvc.ExportCSV(c.Request.Context(), id)
	if err != nil {
		h.handlePaperError(c, err)
		return
	}

	response.Attachment(c, "papers.csv", "text/csv; charset=utf-8", data)
}

// handlePaperError 统一处理论文模块业务错误
func (h *PaperHandler) handlePaperError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaperNotFound):
		response.NotFound(c, 14001, "论文不存在")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 14002, "导入文件无数据行（第一行为表头）")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 14003, "导入文件表头缺少必要列（title/student/school）")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 14004, "导入数据行数超过上限")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 14005, "无法解析导入文件")
	default:
		handleConventionError(c, err)
	}
}
