package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/repository"
)

// ── 论文模块业务错误 ──

var (
	ErrPaperNotFound     = errors.New("论文不存在")
	ErrImportNoData      = errors.New("导入文件无数据行（第一行为表头）")
	ErrImportBadHeader   = errors.New("导入文件表头缺少必要列（title/student/school）")
	ErrImportTooManyRows = errors.New("导入数据行数超过上限")
	ErrImportBadFile     = errors.New("无法解析导入文件")
)

// PaperService 论文业务接口
type PaperService interface {
	Create(ctx context.Context, conventionID string, req *dto.CreatePaperRequest) (*dto.PaperResponse, error)
	List(ctx context.Context, conventionID string) ([]dto.PaperResponse, error)
	Update(ctx context.Context, conventionID, id string, req *dto.UpdatePaperRequest) (*dto.PaperResponse, error)
	Delete(ctx context.Context, conventionID, id string) error

	ImportCSV(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error)
	ImportXLSX(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error)
	ExportCSV(ctx context.Context, conventionID string) ([]byte, error)
}

type paperService struct {
	repo          *repository.Repository
	maxImportRows int
	logger        *zap.Logger
}

// NewPaperService 创建 PaperService 实例；maxImportRows ≤ 0 表示不限制
func NewPaperService(repo *repository.Repository, maxImportRows int, logger *zap.Logger) PaperService {
	return &paperService{repo: repo, maxImportRows: maxImportRows, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *paperService) Create(ctx context.Context, conventionID string, req *dto.CreatePaperRequest) (*dto.PaperResponse, error) {
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return nil, err
	}

	paper := &model.Paper{
		ConventionID: conventionID,
		Title:        strings.TrimSpace(req.Title),
		StudentName:  strings.TrimSpace(req.StudentName),
		School:       strings.TrimSpace(req.School),
		Category:     paperCategory(req.Category),
	}
	if err := s.repo.Paper.Create(ctx, paper); err != nil {
		s.logger.Error("创建论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	return toPaperResponse(paper), nil
}

// ────────────────────── List ──────────────────────

func (s *paperService) List(ctx context.Context, conventionID string) ([]dto.PaperResponse, error) {
	papers, err := s.repo.Paper.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("列出论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PaperResponse, 0, len(papers))
	for i := range papers {
		result = append(result, *toPaperResponse(&papers[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *paperService) Update(ctx context.Context, conventionID, id string, req *dto.UpdatePaperRequest) (*dto.PaperResponse, error) {
	paper, err := s.repo.Paper.GetByID(ctx, conventionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		s.logger.Error("查询论文失败", zap.String("paper_id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		paper.Title = strings.TrimSpace(*req.Title)
	}
	if req.StudentName != nil {
		paper.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.School != nil {
		paper.School = strings.TrimSpace(*req.School)
	}
	if req.Category != nil {
		paper.Category = paperCategory(*req.Category)
	}

	if err := s.repo.Paper.Update(ctx, paper); err != nil {
		s.logger.Error("更新论文失败", zap.String("paper_id", id), zap.Error(err))
		return nil, err
	}
	return toPaperResponse(paper), nil
}

// ────────────────────── Delete ──────────────────────

func (s *paperService) Delete(ctx context.Context, conventionID, id string) error {
	if err := s.repo.Paper.Delete(ctx, conventionID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaperNotFound
		}
		s.logger.Error("删除论文失败", zap.String("paper_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 导入 / 导出
// ════════════════════════════════════════════════════════════

// ImportCSV 导入 CSV：表头需包含 title、student、school，category 可选
func (s *paperService) ImportCSV(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	return s.importRecords(ctx, conventionID, records)
}

// ImportXLSX 导入 Excel 第一个工作表，表头规则与 CSV 相同
func (s *paperService) ImportXLSX(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	return s.importRecords(ctx, conventionID, records)
}

// paperRow 导入的一行
type paperRow struct {
	Row      int
	Title    string
	Student  string
	School   string
	Category string
}

func (s *paperService) importRecords(ctx context.Context, conventionID string, records [][]string) (*dto.ImportResult, error) {
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return nil, err
	}

	rows, err := parsePaperRows(records)
	if err != nil {
		return nil, err
	}
	if s.maxImportRows > 0 && len(rows) > s.maxImportRows {
		return nil, fmt.Errorf("%w（%d 行）", ErrImportTooManyRows, s.maxImportRows)
	}

	// 第一阶段：逐行校验
	result := &dto.ImportResult{}
	papers := make([]model.Paper, 0, len(rows))
	for _, row := range rows {
		if row.Title == "" || row.Student == "" || row.School == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 标题、学生、学校不能为空", row.Row))
			continue
		}
		papers = append(papers, model.Paper{
			ConventionID: conventionID,
			Title:        row.Title,
			StudentName:  row.Student,
			School:       row.School,
			Category:     paperCategory(row.Category),
		})
	}

	// 第二阶段：批量写入
	if err := s.repo.Paper.BatchCreate(ctx, papers); err != nil {
		s.logger.Error("批量导入论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}
	result.Imported = len(papers)

	s.logger.Info("论文导入完成",
		zap.String("convention_id", conventionID),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// parsePaperRows 解析表头（列序不限）与数据行；全空行被跳过
func parsePaperRows(records [][]string) ([]paperRow, error) {
	if len(records) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parsePaperHeader(records[0])
	if colIndex["title"] < 0 || colIndex["student"] < 0 || colIndex["school"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(record []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var rows []paperRow
	for i := 1; i < len(records); i++ {
		row := paperRow{
			Row:      i + 1,
			Title:    cell(records[i], "title"),
			Student:  cell(records[i], "student"),
			School:   cell(records[i], "school"),
			Category: cell(records[i], "category"),
		}
		if row.Title == "" && row.Student == "" && row.School == "" && row.Category == "" {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	return rows, nil
}

// parsePaperHeader 表头 → 列索引，缺失为 -1
func parsePaperHeader(header []string) map[string]int {
	idx := map[string]int{
		"title":    -1,
		"student":  -1,
		"school":   -1,
		"category": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch lower {
		case "title", "标题":
			idx["title"] = i
		case "student", "student name", "学生":
			idx["student"] = i
		case "school", "学校":
			idx["school"] = i
		case "category", "分类":
			idx["category"] = i
		}
	}
	return idx
}

// ExportCSV 导出 Title,Student,School,Category
func (s *paperService) ExportCSV(ctx context.Context, conventionID string) ([]byte, error) {
	if _, err := loadConvention(ctx, s.repo, s.logger, conventionID); err != nil {
		return nil, err
	}
	papers, err := s.repo.Paper.ListByConvention(ctx, conventionID)
	if err != nil {
		s.logger.Error("列出论文失败", zap.String("convention_id", conventionID), zap.Error(err))
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Title", "Student", "School", "Category"})
	for _, p := range papers {
		_ = w.Write([]string{p.Title, p.StudentName, p.School, p.Category})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── 辅助 ──

func paperCategory(c string) string {
	if c = strings.TrimSpace(c); c != "" {
		return c
	}
	return model.DefaultPaperCategory
}

func toPaperResponse(p *model.Paper) *dto.PaperResponse {
	return &dto.PaperResponse{
		ID:          p.PaperID,
		Title:       p.Title,
		StudentName: p.StudentName,
		School:      p.School,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt.Format(timeLayout),
	}
}
