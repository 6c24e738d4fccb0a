package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"convention-planner/config"
	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/repository"
	pkgerrors "convention-planner/pkg/errors"
)

// ── 标签模块业务错误 ──

var (
	ErrDayOutOfRange       = errors.New("天序号超出会议天数")
	ErrSlotOutOfRange      = errors.New("时段序号超出当天时段数")
	ErrInvalidSessionLabel = errors.New("场次标签键无效（paper_session_N / round_table_N）")
	ErrInvalidClock        = errors.New("时间格式无效（HH:MM）")
	ErrICSNoEvents         = errors.New("ICS 中没有可用的定时事件")
	ErrICSInvalid          = errors.New("ICS 文件无法解析")
	ErrTooManySlotLabels   = errors.New("标签数量超过当天时段数")
)

// LabelService 时段标签、场次标签与开始时间接口
type LabelService interface {
	Get(ctx context.Context, conventionID string) (*dto.LabelsResponse, error)
	UpdateSlotLabels(ctx context.Context, conventionID string, req *dto.UpdateSlotLabelsRequest) (*dto.LabelsResponse, error)
	UpdateSessionLabels(ctx context.Context, conventionID string, req *dto.UpdateSessionLabelsRequest) (*dto.LabelsResponse, error)
	UpdateSlotTimes(ctx context.Context, conventionID string, req *dto.UpdateSlotTimesRequest) (*dto.LabelsResponse, error)
	AutoSlotTimes(ctx context.Context, conventionID string, req *dto.AutoSlotTimesRequest) (*dto.LabelsResponse, error)
	ImportSlotTimesICS(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error)
}

type labelService struct {
	cfg    *config.PlannerConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLabelService 创建 LabelService 实例
func NewLabelService(cfg *config.PlannerConfig, repo *repository.Repository, logger *zap.Logger) LabelService {
	return &labelService{cfg: cfg, repo: repo, logger: logger}
}

func (s *labelService) Get(ctx context.Context, conventionID string) (*dto.LabelsResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	return toLabelsResponse(conv), nil
}

// ────────────────────── 时段标签 ──────────────────────

// UpdateSlotLabels 替换某天的时段标签；空数组恢复默认 A、B、C…
func (s *labelService) UpdateSlotLabels(ctx context.Context, conventionID string, req *dto.UpdateSlotLabelsRequest) (*dto.LabelsResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.cfg.Defaults())

	slots, _, _ := p.Day(req.Day)
	if slots == 0 {
		return nil, ErrDayOutOfRange
	}
	if len(req.Labels) > slots {
		return nil, ErrTooManySlotLabels
	}

	labels := make([]string, len(req.Labels))
	blank := true
	for i, l := range req.Labels {
		labels[i] = strings.TrimSpace(l)
		blank = blank && labels[i] == ""
	}

	if conv.SlotLabels == nil {
		conv.SlotLabels = make(map[int][]string)
	}
	if blank {
		delete(conv.SlotLabels, req.Day)
	} else {
		conv.SlotLabels[req.Day] = labels
	}

	return s.save(ctx, conv)
}

// ────────────────────── 场次标签 ──────────────────────

// UpdateSessionLabels 合并场次标签；空值删除该标签
func (s *labelService) UpdateSessionLabels(ctx context.Context, conventionID string, req *dto.UpdateSessionLabelsRequest) (*dto.LabelsResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}

	for key := range req.Labels {
		if !validSessionLabelKey(key) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSessionLabel, key)
		}
	}

	if conv.SessionLabels == nil {
		conv.SessionLabels = make(map[string]string)
	}
	for key, label := range req.Labels {
		if label = strings.TrimSpace(label); label == "" {
			delete(conv.SessionLabels, key)
		} else {
			conv.SessionLabels[key] = label
		}
	}

	return s.save(ctx, conv)
}

// validSessionLabelKey paper_session_N / round_table_N，N ≥ 1
func validSessionLabelKey(key string) bool {
	var n int
	for _, t := range []planner.SessionType{planner.SessionTypePaper, planner.SessionTypeRoundTable} {
		format := "paper_session_%d"
		if t == planner.SessionTypeRoundTable {
			format = "round_table_%d"
		}
		if _, err := fmt.Sscanf(key, format, &n); err == nil && n >= 1 && planner.SessionLabelKey(t, n) == key {
			return true
		}
	}
	return false
}

// ────────────────────── 开始时间 ──────────────────────

// UpdateSlotTimes 合并时段开始时间；StartTime 为空删除该时段的时间
func (s *labelService) UpdateSlotTimes(ctx context.Context, conventionID string, req *dto.UpdateSlotTimesRequest) (*dto.LabelsResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}
	p := conventionParameters(conv, s.cfg.Defaults())

	for _, item := range req.Times {
		slots, _, _ := p.Day(item.Day)
		if slots == 0 {
			return nil, ErrDayOutOfRange
		}
		if item.Slot < 0 || item.Slot >= slots {
			return nil, ErrSlotOutOfRange
		}
		if item.StartTime != "" {
			if _, _, ok := planner.ParseClock(item.StartTime); !ok {
				return nil, ErrInvalidClock
			}
		}
	}

	if conv.SlotTimes == nil {
		conv.SlotTimes = make(map[string]string)
	}
	for _, item := range req.Times {
		key := planner.SlotKey(item.Day, item.Slot)
		if item.StartTime == "" {
			delete(conv.SlotTimes, key)
		} else {
			conv.SlotTimes[key] = item.StartTime
		}
	}

	return s.save(ctx, conv)
}

// AutoSlotTimes 按 开始时间 + 场次时长 + 间隔 覆盖所有开始时间；未填写的项使用配置默认值
func (s *labelService) AutoSlotTimes(ctx context.Context, conventionID string, req *dto.AutoSlotTimesRequest) (*dto.LabelsResponse, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}

	start := req.StartTime
	if start == "" {
		start = s.cfg.DefaultStartTime
	}
	if _, _, ok := planner.ParseClock(start); !ok {
		return nil, ErrInvalidClock
	}
	session := req.SessionMinutes
	if session <= 0 {
		session = s.cfg.SessionMinutes
	}
	brk := req.BreakMinutes
	if brk <= 0 {
		brk = s.cfg.BreakMinutes
	}

	conv.SlotTimes = planner.AutoSlotTimes(conventionParameters(conv, s.cfg.Defaults()), start, session, brk)
	return s.save(ctx, conv)
}

// ImportSlotTimesICS 从场馆日历导入开始时间；超出网格的时段计入 Skipped
func (s *labelService) ImportSlotTimesICS(ctx context.Context, conventionID string, r io.Reader) (*dto.ImportResult, error) {
	conv, err := loadConvention(ctx, s.repo, s.logger, conventionID)
	if err != nil {
		return nil, err
	}

	times, failed, err := parseSlotTimesICS(r, s.cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}
	if len(times) == 0 {
		return nil, ErrICSNoEvents
	}

	p := conventionParameters(conv, s.cfg.Defaults())
	result := &dto.ImportResult{Failed: failed}
	if conv.SlotTimes == nil {
		conv.SlotTimes = make(map[string]string)
	}
	for _, t := range times {
		slots, _, _ := p.Day(t.Day)
		if t.Slot >= slots {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 天 %s 超出当天时段数", t.Day, t.StartTime))
			continue
		}
		conv.SlotTimes[planner.SlotKey(t.Day, t.Slot)] = t.StartTime
		result.Imported++
	}

	if result.Imported > 0 {
		if _, err := s.save(ctx, conv); err != nil {
			return nil, err
		}
	}

	s.logger.Info("ICS 开始时间导入完成",
		zap.String("convention_id", conventionID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ── 辅助 ──

func (s *labelService) save(ctx context.Context, conv *model.Convention) (*dto.LabelsResponse, error) {
	if err := s.repo.Convention.Update(ctx, conv); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConventionVersionConflict
		}
		s.logger.Error("保存标签失败", zap.String("convention_id", conv.ConventionID), zap.Error(err))
		return nil, err
	}
	return toLabelsResponse(conv), nil
}

func toLabelsResponse(conv *model.Convention) *dto.LabelsResponse {
	resp := &dto.LabelsResponse{
		SlotLabels:    conv.SlotLabels,
		SlotTimes:     conv.SlotTimes,
		SessionLabels: conv.SessionLabels,
	}
	if resp.SlotLabels == nil {
		resp.SlotLabels = map[int][]string{}
	}
	if resp.SlotTimes == nil {
		resp.SlotTimes = map[string]string{}
	}
	if resp.SessionLabels == nil {
		resp.SessionLabels = map[string]string{}
	}
	return resp
}
