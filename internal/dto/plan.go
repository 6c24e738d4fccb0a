package dto

import (
	"convention-planner/internal/planner"
)

// ── 排期参数 ──

// CategoryRequest 论文分类
type CategoryRequest struct {
	Name       string  `json:"name"  binding:"required,max=100"`
	Color      string  `json:"color" binding:"omitempty,max=20"`
	PaperCount FlexInt `json:"paper_count"`
}

// PlanParametersRequest 排期表单参数；所有数值字段宽松解析
type PlanParametersRequest struct {
	ConventionDays        FlexInt           `json:"convention_days"`
	TimeSlotsPerDay       FlexInt           `json:"time_slots_per_day"`
	AvailableRooms        FlexInt           `json:"available_rooms"`
	SessionsPerTimeSlot   FlexInt           `json:"sessions_per_time_slot"`
	CustomTimeSlots       FlexIntMap        `json:"custom_time_slots"`
	CustomRooms           FlexIntMap        `json:"custom_rooms"`
	CustomSessionsPerSlot FlexIntMap        `json:"custom_sessions_per_slot"`
	TotalPapers           FlexInt           `json:"total_papers"`
	PapersPerSession      FlexInt           `json:"papers_per_session"`
	MinPapersPerSession   FlexInt           `json:"min_papers_per_session"`
	MaxPapersPerSession   FlexInt           `json:"max_papers_per_session"`
	TotalRoundTables      FlexInt           `json:"total_round_tables"`
	RoundTableDuration    FlexInt           `json:"round_table_duration"`
	Categories            []CategoryRequest `json:"categories" binding:"omitempty,max=50,dive"`
}

// ToInput 转换为排期计算输入
func (r *PlanParametersRequest) ToInput() planner.Input {
	in := planner.Input{
		ConventionDays:      r.ConventionDays.Int(),
		TimeSlotsPerDay:     r.TimeSlotsPerDay.Int(),
		RoomsPerDay:         r.AvailableRooms.Int(),
		SessionsPerSlot:     r.SessionsPerTimeSlot.Int(),
		CustomTimeSlots:     r.CustomTimeSlots.Days(),
		CustomRooms:         r.CustomRooms.Days(),
		CustomSessionsSlot:  r.CustomSessionsPerSlot.Days(),
		TotalPapers:         r.TotalPapers.Int(),
		PapersPerSession:    r.PapersPerSession.Int(),
		MinPapersPerSession: r.MinPapersPerSession.Int(),
		MaxPapersPerSession: r.MaxPapersPerSession.Int(),
		TotalRoundTables:    r.TotalRoundTables.Int(),
		RoundTableDuration:  r.RoundTableDuration.Int(),
	}
	for _, c := range r.Categories {
		in.Categories = append(in.Categories, planner.Category{Name: c.Name, PaperCount: c.PaperCount.Int()})
	}
	return in
}

// ── 响应 ──

// ConventionPlanResponse 会议排期结果
type ConventionPlanResponse struct {
	ConventionID string          `json:"convention_id"`
	Name         string          `json:"name"`
	Plan         planner.Result  `json:"plan"`
	Categories   []CategoryBrief `json:"categories,omitempty"`
}

// CategoryBrief 分类展示信息
type CategoryBrief struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	PaperCount int    `json:"paper_count"`
}

// GridResponse 排期网格
type GridResponse struct {
	ConventionID string                           `json:"convention_id"`
	Grid         planner.Grid                     `json:"grid"`
	Rooms        []RoomResponse                   `json:"rooms"`
	Sessions     map[string]CustomizationResponse `json:"customizations,omitempty"`
}

// ── 网格摆放 ──

// PositionRequest 网格位置
type PositionRequest struct {
	Day      int `json:"day"      binding:"required,min=1"`
	Slot     int `json:"slot"     binding:"min=0"`
	Position int `json:"position" binding:"min=0"`
}

// ToPosition 转换为网格位置
func (r PositionRequest) ToPosition() planner.Position {
	return planner.Position{Day: r.Day, Slot: r.Slot, Index: r.Position}
}

// AssignRoundTableRequest 将圆桌放到指定位置
type AssignRoundTableRequest struct {
	RoundTableID int `json:"round_table_id" binding:"required,min=1"`
	PositionRequest
}

// AssignRoundTableToSlotRequest 将圆桌放到某时段第一个空位
type AssignRoundTableToSlotRequest struct {
	RoundTableID int `json:"round_table_id" binding:"required,min=1"`
	Day          int `json:"day"            binding:"required,min=1"`
	Slot         int `json:"slot"           binding:"min=0"`
}

// PlacementResponse 摆放结果
type PlacementResponse struct {
	Kind          planner.CellKind `json:"kind"`
	Position      planner.Position `json:"position"`
	SessionNumber int              `json:"session_number,omitempty"`
	RoundTableID  int              `json:"round_table_id,omitempty"`
}
