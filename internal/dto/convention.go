package dto

// ── 会议模块 DTO ──

// CreateConventionRequest 创建会议请求
type CreateConventionRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=200"`
	Passcode string `json:"passcode" binding:"omitempty,min=4,max=72"`
	PlanParametersRequest
}

// UpdateConventionRequest 更新会议参数请求（整体替换参数）
type UpdateConventionRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=1,max=200"`
	Version int     `json:"version" binding:"required,min=1"`
	PlanParametersRequest
}

// ChangePasscodeRequest 设置 / 清除口令（空字符串表示清除）
type ChangePasscodeRequest struct {
	Passcode string `json:"passcode" binding:"omitempty,min=4,max=72"`
}

// EditTokenRequest 用口令换取编辑令牌
type EditTokenRequest struct {
	Passcode string `json:"passcode" binding:"required,max=72"`
}

// ConventionListRequest 会议列表查询参数
type ConventionListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// ConventionResponse 会议详情
type ConventionResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	ConventionDays        int             `json:"convention_days"`
	TimeSlotsPerDay       int             `json:"time_slots_per_day"`
	AvailableRooms        int             `json:"available_rooms"`
	SessionsPerTimeSlot   int             `json:"sessions_per_time_slot"`
	CustomTimeSlots       map[int]int     `json:"custom_time_slots,omitempty"`
	CustomRooms           map[int]int     `json:"custom_rooms,omitempty"`
	CustomSessionsPerSlot map[int]int     `json:"custom_sessions_per_slot,omitempty"`
	TotalPapers           int             `json:"total_papers"`
	PapersPerSession      int             `json:"papers_per_session"`
	MinPapersPerSession   int             `json:"min_papers_per_session"`
	MaxPapersPerSession   int             `json:"max_papers_per_session"`
	TotalRoundTables      int             `json:"total_round_tables"`
	RoundTableDuration    int             `json:"round_table_duration"`
	Categories            []CategoryBrief `json:"categories"`
	HasPasscode           bool            `json:"has_passcode"`
	Version               int             `json:"version"`
	CreatedAt             string          `json:"created_at"`
	UpdatedAt             string          `json:"updated_at"`
}

// ConventionBrief 会议列表项
type ConventionBrief struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ConventionDays int    `json:"convention_days"`
	TotalPapers    int    `json:"total_papers"`
	UpdatedAt      string `json:"updated_at"`
}

// EditTokenResponse 编辑令牌
type EditTokenResponse struct {
	ConventionID string `json:"convention_id"`
	EditToken    string `json:"edit_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateConventionResponse 创建会议响应：新会议总是附带一个编辑令牌
type CreateConventionResponse struct {
	Convention ConventionResponse `json:"convention"`
	EditTokenResponse
}
