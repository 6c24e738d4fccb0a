package dto

// ── 主持人 / 主席 / 会议室 ──

// PersonRequest 新增 / 更新主持人或主席
type PersonRequest struct {
	Name   string `json:"name"   binding:"required,min=1,max=200"`
	School string `json:"school" binding:"omitempty,max=200"`
	Email  string `json:"email"  binding:"omitempty,email,max=200"`
}

// PersonResponse 主持人 / 主席信息
type PersonResponse struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	School string `json:"school,omitempty"`
	Email  string `json:"email,omitempty"`
}

// RoomNameItem 单个会议室名称
type RoomNameItem struct {
	RoomNumber int    `json:"room_number" binding:"required,min=1"`
	Name       string `json:"name"        binding:"max=100"`
}

// UpdateRoomNamesRequest 整体替换会议室名称
type UpdateRoomNamesRequest struct {
	Rooms []RoomNameItem `json:"rooms" binding:"max=500,dive"`
}

// RoomResponse 会议室
type RoomResponse struct {
	RoomNumber int    `json:"room_number"`
	Name       string `json:"name"`
	Custom     bool   `json:"custom"`
}

// ── 场次定制 ──

// UpsertCustomizationRequest 新增 / 更新场次定制
type UpsertCustomizationRequest struct {
	SessionType   string  `json:"session_type"   binding:"omitempty,oneof=paper round_table"`
	PaperCount    int     `json:"paper_count"    binding:"min=0,max=100"`
	Category      string  `json:"category"       binding:"omitempty,max=100"`
	PreferredRoom int     `json:"preferred_room" binding:"min=0"`
	Notes         string  `json:"notes"          binding:"omitempty,max=2000"`
	ModeratorID   *string `json:"moderator_id"   binding:"omitempty,uuid"`
	ChairID       *string `json:"chair_id"       binding:"omitempty,uuid"`
}

// CustomizationResponse 场次定制
type CustomizationResponse struct {
	PositionKey   string          `json:"position_key"`
	SessionType   string          `json:"session_type"`
	PaperCount    int             `json:"paper_count"`
	Category      string          `json:"category,omitempty"`
	PreferredRoom int             `json:"preferred_room,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Moderator     *PersonResponse `json:"moderator,omitempty"`
	Chair         *PersonResponse `json:"chair,omitempty"`
}
