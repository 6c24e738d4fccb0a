package dto

// ── 标签与开始时间 ──

// UpdateSlotLabelsRequest 设置某天的时段标签（空数组表示恢复默认）
type UpdateSlotLabelsRequest struct {
	Day    int      `json:"day"    binding:"required,min=1"`
	Labels []string `json:"labels" binding:"max=100,dive,max=50"`
}

// UpdateSessionLabelsRequest 合并场次标签；值为空字符串表示删除
type UpdateSessionLabelsRequest struct {
	Labels map[string]string `json:"labels" binding:"required"`
}

// SlotTimeItem 单个时段的开始时间
type SlotTimeItem struct {
	Day       int    `json:"day"        binding:"required,min=1"`
	Slot      int    `json:"slot"       binding:"min=0"`
	StartTime string `json:"start_time" binding:"omitempty,len=5"`
}

// UpdateSlotTimesRequest 合并时段开始时间；StartTime 为空表示删除
type UpdateSlotTimesRequest struct {
	Times []SlotTimeItem `json:"times" binding:"required,max=1000,dive"`
}

// AutoSlotTimesRequest 自动生成开始时间
type AutoSlotTimesRequest struct {
	StartTime      string `json:"start_time"      binding:"omitempty,len=5"`
	SessionMinutes int    `json:"session_minutes" binding:"omitempty,min=5,max=600"`
	BreakMinutes   int    `json:"break_minutes"   binding:"omitempty,min=0,max=240"`
}

// LabelsResponse 全部标签与开始时间
type LabelsResponse struct {
	SlotLabels    map[int][]string  `json:"slot_labels"`
	SlotTimes     map[string]string `json:"slot_times"`
	SessionLabels map[string]string `json:"session_labels"`
}

// ImportICSRequest 通过 URL 导入开始时间（支持 webcal://）
type ImportICSRequest struct {
	URL string `json:"url" form:"url" binding:"required,max=2000"`
}
