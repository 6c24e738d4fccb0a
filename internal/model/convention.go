package model

// Convention 会议及其排期参数 — 对应 conventions
//
// Custom* 为按天覆盖值（见 IntArray.DayOverrides）；标签与开始时间以 JSONB 存储。
type Convention struct {
	ConventionID        string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"convention_id"`
	Name                string            `gorm:"type:varchar(200);not null"                     json:"name"`
	ConventionDays      int               `gorm:"not null"                                       json:"convention_days"`
	TimeSlotsPerDay     int               `gorm:"not null"                                       json:"time_slots_per_day"`
	AvailableRooms      int               `gorm:"not null"                                       json:"available_rooms"`
	SessionsPerTimeSlot int               `gorm:"not null"                                       json:"sessions_per_time_slot"`
	CustomTimeSlots     IntArray          `gorm:"type:int[];not null;default:'{}'"               json:"custom_time_slots"`
	CustomRooms         IntArray          `gorm:"type:int[];not null;default:'{}'"               json:"custom_rooms"`
	CustomSessions      IntArray          `gorm:"type:int[];not null;default:'{}'"               json:"custom_sessions_per_slot"`
	TotalPapers         int               `gorm:"not null;default:0"                             json:"total_papers"`
	PapersPerSession    int               `gorm:"not null"                                       json:"papers_per_session"`
	MinPapersPerSession int               `gorm:"not null"                                       json:"min_papers_per_session"`
	MaxPapersPerSession int               `gorm:"not null"                                       json:"max_papers_per_session"`
	TotalRoundTables    int               `gorm:"not null;default:0"                             json:"total_round_tables"`
	RoundTableDuration  int               `gorm:"not null;default:1"                             json:"round_table_duration"`
	Categories          []CategoryEntry   `gorm:"type:jsonb;serializer:json"                     json:"categories"`
	SlotLabels          map[int][]string  `gorm:"type:jsonb;serializer:json"                     json:"slot_labels"`
	SlotTimes           map[string]string `gorm:"type:jsonb;serializer:json"                     json:"slot_times"`
	SessionLabels       map[string]string `gorm:"type:jsonb;serializer:json"                     json:"session_labels"`
	PasscodeHash        *string           `gorm:"type:varchar(100)"                              json:"-"`
	VersionedModel
}

func (Convention) TableName() string { return "conventions" }

// CategoryEntry 论文分类
type CategoryEntry struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	PaperCount int    `json:"paper_count"`
}
