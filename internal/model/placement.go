package model

import "time"

// PaperSessionPlacement 位置 → 论文场次 — 对应 paper_session_placements
type PaperSessionPlacement struct {
	PlacementID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"placement_id"`
	ConventionID  string    `gorm:"type:uuid;not null"                             json:"convention_id"`
	Day           int       `gorm:"not null"                                       json:"day"`
	SlotIndex     int       `gorm:"not null"                                       json:"slot_index"`
	Position      int       `gorm:"not null"                                       json:"position"`
	SessionNumber int       `gorm:"not null"                                       json:"session_number"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (PaperSessionPlacement) TableName() string { return "paper_session_placements" }

// RoundTablePlacement 圆桌 → 起始位置 — 对应 round_table_placements
type RoundTablePlacement struct {
	PlacementID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"placement_id"`
	ConventionID string    `gorm:"type:uuid;not null"                             json:"convention_id"`
	RoundTableID int       `gorm:"not null"                                       json:"round_table_id"`
	Day          int       `gorm:"not null"                                       json:"day"`
	SlotIndex    int       `gorm:"not null"                                       json:"slot_index"`
	Position     int       `gorm:"not null"                                       json:"position"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (RoundTablePlacement) TableName() string { return "round_table_placements" }

// SessionCustomization 按位置的场次定制 — 对应 session_customizations
type SessionCustomization struct {
	CustomizationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"customization_id"`
	ConventionID    string  `gorm:"type:uuid;not null"                             json:"convention_id"`
	PositionKey     string  `gorm:"type:varchar(50);not null"                      json:"position_key"`
	SessionType     string  `gorm:"type:varchar(20);not null;default:'paper'"      json:"session_type"` // paper | round_table
	PaperCount      int     `gorm:"not null;default:0"                             json:"paper_count"`
	Category        string  `gorm:"type:varchar(100)"                              json:"category,omitempty"`
	PreferredRoom   int     `gorm:"not null;default:0"                             json:"preferred_room"`
	Notes           string  `gorm:"type:text"                                      json:"notes,omitempty"`
	ModeratorID     *string `gorm:"type:uuid"                                      json:"moderator_id,omitempty"`
	ChairID         *string `gorm:"type:uuid"                                      json:"chair_id,omitempty"`
	BaseModel

	Moderator *Person `gorm:"foreignKey:ModeratorID;references:PersonID" json:"moderator,omitempty"`
	Chair     *Person `gorm:"foreignKey:ChairID;references:PersonID"     json:"chair,omitempty"`
}

func (SessionCustomization) TableName() string { return "session_customizations" }
