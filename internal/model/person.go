package model

// 人员角色
const (
	RoleModerator = "moderator"
	RoleChair     = "chair"
)

// Person 主持人 / 主席 — 对应 people
type Person struct {
	PersonID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"person_id"`
	ConventionID string `gorm:"type:uuid;not null;index"                       json:"convention_id"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"` // moderator | chair
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	School       string `gorm:"type:varchar(200)"                              json:"school,omitempty"`
	Email        string `gorm:"type:varchar(200)"                              json:"email,omitempty"`
	BaseModel
}

func (Person) TableName() string { return "people" }

// RoomName 会议室名称覆盖 — 对应 room_names
type RoomName struct {
	RoomNameID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_name_id"`
	ConventionID string `gorm:"type:uuid;not null"                             json:"convention_id"`
	RoomNumber   int    `gorm:"not null"                                       json:"room_number"` // 从 1 开始
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	BaseModel
}

func (RoomName) TableName() string { return "room_names" }
