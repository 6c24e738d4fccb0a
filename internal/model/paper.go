package model

// DefaultPaperCategory 未填写分类时使用
const DefaultPaperCategory = "General"

// Paper 论文 — 对应 papers
type Paper struct {
	PaperID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"paper_id"`
	ConventionID string `gorm:"type:uuid;not null;index"                       json:"convention_id"`
	Title        string `gorm:"type:varchar(500);not null"                     json:"title"`
	StudentName  string `gorm:"type:varchar(200);not null"                     json:"student_name"`
	School       string `gorm:"type:varchar(200);not null"                     json:"school"`
	Category     string `gorm:"type:varchar(100);not null;default:'General'"   json:"category"`
	BaseModel
}

func (Paper) TableName() string { return "papers" }

// PaperAssignment 论文 → 论文场次 — 对应 paper_assignments
//
// 一篇论文同一时间只属于一个场次（convention_id, paper_id 唯一）。
type PaperAssignment struct {
	AssignmentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ConventionID  string `gorm:"type:uuid;not null"                             json:"convention_id"`
	SessionNumber int    `gorm:"not null"                                       json:"session_number"`
	PaperID       string `gorm:"type:uuid;not null"                             json:"paper_id"`
	BaseModel

	Paper *Paper `gorm:"foreignKey:PaperID;references:PaperID" json:"paper,omitempty"`
}

func (PaperAssignment) TableName() string { return "paper_assignments" }
