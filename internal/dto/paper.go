package dto

// ── 论文模块 DTO ──

// CreatePaperRequest 新增论文请求
type CreatePaperRequest struct {
	Title       string `json:"title"        binding:"required,min=1,max=500"`
	StudentName string `json:"student_name" binding:"required,min=1,max=200"`
	School      string `json:"school"       binding:"required,min=1,max=200"`
	Category    string `json:"category"     binding:"omitempty,max=100"`
}

// UpdatePaperRequest 更新论文请求
type UpdatePaperRequest struct {
	Title       *string `json:"title"        binding:"omitempty,min=1,max=500"`
	StudentName *string `json:"student_name" binding:"omitempty,min=1,max=200"`
	School      *string `json:"school"       binding:"omitempty,min=1,max=200"`
	Category    *string `json:"category"     binding:"omitempty,max=100"`
}

// PaperResponse 论文信息
type PaperResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StudentName string `json:"student_name"`
	School      string `json:"school"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
}

// ── 论文 → 场次 ──

// AssignPaperRequest 将论文分到场次
type AssignPaperRequest struct {
	SessionNumber int    `json:"session_number" binding:"required,min=1"`
	PaperID       string `json:"paper_id"       binding:"required,uuid"`
}

// SessionPapersResponse 单个论文场次及其论文
type SessionPapersResponse struct {
	SessionNumber int             `json:"session_number"`
	Title         string          `json:"title"`
	Category      string          `json:"category,omitempty"`
	Capacity      int             `json:"capacity"`
	Papers        []PaperResponse `json:"papers"`
}

// PaperAssignmentsResponse 全部场次的论文分配
type PaperAssignmentsResponse struct {
	Sessions   []SessionPapersResponse `json:"sessions"`
	Unassigned []PaperResponse         `json:"unassigned"`
}
