package handler

import "convention-planner/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Convention    *ConventionHandler
	Auth          *AuthHandler
	Plan          *PlanHandler
	Layout        *LayoutHandler
	Paper         *PaperHandler
	Assignment    *AssignmentHandler
	People        *PeopleHandler
	Customization *CustomizationHandler
	Label         *LabelHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Convention:    NewConventionHandler(svc.Convention),
		Auth:          NewAuthHandler(svc.Auth),
		Plan:          NewPlanHandler(svc.Plan),
		Layout:        NewLayoutHandler(svc.Layout),
		Paper:         NewPaperHandler(svc.Paper),
		Assignment:    NewAssignmentHandler(svc.Assignment),
		People:        NewPeopleHandler(svc.People),
		Customization: NewCustomizationHandler(svc.Customization),
		Label:         NewLabelHandler(svc.Label),
	}
}
