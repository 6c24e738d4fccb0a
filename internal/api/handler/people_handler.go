package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/dto"
	"convention-planner/internal/service"
	"convention-planner/pkg/response"
)

// PeopleHandler 主持人 / 主席 / 会议室 HTTP 处理器
//
// 主持人与主席共用一套处理函数，角色由路由注册时绑定。
type PeopleHandler struct {
	peopleSvc service.PeopleService
}

// NewPeopleHandler 创建 PeopleHandler
func NewPeopleHandler(peopleSvc service.PeopleService) *PeopleHandler {
	return &PeopleHandler{peopleSvc: peopleSvc}
}

// ListPeople 按角色列出人员
// GET /api/v1/conventions/:id/moderators | /chairs
func (h *PeopleHandler) ListPeople(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustConventionID(c)
		if !ok {
			return
		}

		people, err := h.peopleSvc.List(c.Request.Context(), id, role)
		if err != nil {
			h.handlePeopleError(c, err)
			return
		}

		response.OK(c, gin.H{"list": people})
	}
}

// CreatePerson 新增人员
// POST /api/v1/conventions/:id/moderators | /chairs
func (h *PeopleHandler) CreatePerson(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustConventionID(c)
		if !ok {
			return
		}

		var req dto.PersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}

		person, err := h.peopleSvc.Create(c.Request.Context(), id, role, &req)
		if err != nil {
			h.handlePeopleError(c, err)
			return
		}

		response.Created(c, person)
	}
}

// UpdatePerson 更新人员
// PUT /api/v1/conventions/:id/moderators/:person_id | /chairs/:person_id
func (h *PeopleHandler) UpdatePerson(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustConventionID(c)
		if !ok {
			return
		}

		var req dto.PersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}

		person, err := h.peopleSvc.Update(c.Request.Context(), id, role, c.Param("person_id"), &req)
		if err != nil {
			h.handlePeopleError(c, err)
			return
		}

		response.OK(c, person)
	}
}

// DeletePerson 删除人员（引用该人员的场次定制同时解除关联）
// DELETE /api/v1/conventions/:id/moderators/:person_id | /chairs/:person_id
func (h *PeopleHandler) DeletePerson(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustConventionID(c)
		if !ok {
			return
		}

		if err := h.peopleSvc.Delete(c.Request.Context(), id, role, c.Param("person_id")); err != nil {
			h.handlePeopleError(c, err)
			return
		}

		response.OK(c, nil)
	}
}

// ListRooms 会议室列表（含默认名称）
// GET /api/v1/conventions/:id/rooms
func (h *PeopleHandler) ListRooms(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	rooms, err := h.peopleSvc.ListRooms(c.Request.Context(), id)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// UpdateRooms 替换会议室名称
// PUT /api/v1/conventions/:id/rooms
func (h *PeopleHandler) UpdateRooms(c *gin.Context) {
	id, ok := mustConventionID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoomNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rooms, err := h.peopleSvc.UpdateRooms(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// handlePeopleError 统一处理人员与会议室业务错误
func (h *PeopleHandler) handlePeopleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonNotFound):
		response.NotFound(c, 16001, "人员不存在")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 16002, "角色无效")
	case errors.Is(err, service.ErrRoomOutOfRange):
		response.BadRequest(c, 16003, "会议室编号超出会议室数量")
	default:
		handleConventionError(c, err)
	}
}
