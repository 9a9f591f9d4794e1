package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
)

// GroupHandler handles group endpoints.
type GroupHandler struct {
	groupService *service.GroupService
	log          zerolog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService, log zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		log:          log.With().Str("component", "group_handler").Logger(),
	}
}

// ListByStudent godoc
// GET /api/v1/groups/student/:studentId
func (h *GroupHandler) ListByStudent(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	groups, err := h.groupService.ListForStudent(c.Request.Context(), middleware.Abilities(c), studentID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// ListByTeacher godoc
// GET /api/v1/groups/teacher/:teacherId
func (h *GroupHandler) ListByTeacher(c *gin.Context) {
	teacherID, ok := paramID(c, "teacherId")
	if !ok {
		return
	}

	groups, err := h.groupService.ListForTeacher(c.Request.Context(), middleware.Abilities(c), teacherID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// Create godoc
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req model.CreateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"group": group})
}

// AddStudent godoc
// POST /api/v1/groups/students
func (h *GroupHandler) AddStudent(c *gin.Context) {
	var req model.GroupMemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.groupService.AddStudent(c.Request.Context(), middleware.Abilities(c), &req); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": "student added to group"})
}

// RemoveStudent godoc
// DELETE /api/v1/groups/students
func (h *GroupHandler) RemoveStudent(c *gin.Context) {
	var req model.GroupMemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.groupService.RemoveStudent(c.Request.Context(), middleware.Abilities(c), &req); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "student removed from group"})
}

// Delete godoc
// DELETE /api/v1/groups/:groupId
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), middleware.Abilities(c), groupID); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "group deleted"})
}

// AddTeacher godoc
// POST /api/v1/groups/teachers
func (h *GroupHandler) AddTeacher(c *gin.Context) {
	var req model.GroupTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.groupService.AddTeacher(c.Request.Context(), middleware.Abilities(c), &req); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": "teacher added to group"})
}

// RemoveTeacher godoc
// DELETE /api/v1/groups/teachers
func (h *GroupHandler) RemoveTeacher(c *gin.Context) {
	var req model.GroupTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.groupService.RemoveTeacher(c.Request.Context(), middleware.Abilities(c), &req); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "teacher removed from group"})
}
