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

type SubjectHandler struct {
	subjectService *service.SubjectService
	log            zerolog.Logger
}

func NewSubjectHandler(subjectService *service.SubjectService, log zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
		log:            log.With().Str("component", "subject_handler").Logger(),
	}
}

// ListByStudent godoc
// GET /api/v1/subjects/student/:studentId
func (h *SubjectHandler) ListByStudent(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	subjects, err := h.subjectService.ListForStudent(c.Request.Context(), middleware.Abilities(c), studentID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListByTeacher godoc
// GET /api/v1/subjects/teacher/:teacherId
func (h *SubjectHandler) ListByTeacher(c *gin.Context) {
	teacherID, ok := paramID(c, "teacherId")
	if !ok {
		return
	}

	subjects, err := h.subjectService.ListForTeacher(c.Request.Context(), middleware.Abilities(c), teacherID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.Create(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject": sub})
}

// ListByGroup godoc
// GET /api/v1/subjects/group/:groupId
func (h *SubjectHandler) ListByGroup(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	subjects, err := h.subjectService.ListForGroup(c.Request.Context(), middleware.Abilities(c), groupID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Update godoc
// PUT /api/v1/subjects/:subjectId
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "subjectId")
	if !ok {
		return
	}

	var req model.UpdateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.Rename(c.Request.Context(), middleware.Abilities(c), id, &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": sub})
}

// Delete godoc
// DELETE /api/v1/subjects/:subjectId
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "subjectId")
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), middleware.Abilities(c), id); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "subject deleted"})
}

// AssignTeacher godoc
// POST /api/v1/subjects/teacher
func (h *SubjectHandler) AssignTeacher(c *gin.Context) {
	var req model.SubjectTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.subjectService.AssignTeacher(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// UnassignTeacher godoc
// DELETE /api/v1/subjects/teacher
func (h *SubjectHandler) UnassignTeacher(c *gin.Context) {
	var req model.SubjectTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.subjectService.UnassignTeacher(c.Request.Context(), middleware.Abilities(c), &req); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "teacher removed from subject"})
}
