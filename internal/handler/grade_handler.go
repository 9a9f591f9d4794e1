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

// GradeHandler handles grade endpoints.
type GradeHandler struct {
	gradeService *service.GradeService
	log          zerolog.Logger
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradeService *service.GradeService, log zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		gradeService: gradeService,
		log:          log.With().Str("component", "grade_handler").Logger(),
	}
}

// ListByStudent godoc
// GET /api/v1/grades/student/:studentId
func (h *GradeHandler) ListByStudent(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	grades, err := h.gradeService.ListForStudent(c.Request.Context(), middleware.Abilities(c), studentID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// Get godoc
// GET /api/v1/grades/:gradeId
func (h *GradeHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "gradeId")
	if !ok {
		return
	}

	grade, err := h.gradeService.Get(c.Request.Context(), middleware.Abilities(c), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// Add godoc
// POST /api/v1/grades
func (h *GradeHandler) Add(c *gin.Context) {
	var req model.CreateGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.Add(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"grade": grade})
}

// Update godoc
// PUT /api/v1/grades/:gradeId
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "gradeId")
	if !ok {
		return
	}

	var req model.UpdateGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.UpdateValue(c.Request.Context(), middleware.Abilities(c), id, req.Value)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// Delete godoc
// DELETE /api/v1/grades/:gradeId
func (h *GradeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "gradeId")
	if !ok {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), middleware.Abilities(c), id); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "grade deleted"})
}
