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

// TimetableHandler handles timetable endpoints.
type TimetableHandler struct {
	timetableService *service.TimetableService
	log              zerolog.Logger
}

// NewTimetableHandler creates a new TimetableHandler.
func NewTimetableHandler(timetableService *service.TimetableService, log zerolog.Logger) *TimetableHandler {
	return &TimetableHandler{
		timetableService: timetableService,
		log:              log.With().Str("component", "timetable_handler").Logger(),
	}
}

// ForGroup godoc
// GET /api/v1/timetables/group/:groupId?from=&to=
func (h *TimetableHandler) ForGroup(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := h.timetableService.ForGroup(c.Request.Context(), middleware.Abilities(c), groupID, r)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": entries})
}

// ForTeacher godoc
// GET /api/v1/timetables/teacher/:teacherId?from=&to=
func (h *TimetableHandler) ForTeacher(c *gin.Context) {
	teacherID, ok := paramID(c, "teacherId")
	if !ok {
		return
	}
	r, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := h.timetableService.ForTeacher(c.Request.Context(), middleware.Abilities(c), teacherID, r)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": entries})
}

// Create godoc
// POST /api/v1/timetables
func (h *TimetableHandler) Create(c *gin.Context) {
	var req model.TimetableRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.timetableService.Schedule(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lesson": entry})
}

// Update godoc
// PUT /api/v1/timetables/:recordId
func (h *TimetableHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "recordId")
	if !ok {
		return
	}

	var req model.TimetableRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.timetableService.Reschedule(c.Request.Context(), middleware.Abilities(c), id, &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": entry})
}

// Substitute godoc
// PUT /api/v1/timetables/substitute/:recordId/:teacherId
func (h *TimetableHandler) Substitute(c *gin.Context) {
	id, ok := paramID(c, "recordId")
	if !ok {
		return
	}
	teacherID, ok := paramID(c, "teacherId")
	if !ok {
		return
	}

	entry, err := h.timetableService.Substitute(c.Request.Context(), middleware.Abilities(c), id, teacherID)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": entry})
}

// Cancel godoc
// PUT /api/v1/timetables/cancel/:recordId
func (h *TimetableHandler) Cancel(c *gin.Context) {
	h.setCanceled(c, true)
}

// Restore godoc
// PUT /api/v1/timetables/restore/:recordId
func (h *TimetableHandler) Restore(c *gin.Context) {
	h.setCanceled(c, false)
}

func (h *TimetableHandler) setCanceled(c *gin.Context, canceled bool) {
	id, ok := paramID(c, "recordId")
	if !ok {
		return
	}

	entry, err := h.timetableService.SetCanceled(c.Request.Context(), middleware.Abilities(c), id, canceled)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": entry})
}

// Delete godoc
// DELETE /api/v1/timetables/:recordId
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "recordId")
	if !ok {
		return
	}

	if err := h.timetableService.Delete(c.Request.Context(), middleware.Abilities(c), id); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "lesson deleted"})
}

// dateRange reads the optional from/to query parameters.
func dateRange(c *gin.Context) (service.DateRange, bool) {
	var r service.DateRange
	var err error
	if raw := c.Query("from"); raw != "" {
		if r.From, err = service.ParseDate(raw); err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
			return r, false
		}
	}
	if raw := c.Query("to"); raw != "" {
		if r.To, err = service.ParseDate(raw); err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
			return r, false
		}
	}
	return r, true
}
