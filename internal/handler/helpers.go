package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
)

// paramID parses a positive integer route parameter, answering 400 when it
// is malformed.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// failService maps a service error to its response. Unrecognized errors are
// logged and reported as 500.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotSubjectTeacher):
		response.Fail(c, http.StatusForbidden, response.ErrNotSubjectTeacher)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidGradeValue):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"value": err.Error()})
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidDate):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
	case errors.Is(err, service.ErrInvalidOffset):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"offset": err.Error()})
	case errors.Is(err, service.ErrEmptyQuery):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"query": err.Error()})
	case errors.Is(err, service.ErrSlotTaken):
		response.Fail(c, http.StatusBadRequest, response.ErrSlotTaken)
	case errors.Is(err, service.ErrGroupExists),
		errors.Is(err, service.ErrSubjectExists),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyTeaching),
		errors.Is(err, service.ErrTeacherAlreadyAssigned):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
