package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-elective-api/internal/middleware"
	"github.com/noah-isme/sma-elective-api/internal/models"
	"github.com/noah-isme/sma-elective-api/internal/service"
	appErrors "github.com/noah-isme/sma-elective-api/pkg/errors"
	"github.com/noah-isme/sma-elective-api/pkg/response"
)

type electiveService interface {
	ListAssignments(ctx context.Context, electiveSubjectID string) ([]models.ElectiveAssignmentDetail, error)
	AddStudents(ctx context.Context, electiveSubjectID string, req service.AddStudentsRequest, actorID string) (*models.AddStudentsResult, error)
	RemoveStudent(ctx context.Context, electiveSubjectID, studentID string) error
}

// ElectiveHandler exposes elective enrollment endpoints.
type ElectiveHandler struct {
	electives electiveService
}

// NewElectiveHandler constructs ElectiveHandler.
func NewElectiveHandler(electives electiveService) *ElectiveHandler {
	return &ElectiveHandler{electives: electives}
}

// List godoc
// @Summary List assignments of an elective subject
// @Tags Electives
// @Produce json
// @Param id path string true "Elective subject ID"
// @Success 200 {object} response.Envelope
// @Router /elective-subjects/{id}/students [get]
func (h *ElectiveHandler) List(c *gin.Context) {
	assignments, err := h.electives.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// AddStudents godoc
// @Summary Enroll a batch of students into an elective subject
// @Tags Electives
// @Accept json
// @Produce json
// @Param id path string true "Elective subject ID"
// @Param payload body service.AddStudentsRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /elective-subjects/{id}/students [post]
func (h *ElectiveHandler) AddStudents(c *gin.Context) {
	var req service.AddStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var actorID string
	if claims := middleware.CurrentUser(c); claims != nil {
		actorID = claims.UserID
	}

	result, err := h.electives.AddStudents(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if onlyConflicts(result) {
		response.JSON(c, http.StatusConflict, result, nil)
		return
	}
	response.Created(c, result)
}

// RemoveStudent godoc
// @Summary Remove a student from an elective subject
// @Tags Electives
// @Produce json
// @Param id path string true "Elective subject ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /elective-subjects/{id}/students/{studentId} [delete]
func (h *ElectiveHandler) RemoveStudent(c *gin.Context) {
	if err := h.electives.RemoveStudent(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}

// onlyConflicts reports whether a batch produced no creations and every
// failure was a conflict or duplicate, which maps to a 409 for the whole
// request instead of a partial-success 201.
func onlyConflicts(result *models.AddStudentsResult) bool {
	if result == nil || len(result.Created) > 0 || len(result.Errors) == 0 {
		return false
	}
	for _, e := range result.Errors {
		switch e.Code {
		case appErrors.ErrConflict.Code, appErrors.ErrDuplicateSubject.Code, appErrors.ErrTimeOverlap.Code, appErrors.ErrSubjectFull.Code:
		default:
			return false
		}
	}
	return true
}
