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

type teacherAssignmentService interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error)
	Assign(ctx context.Context, teacherID string, req service.CreateTeacherAssignmentRequest) (*models.TeacherAssignment, error)
	Remove(ctx context.Context, teacherID, assignmentID, comment, actorID string) error
}

// DeleteAssignmentRequest carries the optional audit comment for a removal.
type DeleteAssignmentRequest struct {
	Comment string `json:"comment"`
}

// TeacherAssignmentHandler exposes roster assignment endpoints.
type TeacherAssignmentHandler struct {
	assignments teacherAssignmentService
}

// NewTeacherAssignmentHandler constructs TeacherAssignmentHandler.
func NewTeacherAssignmentHandler(assignments teacherAssignmentService) *TeacherAssignmentHandler {
	return &TeacherAssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List assignments of a teacher
// @Tags Teacher Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *TeacherAssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignments.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Create godoc
// @Summary Assign a teacher to a class
// @Tags Teacher Assignments
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.CreateTeacherAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/assignments [post]
func (h *TeacherAssignmentHandler) Create(c *gin.Context) {
	var req service.CreateTeacherAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Remove a teacher assignment
// @Tags Teacher Assignments
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param assignmentId path string true "Assignment ID"
// @Param payload body DeleteAssignmentRequest false "Optional audit comment"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments/{assignmentId} [delete]
func (h *TeacherAssignmentHandler) Delete(c *gin.Context) {
	var req DeleteAssignmentRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	var actorID string
	if claims := middleware.CurrentUser(c); claims != nil {
		actorID = claims.UserID
	}

	if err := h.assignments.Remove(c.Request.Context(), c.Param("id"), c.Param("assignmentId"), req.Comment, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}
