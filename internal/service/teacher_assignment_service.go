package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-elective-api/internal/models"
	appErrors "github.com/noah-isme/sma-elective-api/pkg/errors"
)

type teacherAssignmentRepo interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error)
	ExistsTuple(ctx context.Context, teacherID, classID, academicYearID string, subjectID *string) (bool, error)
	ExistsSupervisor(ctx context.Context, teacherID, academicYearID string) (bool, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Delete(ctx context.Context, teacherID, assignmentID string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateTeacherAssignmentRequest describes assignment payload.
type CreateTeacherAssignmentRequest struct {
	ClassID        string                `json:"class_id" validate:"required"`
	SubjectID      *string               `json:"subject_id,omitempty"`
	AcademicYearID string                `json:"academic_year_id" validate:"required"`
	BranchID       string                `json:"branch_id" validate:"required"`
	Role           models.AssignmentRole `json:"role" validate:"required"`
}

// TeacherAssignmentService validates and persists teacher-to-class
// assignments: no duplicate (teacher, class, year, subject) tuples and at
// most one SUPERVISOR assignment per teacher per academic year.
type TeacherAssignmentService struct {
	teachers    teacherReader
	classes     classReader
	subjects    subjectReader
	assignments teacherAssignmentRepo
	audits      auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherAssignmentService creates a service instance.
func NewTeacherAssignmentService(
	teachers teacherReader,
	classes classReader,
	subjects subjectReader,
	assignments teacherAssignmentRepo,
	audits auditWriter,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeacherAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAssignmentService{
		teachers:    teachers,
		classes:     classes,
		subjects:    subjects,
		assignments: assignments,
		audits:      audits,
		validator:   validate,
		logger:      logger,
	}
}

// ListByTeacher returns assignments for the teacher.
func (s *TeacherAssignmentService) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	assignments, err := s.assignments.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Validate applies the uniqueness rules to a candidate assignment without
// persisting it. Short-circuits on the first failure.
func (s *TeacherAssignmentService) Validate(ctx context.Context, teacherID string, req CreateTeacherAssignmentRequest) error {
	if teacherID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "missing teacher id")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !req.Role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown assignment role")
	}
	if req.Role.RequiresSubject() && (req.SubjectID == nil || *req.SubjectID == "") {
		return appErrors.Clone(appErrors.ErrMissingSubject, "")
	}

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher inactive")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if req.SubjectID != nil && *req.SubjectID != "" {
		if _, err := s.subjects.FindByID(ctx, *req.SubjectID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
	}

	exists, err := s.assignments.ExistsTuple(ctx, teacherID, req.ClassID, req.AcademicYearID, req.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateAssignment, "teacher already assigned to this class for the year")
	}

	if req.Role == models.AssignmentRoleSupervisor {
		supervising, err := s.assignments.ExistsSupervisor(ctx, teacherID, req.AcademicYearID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check supervisor uniqueness")
		}
		if supervising {
			return appErrors.Clone(appErrors.ErrAlreadySupervising, "")
		}
	}

	return nil
}

// Assign validates and persists a new teacher assignment.
func (s *TeacherAssignmentService) Assign(ctx context.Context, teacherID string, req CreateTeacherAssignmentRequest) (*models.TeacherAssignment, error) {
	if err := s.Validate(ctx, teacherID, req); err != nil {
		return nil, err
	}

	assignment := &models.TeacherAssignment{
		TeacherID:      teacherID,
		ClassID:        req.ClassID,
		SubjectID:      req.SubjectID,
		AcademicYearID: req.AcademicYearID,
		BranchID:       req.BranchID,
		Role:           req.Role,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Remove deletes an assignment and records the optional free-text comment as
// an audit entry. A failed audit write never undoes the deletion.
func (s *TeacherAssignmentService) Remove(ctx context.Context, teacherID, assignmentID, comment, actorID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.assignments.Delete(ctx, teacherID, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}

	if s.audits != nil {
		var userID *string
		if actorID != "" {
			userID = &actorID
		}
		entry := &models.AuditLog{
			UserID:     userID,
			Action:     models.AuditActionAssignmentDelete,
			Resource:   "teacher_assignments",
			ResourceID: &assignmentID,
			Comment:    comment,
		}
		if err := s.audits.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("audit log write failed", zap.String("assignment_id", assignmentID), zap.Error(err))
		}
	}
	return nil
}
