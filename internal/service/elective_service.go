package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-elective-api/internal/models"
	"github.com/noah-isme/sma-elective-api/internal/repository"
	appErrors "github.com/noah-isme/sma-elective-api/pkg/errors"
)

type electiveSubjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.ElectiveSubjectDetail, error)
	CountActiveAssignments(ctx context.Context, id string) (int, error)
	RecomputeStatus(ctx context.Context, id string) error
}

type electiveAssignmentRepo interface {
	Exists(ctx context.Context, electiveSubjectID, studentID string) (bool, error)
	CreateIfUnderCapacity(ctx context.Context, assignment *models.ElectiveAssignment) error
	Delete(ctx context.Context, electiveSubjectID, studentID string) error
	ListBySubject(ctx context.Context, electiveSubjectID string) ([]models.ElectiveAssignmentDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type conflictChecker interface {
	Check(ctx context.Context, studentID, termID string, candidate CandidateSlot) (*models.ConflictResult, error)
}

type slotInvalidator interface {
	Invalidate(ctx context.Context, studentID, termID string)
}

type enrollmentRecorder interface {
	RecordEnrollment(outcome string)
	RecordConflict(kind string)
}

// AddStudentsRequest describes a batch enrollment payload.
type AddStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// ElectiveService orchestrates adding and removing students from elective
// subjects while keeping capacity and derived status consistent.
type ElectiveService struct {
	electives   electiveSubjectRepo
	assignments electiveAssignmentRepo
	students    studentReader
	conflicts   conflictChecker
	slotIndex   slotInvalidator
	metrics     enrollmentRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewElectiveService constructs ElectiveService. Metrics and slot
// invalidation are optional.
func NewElectiveService(
	electives electiveSubjectRepo,
	assignments electiveAssignmentRepo,
	students studentReader,
	conflicts conflictChecker,
	slotIndex slotInvalidator,
	metrics enrollmentRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
) *ElectiveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElectiveService{
		electives:   electives,
		assignments: assignments,
		students:    students,
		conflicts:   conflicts,
		slotIndex:   slotIndex,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// ListAssignments returns the assignments of an elective subject.
func (s *ElectiveService) ListAssignments(ctx context.Context, electiveSubjectID string) ([]models.ElectiveAssignmentDetail, error) {
	if _, err := s.electives.FindByID(ctx, electiveSubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "elective subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load elective subject")
	}
	assignments, err := s.assignments.ListBySubject(ctx, electiveSubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// AddStudents enrolls a batch of students into an elective subject. The
// capacity pre-check is all-or-nothing for the batch; per-student failures
// afterwards are collected and reported alongside successes. Students are
// processed in the order supplied.
func (s *ElectiveService) AddStudents(ctx context.Context, electiveSubjectID string, req AddStudentsRequest, actorID string) (*models.AddStudentsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if actorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing actor")
	}

	subject, err := s.electives.FindByID(ctx, electiveSubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "elective subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load elective subject")
	}

	currentCount, err := s.electives.CountActiveAssignments(ctx, electiveSubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	if subject.MaxStudents != nil && currentCount+len(req.StudentIDs) > *subject.MaxStudents {
		overflow := currentCount + len(req.StudentIDs) - *subject.MaxStudents
		s.recordEnrollment("capacity_rejected")
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded,
			fmt.Sprintf("adding %d students exceeds capacity of %d by %d", len(req.StudentIDs), *subject.MaxStudents, overflow))
	}

	result := &models.AddStudentsResult{
		Created: make([]models.ElectiveAssignmentDetail, 0, len(req.StudentIDs)),
		Errors:  make([]models.StudentAssignmentError, 0),
	}

	for _, studentID := range req.StudentIDs {
		detail, studentErr, err := s.addOne(ctx, subject, studentID, actorID)
		if err != nil {
			return nil, err
		}
		if studentErr != nil {
			result.Errors = append(result.Errors, *studentErr)
			s.recordEnrollment("rejected")
			continue
		}
		result.Created = append(result.Created, *detail)
		s.recordEnrollment("created")
		if s.slotIndex != nil {
			s.slotIndex.Invalidate(ctx, studentID, subject.TermID)
		}
	}

	// Status drift is tolerated; a failed recompute never rolls back
	// successful enrollments.
	if err := s.electives.RecomputeStatus(ctx, electiveSubjectID); err != nil {
		s.logger.Warn("elective status recompute failed",
			zap.String("elective_subject_id", electiveSubjectID), zap.Error(err))
	}

	return result, nil
}

func (s *ElectiveService) addOne(ctx context.Context, subject *models.ElectiveSubjectDetail, studentID, actorID string) (*models.ElectiveAssignmentDetail, *models.StudentAssignmentError, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, studentError(studentID, appErrors.ErrNotFound.Code, "student not found"), nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, studentError(studentID, appErrors.ErrPreconditionFailed.Code, "student is not active"), nil
	}

	exists, err := s.assignments.Exists(ctx, subject.ID, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, studentError(studentID, appErrors.ErrConflict.Code, "student already assigned to this elective subject"), nil
	}

	conflict, err := s.conflicts.Check(ctx, studentID, subject.TermID, CandidateSlot{
		SubjectID:   subject.SubjectID,
		SubjectName: subject.SubjectName,
		DayOfWeek:   subject.DayOfWeek,
		StartTime:   subject.StartTime,
		EndTime:     subject.EndTime,
	})
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return nil, studentError(studentID, appErrors.ErrNotFound.Code, "student has no class for term"), nil
		}
		return nil, nil, err
	}
	if conflict.HasConflict {
		s.recordConflict(string(conflict.Kind))
		return nil, conflictError(studentID, conflict), nil
	}

	assignment := &models.ElectiveAssignment{
		ElectiveSubjectID: subject.ID,
		StudentID:         studentID,
		Status:            models.AssignmentStatusActive,
		AssignedAt:        time.Now().UTC(),
		AssignedBy:        actorID,
	}
	if err := s.assignments.CreateIfUnderCapacity(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrCapacityReached) {
			return nil, studentError(studentID, appErrors.ErrSubjectFull.Code, "elective subject is full"), nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	return &models.ElectiveAssignmentDetail{
		ElectiveAssignment: *assignment,
		StudentName:        student.FullName,
		StudentNIS:         student.NIS,
	}, nil, nil
}

// RemoveStudent deletes a student's assignment from an elective subject and
// refreshes the derived status from a fresh count.
func (s *ElectiveService) RemoveStudent(ctx context.Context, electiveSubjectID, studentID string) error {
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "missing student id")
	}

	subject, err := s.electives.FindByID(ctx, electiveSubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "elective subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load elective subject")
	}

	if err := s.assignments.Delete(ctx, electiveSubjectID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.recordEnrollment("removed")

	if err := s.electives.RecomputeStatus(ctx, electiveSubjectID); err != nil {
		s.logger.Warn("elective status recompute failed",
			zap.String("elective_subject_id", electiveSubjectID), zap.Error(err))
	}
	if s.slotIndex != nil {
		s.slotIndex.Invalidate(ctx, studentID, subject.TermID)
	}
	return nil
}

func (s *ElectiveService) recordEnrollment(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordEnrollment(outcome)
	}
}

func (s *ElectiveService) recordConflict(kind string) {
	if s.metrics != nil {
		s.metrics.RecordConflict(kind)
	}
}

func studentError(studentID, code, message string) *models.StudentAssignmentError {
	return &models.StudentAssignmentError{StudentID: studentID, Code: code, Message: message}
}

func conflictError(studentID string, conflict *models.ConflictResult) *models.StudentAssignmentError {
	switch conflict.Kind {
	case models.ConflictKindDuplicateSubject:
		return studentError(studentID, appErrors.ErrDuplicateSubject.Code,
			fmt.Sprintf("student already takes %s via %s", conflict.Slot.SubjectName, conflict.Slot.Source))
	case models.ConflictKindTimeOverlap:
		return studentError(studentID, appErrors.ErrTimeOverlap.Code,
			fmt.Sprintf("overlaps %s (%s) on %s %s-%s", conflict.Slot.SubjectName, conflict.Slot.Source,
				conflict.Slot.DayOfWeek, conflict.Slot.StartTime, conflict.Slot.EndTime))
	default:
		return studentError(studentID, appErrors.ErrConflict.Code, "schedule conflict detected")
	}
}
