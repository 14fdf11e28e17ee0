package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

// ErrCapacityReached signals that a conditional insert lost the race for the
// last seat of a bounded elective subject.
var ErrCapacityReached = errors.New("elective subject capacity reached")

// ElectiveAssignmentRepository persists student-to-elective assignments.
type ElectiveAssignmentRepository struct {
	db *sqlx.DB
}

// NewElectiveAssignmentRepository constructs the repository.
func NewElectiveAssignmentRepository(db *sqlx.DB) *ElectiveAssignmentRepository {
	return &ElectiveAssignmentRepository{db: db}
}

// Exists checks if an assignment exists for the (subject, student) pair.
func (r *ElectiveAssignmentRepository) Exists(ctx context.Context, electiveSubjectID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM elective_assignments WHERE elective_subject_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, electiveSubjectID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check elective assignment: %w", err)
	}
	return true, nil
}

// CreateIfUnderCapacity inserts the assignment only while the subject still
// has a free seat. The capacity guard runs inside the INSERT itself so two
// concurrent batches cannot jointly overstep max_students; a loser of that
// race gets ErrCapacityReached.
func (r *ElectiveAssignmentRepository) CreateIfUnderCapacity(ctx context.Context, assignment *models.ElectiveAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusActive
	}

	const query = `INSERT INTO elective_assignments (id, elective_subject_id, student_id, status, assigned_at, assigned_by)
        SELECT $1, $2, $3, $4, $5, $6
        FROM elective_subjects es
        WHERE es.id = $2
          AND (es.max_students IS NULL OR (
              SELECT COUNT(*) FROM elective_assignments ea
              WHERE ea.elective_subject_id = es.id AND ea.status = $4
          ) < es.max_students)`

	result, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.ElectiveSubjectID,
		assignment.StudentID,
		assignment.Status,
		assignment.AssignedAt,
		assignment.AssignedBy,
	)
	if err != nil {
		return fmt.Errorf("create elective assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check created assignment rows: %w", err)
	}
	if affected == 0 {
		return ErrCapacityReached
	}
	return nil
}

// Delete removes the assignment for the (subject, student) pair.
func (r *ElectiveAssignmentRepository) Delete(ctx context.Context, electiveSubjectID, studentID string) error {
	const query = `DELETE FROM elective_assignments WHERE elective_subject_id = $1 AND student_id = $2`
	result, err := r.db.ExecContext(ctx, query, electiveSubjectID, studentID)
	if err != nil {
		return fmt.Errorf("delete elective assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindDetail returns an assignment with student context.
func (r *ElectiveAssignmentRepository) FindDetail(ctx context.Context, id string) (*models.ElectiveAssignmentDetail, error) {
	const query = `SELECT ea.id, ea.elective_subject_id, ea.student_id, ea.status, ea.assigned_at, ea.assigned_by,
        s.full_name AS student_name, s.nis AS student_nis
        FROM elective_assignments ea
        JOIN students s ON s.id = ea.student_id
        WHERE ea.id = $1`
	var detail models.ElectiveAssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListBySubject returns assignments for an elective subject in assignment order.
func (r *ElectiveAssignmentRepository) ListBySubject(ctx context.Context, electiveSubjectID string) ([]models.ElectiveAssignmentDetail, error) {
	const query = `SELECT ea.id, ea.elective_subject_id, ea.student_id, ea.status, ea.assigned_at, ea.assigned_by,
        s.full_name AS student_name, s.nis AS student_nis
        FROM elective_assignments ea
        JOIN students s ON s.id = ea.student_id
        WHERE ea.elective_subject_id = $1
        ORDER BY ea.assigned_at ASC, s.full_name ASC`
	var assignments []models.ElectiveAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, electiveSubjectID); err != nil {
		return nil, fmt.Errorf("list elective assignments: %w", err)
	}
	return assignments, nil
}
