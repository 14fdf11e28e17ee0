package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, nis, full_name, branch_id, active, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ActiveClassIDForTerm resolves the class a student attends in a term.
// Returns sql.ErrNoRows when the student has no active enrollment for the term.
func (r *StudentRepository) ActiveClassIDForTerm(ctx context.Context, studentID, termID string) (string, error) {
	const query = `SELECT class_id FROM enrollments WHERE student_id = $1 AND term_id = $2 AND status = $3 LIMIT 1`
	var classID string
	if err := r.db.GetContext(ctx, &classID, query, studentID, termID, models.AssignmentStatusActive); err != nil {
		return "", err
	}
	return classID, nil
}

// ExistsActive reports whether the student exists and is active.
func (r *StudentRepository) ExistsActive(ctx context.Context, id string) (bool, error) {
	const query = `SELECT active FROM students WHERE id = $1`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, id); err != nil {
		return false, fmt.Errorf("check student active: %w", err)
	}
	return active, nil
}
