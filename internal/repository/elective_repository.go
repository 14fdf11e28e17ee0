package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

// ElectiveSubjectRepository handles persistence of elective offerings.
type ElectiveSubjectRepository struct {
	db *sqlx.DB
}

// NewElectiveSubjectRepository constructs the repository.
func NewElectiveSubjectRepository(db *sqlx.DB) *ElectiveSubjectRepository {
	return &ElectiveSubjectRepository{db: db}
}

// FindByID returns an elective subject with subject and group context.
func (r *ElectiveSubjectRepository) FindByID(ctx context.Context, id string) (*models.ElectiveSubjectDetail, error) {
	const query = `SELECT es.id, es.group_id, es.subject_id, es.term_id, es.day_of_week, es.start_time, es.end_time,
        es.max_students, es.status, es.created_at, es.updated_at,
        s.name AS subject_name, s.code AS subject_code, g.name AS group_name
        FROM elective_subjects es
        JOIN subjects s ON s.id = es.subject_id
        JOIN elective_groups g ON g.id = es.group_id
        WHERE es.id = $1`
	var detail models.ElectiveSubjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CountActiveAssignments returns the number of active assignments held by the offering.
func (r *ElectiveSubjectRepository) CountActiveAssignments(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM elective_assignments WHERE elective_subject_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id, models.AssignmentStatusActive); err != nil {
		return 0, fmt.Errorf("count elective assignments: %w", err)
	}
	return count, nil
}

// RecomputeStatus rewrites the derived FULL/ACTIVE status from a fresh
// assignment count. Always computed inside the database so concurrent adds
// and removes cannot resurrect a stale status.
func (r *ElectiveSubjectRepository) RecomputeStatus(ctx context.Context, id string) error {
	const query = `UPDATE elective_subjects es SET
        status = CASE
            WHEN es.max_students IS NOT NULL AND (
                SELECT COUNT(*) FROM elective_assignments ea
                WHERE ea.elective_subject_id = es.id AND ea.status = $2
            ) >= es.max_students THEN $3
            ELSE $4
        END,
        updated_at = NOW()
        WHERE es.id = $1`
	if _, err := r.db.ExecContext(ctx, query, id,
		models.AssignmentStatusActive,
		models.ElectiveSubjectStatusFull,
		models.ElectiveSubjectStatusActive,
	); err != nil {
		return fmt.Errorf("recompute elective status: %w", err)
	}
	return nil
}
