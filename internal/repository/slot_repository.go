package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

// SlotRepository reads the occupied time-slots feeding conflict checks.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListClassSlots returns the timetable slots of a class for a term.
func (r *SlotRepository) ListClassSlots(ctx context.Context, classID, termID string) ([]models.OccupiedSlot, error) {
	const query = `SELECT cs.subject_id, s.name AS subject_name, cs.day_of_week, cs.start_time, cs.end_time
        FROM class_subject_slots cs
        JOIN subjects s ON s.id = cs.subject_id
        WHERE cs.class_id = $1 AND cs.term_id = $2
        ORDER BY cs.day_of_week ASC, cs.start_time ASC`
	var slots []models.OccupiedSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list class slots: %w", err)
	}
	for i := range slots {
		slots[i].Source = models.SlotSourceRegularClass
	}
	return slots, nil
}

// ListElectiveSlots returns one slot per active elective assignment a student
// holds in the term, resolved through the elective subject's own timetable slot.
func (r *SlotRepository) ListElectiveSlots(ctx context.Context, studentID, termID string) ([]models.OccupiedSlot, error) {
	const query = `SELECT es.subject_id, s.name AS subject_name, es.day_of_week, es.start_time, es.end_time
        FROM elective_assignments ea
        JOIN elective_subjects es ON es.id = ea.elective_subject_id
        JOIN subjects s ON s.id = es.subject_id
        WHERE ea.student_id = $1 AND es.term_id = $2 AND ea.status = $3
        ORDER BY es.day_of_week ASC, es.start_time ASC`
	var slots []models.OccupiedSlot
	if err := r.db.SelectContext(ctx, &slots, query, studentID, termID, models.AssignmentStatusActive); err != nil {
		return nil, fmt.Errorf("list elective slots: %w", err)
	}
	for i := range slots {
		slots[i].Source = models.SlotSourceElective
	}
	return slots, nil
}
