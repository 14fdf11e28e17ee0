package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

type slotIndexReader interface {
	OccupiedSlots(ctx context.Context, studentID, termID string) ([]models.OccupiedSlot, error)
}

// CandidateSlot describes the offering a student is about to be enrolled in.
// Checking happens at the underlying subject level, so a student can neither
// hold a regular-class enrollment and an elective in the same subject nor two
// electives wrapping the same subject.
type CandidateSlot struct {
	SubjectID   string
	SubjectName string
	DayOfWeek   string
	StartTime   string
	EndTime     string
}

// ConflictService decides whether enrolling a student in a candidate elective
// would create a duplicate-subject enrollment or a time overlap. Read only;
// each student in a batch is evaluated independently.
type ConflictService struct {
	slotIndex slotIndexReader
	logger    *zap.Logger
}

// NewConflictService constructs ConflictService.
func NewConflictService(slotIndex slotIndexReader, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{slotIndex: slotIndex, logger: logger}
}

// Check evaluates the candidate against the student's occupied slots.
func (s *ConflictService) Check(ctx context.Context, studentID, termID string, candidate CandidateSlot) (*models.ConflictResult, error) {
	occupied, err := s.slotIndex.OccupiedSlots(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}

	for i := range occupied {
		if occupied[i].SubjectID == candidate.SubjectID {
			slot := occupied[i]
			return &models.ConflictResult{HasConflict: true, Kind: models.ConflictKindDuplicateSubject, Slot: &slot}, nil
		}
	}

	for i := range occupied {
		if overlaps(occupied[i], candidate) {
			slot := occupied[i]
			return &models.ConflictResult{HasConflict: true, Kind: models.ConflictKindTimeOverlap, Slot: &slot}, nil
		}
	}

	return &models.ConflictResult{HasConflict: false}, nil
}

// overlaps applies half-open interval overlap on same-day slots. Times are
// zero-padded HH:MM strings, so string order is chronological order.
func overlaps(existing models.OccupiedSlot, candidate CandidateSlot) bool {
	if existing.DayOfWeek != candidate.DayOfWeek {
		return false
	}
	return existing.StartTime < candidate.EndTime && candidate.StartTime < existing.EndTime
}
