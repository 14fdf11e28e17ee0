package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-elective-api/internal/models"
	appErrors "github.com/noah-isme/sma-elective-api/pkg/errors"
)

type studentClassResolver interface {
	ActiveClassIDForTerm(ctx context.Context, studentID, termID string) (string, error)
}

type slotReader interface {
	ListClassSlots(ctx context.Context, classID, termID string) ([]models.OccupiedSlot, error)
	ListElectiveSlots(ctx context.Context, studentID, termID string) ([]models.OccupiedSlot, error)
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var dayOrder = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
	"SATURDAY":  6,
	"SUNDAY":    7,
}

// SlotIndexService answers which subject-time slots a student already
// occupies in a term: the regular class timetable plus active elective
// assignments. Read only.
type SlotIndexService struct {
	students studentClassResolver
	slots    slotReader
	cache    slotCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSlotIndexService constructs SlotIndexService. The cache is optional.
func NewSlotIndexService(students studentClassResolver, slots slotReader, cache slotCache, cacheTTL time.Duration, logger *zap.Logger) *SlotIndexService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotIndexService{students: students, slots: slots, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// OccupiedSlots returns the ordered set of slots occupied by the student in
// the term. Fails NotFound when the student has no class enrollment for the
// term, which is a prerequisite for conflict checking.
func (s *SlotIndexService) OccupiedSlots(ctx context.Context, studentID, termID string) ([]models.OccupiedSlot, error) {
	key := slotCacheKey(studentID, termID)
	if s.cache != nil {
		var cached []models.OccupiedSlot
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("slot cache read failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	classID, err := s.students.ActiveClassIDForTerm(ctx, studentID, termID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no class for term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student class")
	}

	classSlots, err := s.slots.ListClassSlots(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class slots")
	}
	electiveSlots, err := s.slots.ListElectiveSlots(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load elective slots")
	}

	occupied := make([]models.OccupiedSlot, 0, len(classSlots)+len(electiveSlots))
	occupied = append(occupied, classSlots...)
	occupied = append(occupied, electiveSlots...)
	sort.SliceStable(occupied, func(i, j int) bool {
		if dayOrder[occupied[i].DayOfWeek] != dayOrder[occupied[j].DayOfWeek] {
			return dayOrder[occupied[i].DayOfWeek] < dayOrder[occupied[j].DayOfWeek]
		}
		return occupied[i].StartTime < occupied[j].StartTime
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, occupied, s.cacheTTL); err != nil {
			s.logger.Warn("slot cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	return occupied, nil
}

// Invalidate drops the cached slot index for a student and term.
func (s *SlotIndexService) Invalidate(ctx context.Context, studentID, termID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, slotCacheKey(studentID, termID)); err != nil {
		s.logger.Warn("slot cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func slotCacheKey(studentID, termID string) string {
	return fmt.Sprintf("electives:slots:%s:%s", termID, studentID)
}
