package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-elective-api/internal/models"
	"github.com/noah-isme/sma-elective-api/internal/repository"
	appErrors "github.com/noah-isme/sma-elective-api/pkg/errors"
)

type mockElectiveSubjects struct {
	subject    *models.ElectiveSubjectDetail
	count      int
	recomputes int
}

func (m *mockElectiveSubjects) FindByID(ctx context.Context, id string) (*models.ElectiveSubjectDetail, error) {
	if m.subject == nil || m.subject.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.subject, nil
}

func (m *mockElectiveSubjects) CountActiveAssignments(ctx context.Context, id string) (int, error) {
	return m.count, nil
}

func (m *mockElectiveSubjects) RecomputeStatus(ctx context.Context, id string) error {
	m.recomputes++
	return nil
}

type mockElectiveAssignments struct {
	existing  map[string]bool
	created   []models.ElectiveAssignment
	seats     *int
	deleteErr error
	deleted   []string
	listing   []models.ElectiveAssignmentDetail
}

func (m *mockElectiveAssignments) Exists(ctx context.Context, electiveSubjectID, studentID string) (bool, error) {
	return m.existing[electiveSubjectID+"/"+studentID], nil
}

func (m *mockElectiveAssignments) CreateIfUnderCapacity(ctx context.Context, assignment *models.ElectiveAssignment) error {
	if m.seats != nil && len(m.created) >= *m.seats {
		return repository.ErrCapacityReached
	}
	if assignment.ID == "" {
		assignment.ID = fmt.Sprintf("assign-%d", len(m.created)+1)
	}
	m.created = append(m.created, *assignment)
	return nil
}

func (m *mockElectiveAssignments) Delete(ctx context.Context, electiveSubjectID, studentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, studentID)
	return nil
}

func (m *mockElectiveAssignments) ListBySubject(ctx context.Context, electiveSubjectID string) ([]models.ElectiveAssignmentDetail, error) {
	return m.listing, nil
}

type mockStudents struct {
	students map[string]*models.Student
}

func (m *mockStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockConflicts struct {
	results map[string]*models.ConflictResult
	errs    map[string]error
}

func (m *mockConflicts) Check(ctx context.Context, studentID, termID string, candidate CandidateSlot) (*models.ConflictResult, error) {
	if err, ok := m.errs[studentID]; ok {
		return nil, err
	}
	if r, ok := m.results[studentID]; ok {
		return r, nil
	}
	return &models.ConflictResult{}, nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, studentID, termID string) {
	m.invalidated = append(m.invalidated, studentID)
}

type mockRecorder struct {
	enrollments map[string]int
	conflicts   map[string]int
}

func (m *mockRecorder) RecordEnrollment(outcome string) {
	if m.enrollments == nil {
		m.enrollments = make(map[string]int)
	}
	m.enrollments[outcome]++
}

func (m *mockRecorder) RecordConflict(kind string) {
	if m.conflicts == nil {
		m.conflicts = make(map[string]int)
	}
	m.conflicts[kind]++
}

func intp(v int) *int { return &v }

func electiveFixture(maxStudents *int, count int) *mockElectiveSubjects {
	return &mockElectiveSubjects{
		subject: &models.ElectiveSubjectDetail{
			ElectiveSubject: models.ElectiveSubject{
				ID:          "es1",
				GroupID:     "g1",
				SubjectID:   "subj-robotics",
				TermID:      "t1",
				DayOfWeek:   "MONDAY",
				StartTime:   "10:00",
				EndTime:     "11:30",
				MaxStudents: maxStudents,
				Status:      models.ElectiveSubjectStatusActive,
			},
			SubjectName: "Robotics",
			GroupName:   "STEM Electives",
		},
		count: count,
	}
}

func activeStudents(ids ...string) *mockStudents {
	m := &mockStudents{students: make(map[string]*models.Student)}
	for _, id := range ids {
		m.students[id] = &models.Student{ID: id, NIS: "nis-" + id, FullName: "Student " + id, Active: true}
	}
	return m
}

func TestElectiveServiceAddStudentsPartialSuccess(t *testing.T) {
	subjects := electiveFixture(intp(30), 0)
	assignments := &mockElectiveAssignments{}
	students := activeStudents("s1", "s3")
	students.students["s3"].Active = false
	invalidator := &mockInvalidator{}
	recorder := &mockRecorder{}
	svc := NewElectiveService(subjects, assignments, students, &mockConflicts{}, invalidator, recorder, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1", "s2", "s3"}}, "admin-1")
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "s1", result.Created[0].StudentID)
	assert.Equal(t, "admin-1", result.Created[0].AssignedBy)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "s2", result.Errors[0].StudentID)
	assert.Equal(t, appErrors.ErrNotFound.Code, result.Errors[0].Code)
	assert.Equal(t, "s3", result.Errors[1].StudentID)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, result.Errors[1].Code)
	assert.Equal(t, []string{"s1"}, invalidator.invalidated)
	assert.Equal(t, 1, subjects.recomputes)
	assert.Equal(t, 1, recorder.enrollments["created"])
	assert.Equal(t, 2, recorder.enrollments["rejected"])
}

func TestElectiveServiceAddStudentsBatchExceedsCapacity(t *testing.T) {
	subjects := electiveFixture(intp(10), 9)
	assignments := &mockElectiveAssignments{}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1", "s2"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1", "s2"}}, "admin-1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
	assert.Contains(t, err.Error(), "by 1")
	assert.Empty(t, assignments.created)
}

func TestElectiveServiceAddStudentsUnboundedCapacity(t *testing.T) {
	subjects := electiveFixture(nil, 500)
	assignments := &mockElectiveAssignments{}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Empty(t, result.Errors)
}

func TestElectiveServiceAddStudentsScheduleConflicts(t *testing.T) {
	subjects := electiveFixture(intp(30), 0)
	conflicts := &mockConflicts{results: map[string]*models.ConflictResult{
		"s1": {HasConflict: true, Kind: models.ConflictKindDuplicateSubject, Slot: &models.OccupiedSlot{
			SubjectID: "subj-robotics", SubjectName: "Robotics", Source: models.SlotSourceRegularClass,
		}},
		"s2": {HasConflict: true, Kind: models.ConflictKindTimeOverlap, Slot: &models.OccupiedSlot{
			SubjectID: "subj-phy", SubjectName: "Physics", Source: models.SlotSourceRegularClass,
			DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "10:30",
		}},
	}}
	recorder := &mockRecorder{}
	svc := NewElectiveService(subjects, &mockElectiveAssignments{}, activeStudents("s1", "s2"), conflicts, nil, recorder, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1", "s2"}}, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, appErrors.ErrDuplicateSubject.Code, result.Errors[0].Code)
	assert.Equal(t, appErrors.ErrTimeOverlap.Code, result.Errors[1].Code)
	assert.Contains(t, result.Errors[1].Message, "Physics")
	assert.Equal(t, 1, recorder.conflicts[string(models.ConflictKindDuplicateSubject)])
	assert.Equal(t, 1, recorder.conflicts[string(models.ConflictKindTimeOverlap)])
}

func TestElectiveServiceAddStudentsAlreadyAssigned(t *testing.T) {
	subjects := electiveFixture(intp(30), 1)
	assignments := &mockElectiveAssignments{existing: map[string]bool{"es1/s1": true}}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, appErrors.ErrConflict.Code, result.Errors[0].Code)
}

func TestElectiveServiceAddStudentsLosesCapacityRace(t *testing.T) {
	// Pre-check passes but the guarded insert reports the subject filled up
	// in between.
	subjects := electiveFixture(intp(10), 0)
	assignments := &mockElectiveAssignments{seats: intp(0)}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, appErrors.ErrSubjectFull.Code, result.Errors[0].Code)
}

func TestElectiveServiceAddStudentsNoClassForTerm(t *testing.T) {
	subjects := electiveFixture(intp(30), 0)
	conflicts := &mockConflicts{errs: map[string]error{
		"s1": appErrors.Clone(appErrors.ErrNotFound, "student has no class for term"),
	}}
	svc := NewElectiveService(subjects, &mockElectiveAssignments{}, activeStudents("s1"), conflicts, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, appErrors.ErrNotFound.Code, result.Errors[0].Code)
}

func TestElectiveServiceAddStudentsValidation(t *testing.T) {
	subjects := electiveFixture(intp(30), 0)
	svc := NewElectiveService(subjects, &mockElectiveAssignments{}, activeStudents(), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{}, "admin-1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestElectiveServiceAddStudentsSubjectNotFound(t *testing.T) {
	svc := NewElectiveService(&mockElectiveSubjects{}, &mockElectiveAssignments{}, activeStudents("s1"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.AddStudents(context.Background(), "missing", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestElectiveServiceRemoveStudent(t *testing.T) {
	subjects := electiveFixture(intp(10), 10)
	assignments := &mockElectiveAssignments{}
	invalidator := &mockInvalidator{}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1"), &mockConflicts{}, invalidator, nil, validator.New(), zap.NewNop())

	err := svc.RemoveStudent(context.Background(), "es1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, assignments.deleted)
	assert.Equal(t, 1, subjects.recomputes)
	assert.Equal(t, []string{"s1"}, invalidator.invalidated)
}

func TestElectiveServiceRemoveStudentNotAssigned(t *testing.T) {
	subjects := electiveFixture(intp(10), 0)
	assignments := &mockElectiveAssignments{deleteErr: sql.ErrNoRows}
	svc := NewElectiveService(subjects, assignments, activeStudents(), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	err := svc.RemoveStudent(context.Background(), "es1", "s1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestElectiveServiceRemoveStudentMissingID(t *testing.T) {
	svc := NewElectiveService(&mockElectiveSubjects{}, &mockElectiveAssignments{}, activeStudents(), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	err := svc.RemoveStudent(context.Background(), "es1", "")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestElectiveServiceReAddAfterRemove(t *testing.T) {
	subjects := electiveFixture(intp(1), 0)
	assignments := &mockElectiveAssignments{}
	svc := NewElectiveService(subjects, assignments, activeStudents("s1"), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	require.NoError(t, svc.RemoveStudent(context.Background(), "es1", "s1"))

	result, err = svc.AddStudents(context.Background(), "es1", AddStudentsRequest{StudentIDs: []string{"s1"}}, "admin-1")
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Empty(t, result.Errors)
}

func TestElectiveServiceListAssignments(t *testing.T) {
	subjects := electiveFixture(intp(10), 2)
	assignments := &mockElectiveAssignments{listing: []models.ElectiveAssignmentDetail{
		{ElectiveAssignment: models.ElectiveAssignment{ID: "a1", StudentID: "s1"}, StudentName: "Student s1"},
		{ElectiveAssignment: models.ElectiveAssignment{ID: "a2", StudentID: "s2"}, StudentName: "Student s2"},
	}}
	svc := NewElectiveService(subjects, assignments, activeStudents(), &mockConflicts{}, nil, nil, validator.New(), zap.NewNop())

	list, err := svc.ListAssignments(context.Background(), "es1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListAssignments(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
