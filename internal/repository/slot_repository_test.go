package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

func TestSlotRepositoryListClassSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "subject_name", "day_of_week", "start_time", "end_time"}).
		AddRow("subj-1", "Mathematics", "MONDAY", "08:00", "09:30").
		AddRow("subj-2", "Physics", "MONDAY", "09:30", "11:00")
	mock.ExpectQuery("FROM class_subject_slots").
		WithArgs("c1", "t1").
		WillReturnRows(rows)

	slots, err := repo.ListClassSlots(context.Background(), "c1", "t1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.Equal(t, models.SlotSourceRegularClass, slot.Source)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListElectiveSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "subject_name", "day_of_week", "start_time", "end_time"}).
		AddRow("subj-rob", "Robotics", "WEDNESDAY", "14:00", "15:30")
	mock.ExpectQuery("FROM elective_assignments").
		WithArgs("student-1", "t1", string(models.AssignmentStatusActive)).
		WillReturnRows(rows)

	slots, err := repo.ListElectiveSlots(context.Background(), "student-1", "t1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, models.SlotSourceElective, slots[0].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}
