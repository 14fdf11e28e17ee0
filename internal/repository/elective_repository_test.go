package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-elective-api/internal/models"
)

func TestElectiveSubjectRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElectiveSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "group_id", "subject_id", "term_id", "day_of_week", "start_time", "end_time",
		"max_students", "status", "created_at", "updated_at", "subject_name", "subject_code", "group_name"}).
		AddRow("es-1", "g1", "subj-1", "t1", "MONDAY", "10:00", "11:30", 30, "ACTIVE", time.Now(), time.Now(), "Robotics", "ROB", "STEM Electives")
	mock.ExpectQuery("SELECT es.id, es.group_id").
		WithArgs("es-1").
		WillReturnRows(rows)

	detail, err := repo.FindByID(context.Background(), "es-1")
	require.NoError(t, err)
	assert.Equal(t, "Robotics", detail.SubjectName)
	require.NotNil(t, detail.MaxStudents)
	assert.Equal(t, 30, *detail.MaxStudents)

	mock.ExpectQuery("SELECT es.id, es.group_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElectiveSubjectRepositoryCountActiveAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElectiveSubjectRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("es-1", string(models.AssignmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountActiveAssignments(context.Background(), "es-1")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElectiveSubjectRepositoryRecomputeStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElectiveSubjectRepository(db)

	mock.ExpectExec("UPDATE elective_subjects").
		WithArgs("es-1",
			string(models.AssignmentStatusActive),
			string(models.ElectiveSubjectStatusFull),
			string(models.ElectiveSubjectStatusActive)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecomputeStatus(context.Background(), "es-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
