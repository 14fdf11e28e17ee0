package models

import "time"

// ElectiveSubjectStatus is derived from the assignment count versus capacity.
type ElectiveSubjectStatus string

// Possible elective subject statuses.
const (
	ElectiveSubjectStatusActive ElectiveSubjectStatus = "ACTIVE"
	ElectiveSubjectStatusFull   ElectiveSubjectStatus = "FULL"
)

// AssignmentStatus represents the lifecycle of an elective assignment.
type AssignmentStatus string

const (
	AssignmentStatusActive AssignmentStatus = "ACTIVE"
)

// ElectiveGroup is a named set of mutually-exclusive elective offerings.
type ElectiveGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TermID    string    `db:"term_id" json:"term_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ElectiveSubject is one offering within a group wrapping an underlying subject.
// MaxStudents is nil for unbounded offerings. Status is a materialized view of
// the active assignment count versus MaxStudents and is recomputed after every
// enrollment mutation.
type ElectiveSubject struct {
	ID          string                `db:"id" json:"id"`
	GroupID     string                `db:"group_id" json:"group_id"`
	SubjectID   string                `db:"subject_id" json:"subject_id"`
	TermID      string                `db:"term_id" json:"term_id"`
	DayOfWeek   string                `db:"day_of_week" json:"day_of_week"`
	StartTime   string                `db:"start_time" json:"start_time"`
	EndTime     string                `db:"end_time" json:"end_time"`
	MaxStudents *int                  `db:"max_students" json:"max_students,omitempty"`
	Status      ElectiveSubjectStatus `db:"status" json:"status"`
	CreatedAt   time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time             `db:"updated_at" json:"updated_at"`
}

// ElectiveSubjectDetail enriches an elective subject with naming context.
type ElectiveSubjectDetail struct {
	ElectiveSubject
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	GroupName   string `db:"group_name" json:"group_name"`
}

// ElectiveAssignment joins a student to an elective subject.
type ElectiveAssignment struct {
	ID                string           `db:"id" json:"id"`
	ElectiveSubjectID string           `db:"elective_subject_id" json:"elective_subject_id"`
	StudentID         string           `db:"student_id" json:"student_id"`
	Status            AssignmentStatus `db:"status" json:"status"`
	AssignedAt        time.Time        `db:"assigned_at" json:"assigned_at"`
	AssignedBy        string           `db:"assigned_by" json:"assigned_by"`
}

// ElectiveAssignmentDetail enriches an assignment with student info.
type ElectiveAssignmentDetail struct {
	ElectiveAssignment
	StudentName string `db:"student_name" json:"student_name"`
	StudentNIS  string `db:"student_nis" json:"student_nis"`
}

// StudentAssignmentError reports a per-student failure inside an add batch.
type StudentAssignmentError struct {
	StudentID string `json:"student_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// AddStudentsResult carries the mixed outcome of a batch add.
type AddStudentsResult struct {
	Created []ElectiveAssignmentDetail `json:"created"`
	Errors  []StudentAssignmentError   `json:"errors"`
}
