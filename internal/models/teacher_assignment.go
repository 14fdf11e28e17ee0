package models

import "time"

// AssignmentRole distinguishes subject teachers from class supervisors.
// TEACHER rows require a subject; SUPERVISOR rows carry none and a teacher
// may hold at most one SUPERVISOR row per academic year.
type AssignmentRole string

const (
	AssignmentRoleTeacher    AssignmentRole = "TEACHER"
	AssignmentRoleSupervisor AssignmentRole = "SUPERVISOR"
)

// RequiresSubject reports whether the role demands a subject reference.
func (r AssignmentRole) RequiresSubject() bool {
	return r == AssignmentRoleTeacher
}

// Valid reports whether the role is one of the known variants.
func (r AssignmentRole) Valid() bool {
	return r == AssignmentRoleTeacher || r == AssignmentRoleSupervisor
}

// TeacherAssignment links a teacher to a class for an academic year,
// optionally scoped to a subject. The (teacher, class, year, subject) tuple
// is unique with NULL-aware subject comparison.
type TeacherAssignment struct {
	ID             string         `db:"id" json:"id"`
	TeacherID      string         `db:"teacher_id" json:"teacher_id"`
	ClassID        string         `db:"class_id" json:"class_id"`
	SubjectID      *string        `db:"subject_id" json:"subject_id,omitempty"`
	AcademicYearID string         `db:"academic_year_id" json:"academic_year_id"`
	BranchID       string         `db:"branch_id" json:"branch_id"`
	Role           AssignmentRole `db:"role" json:"role"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// TeacherAssignmentDetail enriches assignments with descriptive fields.
type TeacherAssignmentDetail struct {
	TeacherAssignment
	ClassName   string  `db:"class_name" json:"class_name"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// Teacher represents a member of the teaching staff.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	NIP       string    `db:"nip" json:"nip"`
	FullName  string    `db:"full_name" json:"full_name"`
	BranchID  string    `db:"branch_id" json:"branch_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
