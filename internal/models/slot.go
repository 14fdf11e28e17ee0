package models

// SlotSource tags where an occupied slot comes from.
type SlotSource string

const (
	SlotSourceRegularClass SlotSource = "REGULAR_CLASS"
	SlotSourceElective     SlotSource = "ELECTIVE"
)

// OccupiedSlot is a (subject, day, start, end) occupancy unit used for
// overlap detection. Times are zero-padded HH:MM strings so lexicographic
// comparison matches chronological order.
type OccupiedSlot struct {
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	SubjectName string     `db:"subject_name" json:"subject_name"`
	Source      SlotSource `db:"source" json:"source"`
	DayOfWeek   string     `db:"day_of_week" json:"day_of_week"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
}

// ConflictKind classifies why a candidate enrollment is rejected.
type ConflictKind string

const (
	ConflictKindDuplicateSubject ConflictKind = "DUPLICATE_SUBJECT"
	ConflictKindTimeOverlap      ConflictKind = "TIME_OVERLAP"
)

// ConflictResult reports whether a candidate enrollment collides with the
// student's occupied slots and, when it does, which slot it hit.
type ConflictResult struct {
	HasConflict bool          `json:"has_conflict"`
	Kind        ConflictKind  `json:"kind,omitempty"`
	Slot        *OccupiedSlot `json:"slot,omitempty"`
}
