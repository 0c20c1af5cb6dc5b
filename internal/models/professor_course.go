package models

// ProfessorCourse associates a professor with a course for one offering.
// The composite key (professor_id, course_id, term, year) is unique and
// inserts are idempotent.
type ProfessorCourse struct {
	ProfessorID string `db:"professor_id" json:"professor_id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Term        string `db:"term" json:"term"`
	Year        int    `db:"year" json:"year"`
}
