package models

import "time"

// Course is a canonical catalog entry, identified by its course code
// (e.g. "CMPUT 204"). The catalog ingestion pipeline owns writes; the sync
// pipeline only reads courses to resolve links.
type Course struct {
	ID         string    `db:"id" json:"id"`
	Department string    `db:"department" json:"department"`
	CourseCode string    `db:"course_code" json:"course_code"`
	Title      string    `db:"title" json:"title"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CourseRef is the projection used when only identity is needed.
type CourseRef struct {
	ID         string `db:"id" json:"id"`
	CourseCode string `db:"course_code" json:"course_code"`
}
