package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

// ProfessorCourseRepository manages the professor-to-course link table.
type ProfessorCourseRepository struct {
	db *sqlx.DB
}

// NewProfessorCourseRepository constructs a ProfessorCourseRepository.
func NewProfessorCourseRepository(db *sqlx.DB) *ProfessorCourseRepository {
	return &ProfessorCourseRepository{db: db}
}

// Link records that a professor taught a course in a given term. Re-linking
// an existing triple is a no-op; the returned flag reports whether a new row
// was written.
func (r *ProfessorCourseRepository) Link(ctx context.Context, link models.ProfessorCourse) (bool, error) {
	query := `
		INSERT INTO professor_courses (professor_id, course_id, term, year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (professor_id, course_id, term, year) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, link.ProfessorID, link.CourseID, link.Term, link.Year)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListByProfessor returns all course links for a professor.
func (r *ProfessorCourseRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorCourse, error) {
	query := `
		SELECT professor_id, course_id, term, year
		FROM professor_courses
		WHERE professor_id = $1
		ORDER BY year DESC, term ASC`

	var links []models.ProfessorCourse
	if err := r.db.SelectContext(ctx, &links, query, professorID); err != nil {
		return nil, err
	}
	return links, nil
}
