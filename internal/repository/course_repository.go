package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

// CourseRepository manages lookups against the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByCode returns the course with the given normalized code, or nil.
func (r *CourseRepository) FindByCode(ctx context.Context, courseCode string) (*models.CourseRef, error) {
	query := `SELECT id, course_code FROM courses WHERE course_code = $1 LIMIT 1`

	var course models.CourseRef
	if err := r.db.GetContext(ctx, &course, query, courseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// FindByCodes returns the subset of the given codes that exist in the catalog.
func (r *CourseRepository) FindByCodes(ctx context.Context, courseCodes []string) ([]models.CourseRef, error) {
	if len(courseCodes) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id, course_code FROM courses WHERE course_code IN (?)`, courseCodes)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var courses []models.CourseRef
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListByDepartmentPrefix returns courses whose code starts with the given
// subject prefix, e.g. "CMPUT".
func (r *CourseRepository) ListByDepartmentPrefix(ctx context.Context, prefix string) ([]models.CourseRef, error) {
	query := `SELECT id, course_code FROM courses WHERE course_code LIKE $1 || ' %' ORDER BY course_code ASC`

	var courses []models.CourseRef
	if err := r.db.SelectContext(ctx, &courses, query, prefix); err != nil {
		return nil, err
	}
	return courses, nil
}
