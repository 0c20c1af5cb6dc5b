package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

func TestProfessorCourseRepositoryLinkInsertsNew(t *testing.T) {
	db, mock, cleanup := newProfessorMock(t)
	defer cleanup()
	repo := NewProfessorCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (professor_id, course_id, term, year) DO NOTHING")).
		WithArgs("p1", "c1", "Fall", 2025).
		WillReturnResult(sqlmock.NewResult(1, 1))

	inserted, err := repo.Link(context.Background(), models.ProfessorCourse{
		ProfessorID: "p1",
		CourseID:    "c1",
		Term:        "Fall",
		Year:        2025,
	})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorCourseRepositoryLinkIsIdempotent(t *testing.T) {
	db, mock, cleanup := newProfessorMock(t)
	defer cleanup()
	repo := NewProfessorCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (professor_id, course_id, term, year) DO NOTHING")).
		WithArgs("p1", "c1", "Unknown", 2026).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Link(context.Background(), models.ProfessorCourse{
		ProfessorID: "p1",
		CourseID:    "c1",
		Term:        "Unknown",
		Year:        2026,
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByCodeMiss(t *testing.T) {
	db, mock, cleanup := newProfessorMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_code FROM courses WHERE course_code = $1")).
		WithArgs("CMPUT 999").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_code"}))

	course, err := repo.FindByCode(context.Background(), "CMPUT 999")
	require.NoError(t, err)
	assert.Nil(t, course)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newProfessorMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_code FROM courses WHERE course_code = $1")).
		WithArgs("CMPUT 174").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_code"}).AddRow("c1", "CMPUT 174"))

	course, err := repo.FindByCode(context.Background(), "CMPUT 174")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "c1", course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
