package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

// ProfessorRepository manages persistence for professors.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

const professorColumns = `id, name, department, rmp_id, avg_rating, difficulty, would_take_again, num_ratings, created_at, updated_at`

// FindBySurname returns professors whose name ends with the given surname,
// optionally restricted to a department. Ordering is deterministic so that
// ambiguous matches resolve the same way on every run.
func (r *ProfessorRepository) FindBySurname(ctx context.Context, lastName, department string) ([]models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE name ILIKE '%%' || $1", professorColumns)
	args := []interface{}{lastName}
	if department != "" {
		query += " AND department = $2"
		args = append(args, department)
	}
	query += " ORDER BY name ASC"

	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, err
	}
	return professors, nil
}

// FindByExactName returns the professor in a department whose full name
// matches ignoring case, or nil.
func (r *ProfessorRepository) FindByExactName(ctx context.Context, name, department string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE department = $2 AND LOWER(name) = LOWER($1) ORDER BY name ASC LIMIT 1", professorColumns)

	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, name, department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &professor, nil
}

// FindByID returns the professor with the given id, or nil when absent.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE id = $1", professorColumns)

	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &professor, nil
}

// Create inserts a new professor and returns the stored row.
func (r *ProfessorRepository) Create(ctx context.Context, professor models.Professor) (*models.Professor, error) {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now()
	professor.CreatedAt = now
	professor.UpdatedAt = &now

	query := `
		INSERT INTO professors (id, name, department, rmp_id, avg_rating, difficulty, would_take_again, num_ratings, created_at, updated_at)
		VALUES (:id, :name, :department, :rmp_id, :avg_rating, :difficulty, :would_take_again, :num_ratings, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return nil, err
	}
	return &professor, nil
}

// UpsertByRMPID writes a professor keyed on its external ratings id. On
// conflict each column is replaced only when the incoming row carries more
// ratings than the stored one, so a stale scrape can never overwrite fresher
// aggregates.
func (r *ProfessorRepository) UpsertByRMPID(ctx context.Context, professor models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}

	query := `
		INSERT INTO professors (id, name, department, rmp_id, avg_rating, difficulty, would_take_again, num_ratings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (rmp_id) DO UPDATE SET
			name = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.name ELSE professors.name END,
			department = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.department ELSE professors.department END,
			avg_rating = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.avg_rating ELSE professors.avg_rating END,
			difficulty = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.difficulty ELSE professors.difficulty END,
			would_take_again = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.would_take_again ELSE professors.would_take_again END,
			num_ratings = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN EXCLUDED.num_ratings ELSE professors.num_ratings END,
			updated_at = CASE WHEN EXCLUDED.num_ratings > COALESCE(professors.num_ratings, 0) THEN NOW() ELSE professors.updated_at END`

	_, err := r.db.ExecContext(ctx, query,
		professor.ID,
		professor.Name,
		professor.Department,
		professor.RMPID,
		professor.AvgRating,
		professor.Difficulty,
		professor.WouldTakeAgain,
		professor.NumRatings,
	)
	return err
}

// BulkUpsertByRMPID upserts each professor in turn and reports how many rows
// were written before the first failure.
func (r *ProfessorRepository) BulkUpsertByRMPID(ctx context.Context, professors []models.Professor) (int, error) {
	written := 0
	for _, professor := range professors {
		if err := r.UpsertByRMPID(ctx, professor); err != nil {
			return written, fmt.Errorf("upsert professor %q: %w", professor.Name, err)
		}
		written++
	}
	return written, nil
}

// ListByDepartment returns all professors in a department ordered by name.
func (r *ProfessorRepository) ListByDepartment(ctx context.Context, department string) ([]models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE department = $1 ORDER BY name ASC", professorColumns)

	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, department); err != nil {
		return nil, err
	}
	return professors, nil
}
