package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/names"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

// MatchScope selects how wide the surname candidate search runs.
type MatchScope int

const (
	// MatchScopeDepartment restricts candidates to the given department.
	MatchScopeDepartment MatchScope = iota
	// MatchScopeGlobal falls back to a department-agnostic surname search
	// when the department yields no candidates.
	MatchScopeGlobal
)

type professorMatchStore interface {
	FindBySurname(ctx context.Context, lastName, department string) ([]models.Professor, error)
	FindByExactName(ctx context.Context, name, department string) (*models.Professor, error)
	Create(ctx context.Context, professor models.Professor) (*models.Professor, error)
}

// ProfessorMatchService resolves scraped professor names against the
// canonical professors table.
type ProfessorMatchService struct {
	repo   professorMatchStore
	scope  MatchScope
	logger *zap.Logger
}

// NewProfessorMatchService builds a ProfessorMatchService. The scope is fixed
// at construction so every call site runs the same search policy.
func NewProfessorMatchService(repo professorMatchStore, scope MatchScope, logger *zap.Logger) *ProfessorMatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorMatchService{repo: repo, scope: scope, logger: logger}
}

// FindMatchingProfessor resolves a scraped name to an existing professor in
// the department, or nil when no confident match exists. A single surname
// candidate matches without a first-name check; among several candidates the
// first whose first name matches wins, and with no first name to compare the
// result is nil rather than a guess.
func (s *ProfessorMatchService) FindMatchingProfessor(ctx context.Context, scrapedName, department string) (*models.ProfessorRef, error) {
	parts := names.ParseParts(scrapedName)
	if parts.Last == "" {
		s.logger.Debug("cannot extract last name", zap.String("name", scrapedName))
		return nil, nil
	}

	candidates, err := s.repo.FindBySurname(ctx, parts.Last, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search professors by surname")
	}

	if len(candidates) == 0 && s.scope == MatchScopeGlobal {
		candidates, err = s.repo.FindBySurname(ctx, parts.Last, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search professors by surname")
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	if len(candidates) == 1 {
		s.logger.Debug("unique surname match",
			zap.String("scraped", scrapedName),
			zap.String("matched", candidates[0].Name))
		return &models.ProfessorRef{ID: candidates[0].ID, Name: candidates[0].Name}, nil
	}

	if parts.First == "" {
		s.logger.Debug("ambiguous surname without first name",
			zap.String("surname", parts.Last),
			zap.Int("candidates", len(candidates)))
		return nil, nil
	}

	for _, candidate := range candidates {
		candidateParts := names.ParseParts(candidate.Name)
		if names.FirstNamesMatch(parts.First, candidateParts.First) {
			s.logger.Debug("first name match",
				zap.String("scraped", scrapedName),
				zap.String("matched", candidate.Name))
			return &models.ProfessorRef{ID: candidate.ID, Name: candidate.Name}, nil
		}
	}

	return nil, nil
}

// CreateProfessorWithoutRatings creates a professor that has no ratings-source
// record. The create is idempotent by exact name lookup within the
// department; the returned flag reports whether a new row was written.
func (s *ProfessorMatchService) CreateProfessorWithoutRatings(ctx context.Context, name, department string) (string, bool, error) {
	existing, err := s.repo.FindByExactName(ctx, name, department)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up professor")
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	created, err := s.repo.Create(ctx, models.Professor{
		Name:       name,
		Department: department,
	})
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor")
	}
	s.logger.Info("created professor without ratings",
		zap.String("name", name),
		zap.String("department", department))
	return created.ID, true, nil
}
