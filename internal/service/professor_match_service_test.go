package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

type professorStoreStub struct {
	professors []models.Professor
	created    []models.Professor
	err        error
}

func (s *professorStoreStub) FindBySurname(ctx context.Context, lastName, department string) ([]models.Professor, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matches []models.Professor
	for _, p := range s.professors {
		if !strings.HasSuffix(strings.ToLower(p.Name), strings.ToLower(lastName)) {
			continue
		}
		if department != "" && p.Department != department {
			continue
		}
		matches = append(matches, p)
	}
	return matches, nil
}

func (s *professorStoreStub) FindByExactName(ctx context.Context, name, department string) (*models.Professor, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.professors {
		if strings.EqualFold(p.Name, name) && p.Department == department {
			match := p
			return &match, nil
		}
	}
	return nil, nil
}

func (s *professorStoreStub) Create(ctx context.Context, professor models.Professor) (*models.Professor, error) {
	if s.err != nil {
		return nil, s.err
	}
	professor.ID = "created-" + professor.Name
	s.created = append(s.created, professor)
	s.professors = append(s.professors, professor)
	return &professor, nil
}

func TestFindMatchingProfessorNoSurnameCandidates(t *testing.T) {
	store := &professorStoreStub{}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "John Smith", "Computer Science")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchingProfessorEmptyLastName(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{{ID: "p1", Name: "John Smith"}}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "   ", "Computer Science")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchingProfessorUniqueSurnameShortcut(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "William Smith", Department: "Computer Science"},
	}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	// The first name does not match; a unique surname still wins.
	match, err := svc.FindMatchingProfessor(context.Background(), "Q. Smith", "Computer Science")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "p1", match.ID)
}

func TestFindMatchingProfessorAmbiguousWithoutFirstName(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "William Smith", Department: "Computer Science"},
		{ID: "p2", Name: "Jane Smith", Department: "Computer Science"},
	}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "Smith", "Computer Science")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchingProfessorNicknameDisambiguation(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "Jane Smith", Department: "Computer Science"},
		{ID: "p2", Name: "William Smith", Department: "Computer Science"},
	}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "Bill Smith", "Computer Science")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "p2", match.ID)
}

func TestFindMatchingProfessorInitialMatch(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "Jane Smith", Department: "Computer Science"},
		{ID: "p2", Name: "John Smith", Department: "Computer Science"},
	}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "J Smith", "Computer Science")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "p1", match.ID)
}

func TestFindMatchingProfessorContradictoryCandidates(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "Jane Smith", Department: "Computer Science"},
		{ID: "p2", Name: "William Smith", Department: "Computer Science"},
	}}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	match, err := svc.FindMatchingProfessor(context.Background(), "Quentin Smith", "Computer Science")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchingProfessorGlobalScopeFallback(t *testing.T) {
	store := &professorStoreStub{professors: []models.Professor{
		{ID: "p1", Name: "William Smith", Department: "Mathematics"},
	}}

	scoped := NewProfessorMatchService(store, MatchScopeDepartment, nil)
	match, err := scoped.FindMatchingProfessor(context.Background(), "William Smith", "Computer Science")
	require.NoError(t, err)
	assert.Nil(t, match)

	global := NewProfessorMatchService(store, MatchScopeGlobal, nil)
	match, err = global.FindMatchingProfessor(context.Background(), "William Smith", "Computer Science")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "p1", match.ID)
}

func TestCreateProfessorWithoutRatingsIsIdempotent(t *testing.T) {
	store := &professorStoreStub{}
	svc := NewProfessorMatchService(store, MatchScopeDepartment, nil)

	id1, created, err := svc.CreateProfessorWithoutRatings(context.Background(), "John Smith", "Computer Science")
	require.NoError(t, err)
	assert.True(t, created)

	id2, created, err := svc.CreateProfessorWithoutRatings(context.Background(), "john smith", "Computer Science")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id1, id2)
	assert.Len(t, store.created, 1)
}
