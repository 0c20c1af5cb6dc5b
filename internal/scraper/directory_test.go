package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

func TestFilterByRole(t *testing.T) {
	records := []models.ScrapedProfessor{
		{Name: "A", Role: "Professor"},
		{Name: "B", Role: " associate professor "},
		{Name: "C", Role: "Administrative Assistant"},
		{Name: "D", Role: "Sessional Instructor"},
		{Name: "E", Role: ""},
	}

	filtered := FilterByRole(records)
	assert.Len(t, filtered, 3)
	assert.Equal(t, "A", filtered[0].Name)
	assert.Equal(t, "B", filtered[1].Name)
	assert.Equal(t, "D", filtered[2].Name)
}
