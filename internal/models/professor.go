package models

import "time"

// Professor is the canonical professor entity. A professor either originates
// from the RateMyProfessors bulk import (RMPID set, rating fields populated)
// or from the university directory (RMPID nil, NumRatings zero).
type Professor struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Department     string     `db:"department" json:"department"`
	RMPID          *string    `db:"rmp_id" json:"rmp_id,omitempty"`
	AvgRating      *float64   `db:"avg_rating" json:"avg_rating,omitempty"`
	Difficulty     *float64   `db:"difficulty" json:"difficulty,omitempty"`
	WouldTakeAgain *int       `db:"would_take_again" json:"would_take_again,omitempty"`
	NumRatings     int        `db:"num_ratings" json:"num_ratings"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ProfessorProfile is a professor row together with its recorded course
// links, as served on professor pages.
type ProfessorProfile struct {
	Professor
	Courses []ProfessorCourse `json:"courses"`
}

// ProfessorRef is the slim projection used during identity matching.
type ProfessorRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// RatingsProfessor is one record scraped from the ratings source before it is
// folded into the canonical professors table.
type RatingsProfessor struct {
	RMPID          int     `json:"rmp_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Department     string  `json:"department"`
	AvgRating      float64 `json:"avg_rating"`
	Difficulty     float64 `json:"difficulty"`
	NumRatings     int     `json:"num_ratings"`
	WouldTakeAgain int     `json:"would_take_again"`
	SourceID       string  `json:"source_id"`
}

// FullName returns the display name stored for the canonical row.
func (p RatingsProfessor) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ScrapedProfessor is one directory-source record. The directory adapter
// filters roles before these are handed to the sync pipeline.
type ScrapedProfessor struct {
	Name    string          `json:"name" validate:"required"`
	URL     string          `json:"url"`
	Role    string          `json:"role"`
	Courses []ScrapedCourse `json:"courses"`
}

// ScrapedCourse is a free-text course mention attached to a directory record.
type ScrapedCourse struct {
	Course string `json:"course" validate:"required"`
	URL    string `json:"course_url"`
	Term   string `json:"term"`
	Year   string `json:"year"`
}
