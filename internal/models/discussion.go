package models

import "time"

// DiscussionPost is a persisted post from the discussion source, keyed by the
// source's own post id. Score, comment count and mentioned courses are always
// refreshed on re-scrape.
type DiscussionPost struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Body             string    `db:"selftext" json:"selftext"`
	URL              string    `db:"url" json:"url"`
	Score            int       `db:"score" json:"score"`
	NumComments      int       `db:"num_comments" json:"num_comments"`
	CreatedUTC       time.Time `db:"created_utc" json:"created_utc"`
	MentionedCourses []string  `db:"mentioned_courses" json:"mentioned_courses"`
}

// DiscussionComment is a persisted comment, keyed by the source comment id.
// Duplicate saves are no-ops.
type DiscussionComment struct {
	ID         string    `db:"id" json:"id"`
	PostID     string    `db:"post_id" json:"post_id"`
	ParentID   string    `db:"parent_id" json:"parent_id"`
	Body       string    `db:"body" json:"body"`
	Score      int       `db:"score" json:"score"`
	CreatedUTC time.Time `db:"created_utc" json:"created_utc"`
	URL        string    `db:"url" json:"url"`
}

// Discussion is the read-side projection served to course pages.
type Discussion struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Preview   string    `db:"preview" json:"preview"`
	URL       string    `db:"url" json:"url"`
	Upvotes   int       `db:"upvotes" json:"upvotes"`
	Comments  int       `db:"comments" json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DiscussionPage is a limit/offset page of discussions for one course.
type DiscussionPage struct {
	Discussions []Discussion `json:"discussions"`
	HasMore     bool         `json:"has_more"`
}
