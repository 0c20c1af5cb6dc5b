package models

// LinkDetail records the outcome of a single course-link attempt.
type LinkDetail struct {
	CourseCode string `json:"course_code"`
	Success    bool   `json:"success"`
	Reason     string `json:"reason,omitempty"`
}

// LinkResult aggregates course-link attempts for one professor.
type LinkResult struct {
	Linked  int          `json:"linked"`
	Failed  int          `json:"failed"`
	Details []LinkDetail `json:"details"`
}

// SyncSummary reports one directory sync run. It is returned, never persisted.
type SyncSummary struct {
	TotalScraped  int      `json:"total_scraped"`
	Matched       int      `json:"matched"`
	NewProfessors int      `json:"new_professors"`
	CoursesLinked int      `json:"courses_linked"`
	CoursesFailed int      `json:"courses_failed"`
	Errors        []string `json:"errors"`
	Fatal         bool     `json:"fatal"`
}

// FullSyncSummary extends SyncSummary with the ratings stage counts.
type FullSyncSummary struct {
	Department     string   `json:"department"`
	RatingsScraped int      `json:"ratings_scraped"`
	RatingsSaved   int      `json:"ratings_saved"`
	DirScraped     int      `json:"directory_scraped"`
	Matched        int      `json:"matched"`
	NewProfessors  int      `json:"new_professors"`
	CoursesLinked  int      `json:"courses_linked"`
	CoursesFailed  int      `json:"courses_failed"`
	Errors         []string `json:"errors"`
	Fatal          bool     `json:"fatal"`
}

// ScrapeResult reports one discussion scrape run.
type ScrapeResult struct {
	Query         string   `json:"query"`
	PostsScraped  int      `json:"posts_scraped"`
	PostsNew      int      `json:"posts_new"`
	PostsSaved    int      `json:"posts_saved"`
	CommentsSaved int      `json:"comments_saved"`
	CoursesLinked int      `json:"courses_linked"`
	Errors        []string `json:"errors"`
	Fatal         bool     `json:"fatal"`
}

// SavePostResult reports persistence of a single discussion post.
type SavePostResult struct {
	PostID        string `json:"post_id"`
	IsNew         bool   `json:"is_new"`
	CoursesLinked int    `json:"courses_linked"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
