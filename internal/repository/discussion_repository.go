package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
)

// DiscussionRepository manages persistence for scraped discussion posts and
// comments, and serves the read-side projection for course pages.
type DiscussionRepository struct {
	db *sqlx.DB
}

// NewDiscussionRepository constructs a DiscussionRepository.
func NewDiscussionRepository(db *sqlx.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// UpsertPost writes a post keyed by its source id. A re-scraped post has its
// score, comment count and mentioned courses refreshed in place. The returned
// flag reports whether the post was new.
func (r *DiscussionRepository) UpsertPost(ctx context.Context, post models.DiscussionPost) (bool, error) {
	var existingID string
	err := r.db.GetContext(ctx, &existingID, `SELECT id FROM discussion_posts WHERE id = $1`, post.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if errors.Is(err, sql.ErrNoRows) {
		insert := `
			INSERT INTO discussion_posts (id, title, selftext, url, score, num_comments, created_utc, mentioned_courses)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = r.db.ExecContext(ctx, insert,
			post.ID, post.Title, post.Body, post.URL,
			post.Score, post.NumComments, post.CreatedUTC, pq.Array(post.MentionedCourses))
		if err != nil {
			return false, err
		}
		return true, nil
	}

	update := `
		UPDATE discussion_posts
		SET score = $2, num_comments = $3, mentioned_courses = $4
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, update, post.ID, post.Score, post.NumComments, pq.Array(post.MentionedCourses)); err != nil {
		return false, err
	}
	return false, nil
}

// SaveComment inserts a comment; saving the same comment twice is a no-op.
func (r *DiscussionRepository) SaveComment(ctx context.Context, comment models.DiscussionComment) error {
	query := `
		INSERT INTO discussion_comments (id, post_id, parent_id, body, score, created_utc, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.ParentID,
		comment.Body, comment.Score, comment.CreatedUTC, comment.URL)
	return err
}

// LinkPostToCourse associates a post with a course. Duplicate links are no-ops.
func (r *DiscussionRepository) LinkPostToCourse(ctx context.Context, postID, courseID string) error {
	query := `
		INSERT INTO course_discussions (post_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, course_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, postID, courseID)
	return err
}

// ListPostsByCourse returns one page of discussions linked to a course,
// highest score first. The caller passes limit+1 to detect a further page.
func (r *DiscussionRepository) ListPostsByCourse(ctx context.Context, courseID string, limit, offset int) ([]models.Discussion, error) {
	query := `
		SELECT p.id, p.title, p.selftext AS preview, p.url, p.score AS upvotes, p.num_comments AS comments, p.created_utc AS created_at
		FROM discussion_posts p
		JOIN course_discussions cd ON cd.post_id = p.id
		WHERE cd.course_id = $1
		ORDER BY p.score DESC, p.created_utc DESC
		LIMIT $2 OFFSET $3`

	var discussions []models.Discussion
	if err := r.db.SelectContext(ctx, &discussions, query, courseID, limit, offset); err != nil {
		return nil, err
	}
	return discussions, nil
}
