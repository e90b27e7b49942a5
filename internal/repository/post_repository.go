package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/article_generator/internal/models"
	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
)

// PostRepository defines operations for Post model
type PostRepository interface {
	Repository
	Publish(ctx context.Context, rec *generator.ContentRecord, report generator.ValidationReport, needsReview bool) error
	FindBySlug(slug string) (*models.Post, error)
	FindAll(status string, page, pageSize int) ([]*models.Post, int64, error)
	FindRelated(ctx context.Context, topic string, limit int) ([]generator.RelatedPost, error)
	UpdateStatus(postID uuid.UUID, status string) error
	ExistsBySlug(slug string) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	*BaseRepository
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, redisClient *redis.Client) PostRepository {
	return &postRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// Publish stores a generated record as a post. Records that still carry
// validation errors land in needs_review instead of draft. A slug collision
// gets a numeric suffix rather than failing the whole run.
func (r *postRepository) Publish(ctx context.Context, rec *generator.ContentRecord, report generator.ValidationReport, needsReview bool) error {
	post, err := postFromRecord(rec, report, needsReview)
	if err != nil {
		return err
	}

	slug := post.Slug
	for i := 2; ; i++ {
		exists, err := r.ExistsBySlug(post.Slug)
		if err != nil {
			return fmt.Errorf("checking slug %q: %w", post.Slug, err)
		}
		if !exists {
			break
		}
		post.Slug = fmt.Sprintf("%s-%d", slug, i)
	}

	if err := r.DB.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	rec.Slug = post.Slug

	if r.CacheRepo != nil {
		go r.CacheRepo.CachePost(post)
	}
	return nil
}

// FindBySlug finds a post by slug, checking the cache first
func (r *postRepository) FindBySlug(slug string) (*models.Post, error) {
	if r.CacheRepo != nil {
		if post, err := r.CacheRepo.GetPost(slug); err == nil {
			return post, nil
		}
	}

	var post models.Post
	if err := r.DB.Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}

	if r.CacheRepo != nil {
		go r.CacheRepo.CachePost(&post)
	}
	return &post, nil
}

// FindAll retrieves posts with pagination, optionally filtered by status
func (r *postRepository) FindAll(status string, page, pageSize int) ([]*models.Post, int64, error) {
	var posts []*models.Post
	var count int64

	query := r.DB.Model(&models.Post{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, count, nil
}

// FindRelated finds published posts whose title or focus keyword matches the
// topic, for use as internal link candidates.
func (r *postRepository) FindRelated(ctx context.Context, topic string, limit int) ([]generator.RelatedPost, error) {
	var posts []*models.Post
	searchQuery := "%" + topic + "%"

	err := r.DB.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Where("title ILIKE ? OR focus_keyword ILIKE ?", searchQuery, searchQuery).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	related := make([]generator.RelatedPost, 0, len(posts))
	for _, p := range posts {
		related = append(related, generator.RelatedPost{
			Title: p.Title,
			URL:   "/" + p.Slug + "/",
		})
	}
	return related, nil
}

// UpdateStatus updates a post's status
func (r *postRepository) UpdateStatus(postID uuid.UUID, status string) error {
	return r.DB.Model(&models.Post{}).Where("id = ?", postID).Update("status", status).Error
}

// ExistsBySlug checks if a post with the given slug exists
func (r *postRepository) ExistsBySlug(slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// postFromRecord converts a canonical content record into the stored model.
func postFromRecord(rec *generator.ContentRecord, report generator.ValidationReport, needsReview bool) (*models.Post, error) {
	status := models.PostStatusDraft
	if needsReview {
		status = models.PostStatusNeedsReview
	}

	keywords, err := json.Marshal(map[string]interface{}{
		"secondary_keywords": rec.SecondaryKeywords,
		"tags":               rec.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling keywords: %w", err)
	}
	imagePrompts, err := json.Marshal(rec.ImagePrompts)
	if err != nil {
		return nil, fmt.Errorf("marshaling image prompts: %w", err)
	}
	links, err := json.Marshal(map[string]interface{}{
		"internal": rec.InternalLinks,
		"outbound": rec.OutboundLinks,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling links: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}

	return &models.Post{
		Title:           rec.Title,
		Slug:            rec.Slug,
		MetaDescription: rec.MetaDescription,
		Content:         rec.Content,
		Excerpt:         rec.Excerpt,
		FocusKeyword:    rec.FocusKeyword,
		Provider:        rec.Provider,
		Status:          status,
		Keywords:        datatypes.JSON(keywords),
		ImagePrompts:    datatypes.JSON(imagePrompts),
		Links:           datatypes.JSON(links),
		Report:          datatypes.JSON(reportJSON),
	}, nil
}
