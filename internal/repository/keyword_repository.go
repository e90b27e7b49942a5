package repository

import (
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chynybekuuludastan/article_generator/internal/models"
)

// KeywordRepository defines operations for KeywordUsage model. It backs the
// keyword history the validator consults for the density limit.
type KeywordRepository interface {
	Repository
	WasUsedBefore(keyword string) bool
	MarkUsed(keyword string, postID *uuid.UUID) error
}

// keywordRepository implements KeywordRepository
type keywordRepository struct {
	*BaseRepository
}

// NewKeywordRepository creates a new keyword repository
func NewKeywordRepository(db *gorm.DB, redisClient *redis.Client) KeywordRepository {
	return &keywordRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// WasUsedBefore reports whether a focus keyword already backs a stored post.
// Lookup failures count as unused so a broken cache or database never blocks
// generation with the stricter density limit.
func (r *keywordRepository) WasUsedBefore(keyword string) bool {
	if keyword == "" {
		return false
	}

	if r.CacheRepo != nil {
		if used, hit := r.CacheRepo.GetKeywordUsed(keyword); hit {
			return used
		}
	}

	var usage models.KeywordUsage
	err := r.DB.Where("LOWER(keyword) = LOWER(?)", keyword).First(&usage).Error
	used := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}

	if r.CacheRepo != nil {
		go r.CacheRepo.CacheKeywordUsed(keyword, used)
	}
	return used
}

// MarkUsed records that a keyword now backs a post, incrementing the usage
// counter on repeats.
func (r *keywordRepository) MarkUsed(keyword string, postID *uuid.UUID) error {
	if keyword == "" {
		return nil
	}

	usage := models.KeywordUsage{Keyword: keyword, UseCount: 1, PostID: postID}
	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"use_count": gorm.Expr("keyword_usages.use_count + 1"),
			"post_id":   postID,
		}),
	}).Create(&usage).Error
	if err != nil {
		return err
	}

	if r.CacheRepo != nil {
		go r.CacheRepo.CacheKeywordUsed(keyword, true)
	}
	return nil
}
