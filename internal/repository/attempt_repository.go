package repository

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/article_generator/internal/models"
	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
)

// AttemptRepository defines operations for GenerationAttempt model
type AttemptRepository interface {
	Repository
	LogAttempt(ctx context.Context, attempt generator.Attempt) error
	FindByGenerationID(generationID string) ([]*models.GenerationAttempt, error)
}

// attemptRepository implements AttemptRepository
type attemptRepository struct {
	*BaseRepository
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *gorm.DB, redisClient *redis.Client) AttemptRepository {
	return &attemptRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// LogAttempt stores one provider call for audit
func (r *attemptRepository) LogAttempt(ctx context.Context, attempt generator.Attempt) error {
	record := &models.GenerationAttempt{
		GenerationID: attempt.GenerationID,
		Provider:     attempt.Provider,
		Retry:        attempt.Retry,
		DurationMs:   attempt.Duration.Milliseconds(),
	}
	if attempt.Err != nil {
		record.Error = attempt.Err.Error()
	}
	if len(attempt.Violations) > 0 {
		data, err := json.Marshal(attempt.Violations)
		if err != nil {
			return err
		}
		record.Violations = datatypes.JSON(data)
	}
	return r.DB.WithContext(ctx).Create(record).Error
}

// FindByGenerationID retrieves every attempt of one generation run in order
func (r *attemptRepository) FindByGenerationID(generationID string) ([]*models.GenerationAttempt, error) {
	var attempts []*models.GenerationAttempt
	err := r.DB.Where("generation_id = ?", generationID).
		Order("created_at ASC").
		Find(&attempts).Error
	return attempts, err
}
