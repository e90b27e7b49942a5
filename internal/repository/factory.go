package repository

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Factory manages all repositories
type Factory struct {
	UserRepository    UserRepository
	PostRepository    PostRepository
	KeywordRepository KeywordRepository
	AttemptRepository AttemptRepository
}

// NewRepositoryFactory creates a repository factory with all repositories.
// The redis client is optional and only enables caching.
func NewRepositoryFactory(db *gorm.DB, redisClient *redis.Client) *Factory {
	return &Factory{
		UserRepository:    NewUserRepository(db, redisClient),
		PostRepository:    NewPostRepository(db, redisClient),
		KeywordRepository: NewKeywordRepository(db, redisClient),
		AttemptRepository: NewAttemptRepository(db, redisClient),
	}
}
