package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chynybekuuludastan/article_generator/internal/models"
)

const (
	// Cache key prefixes
	KeyPrefixPost        = "post:"
	KeyPrefixKeywordUsed = "keyword_used:"

	// Default TTL for cached items
	DefaultTTL = 1 * time.Hour
)

// Repository represents a Redis cache repository
type Repository struct {
	client *redis.Client
	ctx    context.Context
}

// NewRepository creates a new Redis cache repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		client: client,
		ctx:    context.Background(),
	}
}

// CachePost stores a post in the cache
func (r *Repository) CachePost(post *models.Post) error {
	if r.client == nil {
		return nil // Skip if Redis is not available
	}

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	key := KeyPrefixPost + post.Slug
	return r.client.Set(r.ctx, key, data, DefaultTTL).Err()
}

// GetPost retrieves a post from the cache by slug
func (r *Repository) GetPost(slug string) (*models.Post, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	data, err := r.client.Get(r.ctx, KeyPrefixPost+slug).Bytes()
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post: %w", err)
	}
	return &post, nil
}

// InvalidatePost removes a post from the cache
func (r *Repository) InvalidatePost(slug string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(r.ctx, KeyPrefixPost+slug).Err()
}

// CacheKeywordUsed stores whether a focus keyword was used before
func (r *Repository) CacheKeywordUsed(keyword string, used bool) error {
	if r.client == nil {
		return nil
	}
	value := "0"
	if used {
		value = "1"
	}
	return r.client.Set(r.ctx, KeyPrefixKeywordUsed+keyword, value, DefaultTTL).Err()
}

// GetKeywordUsed retrieves the cached usage flag for a keyword. The second
// return value reports a cache hit.
func (r *Repository) GetKeywordUsed(keyword string) (used bool, hit bool) {
	if r.client == nil {
		return false, false
	}
	value, err := r.client.Get(r.ctx, KeyPrefixKeywordUsed+keyword).Result()
	if err != nil {
		return false, false
	}
	return value == "1", true
}

// InvalidateKeyword removes a keyword usage flag from the cache
func (r *Repository) InvalidateKeyword(keyword string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(r.ctx, KeyPrefixKeywordUsed+keyword).Err()
}
