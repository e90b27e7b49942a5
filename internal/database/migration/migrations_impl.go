// internal/database/migration/migrations_impl.go
package migration

import (
	"gorm.io/gorm"
)

// CreateUsersTable creates the users table
func CreateUsersTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP WITH TIME ZONE
		)
	`).Error
}

// DropUsersTable drops the users table
func DropUsersTable(tx *gorm.DB) error {
	return tx.Exec("DROP TABLE IF EXISTS users CASCADE").Error
}

// CreatePostsTable creates the posts table
func CreatePostsTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID REFERENCES users(id),
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			meta_description VARCHAR(255),
			content TEXT NOT NULL,
			excerpt VARCHAR(255),
			focus_keyword VARCHAR(255),
			provider VARCHAR(50),
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			keywords JSONB,
			image_prompts JSONB,
			links JSONB,
			report JSONB,
			published_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP WITH TIME ZONE
		)
	`).Error
}

// DropPostsTable drops the posts table
func DropPostsTable(tx *gorm.DB) error {
	return tx.Exec("DROP TABLE IF EXISTS posts CASCADE").Error
}

// CreateGenerationAttemptsTable creates the generation_attempts table
func CreateGenerationAttemptsTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS generation_attempts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			generation_id VARCHAR(100) NOT NULL,
			post_id UUID REFERENCES posts(id),
			provider VARCHAR(50) NOT NULL,
			retry BOOLEAN DEFAULT FALSE,
			violations JSONB,
			error TEXT,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// DropGenerationAttemptsTable drops the generation_attempts table
func DropGenerationAttemptsTable(tx *gorm.DB) error {
	return tx.Exec("DROP TABLE IF EXISTS generation_attempts CASCADE").Error
}

// CreateKeywordUsagesTable creates the keyword_usages table
func CreateKeywordUsagesTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS keyword_usages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			keyword VARCHAR(255) NOT NULL UNIQUE,
			use_count INTEGER NOT NULL DEFAULT 1,
			post_id UUID REFERENCES posts(id),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// DropKeywordUsagesTable drops the keyword_usages table
func DropKeywordUsagesTable(tx *gorm.DB) error {
	return tx.Exec("DROP TABLE IF EXISTS keyword_usages CASCADE").Error
}

// AddIndexes adds performance indexes
func AddIndexes(tx *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status)",
		"CREATE INDEX IF NOT EXISTS idx_posts_focus_keyword ON posts(focus_keyword)",
		"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_generation_attempts_generation_id ON generation_attempts(generation_id)",
		"CREATE INDEX IF NOT EXISTS idx_generation_attempts_provider ON generation_attempts(provider)",
		"CREATE INDEX IF NOT EXISTS idx_keyword_usages_keyword ON keyword_usages(LOWER(keyword))",
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// RemoveIndexes removes the performance indexes
func RemoveIndexes(tx *gorm.DB) error {
	statements := []string{
		"DROP INDEX IF EXISTS idx_posts_status",
		"DROP INDEX IF EXISTS idx_posts_focus_keyword",
		"DROP INDEX IF EXISTS idx_posts_created_at",
		"DROP INDEX IF EXISTS idx_generation_attempts_generation_id",
		"DROP INDEX IF EXISTS idx_generation_attempts_provider",
		"DROP INDEX IF EXISTS idx_keyword_usages_keyword",
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
