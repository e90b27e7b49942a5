package repository

import (
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/article_generator/internal/models"
)

// UserRepository defines operations for User model
type UserRepository interface {
	Repository
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	UpdatePassword(userID uuid.UUID, passwordHash string) error
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
}

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword updates a user's password
func (r *userRepository) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	return r.DB.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

// ExistsByEmail checks if a user with the given email exists
func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByUsername checks if a user with the given username exists
func (r *userRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
