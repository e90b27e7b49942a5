// internal/database/seed/seed.go
package seed

import (
	"log"

	"gorm.io/gorm"

	"github.com/chynybekuuludastan/article_generator/internal/models"
	"github.com/chynybekuuludastan/article_generator/internal/utils/password"
)

// Run seeds development data: an admin user and a couple of published posts
// so site search and keyword history have something to work with.
func Run(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}
	return seedSamplePosts(db)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := password.Hash("admin12345")
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Seeded admin user (admin@example.com)")
	return nil
}

func seedSamplePosts(db *gorm.DB) error {
	var count int64
	db.Model(&models.Post{}).Count(&count)
	if count > 0 {
		return nil
	}

	posts := []models.Post{
		{
			Title:           "Coffee brewing basics for beginners",
			Slug:            "coffee-brewing-basics",
			MetaDescription: "A short introduction to brewing coffee at home.",
			Content:         "<p>Coffee brewing starts with fresh beans.</p>",
			Excerpt:         "A short introduction to brewing coffee at home.",
			FocusKeyword:    "coffee brewing",
			Status:          models.PostStatusPublished,
		},
		{
			Title:           "Espresso machines worth the money",
			Slug:            "espresso-machines-worth-the-money",
			MetaDescription: "Espresso machines that hold up to daily use.",
			Content:         "<p>Espresso machines vary widely in quality.</p>",
			Excerpt:         "Espresso machines that hold up to daily use.",
			FocusKeyword:    "espresso machines",
			Status:          models.PostStatusPublished,
		},
	}
	if err := db.Create(&posts).Error; err != nil {
		return err
	}

	for i := range posts {
		usage := models.KeywordUsage{Keyword: posts[i].FocusKeyword, PostID: &posts[i].ID}
		if err := db.Create(&usage).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded sample posts")
	return nil
}
