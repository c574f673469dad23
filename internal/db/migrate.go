package db

import (
	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/chat"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service uses.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&catalog.Category{},
		&feed.Video{},
		&feed.LikedVideo{},
		&chat.Session{},
		&chat.Message{},
	)
}
