package db

import (
	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Company{},
		&domain.User{},
		&domain.Session{},
		&domain.ChatHistory{},
		&domain.APIKey{},
	)
}
