package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RigelNana/studygen/config"
	"github.com/RigelNana/studygen/models"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// 自动迁移表结构，逐表迁移避免外键依赖问题
	for _, model := range []interface{}{
		&models.User{},
		&models.UploadedFile{},
		&models.StudySet{},
		&models.Flashcard{},
		&models.QuizQuestion{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("failed to migrate table: %v", err)
		}
	}

	return db, nil
}
