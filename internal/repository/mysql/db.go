package mysql

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"club_portal/internal/model"
)

// DB 全局连接，main 中初始化后注入各仓储
var DB *gorm.DB

func InitDB(dsn string, maxOpen, maxIdle int) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	return nil
}

// AutoMigrate 自动建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Club{},
		&model.ClubFollow{},
		&model.SocialOutbox{},
		&model.Post{},
		&model.PostLike{},
		&model.Comment{},
		&model.HiddenPost{},
	)
}

// clampAdd 计数增减且不小于 0（兼容 MySQL 与 SQLite）
func clampAdd(column string, delta int64) any {
	return gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta)
}
