package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/talkincode/cafeorder/config"
	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/pkg/common"
)

func getDatabase(cfg config.DBConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())

	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		zap.S().Fatalf("failed to connect database: %v", err)
	}
	return db
}

// checkAdminUser seeds the default admin account on first start and repairs
// a broken one (blank password or demoted role) on later starts.
func (a *Application) checkAdminUser() {
	const adminUsername = "admin"
	const defaultPassword = "admin123"

	var user domain.SysUser
	err := a.gormDB.Where("username = ?", adminUsername).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Username:  adminUsername,
			Password:  hash,
			Role:      common.RoleAdmin,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account",
				zap.String("username", adminUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := user.Password == ""
	resetRole := user.Role != common.RoleAdmin
	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hash, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		updates["password"] = hash
	}
	if resetRole {
		updates["role"] = common.RoleAdmin
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", adminUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}
