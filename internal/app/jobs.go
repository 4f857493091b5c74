package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/cafeorder/internal/domain"
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc))

	// revoked tokens expire on their own; sweep the table hourly
	_, err = a.sched.AddFunc("@hourly", a.purgeExpiredTokens)
	if err != nil {
		zap.L().Error("failed to schedule token purge job", zap.Error(err))
	}
}

// purgeExpiredTokens removes blacklist rows whose tokens already expired.
func (a *Application) purgeExpiredTokens() {
	res := a.gormDB.Where("expiry_date < ?", time.Now()).Delete(&domain.TokenBlacklist{})
	if res.Error != nil {
		zap.L().Error("token blacklist purge failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("purged expired blacklisted tokens",
			zap.Int64("count", res.RowsAffected))
	}
}
