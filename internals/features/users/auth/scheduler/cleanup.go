package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
)

type CleanupResult struct {
	BlacklistDeleted int64
	OTPsCleared      int64
}

// RunCleanup: hapus blacklist yang exp-nya sudah lewat lebih dari ttlDays, kosongkan OTP kedaluwarsa.
func RunCleanup(ctx context.Context, db *gorm.DB, ttlDays int, now time.Time) (CleanupResult, error) {
	var res CleanupResult
	deleteBefore := now.Add(-time.Duration(ttlDays) * 24 * time.Hour)

	n, err := authRepo.DeleteExpiredBlacklist(db.WithContext(ctx), deleteBefore)
	if err != nil {
		return res, err
	}
	res.BlacklistDeleted = n

	n, err = authRepo.ClearExpiredOTPs(db.WithContext(ctx), now)
	if err != nil {
		return res, err
	}
	res.OTPsCleared = n
	return res, nil
}

// Start menjadwalkan cleanup sesuai CLEANUP_CRON; panggil Stop() saat shutdown.
func Start(db *gorm.DB, cfg *configs.Config) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.CleanupCron, func() {
		log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist & OTP...")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		res, err := RunCleanup(ctx, db, cfg.TokenBlacklistTTLDays, time.Now())
		if err != nil {
			log.Printf("[CLEANUP ERROR] %v", err)
			return
		}
		log.Printf("[CLEANUP] %d token blacklist dihapus, %d OTP dikosongkan", res.BlacklistDeleted, res.OTPsCleared)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
