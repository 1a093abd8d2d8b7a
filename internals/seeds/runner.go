package seeds

import (
	"log"

	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
	users "lingoschool_backend/internals/seeds/users"
)

// RunAllSeeds dijalankan setelah migrate; semua seed idempotent.
func RunAllSeeds(db *gorm.DB, cfg configs.SeedConfig) error {
	//* Admin awal
	if _, err := users.SeedAdmin(db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	//* User dari JSON
	if cfg.UsersFile != "" {
		n, err := users.SeedUsersFromJSON(db, cfg.UsersFile)
		if err != nil {
			return err
		}
		log.Printf("🌱 %d user di-seed dari %s", n, cfg.UsersFile)
	}
	return nil
}
