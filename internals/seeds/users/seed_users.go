package users

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	authService "lingoschool_backend/internals/features/users/auth/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

type UserSeed struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	// username akun sekolah pemilik (teacher/student)
	School string `json:"school"`
}

// SeedAdmin membuat akun admin pertama kalau belum ada admin sama sekali.
func SeedAdmin(db *gorm.DB, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	var n int64
	if err := db.Model(&userModel.UserModel{}).Where("role = ?", constants.RoleAdmin).Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "count admins")
	}
	if n > 0 {
		log.Println("ℹ️ Admin sudah ada, seed admin dilewati")
		return false, nil
	}

	seed := UserSeed{Username: username, Email: email, Password: password, Role: string(constants.RoleAdmin)}
	if err := insertSeed(db, seed, nil); err != nil {
		return false, err
	}
	log.Printf("✅ Admin '%s' dibuat", username)
	return true, nil
}

// SeedUsersFromJSON: insert idempotent, user yang username-nya sudah ada dilewati.
// Sekolah harus muncul sebelum teacher/student-nya di file.
func SeedUsersFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Membaca file user:", filePath)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, errors.Wrap(err, "read seed file")
	}
	var inputs []UserSeed
	if err := sonic.Unmarshal(raw, &inputs); err != nil {
		return 0, errors.Wrap(err, "decode seed file")
	}
	return SeedUsers(db, inputs)
}

func SeedUsers(db *gorm.DB, inputs []UserSeed) (int, error) {
	created := 0
	for _, data := range inputs {
		taken, err := authRepo.UsernameTaken(db, data.Username)
		if err != nil {
			return created, err
		}
		if taken {
			log.Printf("ℹ️ User '%s' sudah ada, dilewati.", data.Username)
			continue
		}

		var owner *userModel.UserModel
		if s := strings.TrimSpace(data.School); s != "" {
			var school userModel.UserModel
			if err := db.Where("username = ? AND role = ?", s, constants.RoleSchool).First(&school).Error; err != nil {
				return created, errors.Wrapf(err, "school %q for user %q", s, data.Username)
			}
			owner = &school
		}

		if err := insertSeed(db, data, owner); err != nil {
			return created, err
		}
		created++
		log.Printf("✅ Berhasil insert user '%s'", data.Username)
	}
	return created, nil
}

func insertSeed(db *gorm.DB, data UserSeed, school *userModel.UserModel) error {
	role, err := constants.ParseRole(data.Role)
	if err != nil {
		return errors.Wrapf(err, "user %q", data.Username)
	}
	if (role == constants.RoleTeacher || role == constants.RoleStudent) && school == nil {
		return fmt.Errorf("user %q: role %s needs a school", data.Username, role)
	}
	if len(data.Password) < 8 {
		return fmt.Errorf("user %q: password too short", data.Username)
	}

	// 🔐 Hash password sebelum disimpan
	hash, err := authService.HashPassword(data.Password)
	if err != nil {
		return errors.Wrapf(err, "hash password %q", data.Username)
	}

	u := userModel.UserModel{
		Username:     data.Username,
		FullName:     data.FullName,
		PasswordHash: hash,
		Role:         role,
	}
	if e := strings.TrimSpace(data.Email); e != "" {
		u.Email = &e
	}
	if school != nil {
		u.SchoolID = &school.ID
	}
	return errors.Wrapf(authRepo.CreateUser(db, &u), "insert user %q", data.Username)
}
