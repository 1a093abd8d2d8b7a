package users

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	authService "lingoschool_backend/internals/features/users/auth/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

func TestSeedAdmin(t *testing.T) {
	db := dbtest.Open(t)

	created, err := SeedAdmin(db, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = SeedAdmin(db, "root", "Root@Example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)

	var admin userModel.UserModel
	require.NoError(t, db.Where("username = ?", "root").First(&admin).Error)
	assert.Equal(t, constants.RoleAdmin, admin.Role)
	require.NotNil(t, admin.Email)
	assert.Equal(t, "root@example.com", *admin.Email)
	assert.True(t, authService.CheckPassword(admin.PasswordHash, "supersecret"))

	created, err = SeedAdmin(db, "root2", "", "supersecret")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeedUsersFromJSON(t *testing.T) {
	db := dbtest.Open(t)
	path := filepath.Join(t.TempDir(), "users.json")
	data := `[
		{"username":"sman1","password":"password1","role":"school"},
		{"username":"guru1","password":"password1","role":"teacher","school":"sman1"},
		{"username":"siswa1","password":"password1","role":"student","school":"sman1"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	n, err := SeedUsersFromJSON(db, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var school, student userModel.UserModel
	require.NoError(t, db.Where("username = ?", "sman1").First(&school).Error)
	require.NoError(t, db.Where("username = ?", "siswa1").First(&student).Error)
	require.NotNil(t, student.SchoolID)
	assert.Equal(t, school.ID, *student.SchoolID)

	// rerun idempotent
	n, err = SeedUsersFromJSON(db, path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	t.Run("student without school is rejected", func(t *testing.T) {
		_, err := SeedUsers(db, []UserSeed{{Username: "yatim", Password: "password1", Role: "student"}})
		assert.Error(t, err)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := SeedUsers(db, []UserSeed{{Username: "x", Password: "password1", Role: "janitor"}})
		assert.Error(t, err)
	})
}
