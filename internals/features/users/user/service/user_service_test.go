package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	authService "lingoschool_backend/internals/features/users/auth/service"
	"lingoschool_backend/internals/features/users/user/dto"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

func who(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func statusOf(err error) int {
	if ae, ok := apperror.As(err); ok {
		return ae.Status
	}
	return 0
}

func TestUserAdministration(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	svc := NewUserService(db, classService.NewRosterService(db))
	ctx := context.Background()

	admin := fx.User("root", constants.RoleAdmin, nil)
	school := fx.School("sman1")
	other := fx.School("sman2")
	cls := fx.Class(school.ID, "7", "7A", nil)
	otherCls := fx.Class(other.ID, "7", "7A", nil)

	t.Run("school creates student into own class", func(t *testing.T) {
		u, err := svc.Create(ctx, who(school), dto.CreateUserRequest{
			Username: "siswa1", Password: "password1", Role: "student", ClassID: &cls.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, u.SchoolID)
		assert.Equal(t, school.ID, *u.SchoolID)
		require.NotNil(t, u.ClassRef)
		assert.Equal(t, cls.ID.String(), *u.ClassRef)
		assert.True(t, authService.CheckPassword(u.PasswordHash, "password1"))
	})

	t.Run("school cannot use another school's class", func(t *testing.T) {
		_, err := svc.Create(ctx, who(school), dto.CreateUserRequest{
			Username: "siswa2", Password: "password1", Role: "student", ClassID: &otherCls.ID,
		})
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("school cannot create admins", func(t *testing.T) {
		_, err := svc.Create(ctx, who(school), dto.CreateUserRequest{Username: "boss", Password: "password1", Role: "admin"})
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("admin must name a school for teachers", func(t *testing.T) {
		_, err := svc.Create(ctx, who(admin), dto.CreateUserRequest{Username: "guru0", Password: "password1", Role: "teacher"})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		_, err = svc.Create(ctx, who(admin), dto.CreateUserRequest{Username: "guru0", Password: "password1", Role: "teacher", SchoolID: &admin.ID})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		u, err := svc.Create(ctx, who(admin), dto.CreateUserRequest{Username: "guru0", Password: "password1", Role: "teacher", SchoolID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, *u.SchoolID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Create(ctx, who(school), dto.CreateUserRequest{Username: "siswa1", Password: "password1", Role: "student"})
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("list is scoped to the school", func(t *testing.T) {
		rows, total, err := svc.List(ctx, who(school), ListFilter{}, helper.Paging{Page: 1, PerPage: 20, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "siswa1", rows[0].Username)

		role := constants.RoleSchool
		_, total, err = svc.List(ctx, who(admin), ListFilter{Role: &role}, helper.Paging{Page: 1, PerPage: 20, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("cross-school access is forbidden", func(t *testing.T) {
		foreign := fx.Teacher("asing", other.ID)
		_, err := svc.Get(ctx, who(school), foreign.ID)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
		_, err = svc.SetDisabled(ctx, who(school), foreign.ID, true)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})
}

func TestUserUpdateDisableAndReset(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	svc := NewUserService(db, classService.NewRosterService(db))
	ctx := context.Background()

	admin := fx.User("root", constants.RoleAdmin, nil)
	school := fx.School("sman1")
	other := fx.School("sman2")
	cls := fx.Class(school.ID, "8", "8B", nil)
	student := fx.Student("rina", school.ID, classService.StoredRef(cls.ID))

	t.Run("allow-listed fields only", func(t *testing.T) {
		name := "Rina Putri"
		u, err := svc.Update(ctx, who(school), student.ID, dto.UpdateUserRequest{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, u.FullName)
		assert.Equal(t, constants.RoleStudent, u.Role)
	})

	t.Run("two-factor needs email", func(t *testing.T) {
		on := true
		_, err := svc.Update(ctx, who(school), student.ID, dto.UpdateUserRequest{TwoFactorEnabled: &on})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("only admin moves schools and class ref is cleared", func(t *testing.T) {
		_, err := svc.Update(ctx, who(school), student.ID, dto.UpdateUserRequest{SchoolID: &other.ID})
		assert.Equal(t, http.StatusForbidden, statusOf(err))

		u, err := svc.Update(ctx, who(admin), student.ID, dto.UpdateUserRequest{SchoolID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, *u.SchoolID)
		assert.Nil(t, u.ClassRef)
	})

	t.Run("disable and enable", func(t *testing.T) {
		u, err := svc.SetDisabled(ctx, who(admin), student.ID, true)
		require.NoError(t, err)
		assert.True(t, u.IsDisabled)

		u, err = svc.SetDisabled(ctx, who(admin), student.ID, false)
		require.NoError(t, err)
		assert.False(t, u.IsDisabled)

		_, err = svc.SetDisabled(ctx, who(admin), admin.ID, true)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("reset password clears pending otp", func(t *testing.T) {
		exp := time.Now().Add(time.Minute)
		require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", student.ID).
			Updates(map[string]any{"otp_code": "123456", "otp_purpose": "reset", "otp_expires_at": exp}).Error)

		require.NoError(t, svc.ResetPassword(ctx, who(admin), student.ID, "fresh-password"))
		var u userModel.UserModel
		require.NoError(t, db.First(&u, "id = ?", student.ID).Error)
		assert.True(t, authService.CheckPassword(u.PasswordHash, "fresh-password"))
		assert.Nil(t, u.OTPCode)
	})
}

func TestUserDeleteAndTeachers(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	svc := NewUserService(db, classService.NewRosterService(db))
	ctx := context.Background()

	admin := fx.User("root", constants.RoleAdmin, nil)
	school := fx.School("sman1")
	homeroom := fx.Teacher("wali", school.ID)
	co := fx.Teacher("pendamping", school.ID)
	cls := fx.Class(school.ID, "9", "9C", &homeroom.ID)
	fx.CoTeacher(cls.ID, co.ID)

	t.Run("teacher directory shows homeroom class", func(t *testing.T) {
		rows, err := svc.ListTeachers(ctx, who(school), nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		byName := map[string]dto.TeacherResponse{}
		for _, r := range rows {
			byName[r.Username] = r
		}
		require.NotNil(t, byName["wali"].HomeroomClassID)
		assert.Equal(t, cls.ID, *byName["wali"].HomeroomClassID)
		assert.Equal(t, "9C", *byName["wali"].HomeroomClassName)
		assert.Nil(t, byName["pendamping"].HomeroomClassID)
	})

	t.Run("school with members cannot be deleted", func(t *testing.T) {
		err := svc.Delete(ctx, who(admin), school.ID)
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("teacher owning exams cannot be deleted", func(t *testing.T) {
		exam := examModel.ExamModel{
			Title: "UH 1", ExamType: constants.Exam15Minutes, ClassID: cls.ID, TeacherID: co.ID,
			StartTime: time.Now(), EndTime: time.Now().Add(time.Hour), IsPublished: true,
		}
		require.NoError(t, db.Create(&exam).Error)
		err := svc.Delete(ctx, who(school), co.ID)
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("deleting homeroom teacher releases the class", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, who(school), homeroom.ID))

		var reloaded classModel.ClassModel
		require.NoError(t, db.First(&reloaded, "id = ?", cls.ID).Error)
		assert.Nil(t, reloaded.HomeroomTeacherID)

		_, err := svc.Get(ctx, who(admin), homeroom.ID)
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("cannot delete self", func(t *testing.T) {
		err := svc.Delete(ctx, who(admin), admin.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}
