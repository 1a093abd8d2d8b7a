package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	"lingoschool_backend/internals/features/school/classes/dto"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

func who(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func TestClassService(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	ctx := context.Background()
	resolver := NewResolver(db)
	svc := NewClassService(db, resolver, NewRosterService(db))

	school := fx.School("school-c")
	otherSchool := fx.School("school-d")
	admin := fx.User("root", constants.RoleAdmin, nil)
	teacher := fx.Teacher("t-c", school.ID)
	stranger := fx.Teacher("t-d", otherSchool.ID)

	t.Run("create with homeroom", func(t *testing.T) {
		m, err := svc.Create(ctx, who(school), dto.CreateClassRequest{Name: "10A1", Grade: "10", HomeroomTeacherID: &teacher.ID})
		require.NoError(t, err)
		assert.True(t, m.IsActive)
		require.NotNil(t, m.HomeroomTeacherID)
		assert.Equal(t, teacher.ID, *m.HomeroomTeacherID)
	})

	t.Run("duplicate name in grade conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, who(school), dto.CreateClassRequest{Name: "10A1", Grade: "10"})
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	})

	t.Run("foreign homeroom teacher rolls back", func(t *testing.T) {
		_, err := svc.Create(ctx, who(school), dto.CreateClassRequest{Name: "10A9", Grade: "10", HomeroomTeacherID: &stranger.ID})
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

		rows, err := svc.List(ctx, who(school), nil)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("admin must name a school", func(t *testing.T) {
		_, err := svc.Create(ctx, who(admin), dto.CreateClassRequest{Name: "11B", Grade: "11"})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		_, err = svc.Create(ctx, who(admin), dto.CreateClassRequest{SchoolID: &otherSchool.ID, Name: "11B", Grade: "11"})
		require.NoError(t, err)

		scoped, err := svc.List(ctx, who(admin), &otherSchool.ID)
		require.NoError(t, err)
		assert.Len(t, scoped, 1)
	})

	rows, err := svc.List(ctx, who(school), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	cls := rows[0]

	legacy := fx.Student("s-legacy", school.ID, dbtest.Ptr("10A1"))
	canonical := fx.Student("s-id", school.ID, StoredRef(cls.ID))

	t.Run("detail lists legacy and canonical students", func(t *testing.T) {
		d, err := svc.Get(ctx, who(teacher), cls.ID)
		require.NoError(t, err)
		require.NotNil(t, d.Homeroom)
		assert.Equal(t, teacher.ID, d.Homeroom.ID)
		assert.Len(t, d.Students, 2)

		_, err = svc.Get(ctx, who(legacy), cls.ID)
		require.NoError(t, err)

		_, err = svc.Get(ctx, who(school), cls.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, who(otherSchool), cls.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	})

	t.Run("teacher and student see their own classes", func(t *testing.T) {
		mine, err := svc.List(ctx, who(teacher), nil)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		own, err := svc.List(ctx, who(canonical), nil)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, cls.ID, own[0].ID)

		lost := fx.Student("s-none", school.ID, nil)
		none, err := svc.List(ctx, who(lost), nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update allow-list", func(t *testing.T) {
		name := "10A1-X"
		m, err := svc.Update(ctx, who(school), cls.ID, dto.UpdateClassRequest{Name: &name, IsActive: dbtest.Ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, "10A1-X", m.Name)
		assert.False(t, m.IsActive)
		assert.Equal(t, "10", m.Grade)
	})

	t.Run("delete refuses classes with exams", func(t *testing.T) {
		exam := examModel.ExamModel{Title: "Quiz", ExamType: constants.Exam15Minutes, ClassID: cls.ID, TeacherID: teacher.ID,
			StartTime: cls.CreatedAt, EndTime: cls.CreatedAt.Add(15 * time.Minute)}
		require.NoError(t, db.Create(&exam).Error)
		err := svc.Delete(ctx, who(school), cls.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

		require.NoError(t, db.Delete(&exam).Error)
		require.NoError(t, svc.Delete(ctx, who(school), cls.ID))

		var u userModel.UserModel
		require.NoError(t, db.First(&u, "id = ?", canonical.ID).Error)
		assert.Nil(t, u.ClassRef)
	})
}
