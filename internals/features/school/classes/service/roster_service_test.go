package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
)

func TestRosterService(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	ctx := context.Background()
	svc := NewRosterService(db)

	school := fx.School("school-r")
	otherSchool := fx.School("school-x")
	teacher := fx.Teacher("t-r", school.ID)
	outsider := fx.Teacher("t-x", otherSchool.ID)

	c1 := fx.Class(school.ID, "10", "10A1", nil)
	c2 := fx.Class(school.ID, "10", "10A2", nil)

	t.Run("load owned", func(t *testing.T) {
		_, err := svc.LoadOwned(ctx, c1.ID, school.ID, constants.RoleSchool)
		require.NoError(t, err)
		_, err = svc.LoadOwned(ctx, c1.ID, otherSchool.ID, constants.RoleSchool)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
		_, err = svc.LoadOwned(ctx, c1.ID, uuid.New(), constants.RoleAdmin)
		require.NoError(t, err)
		_, err = svc.LoadOwned(ctx, uuid.New(), school.ID, constants.RoleSchool)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})

	t.Run("homeroom of at most one active class", func(t *testing.T) {
		require.NoError(t, svc.SetHomeroom(ctx, c1, &teacher.ID))
		assert.Equal(t, &teacher.ID, c1.HomeroomTeacherID)

		err := svc.SetHomeroom(ctx, c2, &teacher.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

		err = svc.SetHomeroom(ctx, c2, &outsider.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

		require.NoError(t, svc.SetHomeroom(ctx, c1, nil))
		require.NoError(t, svc.SetHomeroom(ctx, c2, &teacher.ID))
	})

	t.Run("co-teachers", func(t *testing.T) {
		require.NoError(t, svc.AddTeacher(ctx, c1, teacher.ID))
		require.NoError(t, svc.AddTeacher(ctx, c1, teacher.ID))
		rows, err := svc.CoTeachers(ctx, c1)
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		require.NoError(t, svc.RemoveTeacher(ctx, c1, teacher.ID))
		err = svc.RemoveTeacher(ctx, c1, teacher.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})

	t.Run("students stored by id, legacy names still listed", func(t *testing.T) {
		s1 := fx.Student("s-r1", school.ID, nil)
		s2 := fx.Student("s-r2", school.ID, dbtest.Ptr("10A1"))

		n, err := svc.AddStudents(ctx, c1, []uuid.UUID{s1.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		var reloaded userModel.UserModel
		require.NoError(t, db.First(&reloaded, "id = ?", s1.ID).Error)
		require.NotNil(t, reloaded.ClassRef)
		assert.Equal(t, c1.ID.String(), *reloaded.ClassRef)

		roster, err := svc.Students(ctx, c1)
		require.NoError(t, err)
		assert.Len(t, roster, 2)

		require.NoError(t, svc.RemoveStudent(ctx, c1, s2.ID))
		err = svc.RemoveStudent(ctx, c2, s1.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

		roster, err = svc.Students(ctx, c1)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, s1.ID, roster[0].ID)
	})

	t.Run("only students can join", func(t *testing.T) {
		_, err := svc.AddStudents(ctx, c1, []uuid.UUID{teacher.ID})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}
