package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/databases/dbtest"
	"lingoschool_backend/internals/helpers/apperror"
)

func TestResolver(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	ctx := context.Background()
	r := NewResolver(db)

	school := fx.School("school-a")
	homeroom := fx.Teacher("t-home", school.ID)
	co := fx.Teacher("t-co", school.ID)
	idle := fx.Teacher("t-idle", school.ID)

	c1 := fx.Class(school.ID, "10", "10A1", &homeroom.ID)
	c2 := fx.Class(school.ID, "10", "10A2", nil)
	fx.CoTeacher(c2.ID, homeroom.ID)
	fx.CoTeacher(c1.ID, co.ID)

	t.Run("homeroom class", func(t *testing.T) {
		cls, err := r.HomeroomClass(ctx, homeroom.ID)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, cls.ID)

		_, err = r.HomeroomClass(ctx, co.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))
	})

	t.Run("teaching classes include co-taught", func(t *testing.T) {
		rows, err := r.TeachingClasses(ctx, homeroom.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = r.TeachingClasses(ctx, co.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, c1.ID, rows[0].ID)

		_, err = r.TeachingDirectory(ctx, idle.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))
	})

	t.Run("inactive classes are ignored", func(t *testing.T) {
		require.NoError(t, db.Model(c2).Update("is_active", false).Error)
		defer db.Model(c2).Update("is_active", true)

		rows, err := r.TeachingClasses(ctx, homeroom.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("student class by id and legacy name", func(t *testing.T) {
		byID := fx.Student("s-id", school.ID, dbtest.Ptr(c1.ID.String()))
		byName := fx.Student("s-name", school.ID, dbtest.Ptr("10A2"))
		none := fx.Student("s-none", school.ID, nil)
		dangling := fx.Student("s-dangling", school.ID, dbtest.Ptr(uuid.New().String()))

		cls, err := r.StudentClass(ctx, byID)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, cls.ID)

		cls, _, err = r.StudentClassByID(ctx, byName.ID)
		require.NoError(t, err)
		assert.Equal(t, c2.ID, cls.ID)

		_, err = r.StudentClass(ctx, none)
		assert.True(t, apperror.HasCode(err, apperror.CodeStudentUnassigned))
		_, err = r.StudentClass(ctx, dangling)
		assert.True(t, apperror.HasCode(err, apperror.CodeStudentUnassigned))
	})
}
