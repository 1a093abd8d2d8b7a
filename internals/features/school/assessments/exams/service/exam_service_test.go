package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	"lingoschool_backend/internals/features/school/assessments/exams/dto"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
)

var wib = time.FixedZone("UTC+7", 7*3600)

func as(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func TestExamLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	ctx := context.Background()
	svc := NewExamService(db, classService.NewResolver(db), dbtime.NewPolicy(wib))

	school := fx.School("sma1")
	homeroom := fx.Teacher("bu_rina", school.ID)
	co := fx.Teacher("pak_adi", school.ID)
	idle := fx.Teacher("pak_idle", school.ID)
	cls := fx.Class(school.ID, "10", "10A1", &homeroom.ID)
	other := fx.Class(school.ID, "10", "10B", nil)
	fx.CoTeacher(cls.ID, co.ID)
	student := fx.Student("budi", school.ID, classService.StoredRef(cls.ID))
	outsider := fx.Student("sari", school.ID, classService.StoredRef(other.ID))

	req := dto.CreateExamRequest{
		ClassID:   cls.ID,
		Title:     "Weekly quiz",
		ExamType:  "15m",
		StartTime: "2026-03-01 08:00",
		EndTime:   "2026-03-01 08:15",
	}

	t.Run("naive times are read in the school zone", func(t *testing.T) {
		m, err := svc.Create(ctx, as(co), req)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC), m.StartTime.UTC())
		assert.True(t, m.IsPublished)
		assert.Equal(t, co.ID, m.TeacherID)
	})

	t.Run("window must be positive", func(t *testing.T) {
		bad := req
		bad.EndTime = bad.StartTime
		_, err := svc.Create(ctx, as(homeroom), bad)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("class must be taught by the author", func(t *testing.T) {
		foreign := req
		foreign.ClassID = other.ID
		_, err := svc.Create(ctx, as(homeroom), foreign)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotAuthorizedForClass))

		_, err = svc.Create(ctx, as(idle), req)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))

		_, err = svc.Create(ctx, as(school), req)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	})

	draft := req
	draft.Title = "Draft"
	draft.IsPublished = dbtest.Ptr(false)
	hidden, err := svc.Create(ctx, as(homeroom), draft)
	require.NoError(t, err)

	t.Run("listing per role", func(t *testing.T) {
		mine, err := svc.List(ctx, as(homeroom), nil)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		forStudent, err := svc.List(ctx, as(student), nil)
		require.NoError(t, err)
		require.Len(t, forStudent, 1)
		assert.Equal(t, "Weekly quiz", forStudent[0].Title)

		none, err := svc.List(ctx, as(outsider), nil)
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := svc.List(ctx, as(school), &cls.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("get hides drafts from students", func(t *testing.T) {
		_, err := svc.Get(ctx, as(student), hidden.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

		got, err := svc.Get(ctx, as(co), hidden.ID)
		require.NoError(t, err)
		assert.Equal(t, hidden.ID, got.ID)
	})

	t.Run("only the owner modifies", func(t *testing.T) {
		title := "Renamed"
		_, err := svc.Update(ctx, as(co), hidden.ID, dto.UpdateExamRequest{Title: &title})
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

		early := "2026-03-01 07:00"
		_, err = svc.Update(ctx, as(homeroom), hidden.ID, dto.UpdateExamRequest{EndTime: &early})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		m, err := svc.Update(ctx, as(homeroom), hidden.ID, dto.UpdateExamRequest{Title: &title, IsPublished: dbtest.Ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", m.Title)
		assert.True(t, m.IsPublished)
	})

	t.Run("delete removes exam questions", func(t *testing.T) {
		q := questionModel.QuestionModel{
			ExamID: &hidden.ID, ClassID: &cls.ID, CreatedBy: homeroom.ID, Skill: constants.SkillGrammar,
			Type: constants.QuestionEssay, Prompt: "Write", Points: 1, IsPublished: true,
		}
		require.NoError(t, db.Create(&q).Error)

		require.NoError(t, svc.Delete(ctx, as(homeroom), hidden.ID))

		var n int64
		require.NoError(t, db.Model(&questionModel.QuestionModel{}).Where("exam_id = ?", hidden.ID).Count(&n).Error)
		assert.Zero(t, n)
		_, err := svc.Get(ctx, as(homeroom), hidden.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})
}
