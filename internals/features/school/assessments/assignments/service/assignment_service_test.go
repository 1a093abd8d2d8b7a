package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

func principal(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func TestUpsertReplacesPerClassLesson(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	svc := NewAssignmentService(db, classService.NewResolver(db))
	ctx := context.Background()

	school := fx.School("school")
	homeroom := fx.Teacher("homeroom", school.ID)
	cls := fx.Class(school.ID, "10", "10A1", &homeroom.ID)
	lesson := fx.Lesson(fx.Unit(school.ID, "unit"), "lesson", constants.SkillGrammar)

	first := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a, err := svc.Upsert(ctx, principal(homeroom), UpsertInput{ClassID: cls.ID, LessonID: lesson.ID, Deadline: &first, IsPublished: false})
	require.NoError(t, err)
	assert.False(t, a.IsPublished)

	second := first.Add(48 * time.Hour)
	b, err := svc.Upsert(ctx, principal(homeroom), UpsertInput{ClassID: cls.ID, LessonID: lesson.ID, Deadline: &second, IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.IsPublished)
	require.NotNil(t, b.Deadline)
	assert.True(t, second.Equal(*b.Deadline))

	var count int64
	require.NoError(t, db.Model(&assignmentModel.AssignmentModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := svc.Find(ctx, cls.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	rows, err := svc.List(ctx, principal(homeroom), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpsertGuards(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	svc := NewAssignmentService(db, classService.NewResolver(db))
	ctx := context.Background()

	school := fx.School("school")
	otherSchool := fx.School("other")
	homeroom := fx.Teacher("homeroom", school.ID)
	coTeacher := fx.Teacher("co", school.ID)
	cls := fx.Class(school.ID, "10", "10A1", &homeroom.ID)
	fx.CoTeacher(cls.ID, coTeacher.ID)
	lesson := fx.Lesson(fx.Unit(school.ID, "unit"), "lesson", constants.SkillGrammar)
	foreign := fx.Lesson(fx.Unit(otherSchool.ID, "unit-x"), "lesson-x", constants.SkillGrammar)

	_, err := svc.Upsert(ctx, principal(coTeacher), UpsertInput{ClassID: cls.ID, LessonID: lesson.ID, IsPublished: true})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))

	_, err = svc.Upsert(ctx, principal(homeroom), UpsertInput{ClassID: cls.ID, LessonID: foreign.ID, IsPublished: true})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	a, err := svc.Upsert(ctx, principal(homeroom), UpsertInput{ClassID: cls.ID, LessonID: lesson.ID, IsPublished: true})
	require.NoError(t, err)

	err = svc.Delete(ctx, principal(coTeacher), a.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))
	require.NoError(t, svc.Delete(ctx, principal(homeroom), a.ID))

	got, err := svc.Find(ctx, cls.ID, lesson.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEffectiveDeadline(t *testing.T) {
	lessonDeadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lesson := &lessonModel.LessonModel{Deadline: &lessonDeadline}

	override := lessonDeadline.Add(72 * time.Hour)
	tests := []struct {
		name       string
		lesson     *lessonModel.LessonModel
		assignment *assignmentModel.AssignmentModel
		want       *time.Time
	}{
		{"no assignment follows lesson", lesson, nil, &lessonDeadline},
		{"assignment without deadline follows lesson", lesson, &assignmentModel.AssignmentModel{IsPublished: true}, &lessonDeadline},
		{"assignment deadline overrides", lesson, &assignmentModel.AssignmentModel{Deadline: &override}, &override},
		{"neither has a deadline", &lessonModel.LessonModel{}, &assignmentModel.AssignmentModel{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveDeadline(tt.lesson, tt.assignment))
		})
	}
}
