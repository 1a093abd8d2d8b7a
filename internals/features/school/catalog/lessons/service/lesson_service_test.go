package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	"lingoschool_backend/internals/features/school/catalog/lessons/dto"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	vocabularyModel "lingoschool_backend/internals/features/school/catalog/vocabularies/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
	"lingoschool_backend/internals/helpers/storage"
)

func as(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func fileHeader(t *testing.T, field, name string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File[field][0]
}

func newLessonService(t *testing.T) (*LessonService, *gorm.DB, *dbtest.Fixture, *storage.MemoryStore) {
	db := dbtest.Open(t)
	resolver := classService.NewResolver(db)
	store := storage.NewMemoryStore("https://media.test")
	policy := dbtime.NewPolicy(time.FixedZone("UTC+7", 7*3600))
	svc := NewLessonService(db, resolver, assignmentService.NewAssignmentService(db, resolver), store, policy)
	return svc, db, dbtest.NewFixture(t, db), store
}

func TestLessonOrdering(t *testing.T) {
	svc, db, fx, _ := newLessonService(t)
	ctx := context.Background()
	school := fx.School("school")
	unit := fx.Unit(school.ID, "unit")

	var created []*lessonModel.LessonModel
	for _, title := range []string{"One", "Two", "Three"} {
		m, err := svc.Create(ctx, as(school), dto.CreateLessonRequest{
			UnitID: unit.ID.String(), Title: title, LessonType: string(constants.SkillReading),
		}, nil)
		require.NoError(t, err)
		created = append(created, m)
	}
	assert.Equal(t, 1, created[0].Order)
	assert.Equal(t, 2, created[1].Order)
	assert.Equal(t, 3, created[2].Order)
	assert.True(t, created[0].IsPublished)

	require.NoError(t, svc.Delete(ctx, as(school), created[1].ID))

	var orders []int
	require.NoError(t, db.Model(&lessonModel.LessonModel{}).Order("order_index").Pluck("order_index", &orders).Error)
	assert.Equal(t, []int{1, 3}, orders)

	next, err := svc.Create(ctx, as(school), dto.CreateLessonRequest{
		UnitID: unit.ID.String(), Title: "Four", LessonType: string(constants.SkillReading),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Order)

	explicit := 2
	gap, err := svc.Create(ctx, as(school), dto.CreateLessonRequest{
		UnitID: unit.ID.String(), Title: "One", LessonType: string(constants.SkillReading), Order: &explicit,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gap.Order)
	assert.Equal(t, "one-2", gap.Slug)
}

func TestLessonDeadlineAndVisibility(t *testing.T) {
	svc, db, fx, _ := newLessonService(t)
	ctx := context.Background()

	school := fx.School("school")
	homeroom := fx.Teacher("homeroom", school.ID)
	cls := fx.Class(school.ID, "10", "10A1", &homeroom.ID)
	student := fx.Student("student", school.ID, dbtest.Ptr(cls.ID.String()))
	loner := fx.Student("loner", school.ID, nil)
	unit := fx.Unit(school.ID, "unit")

	naive := "2026-01-30T23:59:59"
	open, err := svc.Create(ctx, as(school), dto.CreateLessonRequest{
		UnitID: unit.ID.String(), Title: "Open", LessonType: "grammar", Deadline: &naive,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, open.Deadline)
	assert.Equal(t, time.Date(2026, 1, 30, 16, 59, 59, 0, time.UTC), open.Deadline.UTC())

	hidden := fx.Lesson(unit, "hidden", constants.SkillGrammar)
	draft := fx.Lesson(unit, "draft", constants.SkillGrammar)
	require.NoError(t, db.Model(draft).Update("is_published", false).Error)

	override := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&assignmentModel.AssignmentModel{ClassID: cls.ID, LessonID: open.ID, TeacherID: homeroom.ID, Deadline: &override, IsPublished: true}).Error)
	require.NoError(t, db.Create(&assignmentModel.AssignmentModel{ClassID: cls.ID, LessonID: hidden.ID, TeacherID: homeroom.ID, IsPublished: false}).Error)

	t.Run("student listing", func(t *testing.T) {
		rows, err := svc.List(ctx, as(student), &unit.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, open.ID, rows[0].Lesson.ID)
		require.NotNil(t, rows[0].Deadline)
		assert.True(t, override.Equal(*rows[0].Deadline))
	})

	t.Run("unassigned student sees lesson deadlines", func(t *testing.T) {
		rows, err := svc.List(ctx, as(loner), &unit.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("school sees drafts", func(t *testing.T) {
		rows, err := svc.List(ctx, as(school), nil)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("student detail", func(t *testing.T) {
		_, err := svc.Get(ctx, as(student), hidden.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
		_, err = svc.Get(ctx, as(student), draft.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

		lv, err := svc.Get(ctx, as(student), open.ID)
		require.NoError(t, err)
		assert.True(t, override.Equal(*lv.Deadline))
	})

	t.Run("teachers cannot author", func(t *testing.T) {
		_, err := svc.Create(ctx, as(homeroom), dto.CreateLessonRequest{UnitID: unit.ID.String(), Title: "x", LessonType: "grammar"}, nil)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	})
}

func TestLessonUpdateAndMedia(t *testing.T) {
	svc, db, fx, store := newLessonService(t)
	ctx := context.Background()
	school := fx.School("school")
	other := fx.School("other")
	unit := fx.Unit(school.ID, "unit")

	m, err := svc.Create(ctx, as(school), dto.CreateLessonRequest{
		UnitID: unit.ID.String(), Title: "Video lesson", LessonType: "vocabulary",
	}, fileHeader(t, "video", "intro.mp4", []byte("not really a video")))
	require.NoError(t, err)
	require.NotNil(t, m.VideoURL)
	first := *m.VideoURL
	assert.True(t, store.Has(first))

	_, err = svc.Update(ctx, as(other), m.ID, dto.UpdateLessonRequest{Title: dbtest.Ptr("hijack")}, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	updated, err := svc.Update(ctx, as(school), m.ID, dto.UpdateLessonRequest{
		Title:   dbtest.Ptr("Renamed"),
		Content: dbtest.Ptr("body"),
	}, fileHeader(t, "video", "second.mp4", []byte("another")))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "renamed", updated.Slug)
	assert.Equal(t, "body", updated.Content)
	assert.False(t, store.Has(first))
	assert.True(t, store.Has(*updated.VideoURL))

	require.NoError(t, db.Create(&vocabularyModel.VocabularyModel{LessonID: m.ID, Word: "apple", Meaning: "apel", Order: 1, IsPublished: true}).Error)
	_, err = svc.Update(ctx, as(school), m.ID, dto.UpdateLessonRequest{LessonType: dbtest.Ptr("grammar")}, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	require.NoError(t, svc.Delete(ctx, as(school), m.ID))
	assert.False(t, store.Has(*updated.VideoURL))
	var vocab int64
	require.NoError(t, db.Model(&vocabularyModel.VocabularyModel{}).Count(&vocab).Error)
	assert.Zero(t, vocab)
}
