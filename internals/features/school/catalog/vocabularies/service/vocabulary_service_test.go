package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	"lingoschool_backend/internals/features/school/catalog/vocabularies/dto"
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

func pngHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "apple.png")
	require.NoError(t, err)
	_, err = fw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["image"][0]
}

func TestVocabularyService(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	resolver := classService.NewResolver(db)
	store := storage.NewMemoryStore("https://media.test")
	lessons := lessonService.NewLessonService(db, resolver, assignmentService.NewAssignmentService(db, resolver), store, dbtime.NewPolicy(nil))
	svc := NewVocabularyService(db, lessons, store)
	ctx := context.Background()

	school := fx.School("school")
	teacher := fx.Teacher("teacher", school.ID)
	fx.Class(school.ID, "10", "10A1", &teacher.ID)
	unit := fx.Unit(school.ID, "unit")
	vocabLesson := fx.Lesson(unit, "words", constants.SkillVocabulary)
	grammarLesson := fx.Lesson(unit, "tenses", constants.SkillGrammar)

	t.Run("lesson type must match", func(t *testing.T) {
		_, err := svc.Create(ctx, as(school), dto.CreateVocabularyRequest{LessonID: grammarLesson.ID.String(), Word: "run", Meaning: "lari"}, nil)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	req := dto.CreateVocabularyRequest{LessonID: vocabLesson.ID.String(), Word: " apple ", Meaning: "apel", Synonyms: []string{"Pome", " ", "pome"}}
	req.Normalize()
	apple, err := svc.Create(ctx, as(school), req, pngHeader(t))
	require.NoError(t, err)
	assert.Equal(t, "apple", apple.Word)
	assert.Equal(t, []string{"Pome"}, []string(apple.Synonyms))
	assert.Equal(t, 1, apple.Order)
	require.NotNil(t, apple.ImageURL)
	assert.True(t, strings.HasSuffix(*apple.ImageURL, ".webp"))
	assert.True(t, store.Has(*apple.ImageURL))

	draft := false
	pear, err := svc.Create(ctx, as(school), dto.CreateVocabularyRequest{LessonID: vocabLesson.ID.String(), Word: "pear", Meaning: "pir", IsPublished: &draft}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pear.Order)

	t.Run("teachers only see published", func(t *testing.T) {
		rows, err := svc.ListByLesson(ctx, as(teacher), vocabLesson.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, apple.ID, rows[0].ID)

		_, err = svc.Get(ctx, as(teacher), pear.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

		all, err := svc.ListByLesson(ctx, as(school), vocabLesson.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("patch keeps untouched fields", func(t *testing.T) {
		up := dto.UpdateVocabularyRequest{Meaning: dbtest.Ptr("buah apel"), RemoveImage: true}
		got, err := svc.Update(ctx, as(school), apple.ID, up, nil)
		require.NoError(t, err)
		assert.Equal(t, "apple", got.Word)
		assert.Equal(t, "buah apel", got.Meaning)
		assert.Nil(t, got.ImageURL)
		assert.False(t, store.Has(*apple.ImageURL))
	})

	t.Run("teacher cannot delete", func(t *testing.T) {
		err := svc.Delete(ctx, as(teacher), pear.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
		require.NoError(t, svc.Delete(ctx, as(school), pear.ID))
	})
}

func TestVocabularyOrderKeepsGaps(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)
	resolver := classService.NewResolver(db)
	store := storage.NewMemoryStore("https://media.test")
	lessons := lessonService.NewLessonService(db, resolver, assignmentService.NewAssignmentService(db, resolver), store, dbtime.NewPolicy(nil))
	svc := NewVocabularyService(db, lessons, store)
	ctx := context.Background()

	school := fx.School("school")
	lesson := fx.Lesson(fx.Unit(school.ID, "unit"), "words", constants.SkillVocabulary)

	var ids []uuid.UUID
	for i, word := range []string{"one", "two", "three"} {
		m, err := svc.Create(ctx, as(school), dto.CreateVocabularyRequest{LessonID: lesson.ID.String(), Word: word, Meaning: word}, nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, m.Order)
		ids = append(ids, m.ID)
	}

	require.NoError(t, svc.Delete(ctx, as(school), ids[1]))

	rows, err := svc.ListByLesson(ctx, as(school), lesson.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "one", rows[0].Word)
	assert.Equal(t, 1, rows[0].Order)
	assert.Equal(t, "three", rows[1].Word)
	assert.Equal(t, 3, rows[1].Order)

	next, err := svc.Create(ctx, as(school), dto.CreateVocabularyRequest{LessonID: lesson.ID.String(), Word: "four", Meaning: "four"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Order)
}
