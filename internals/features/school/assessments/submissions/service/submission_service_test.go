package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	"lingoschool_backend/internals/features/school/assessments/submissions/dto"
	submissionModel "lingoschool_backend/internals/features/school/assessments/submissions/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
)

var wib = time.FixedZone("UTC+7", 7*3600)

type world struct {
	db       *gorm.DB
	fx       *dbtest.Fixture
	svc      *SubmissionService
	clock    *time.Time
	school   *userModel.UserModel
	homeroom *userModel.UserModel
	student  *userModel.UserModel
	classID  uuid.UUID
	lesson   *lessonModel.LessonModel
}

func newWorld(t *testing.T) *world {
	db := dbtest.Open(t)
	fx := dbtest.NewFixture(t, db)

	now := time.Date(2026, 1, 30, 23, 0, 0, 0, wib)
	policy := dbtime.NewPolicy(wib)
	w := &world{db: db, fx: fx, clock: &now}
	policy.Now = func() time.Time { return *w.clock }

	resolver := classService.NewResolver(db)
	w.svc = NewSubmissionService(db, resolver, assignmentService.NewAssignmentService(db, resolver), policy)

	w.school = fx.School("school")
	w.homeroom = fx.Teacher("homeroom", w.school.ID)
	cls := fx.Class(w.school.ID, "10", "10A1", &w.homeroom.ID)
	w.classID = cls.ID
	w.student = fx.Student("student", w.school.ID, dbtest.Ptr(cls.ID.String()))
	w.lesson = fx.Lesson(fx.Unit(w.school.ID, "unit"), "lesson", constants.SkillVocabulary)
	return w
}

func (w *world) setNow(t time.Time) { *w.clock = t }

func (w *world) question(t *testing.T, m questionModel.QuestionModel) questionModel.QuestionModel {
	t.Helper()
	if m.LessonID == nil && m.ExamID == nil {
		m.LessonID = &w.lesson.ID
		m.SchoolID = &w.school.ID
	}
	if m.Skill == "" {
		m.Skill = constants.SkillVocabulary
	}
	m.CreatedBy = w.school.ID
	m.IsPublished = true
	require.NoError(t, w.db.Create(&m).Error)
	return m
}

func (w *world) as(u *userModel.UserModel) helperAuth.Principal {
	return helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}
}

func answer(q questionModel.QuestionModel, raw string) dto.AnswerInput {
	return dto.AnswerInput{QuestionID: q.ID, UserAnswer: json.RawMessage(raw)}
}

func TestLessonSubmissionEndToEnd(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	deadline := time.Date(2026, 1, 30, 23, 59, 59, 0, wib)
	require.NoError(t, w.db.Model(w.lesson).Update("deadline", deadline.UTC()).Error)

	q1 := w.question(t, questionModel.QuestionModel{Type: constants.QuestionMCQ, CorrectAnswer: datatypes.JSON(`"B"`), Options: datatypes.JSON(`["A","B"]`), Points: 2})
	q2 := w.question(t, questionModel.QuestionModel{Type: constants.QuestionEssay, Skill: constants.SkillWriting, Points: 1})

	res, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID,
		[]dto.AnswerInput{answer(q1, `"B"`), answer(q2, `"free text"`)})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.SubmissionID)
	assert.Equal(t, 2.0, res.TotalScore)
	assert.Equal(t, 2.0, res.Scores[constants.SkillVocabulary])
	assert.Equal(t, res.TotalScore, res.Scores.Sum())
	require.Len(t, res.Answers, 2)
	assert.Equal(t, ptr(true), res.Answers[0].IsCorrect)
	assert.Nil(t, res.Answers[1].IsCorrect)
	assert.Equal(t, 0.0, res.Answers[1].PointsAwarded)

	var stored submissionModel.SubmissionModel
	require.NoError(t, w.db.First(&stored, "id = ?", res.SubmissionID).Error)
	assert.Equal(t, 2.0, stored.TotalScore)
	assert.Equal(t, 2.0, stored.Scores.Data()[constants.SkillVocabulary])
	require.Len(t, stored.Answers, 2)
	assert.JSONEq(t, `"B"`, string(stored.Answers[0].CorrectAnswer))

	var u userModel.UserModel
	require.NoError(t, w.db.First(&u, "id = ?", w.student.ID).Error)
	assert.Equal(t, 2.0, u.Score)
	assert.Equal(t, 1, u.LessonsCompleted)
	assert.Equal(t, 1.0, u.Progress)
	assert.Equal(t, 1, u.Version)
}

func TestDeadlineBoundary(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	deadline := time.Date(2026, 1, 30, 23, 59, 59, 0, wib)
	require.NoError(t, w.db.Model(w.lesson).Update("deadline", deadline.UTC()).Error)
	q := w.question(t, questionModel.QuestionModel{Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"go"`), Points: 1})

	w.setNow(deadline.Add(-time.Second))
	_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"go"`)})
	require.NoError(t, err)

	w.setNow(deadline)
	_, err = w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"go"`)})
	require.NoError(t, err)

	w.setNow(deadline.Add(time.Second))
	_, err = w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"go"`)})
	require.Error(t, err)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDeadlineExceeded, ae.Code)
	assert.True(t, deadline.Equal(ae.Details["deadline"].(time.Time)))

	assignment := assignmentModel.AssignmentModel{
		ClassID: w.classID, LessonID: w.lesson.ID, TeacherID: w.homeroom.ID, IsPublished: true,
	}
	require.NoError(t, w.db.Create(&assignment).Error)
	w.setNow(deadline.Add(48 * time.Hour))

	t.Run("assignment without deadline keeps the lesson deadline", func(t *testing.T) {
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"go"`)})
		assert.True(t, apperror.HasCode(err, apperror.CodeDeadlineExceeded), "got %v", err)
	})

	t.Run("assignment deadline overrides the lesson", func(t *testing.T) {
		later := deadline.Add(72 * time.Hour)
		require.NoError(t, w.db.Model(&assignment).Update("deadline", later.UTC()).Error)
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"go"`)})
		require.NoError(t, err)
	})
}

func TestExamWindow(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	start := time.Date(2026, 2, 2, 8, 0, 0, 0, wib)
	end := start.Add(45 * time.Minute)
	exam := examModel.ExamModel{Title: "Mid", ExamType: constants.Exam45Minutes, ClassID: w.classID, TeacherID: w.homeroom.ID,
		StartTime: start.UTC(), EndTime: end.UTC(), IsPublished: true}
	require.NoError(t, w.db.Create(&exam).Error)
	q := w.question(t, questionModel.QuestionModel{ExamID: &exam.ID, ClassID: &w.classID, Type: constants.QuestionTrueFalse,
		Skill: constants.SkillGrammar, CorrectAnswer: datatypes.JSON(`true`), Points: 5})

	tests := []struct {
		name string
		now  time.Time
		code string
	}{
		{"before start", start.Add(-time.Second), apperror.CodeExamNotStarted},
		{"at start", start, ""},
		{"inside", start.Add(10 * time.Minute), ""},
		{"at end", end, ""},
		{"after end", end.Add(time.Second), apperror.CodeExamExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.setNow(tt.now)
			res, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionExam, exam.ID, []dto.AnswerInput{answer(q, `true`)})
			if tt.code != "" {
				assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5.0, res.TotalScore)
			assert.Nil(t, res.Scores)
		})
	}

	t.Run("exam submissions count toward the score mean only", func(t *testing.T) {
		var u userModel.UserModel
		require.NoError(t, w.db.First(&u, "id = ?", w.student.ID).Error)
		assert.Equal(t, 3, u.ScoredSubmissions)
		assert.Equal(t, 15.0, u.ScoreSum)
		assert.Equal(t, 5.0, u.Score)
		assert.Equal(t, 3, u.Version)
		assert.Equal(t, 0, u.LessonsCompleted)
		assert.Equal(t, 0.0, u.Progress)
	})

	t.Run("lesson after exams averages over all submissions", func(t *testing.T) {
		lq := w.question(t, questionModel.QuestionModel{Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"go"`), Points: 1})
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(lq, `"go"`)})
		require.NoError(t, err)

		var u userModel.UserModel
		require.NoError(t, w.db.First(&u, "id = ?", w.student.ID).Error)
		assert.Equal(t, 4, u.ScoredSubmissions)
		assert.Equal(t, 4.0, u.Score)
		assert.Equal(t, 1, u.LessonsCompleted)
		assert.Equal(t, 1.0, u.Progress)
	})
}

func TestSubmissionGuards(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	q := w.question(t, questionModel.QuestionModel{Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"a"`), Points: 1})

	t.Run("only students submit", func(t *testing.T) {
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.homeroom), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"a"`)})
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	})

	t.Run("unknown and foreign questions are skipped", func(t *testing.T) {
		other := w.fx.Lesson(w.fx.Unit(w.school.ID, "unit-2"), "lesson-2", constants.SkillGrammar)
		foreign := w.question(t, questionModel.QuestionModel{LessonID: &other.ID, SchoolID: &w.school.ID, Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"a"`), Points: 1})

		res, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{
			{QuestionID: uuid.New(), UserAnswer: json.RawMessage(`"a"`)},
			answer(foreign, `"a"`),
			answer(q, `"a"`),
			answer(q, `"a"`),
		})
		require.NoError(t, err)
		require.Len(t, res.Answers, 1)
		assert.Equal(t, 1.0, res.TotalScore)
	})

	t.Run("unpublished assignment hides the lesson", func(t *testing.T) {
		require.NoError(t, w.db.Create(&assignmentModel.AssignmentModel{
			ClassID: w.classID, LessonID: w.lesson.ID, TeacherID: w.homeroom.ID, IsPublished: false,
		}).Error)
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"a"`)})
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})
}

func TestAggregateRetakesAndConflicts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	second := w.fx.Lesson(w.fx.Unit(w.school.ID, "unit-b"), "lesson-b", constants.SkillReading)
	w.fx.Lesson(w.fx.Unit(w.school.ID, "unit-c"), "lesson-c", constants.SkillReading)
	w.fx.Lesson(w.fx.Unit(w.school.ID, "unit-d"), "lesson-d", constants.SkillReading)

	q := w.question(t, questionModel.QuestionModel{Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"x"`), Points: 4})
	q2 := w.question(t, questionModel.QuestionModel{LessonID: &second.ID, SchoolID: &w.school.ID, Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"x"`), Points: 2})

	submit := func(lessonID uuid.UUID, qq questionModel.QuestionModel, raw string) {
		_, err := w.svc.GradeAndRecordSubmission(ctx, w.as(w.student), constants.SubmissionLesson, lessonID, []dto.AnswerInput{answer(qq, raw)})
		require.NoError(t, err)
	}
	submit(w.lesson.ID, q, `"x"`)
	submit(w.lesson.ID, q, `"wrong"`)
	submit(second.ID, q2, `"x"`)

	var u userModel.UserModel
	require.NoError(t, w.db.First(&u, "id = ?", w.student.ID).Error)
	assert.Equal(t, 3, u.ScoredSubmissions)
	assert.InDelta(t, 2.0, u.Score, 1e-9)
	assert.Equal(t, 2, u.LessonsCompleted)
	assert.InDelta(t, 0.5, u.Progress, 1e-9)
	assert.Equal(t, 3, u.Version)

	t.Run("stale version rolls the submission back", func(t *testing.T) {
		stale := u
		stale.Version = u.Version - 1

		var before int64
		require.NoError(t, w.db.Model(&submissionModel.SubmissionModel{}).Count(&before).Error)

		sub := submissionModel.SubmissionModel{UserID: u.ID, Kind: constants.SubmissionLesson, LessonID: &w.lesson.ID, TotalScore: 1}
		err := w.svc.persist(ctx, &stale, target{kind: constants.SubmissionLesson, lesson: w.lesson}, &sub)
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

		var after int64
		require.NoError(t, w.db.Model(&submissionModel.SubmissionModel{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestNextAggregate(t *testing.T) {
	u := &userModel.UserModel{ScoreSum: 10, ScoredSubmissions: 2, LessonsCompleted: 5, Progress: 0.5}
	a := nextLessonAggregate(u, 5, true, 4)
	assert.Equal(t, 15.0, a.ScoreSum)
	assert.Equal(t, 3, a.ScoredSubmissions)
	assert.Equal(t, 5.0, a.Score)
	assert.Equal(t, 6, a.LessonsCompleted)
	assert.Equal(t, 1.0, a.Progress)

	// exam 10 lalu lesson 2 → mean 6
	fresh := &userModel.UserModel{}
	e := nextScoreAggregate(fresh, 10)
	fresh.ScoreSum, fresh.ScoredSubmissions = e.ScoreSum, e.ScoredSubmissions
	l := nextLessonAggregate(fresh, 2, true, 2)
	assert.Equal(t, 6.0, l.Score)
	assert.Equal(t, 0.5, l.Progress)

	ex := nextScoreAggregate(u, 20)
	assert.Equal(t, 10.0, ex.Score)
	assert.Equal(t, 5, ex.LessonsCompleted)
	assert.Equal(t, 0.5, ex.Progress)
}

func TestFetchClassScoresForTeacher(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	coTeacher := w.fx.Teacher("co", w.school.ID)
	idle := w.fx.Teacher("idle", w.school.ID)
	other := w.fx.Class(w.school.ID, "10", "10B", nil)
	w.fx.CoTeacher(w.classID, coTeacher.ID)

	legacy := w.fx.Student("legacy", w.school.ID, dbtest.Ptr("10A1"))
	outsider := w.fx.Student("outsider", w.school.ID, dbtest.Ptr(other.ID.String()))

	q := w.question(t, questionModel.QuestionModel{Type: constants.QuestionFillBlank, CorrectAnswer: datatypes.JSON(`"x"`), Points: 1})
	for i, s := range []*userModel.UserModel{w.student, legacy, outsider} {
		res, err := w.svc.GradeAndRecordSubmission(ctx, w.as(s), constants.SubmissionLesson, w.lesson.ID, []dto.AnswerInput{answer(q, `"x"`)})
		require.NoError(t, err)
		// created_at diisi NowFunc DB; dibuat berjarak supaya urutan deterministik
		require.NoError(t, w.db.Model(&submissionModel.SubmissionModel{}).
			Where("id = ?", res.SubmissionID).
			Update("created_at", time.Date(2026, 1, 20, 1, i, 0, 0, time.UTC)).Error)
	}

	t.Run("legacy class name is matched", func(t *testing.T) {
		res, err := w.svc.FetchClassScoresForTeacher(ctx, w.as(w.homeroom), w.lesson.ID, nil)
		require.NoError(t, err)
		require.Len(t, res.Submissions, 2)
		assert.Equal(t, legacy.ID, res.Submissions[0].Student.ID)
		assert.Equal(t, w.student.ID, res.Submissions[1].Student.ID)
		assert.Equal(t, "10A1", res.ClassName)
	})

	t.Run("co-teacher sees the class too", func(t *testing.T) {
		res, err := w.svc.FetchClassScoresForTeacher(ctx, w.as(coTeacher), w.lesson.ID, &w.classID)
		require.NoError(t, err)
		assert.Len(t, res.Submissions, 2)
	})

	t.Run("narrowing to a foreign class", func(t *testing.T) {
		_, err := w.svc.FetchClassScoresForTeacher(ctx, w.as(w.homeroom), w.lesson.ID, &other.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotAuthorizedForClass))
	})

	t.Run("teacher without classes", func(t *testing.T) {
		_, err := w.svc.FetchClassScoresForTeacher(ctx, w.as(idle), w.lesson.ID, nil)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotHomeroomTeacher))
	})

	t.Run("submission detail access", func(t *testing.T) {
		var outsiderSub submissionModel.SubmissionModel
		require.NoError(t, w.db.First(&outsiderSub, "user_id = ?", outsider.ID).Error)

		_, err := w.svc.Get(ctx, w.as(w.homeroom), outsiderSub.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
		_, err = w.svc.Get(ctx, w.as(outsider), outsiderSub.ID)
		require.NoError(t, err)
		_, err = w.svc.Get(ctx, w.as(w.school), outsiderSub.ID)
		require.NoError(t, err)
		_, err = w.svc.Get(ctx, w.as(w.student), outsiderSub.ID)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})
}
