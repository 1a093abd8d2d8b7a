package service

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	"lingoschool_backend/internals/features/school/assessments/submissions/dto"
	submissionModel "lingoschool_backend/internals/features/school/assessments/submissions/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
)

type SubmissionService struct {
	DB          *gorm.DB
	Resolver    *classService.Resolver
	Assignments *assignmentService.AssignmentService
	Time        *dbtime.Policy
}

func NewSubmissionService(db *gorm.DB, resolver *classService.Resolver, assignments *assignmentService.AssignmentService, policy *dbtime.Policy) *SubmissionService {
	return &SubmissionService{DB: db, Resolver: resolver, Assignments: assignments, Time: policy}
}

/* =========================================================
   GRADE & RECORD
========================================================= */

// target: hasil validasi lesson/exam sebelum penilaian.
type target struct {
	kind     constants.SubmissionKind
	lesson   *lessonModel.LessonModel
	exam     *examModel.ExamModel
	class    *classModel.ClassModel
	schoolID uuid.UUID
}

func (t target) id() uuid.UUID {
	if t.kind == constants.SubmissionExam {
		return t.exam.ID
	}
	return t.lesson.ID
}

// GradeAndRecordSubmission menilai jawaban murid lalu menyimpan submission.
// Agregat score (dan progress untuk lesson) ikut diperbarui dalam transaksi yang sama.
func (s *SubmissionService) GradeAndRecordSubmission(
	ctx context.Context,
	p helperAuth.Principal,
	kind constants.SubmissionKind,
	targetID uuid.UUID,
	answers []dto.AnswerInput,
) (*dto.GradeResult, error) {
	if p.Role != constants.RoleStudent {
		return nil, apperror.Forbidden(constants.RoleErrorStudent("submissions"))
	}

	var student userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&student, "id = ?", p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, errors.Wrap(err, "load student")
	}

	tgt, err := s.resolveTarget(ctx, &student, kind, targetID)
	if err != nil {
		return nil, err
	}

	graded, err := s.gradeAll(ctx, tgt, answers)
	if err != nil {
		return nil, err
	}
	total, maxScore, scores := Tally(kind, graded)

	sub := submissionModel.SubmissionModel{
		UserID:     student.ID,
		Kind:       kind,
		Answers:    datatypes.JSONSlice[submissionModel.GradedAnswer](graded),
		Scores:     datatypes.NewJSONType(scores),
		TotalScore: total,
		MaxScore:   maxScore,
	}
	if kind == constants.SubmissionLesson {
		sub.LessonID = &tgt.lesson.ID
	} else {
		sub.ExamID = &tgt.exam.ID
	}

	if err := s.persist(ctx, &student, tgt, &sub); err != nil {
		return nil, err
	}

	log.Printf("[SubmissionService] %s submission %s by %s target=%s total=%.2f/%.2f answers=%d",
		kind, sub.ID, student.ID, tgt.id(), total, maxScore, len(graded))

	return &dto.GradeResult{
		SubmissionID: sub.ID,
		Kind:         kind,
		Scores:       scores,
		TotalScore:   total,
		MaxScore:     maxScore,
		Answers:      graded,
		SubmittedAt:  sub.CreatedAt,
	}, nil
}

func (s *SubmissionService) resolveTarget(ctx context.Context, student *userModel.UserModel, kind constants.SubmissionKind, targetID uuid.UUID) (target, error) {
	switch kind {
	case constants.SubmissionLesson:
		return s.resolveLesson(ctx, student, targetID)
	case constants.SubmissionExam:
		return s.resolveExam(ctx, student, targetID)
	}
	return target{}, apperror.Validation("unknown submission kind")
}

func (s *SubmissionService) resolveLesson(ctx context.Context, student *userModel.UserModel, lessonID uuid.UUID) (target, error) {
	var lesson lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return target{}, apperror.NotFound("lesson")
		}
		return target{}, errors.Wrap(err, "load lesson")
	}
	if !lesson.IsPublished {
		return target{}, apperror.NotFound("lesson")
	}

	tgt := target{kind: constants.SubmissionLesson, lesson: &lesson, schoolID: lesson.SchoolID}

	// murid tanpa kelas tetap boleh submit; deadline = deadline lesson
	cls, err := s.Resolver.StudentClass(ctx, student)
	switch {
	case err == nil:
		if cls.SchoolID != lesson.SchoolID {
			return target{}, apperror.NotFound("lesson")
		}
		tgt.class = cls
	case apperror.HasCode(err, apperror.CodeStudentUnassigned):
		if student.SchoolID == nil || *student.SchoolID != lesson.SchoolID {
			return target{}, apperror.NotFound("lesson")
		}
	default:
		return target{}, err
	}

	var assignment *assignmentModel.AssignmentModel
	if tgt.class != nil {
		a, err := s.Assignments.Find(ctx, tgt.class.ID, lesson.ID)
		if err != nil {
			return target{}, err
		}
		if a != nil && !a.IsPublished {
			return target{}, apperror.NotFound("lesson")
		}
		assignment = a
	}

	if err := s.Time.CheckDeadline(assignmentService.EffectiveDeadline(&lesson, assignment)); err != nil {
		return target{}, err
	}
	return tgt, nil
}

func (s *SubmissionService) resolveExam(ctx context.Context, student *userModel.UserModel, examID uuid.UUID) (target, error) {
	var exam examModel.ExamModel
	if err := s.DB.WithContext(ctx).First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return target{}, apperror.NotFound("exam")
		}
		return target{}, errors.Wrap(err, "load exam")
	}
	cls, err := s.Resolver.StudentClass(ctx, student)
	if err != nil {
		return target{}, err
	}
	if !exam.IsPublished || exam.ClassID != cls.ID {
		return target{}, apperror.NotFound("exam")
	}
	if err := s.Time.CheckWindow(exam.StartTime, exam.EndTime); err != nil {
		return target{}, err
	}
	return target{kind: constants.SubmissionExam, exam: &exam, class: cls, schoolID: cls.SchoolID}, nil
}

// gradeAll: soal yang tidak ada, bukan milik target, tidak terlihat, atau duplikat dilewati.
func (s *SubmissionService) gradeAll(ctx context.Context, tgt target, answers []dto.AnswerInput) ([]submissionModel.GradedAnswer, error) {
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}

	var rows []questionModel.QuestionModel
	if len(ids) > 0 {
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "load questions")
		}
	}
	byID := make(map[uuid.UUID]questionModel.QuestionModel, len(rows))
	for _, q := range rows {
		byID[q.ID] = q
	}

	out := make([]submissionModel.GradedAnswer, 0, len(answers))
	seen := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || !q.BelongsTo(tgt.kind, tgt.id()) || !visibleTo(q, tgt) {
			log.Printf("[SubmissionService] skip question %s (missing or out of scope)", a.QuestionID)
			continue
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, GradeAnswer(q, a.UserAnswer))
	}
	return out, nil
}

func visibleTo(q questionModel.QuestionModel, tgt target) bool {
	if !q.IsPublished {
		return false
	}
	if q.ClassID == nil {
		return q.SchoolID != nil && *q.SchoolID == tgt.schoolID
	}
	return tgt.class != nil && *q.ClassID == tgt.class.ID
}

// persist: insert submission lalu perbarui agregat murid dengan cek versi.
// Score rata-rata dihitung atas semua submission; progress hanya dari lesson.
// Versi yang berubah sejak student dimuat → Conflict dan seluruh transaksi dibatalkan.
func (s *SubmissionService) persist(ctx context.Context, student *userModel.UserModel, tgt target, sub *submissionModel.SubmissionModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return errors.Wrap(err, "insert submission")
		}

		var agg aggregate
		if tgt.kind == constants.SubmissionLesson {
			var previous int64
			if err := tx.Model(&submissionModel.SubmissionModel{}).
				Where("user_id = ? AND lesson_id = ? AND kind = ? AND id <> ?", student.ID, tgt.lesson.ID, constants.SubmissionLesson, sub.ID).
				Count(&previous).Error; err != nil {
				return errors.Wrap(err, "count previous submissions")
			}

			var published int64
			if err := tx.Model(&lessonModel.LessonModel{}).
				Where("school_id = ? AND is_published = ?", tgt.lesson.SchoolID, true).
				Count(&published).Error; err != nil {
				return errors.Wrap(err, "count published lessons")
			}
			agg = nextLessonAggregate(student, sub.TotalScore, previous == 0, published)
		} else {
			agg = nextScoreAggregate(student, sub.TotalScore)
		}

		res := tx.Model(&userModel.UserModel{}).
			Where("id = ? AND version = ?", student.ID, student.Version).
			Updates(map[string]any{
				"score_sum":          agg.ScoreSum,
				"scored_submissions": agg.ScoredSubmissions,
				"score":              agg.Score,
				"lessons_completed":  agg.LessonsCompleted,
				"progress":           agg.Progress,
				"version":            student.Version + 1,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update student aggregate")
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("student progress changed concurrently, please resubmit")
		}

		student.ScoreSum = agg.ScoreSum
		student.ScoredSubmissions = agg.ScoredSubmissions
		student.Score = agg.Score
		student.LessonsCompleted = agg.LessonsCompleted
		student.Progress = agg.Progress
		student.Version++
		return nil
	})
}

type aggregate struct {
	ScoreSum          float64
	ScoredSubmissions int
	Score             float64
	LessonsCompleted  int
	Progress          float64
}

// nextScoreAggregate: rata-rata berjalan atas semua submission; progress tidak berubah.
func nextScoreAggregate(u *userModel.UserModel, total float64) aggregate {
	a := aggregate{
		ScoreSum:          u.ScoreSum + total,
		ScoredSubmissions: u.ScoredSubmissions + 1,
		LessonsCompleted:  u.LessonsCompleted,
		Progress:          u.Progress,
	}
	a.Score = a.ScoreSum / float64(a.ScoredSubmissions)
	return a
}

// nextLessonAggregate: seperti nextScoreAggregate, plus progress dari lesson berbeda.
func nextLessonAggregate(u *userModel.UserModel, total float64, newLesson bool, publishedLessons int64) aggregate {
	a := nextScoreAggregate(u, total)
	if newLesson {
		a.LessonsCompleted++
	}
	if publishedLessons > 0 {
		a.Progress = math.Min(1, float64(a.LessonsCompleted)/float64(publishedLessons))
	}
	return a
}

/* =========================================================
   SCORES
========================================================= */

// FetchClassScoresForTeacher: semua submission lesson diambil, lalu difilter di aplikasi
// terhadap kelas yang diampu guru (id kelas atau nama kelas lama).
func (s *SubmissionService) FetchClassScoresForTeacher(ctx context.Context, p helperAuth.Principal, lessonID uuid.UUID, classID *uuid.UUID) (*dto.ClassScoresResponse, error) {
	if p.Role != constants.RoleTeacher {
		return nil, apperror.Forbidden(constants.RoleErrorTeacher("class scores"))
	}
	dir, err := s.Resolver.TeachingDirectory(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if classID != nil {
		cls, ok := dir.Get(*classID)
		if !ok {
			return nil, apperror.NotAuthorizedForClass()
		}
		dir = classService.NewDirectory([]classModel.ClassModel{cls})
	}

	var lesson lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).Select("id").First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("lesson")
		}
		return nil, errors.Wrap(err, "load lesson")
	}

	var rows []submissionModel.SubmissionModel
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Where("lesson_id = ? AND kind = ?", lesson.ID, constants.SubmissionLesson).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load lesson submissions")
	}

	out := make([]dto.ScoreRow, 0, len(rows))
	for _, sub := range rows {
		if sub.User == nil || !dir.MatchesRaw(sub.User.ClassRef) {
			continue
		}
		out = append(out, dto.ToScoreRow(sub))
	}

	return &dto.ClassScoresResponse{
		LessonID:    lesson.ID,
		ClassName:   strings.Join(dir.Names(), ", "),
		Submissions: out,
	}, nil
}

// FetchExamScores: pemilik exam, sekolah pemilik kelas, atau admin.
func (s *SubmissionService) FetchExamScores(ctx context.Context, p helperAuth.Principal, examID uuid.UUID) (*dto.ExamScoresResponse, error) {
	var exam examModel.ExamModel
	if err := s.DB.WithContext(ctx).First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("exam")
		}
		return nil, errors.Wrap(err, "load exam")
	}
	var cls classModel.ClassModel
	if err := s.DB.WithContext(ctx).First(&cls, "id = ?", exam.ClassID).Error; err != nil {
		return nil, errors.Wrap(err, "load exam class")
	}

	switch p.Role {
	case constants.RoleAdmin:
	case constants.RoleSchool:
		if cls.SchoolID != p.ID {
			return nil, apperror.Forbidden("exam belongs to another school")
		}
	case constants.RoleTeacher:
		if !exam.OwnedBy(p.ID) {
			return nil, apperror.Forbidden("only the exam owner may view its scores")
		}
	default:
		return nil, apperror.Forbidden(constants.RoleErrorStaff("exam scores"))
	}

	var rows []submissionModel.SubmissionModel
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Where("exam_id = ? AND kind = ?", exam.ID, constants.SubmissionExam).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load exam submissions")
	}
	out := make([]dto.ScoreRow, 0, len(rows))
	for _, sub := range rows {
		out = append(out, dto.ToScoreRow(sub))
	}
	return &dto.ExamScoresResponse{ExamID: exam.ID, ClassName: cls.Name, Submissions: out}, nil
}

/* =========================================================
   HISTORY & DETAIL
========================================================= */

type HistoryFilter struct {
	Kind     *constants.SubmissionKind
	LessonID *uuid.UUID
	ExamID   *uuid.UUID
}

// ListMine: riwayat submission murid, terbaru dulu.
func (s *SubmissionService) ListMine(ctx context.Context, p helperAuth.Principal, f HistoryFilter, paging helper.Paging) ([]submissionModel.SubmissionModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&submissionModel.SubmissionModel{}).Where("user_id = ?", p.ID)
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.LessonID != nil {
		q = q.Where("lesson_id = ?", *f.LessonID)
	}
	if f.ExamID != nil {
		q = q.Where("exam_id = ?", *f.ExamID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count submissions")
	}
	var rows []submissionModel.SubmissionModel
	if err := q.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list submissions")
	}
	return rows, total, nil
}

// Get: pemilik, guru kelas murid, sekolah murid, atau admin.
func (s *SubmissionService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*submissionModel.SubmissionModel, error) {
	var sub submissionModel.SubmissionModel
	if err := s.DB.WithContext(ctx).Preload("User").First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("submission")
		}
		return nil, errors.Wrap(err, "load submission")
	}

	switch p.Role {
	case constants.RoleAdmin:
		return &sub, nil
	case constants.RoleStudent:
		if sub.UserID == p.ID {
			return &sub, nil
		}
	case constants.RoleSchool:
		if sub.User != nil && sub.User.SchoolID != nil && *sub.User.SchoolID == p.ID {
			return &sub, nil
		}
	case constants.RoleTeacher:
		dir, err := s.Resolver.TeachingDirectory(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if sub.User != nil && dir.MatchesRaw(sub.User.ClassRef) {
			return &sub, nil
		}
	}
	return nil, apperror.NotFound("submission")
}
