package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	"lingoschool_backend/internals/features/school/assessments/questions/dto"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type QuestionService struct {
	DB          *gorm.DB
	Resolver    *classService.Resolver
	Assignments *assignmentService.AssignmentService
}

func NewQuestionService(db *gorm.DB, resolver *classService.Resolver, assignments *assignmentService.AssignmentService) *QuestionService {
	return &QuestionService{DB: db, Resolver: resolver, Assignments: assignments}
}

/* =========================================================
   READ: soal lesson sesuai scope principal
========================================================= */

// FetchQuestionsForPrincipal:
//   - school  : semua soal yang ia tulis untuk lesson tsb (tanpa filter kelas/publish)
//   - teacher : wali kelas aktif; soal kelasnya + soal sekolah tanpa kelas, published
//   - student : sama seperti teacher, berdasarkan kelas murid
//   - admin   : semua
func (s *QuestionService) FetchQuestionsForPrincipal(ctx context.Context, p helperAuth.Principal, lessonID uuid.UUID) (*dto.LessonQuestionsResponse, error) {
	scope, err := s.Resolver.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}

	var lesson lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("lesson")
		}
		return nil, errors.Wrap(err, "load lesson")
	}

	deadline := lesson.Deadline
	if cs, ok := scope.(classService.ClassScope); ok {
		if !lesson.IsPublished || lesson.SchoolID != cs.SchoolID {
			return nil, apperror.NotFound("lesson")
		}
		a, err := s.Assignments.Find(ctx, cs.ClassID, lesson.ID)
		if err != nil {
			return nil, err
		}
		if a != nil && !a.IsPublished && p.Role == constants.RoleStudent {
			return nil, apperror.NotFound("lesson")
		}
		deadline = assignmentService.EffectiveDeadline(&lesson, a)
	}

	q := s.DB.WithContext(ctx).Model(&questionModel.QuestionModel{}).Where("lesson_id = ?", lesson.ID)
	q = scope.Apply(q)

	var rows []questionModel.QuestionModel
	if err := helper.OrderByPosition(q).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load lesson questions")
	}

	return &dto.LessonQuestionsResponse{
		LessonID:  lesson.ID,
		Deadline:  deadline,
		Questions: dto.ToQuestionResponses(rows, p.Role != constants.RoleStudent),
	}, nil
}

/* =========================================================
   READ: soal exam
========================================================= */

// FetchExamQuestions: teacher pemilik exam atau wali kelas exam; student kelas exam
// (exam published); school pemilik kelas; admin semua.
func (s *QuestionService) FetchExamQuestions(ctx context.Context, p helperAuth.Principal, examID uuid.UUID) (*dto.ExamQuestionsResponse, error) {
	exam, cls, err := s.loadExamWithClass(ctx, examID)
	if err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Model(&questionModel.QuestionModel{}).Where("exam_id = ?", exam.ID)
	switch p.Role {
	case constants.RoleAdmin:
	case constants.RoleSchool:
		if cls.SchoolID != p.ID {
			return nil, apperror.Forbidden("exam belongs to another school")
		}
	case constants.RoleTeacher:
		if !exam.OwnedBy(p.ID) {
			home, err := s.Resolver.HomeroomClass(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			if home.ID != exam.ClassID {
				return nil, apperror.NotAuthorizedForClass()
			}
		}
	case constants.RoleStudent:
		mine, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if mine.ID != exam.ClassID || !exam.IsPublished {
			return nil, apperror.NotFound("exam")
		}
		q = q.Where("is_published = ?", true)
	default:
		return nil, apperror.Forbidden("unknown role")
	}

	var rows []questionModel.QuestionModel
	if err := helper.OrderByPosition(q).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load exam questions")
	}
	return &dto.ExamQuestionsResponse{
		ExamID:    exam.ID,
		StartTime: exam.StartTime,
		EndTime:   exam.EndTime,
		Questions: dto.ToQuestionResponses(rows, p.Role != constants.RoleStudent),
	}, nil
}

func (s *QuestionService) loadExamWithClass(ctx context.Context, examID uuid.UUID) (*examModel.ExamModel, *classModel.ClassModel, error) {
	var exam examModel.ExamModel
	if err := s.DB.WithContext(ctx).First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("exam")
		}
		return nil, nil, errors.Wrap(err, "load exam")
	}
	var cls classModel.ClassModel
	if err := s.DB.WithContext(ctx).First(&cls, "id = ?", exam.ClassID).Error; err != nil {
		return nil, nil, errors.Wrap(err, "load exam class")
	}
	return &exam, &cls, nil
}

/* =========================================================
   WRITE
========================================================= */

// Create: soal lesson ditulis sekolah; soal exam ditulis guru pemilik exam.
func (s *QuestionService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateQuestionRequest) (*questionModel.QuestionModel, error) {
	if (req.LessonID == nil) == (req.ExamID == nil) {
		return nil, apperror.Validation("exactly one of lesson_id or exam_id is required")
	}
	if err := validateShape(req.Type, req.Options, req.CorrectAnswer); err != nil {
		return nil, err
	}

	m := questionModel.QuestionModel{
		CreatedBy:     p.ID,
		Type:          req.Type,
		Prompt:        req.Prompt,
		Options:       toJSON(req.Options),
		CorrectAnswer: toJSON(req.CorrectAnswer),
		Explanation:   req.Explanation,
		Points:        1,
		IsPublished:   true,
	}
	if req.Points != nil {
		m.Points = *req.Points
	}
	if req.IsPublished != nil {
		m.IsPublished = *req.IsPublished
	}

	var (
		parentColumn string
		parentID     uuid.UUID
	)
	if req.LessonID != nil {
		lesson, err := s.lessonForAuthor(ctx, p, *req.LessonID)
		if err != nil {
			return nil, err
		}
		m.LessonID = &lesson.ID
		m.SchoolID = &lesson.SchoolID
		m.Skill = lesson.LessonType
		if req.ClassID != nil {
			var cls classModel.ClassModel
			if err := s.DB.WithContext(ctx).First(&cls, "id = ?", *req.ClassID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperror.NotFound("class")
				}
				return nil, errors.Wrap(err, "load class")
			}
			if cls.SchoolID != lesson.SchoolID {
				return nil, apperror.Forbidden("class belongs to another school")
			}
			m.ClassID = &cls.ID
		}
		parentColumn, parentID = "lesson_id", lesson.ID
	} else {
		exam, err := s.examForOwner(ctx, p, *req.ExamID)
		if err != nil {
			return nil, err
		}
		if req.Skill == nil {
			return nil, apperror.Validation("skill is required for exam questions")
		}
		m.ExamID = &exam.ID
		m.ClassID = &exam.ClassID
		parentColumn, parentID = "exam_id", exam.ID
	}
	if req.Skill != nil {
		m.Skill = *req.Skill
	}

	order, err := helper.ResolveOrder(ctx, s.DB, req.Order, questionModel.QuestionModel{}.TableName(), parentColumn, parentID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve order")
	}
	m.Order = order

	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, errors.Wrap(err, "create question")
	}
	log.Printf("[QuestionService] created question %s (%s/%s) by %s", m.ID, m.Type, m.Skill, p.ID)
	return &m, nil
}

// Update: partial merge dari allow-list.
func (s *QuestionService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateQuestionRequest) (*questionModel.QuestionModel, error) {
	m, err := s.loadForMutation(ctx, p, id)
	if err != nil {
		return nil, err
	}

	options := []byte(m.Options)
	if req.Options != nil {
		options = req.Options
	}
	correct := []byte(m.CorrectAnswer)
	if req.CorrectAnswer != nil {
		correct = req.CorrectAnswer
	}
	if err := validateShape(m.Type, options, correct); err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Skill != nil {
		patch["skill"] = *req.Skill
	}
	if req.Prompt != nil {
		patch["prompt"] = *req.Prompt
	}
	if req.Options != nil {
		patch["options"] = toJSON(req.Options)
	}
	if req.CorrectAnswer != nil {
		patch["correct_answer"] = toJSON(req.CorrectAnswer)
	}
	if req.Explanation != nil {
		patch["explanation"] = *req.Explanation
	}
	if req.Points != nil {
		patch["points"] = *req.Points
	}
	if req.Order != nil {
		patch["order_index"] = *req.Order
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			return nil, errors.Wrap(err, "update question")
		}
	}
	if err := s.DB.WithContext(ctx).First(m, "id = ?", m.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload question")
	}
	return m, nil
}

func (s *QuestionService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadForMutation(ctx, p, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(m).Error
}

func (s *QuestionService) loadForMutation(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*questionModel.QuestionModel, error) {
	var m questionModel.QuestionModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("question")
		}
		return nil, errors.Wrap(err, "load question")
	}
	if p.Role == constants.RoleAdmin {
		return &m, nil
	}
	if m.ExamID != nil {
		if _, err := s.examForOwner(ctx, p, *m.ExamID); err != nil {
			return nil, err
		}
		return &m, nil
	}
	if p.Role != constants.RoleSchool || m.SchoolID == nil || *m.SchoolID != p.ID {
		return nil, apperror.Forbidden("only the authoring school may modify this question")
	}
	return &m, nil
}

func (s *QuestionService) lessonForAuthor(ctx context.Context, p helperAuth.Principal, lessonID uuid.UUID) (*lessonModel.LessonModel, error) {
	if !p.Is(constants.RoleSchool, constants.RoleAdmin) {
		return nil, apperror.Forbidden(constants.RoleErrorSchool("lesson questions"))
	}
	var lesson lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("lesson")
		}
		return nil, errors.Wrap(err, "load lesson")
	}
	if p.Role == constants.RoleSchool && lesson.SchoolID != p.ID {
		return nil, apperror.Forbidden("lesson belongs to another school")
	}
	return &lesson, nil
}

func (s *QuestionService) examForOwner(ctx context.Context, p helperAuth.Principal, examID uuid.UUID) (*examModel.ExamModel, error) {
	var exam examModel.ExamModel
	if err := s.DB.WithContext(ctx).First(&exam, "id = ?", examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("exam")
		}
		return nil, errors.Wrap(err, "load exam")
	}
	if p.Role != constants.RoleAdmin && !exam.OwnedBy(p.ID) {
		return nil, apperror.Forbidden("only the exam owner may manage its questions")
	}
	return &exam, nil
}
