// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
	announcementRoute "lingoschool_backend/internals/features/school/announcements/route"
	announcementService "lingoschool_backend/internals/features/school/announcements/service"
	assignmentRoute "lingoschool_backend/internals/features/school/assessments/assignments/route"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	examRoute "lingoschool_backend/internals/features/school/assessments/exams/route"
	examService "lingoschool_backend/internals/features/school/assessments/exams/service"
	questionRoute "lingoschool_backend/internals/features/school/assessments/questions/route"
	questionService "lingoschool_backend/internals/features/school/assessments/questions/service"
	submissionRoute "lingoschool_backend/internals/features/school/assessments/submissions/route"
	submissionService "lingoschool_backend/internals/features/school/assessments/submissions/service"
	grammarRoute "lingoschool_backend/internals/features/school/catalog/grammars/route"
	grammarService "lingoschool_backend/internals/features/school/catalog/grammars/service"
	lessonRoute "lingoschool_backend/internals/features/school/catalog/lessons/route"
	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	unitRoute "lingoschool_backend/internals/features/school/catalog/units/route"
	unitService "lingoschool_backend/internals/features/school/catalog/units/service"
	vocabularyRoute "lingoschool_backend/internals/features/school/catalog/vocabularies/route"
	vocabularyService "lingoschool_backend/internals/features/school/catalog/vocabularies/service"
	classRoute "lingoschool_backend/internals/features/school/classes/route"
	classService "lingoschool_backend/internals/features/school/classes/service"
	authRoute "lingoschool_backend/internals/features/users/auth/route"
	authService "lingoschool_backend/internals/features/users/auth/service"
	userRoute "lingoschool_backend/internals/features/users/user/route"
	userService "lingoschool_backend/internals/features/users/user/service"
	"lingoschool_backend/internals/helpers/dbtime"
	"lingoschool_backend/internals/helpers/mailer"
	"lingoschool_backend/internals/helpers/storage"
	rateLimiter "lingoschool_backend/internals/middlewares"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

var startTime time.Time

// Deps: kolaborator yang dibangun main dari Config.
type Deps struct {
	DB     *gorm.DB
	Cfg    *configs.Config
	Store  storage.BlobStore
	Mailer mailer.Mailer
	Time   *dbtime.Policy
}

// Services: satu instance per service, dibagi semua route.
type Services struct {
	Tokens        *authService.TokenService
	Auth          *authService.AuthService
	Users         *userService.UserService
	Resolver      *classService.Resolver
	Roster        *classService.RosterService
	Classes       *classService.ClassService
	Assignments   *assignmentService.AssignmentService
	Lessons       *lessonService.LessonService
	Units         *unitService.UnitService
	Vocabularies  *vocabularyService.VocabularyService
	Grammars      *grammarService.GrammarService
	Questions     *questionService.QuestionService
	Exams         *examService.ExamService
	Submissions   *submissionService.SubmissionService
	Announcements *announcementService.AnnouncementService
}

func NewServices(d Deps) *Services {
	s := &Services{}
	s.Tokens = authService.NewTokenService(d.Cfg.JWTSecret, d.Cfg.JWTTTL)
	s.Auth = authService.NewAuthService(d.DB, d.Cfg, s.Tokens, d.Mailer, d.Store)

	s.Resolver = classService.NewResolver(d.DB)
	s.Roster = classService.NewRosterService(d.DB)
	s.Classes = classService.NewClassService(d.DB, s.Resolver, s.Roster)
	s.Users = userService.NewUserService(d.DB, s.Roster)

	s.Assignments = assignmentService.NewAssignmentService(d.DB, s.Resolver)
	s.Lessons = lessonService.NewLessonService(d.DB, s.Resolver, s.Assignments, d.Store, d.Time)
	s.Units = unitService.NewUnitService(d.DB, s.Resolver, s.Lessons, d.Store)
	s.Vocabularies = vocabularyService.NewVocabularyService(d.DB, s.Lessons, d.Store)
	s.Grammars = grammarService.NewGrammarService(d.DB, s.Lessons)

	s.Questions = questionService.NewQuestionService(d.DB, s.Resolver, s.Assignments)
	s.Exams = examService.NewExamService(d.DB, s.Resolver, d.Time)
	s.Submissions = submissionService.NewSubmissionService(d.DB, s.Resolver, s.Assignments, d.Time)
	s.Announcements = announcementService.NewAnnouncementService(d.DB, s.Resolver, d.Store)
	return s
}

// SetupRoutes: route publik didaftarkan dulu, baru grup /api yang butuh token.
func SetupRoutes(app *fiber.App, d Deps, s *Services) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, d.DB)

	api := app.Group("/api", rateLimiter.GlobalRateLimiter())

	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthPublicRoutes(api, s.Auth)

	// semua route di bawah ini lewat AuthMiddleware
	protected := api.Group("", authMiddleware.AuthMiddleware(d.DB, d.Cfg))
	authRoute.AuthRoutes(protected, s.Auth)

	log.Println("[INFO] Setting up UserRoutes...")
	userRoute.UserRoutes(protected, s.Users)

	log.Println("[INFO] Mounting Class routes...")
	classRoute.ClassRoutes(protected, s.Classes, s.Roster)

	log.Println("[INFO] Mounting Catalog routes...")
	unitRoute.UnitRoutes(protected, s.Units)
	lessonRoute.LessonRoutes(protected, s.Lessons)
	vocabularyRoute.VocabularyRoutes(protected, s.Vocabularies)
	grammarRoute.GrammarRoutes(protected, s.Grammars)

	log.Println("[INFO] Mounting Assessment routes...")
	questionRoute.QuestionRoutes(protected, s.Questions)
	examRoute.ExamRoutes(protected, s.Exams)
	assignmentRoute.AssignmentRoutes(protected, s.Assignments, d.Time)
	submissionRoute.SubmissionRoutes(protected, s.Submissions)

	log.Println("[INFO] Mounting Announcement routes...")
	announcementRoute.AnnouncementRoutes(protected, s.Announcements)
}
