package database

import (
	"log"

	"gorm.io/gorm"

	announcementModel "lingoschool_backend/internals/features/school/announcements/model"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	submissionModel "lingoschool_backend/internals/features/school/assessments/submissions/model"
	grammarModel "lingoschool_backend/internals/features/school/catalog/grammars/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	unitModel "lingoschool_backend/internals/features/school/catalog/units/model"
	vocabularyModel "lingoschool_backend/internals/features/school/catalog/vocabularies/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	authModel "lingoschool_backend/internals/features/users/auth/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

// Models: urutan = urutan migrasi.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklistModel{},
		&classModel.ClassModel{},
		&classModel.ClassTeacherModel{},
		&unitModel.UnitModel{},
		&lessonModel.LessonModel{},
		&vocabularyModel.VocabularyModel{},
		&grammarModel.GrammarModel{},
		&examModel.ExamModel{},
		&questionModel.QuestionModel{},
		&assignmentModel.AssignmentModel{},
		&submissionModel.SubmissionModel{},
		&announcementModel.AnnouncementModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("✅ Migration done")
	return nil
}
